// Package service wires the activity sessions, learner storage and the
// activity journal pipeline behind the dependencies the HTTP API needs.
package service

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/agrisiti/agrikit/internal/adapters/mq/queue"
	workerpool "github.com/agrisiti/agrikit/internal/adapters/mq/worker"
	"github.com/agrisiti/agrikit/internal/adapters/repository"
	"github.com/agrisiti/agrikit/internal/adapters/sessions"
	"github.com/agrisiti/agrikit/internal/domain/canvas"
	"github.com/agrisiti/agrikit/internal/domain/costs"
	"github.com/agrisiti/agrikit/internal/domain/cue"
	"github.com/agrisiti/agrikit/internal/domain/dedupe"
	"github.com/agrisiti/agrikit/internal/domain/localstore"
	"github.com/agrisiti/agrikit/internal/domain/matching"
	"github.com/agrisiti/agrikit/internal/domain/model"
	"github.com/agrisiti/agrikit/internal/domain/quiz"
	"github.com/agrisiti/agrikit/pkg/logger"
	"github.com/agrisiti/agrikit/pkg/metrics"
)

// Service implements the API dependencies for the activities.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	registry *sessions.Registry
	deduper  dedupe.Deduper
	queue    *eventqueue.InMemoryQueue
	pool     *workerpool.Pool

	// Configuration
	workerCount  int
	queueSize    int
	dedupeSize   int
	sessionTTL   time.Duration
	quizAdvance  time.Duration
	soundDefault bool
	clock        func() time.Time
	newRand      func() *rand.Rand

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the learner store. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithWorkerCount sets the number of journal workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the journal queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many journal event ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSessionTTL sets the idle lifetime of activity sessions.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithQuizAdvance sets the delay before the quiz moves past feedback.
func WithQuizAdvance(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.quizAdvance = d
		}
	}
}

// WithSoundDefault sets the initial sound toggle of new sessions.
func WithSoundDefault(on bool) Option {
	return func(s *Service) { s.soundDefault = on }
}

// WithClock sets the time source for journal timestamps and badges.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithRandSource sets the factory for matching-game shuffle sources.
func WithRandSource(fn func() *rand.Rand) Option {
	return func(s *Service) {
		if fn != nil {
			s.newRand = fn
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  2,
		queueSize:    1024,
		dedupeSize:   10_000,
		sessionTTL:   2 * time.Hour,
		quizAdvance:  quiz.DefaultAdvance,
		soundDefault: true,
		clock:        time.Now,
		newRand:      func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) },
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	return s
}

// Start initializes the registry and starts the journal pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting activities service...")

	s.registry = sessions.New(s.sessionTTL, sessions.WithLogger(s.logger.Named("sessions")))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.store, workerpool.WithLogger(s.logger))
	// workers outlive the start request and stop once Stop drains the queue
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "activities service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Duration("sessionTTL", s.sessionTTL),
	)
	return nil
}

// Stop closes every session, drains the journal queue and waits for the
// workers. The store is left open for its owner to close.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping activities service...")

	s.registry.Close()
	_ = s.queue.Close()
	err := s.pool.Wait(ctx)

	s.started = false
	s.logger.Info(ctx, "activities service stopped")
	return err
}

// Storage returns learnerID's local storage.
func (s *Service) Storage(learnerID string) localstore.Storage {
	return repository.Scope(s.store, learnerID, s.logger.Named("storage"))
}

// NewQuiz registers a quiz session on its intro screen.
func (s *Service) NewQuiz(_ context.Context, learnerID string) (string, *sessions.Live[*quiz.Session]) {
	tones := &cue.Recorder{}
	live := &sessions.Live[*quiz.Session]{Tones: tones}
	live.Session = quiz.New(
		quiz.WithAdvanceDelay(s.quizAdvance),
		quiz.WithPlayer(tones),
		quiz.WithSound(s.soundDefault),
		quiz.WithOnAnswer(func(index int, choice quiz.Label, correct bool) {
			metrics.RecordQuizAnswer(correct)
			s.record(learnerID, model.ActivityQuiz, model.KindQuizAnswered, boolScore(correct), map[string]string{
				"index":  strconv.Itoa(index),
				"choice": string(choice),
			})
		}),
		quiz.WithOnFinish(func(score, total int) {
			metrics.RecordQuizFinish(score)
			s.record(learnerID, model.ActivityQuiz, model.KindQuizFinished, float64(score), map[string]string{
				"total": strconv.Itoa(total),
			})
		}),
	)
	return s.registry.Put(model.ActivityQuiz, learnerID, live), live
}

// Quiz returns learnerID's quiz session registered under id.
func (s *Service) Quiz(learnerID, id string) (*sessions.Live[*quiz.Session], error) {
	return sessions.Get[*sessions.Live[*quiz.Session]](s.registry, model.ActivityQuiz, learnerID, id)
}

// NewMatching registers a matching game with domain loaded.
func (s *Service) NewMatching(ctx context.Context, learnerID, domain string) (string, *sessions.Live[*matching.Game], error) {
	tones := &cue.Recorder{}
	game := matching.New(
		matching.WithRand(s.newRand()),
		matching.WithStorage(s.Storage(learnerID)),
		matching.WithPlayer(tones),
		matching.WithSound(s.soundDefault),
		matching.WithOnDrop(func(domain, needID, zoneID string, correct bool) {
			metrics.RecordMatchDrop(domain, correct)
			s.record(learnerID, model.ActivityMatching, model.KindMatchDropped, boolScore(correct), map[string]string{
				"domain": domain,
				"need":   needID,
				"zone":   zoneID,
			})
		}),
		matching.WithOnComplete(func(domain string) {
			metrics.RecordMatchComplete(domain)
			s.record(learnerID, model.ActivityMatching, model.KindMatchCompleted, 4, map[string]string{"domain": domain})
		}),
	)
	if _, err := game.LoadDomain(ctx, domain); err != nil {
		return "", nil, err
	}
	live := &sessions.Live[*matching.Game]{Session: game, Tones: tones}
	return s.registry.Put(model.ActivityMatching, learnerID, live), live, nil
}

// Matching returns learnerID's matching game registered under id.
func (s *Service) Matching(learnerID, id string) (*sessions.Live[*matching.Game], error) {
	return sessions.Get[*sessions.Live[*matching.Game]](s.registry, model.ActivityMatching, learnerID, id)
}

// NewCosts registers a cost calculator with domain loaded.
func (s *Service) NewCosts(ctx context.Context, learnerID, domain string) (string, *sessions.Live[*costs.Calculator], error) {
	tones := &cue.Recorder{}
	calc := costs.New(
		costs.WithStorage(s.Storage(learnerID)),
		costs.WithPlayer(tones),
		costs.WithSound(s.soundDefault),
		costs.WithOnBreakEven(func(domain string, total, price float64, units int) {
			metrics.RecordBreakEven(domain, units > 0)
			s.record(learnerID, model.ActivityCosts, model.KindBreakEven, float64(units), map[string]string{
				"domain": domain,
				"total":  strconv.FormatFloat(total, 'f', -1, 64),
				"price":  strconv.FormatFloat(price, 'f', -1, 64),
			})
		}),
	)
	if _, err := calc.LoadDomain(ctx, domain); err != nil {
		return "", nil, err
	}
	live := &sessions.Live[*costs.Calculator]{Session: calc, Tones: tones}
	return s.registry.Put(model.ActivityCosts, learnerID, live), live, nil
}

// Costs returns learnerID's cost calculator registered under id.
func (s *Service) Costs(learnerID, id string) (*sessions.Live[*costs.Calculator], error) {
	return sessions.Get[*sessions.Live[*costs.Calculator]](s.registry, model.ActivityCosts, learnerID, id)
}

// NewCanvas registers a canvas builder over learnerID's saved canvas.
func (s *Service) NewCanvas(_ context.Context, learnerID string) (string, *sessions.Live[*canvas.Builder]) {
	b := canvas.New(s.Storage(learnerID),
		canvas.WithClock(s.clock),
		canvas.WithOnSave(func(boxID string, filled int) {
			metrics.RecordCanvasSave(boxID)
			s.record(learnerID, model.ActivityCanvas, model.KindCanvasBoxSaved, float64(filled), map[string]string{"box": boxID})
		}),
		canvas.WithOnComplete(func(businessName string, newBadge bool) {
			metrics.RecordCanvasCompletion(newBadge)
			s.record(learnerID, model.ActivityCanvas, model.KindCanvasCompleted, float64(canvas.BoxCount), map[string]string{
				"business_name": businessName,
				"new_badge":     strconv.FormatBool(newBadge),
			})
		}),
	)
	live := &sessions.Live[*canvas.Builder]{Session: b, Tones: &cue.Recorder{}}
	return s.registry.Put(model.ActivityCanvas, learnerID, live), live
}

// Canvas returns learnerID's canvas builder registered under id.
func (s *Service) Canvas(learnerID, id string) (*sessions.Live[*canvas.Builder], error) {
	return sessions.Get[*sessions.Live[*canvas.Builder]](s.registry, model.ActivityCanvas, learnerID, id)
}

// EndSession closes one of learnerID's sessions.
func (s *Service) EndSession(activity, learnerID, id string) error {
	if _, err := s.registry.Lookup(activity, learnerID, id); err != nil {
		return err
	}
	s.registry.Delete(id)
	return nil
}

// SeenAndRecord reports whether a journal event id was already accepted,
// recording it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordJournalDuplicate()
	}
	return seen
}

// Unrecord forgets an event id so it can be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the number of remembered event ids.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits a journal event for asynchronous persistence.
func (s *Service) Enqueue(ctx context.Context, e model.Event) error { //nolint:gocritic // hugeParam: events travel by value
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.queue.Enqueue(ctx, e); err != nil {
		metrics.RecordJournalDropped()
		return fmt.Errorf("enqueue %s: %w", e.EventID, err)
	}
	return nil
}

// Journal returns learnerID's most recent events, newest first.
func (s *Service) Journal(ctx context.Context, learnerID string, limit int) ([]model.Event, error) {
	return s.store.Journal(ctx, learnerID, limit)
}

// record journals a server-side activity event. Failures are logged and
// never reach the learner.
func (s *Service) record(learnerID, activity, kind string, score float64, detail map[string]string) {
	ctx := context.Background()
	e := model.Event{
		EventID:   uuid.NewString(),
		LearnerID: learnerID,
		Activity:  activity,
		Kind:      kind,
		Score:     score,
		Detail:    detail,
		TS:        s.clock().UTC(),
	}
	s.deduper.SeenAndRecord(ctx, e.EventID)
	if err := s.Enqueue(ctx, e); err != nil {
		s.deduper.Unrecord(ctx, e.EventID)
		s.logger.Warn(ctx, "journal event dropped",
			logger.String("kind", kind),
			logger.String("learner_id", learnerID),
			logger.Float64("score", score),
			logger.Any("detail", detail),
			logger.Error(err),
		)
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if s.started {
		stats["queueLength"] = s.queue.Len()
		stats["journalEvents"] = s.store.JournalCount(ctx)
		stats["dedupeEntries"] = s.deduper.Size()
		active := map[string]int{}
		for _, a := range []string{model.ActivityQuiz, model.ActivityMatching, model.ActivityCosts, model.ActivityCanvas} {
			active[a] = s.registry.Count(a)
		}
		stats["activeSessions"] = active
		metrics.UpdateQueueSize(s.queue.Len())
	}
	return stats
}

func boolScore(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}
