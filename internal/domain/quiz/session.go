// Package quiz implements the "Farmer or Agripreneur?" classification quiz:
// ten fixed statements, one binary choice each, immediate feedback and an
// automatic advance after a short pause.
package quiz

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/agrisiti/agrikit/internal/domain/cue"
)

// DefaultAdvance is the pause between feedback and the next statement.
const DefaultAdvance = 2 * time.Second

// Screen is the visible quiz screen.
type Screen string

const (
	ScreenIntro   Screen = "intro"
	ScreenQuiz    Screen = "quiz"
	ScreenResults Screen = "results"
)

// Feedback is shown after an answer until the advance fires.
type Feedback struct {
	Correct bool   `json:"correct"`
	Icon    string `json:"icon"`
	Title   string `json:"title"`
	Explain string `json:"explain"`
}

// View is the render model of a session.
type View struct {
	Screen          Screen    `json:"screen"`
	Index           int       `json:"index"`
	Total           int       `json:"total"`
	Statement       string    `json:"statement,omitempty"`
	Score           int       `json:"score"`
	Answered        int       `json:"answered"`
	Progress        string    `json:"progress"`
	ProgressPercent float64   `json:"progress_percent"`
	Locked          bool      `json:"locked"`
	Feedback        *Feedback `json:"feedback,omitempty"`
	FinalScore      string    `json:"final_score,omitempty"`
	Message         string    `json:"message,omitempty"`
	Announcement    string    `json:"announcement,omitempty"`
	Sound           bool      `json:"sound"`
}

// FinishFunc is called once per completed run with the final score.
type FinishFunc func(score, total int)

// AnswerFunc is called after each accepted answer.
type AnswerFunc func(index int, choice Label, correct bool)

// Option configures a Session.
type Option func(*Session)

// WithScheduler replaces the timer used for the automatic advance.
func WithScheduler(s Scheduler) Option {
	return func(q *Session) {
		if s != nil {
			q.sched = s
		}
	}
}

// WithAdvanceDelay sets the pause before moving on. Non-positive values are ignored.
func WithAdvanceDelay(d time.Duration) Option {
	return func(q *Session) {
		if d > 0 {
			q.delay = d
		}
	}
}

// WithPlayer sets the tone sink.
func WithPlayer(p cue.Player) Option {
	return func(q *Session) { q.player = p }
}

// WithSound sets the initial sound toggle.
func WithSound(on bool) Option {
	return func(q *Session) { q.sound = on }
}

// WithItems replaces the statement list. Empty lists are ignored.
func WithItems(items []Item) Option {
	return func(q *Session) {
		if len(items) > 0 {
			q.items = items
		}
	}
}

// WithOnAnswer registers an answer hook. It runs with the session locked and
// must not call back into the session.
func WithOnAnswer(fn AnswerFunc) Option {
	return func(q *Session) { q.onAnswer = fn }
}

// WithOnFinish registers a completion hook. Same locking rule as WithOnAnswer.
func WithOnFinish(fn FinishFunc) Option {
	return func(q *Session) { q.onFinish = fn }
}

// Session is one learner's run through the quiz.
type Session struct {
	mu sync.Mutex

	items  []Item
	sched  Scheduler
	delay  time.Duration
	player cue.Player
	sound  bool

	onAnswer AnswerFunc
	onFinish FinishFunc

	screen       Screen
	index        int
	score        int
	answered     int
	locked       bool
	feedback     *Feedback
	announcement string

	// gen invalidates advances that were cancelled but had already fired.
	gen    uint64
	cancel func() bool
}

// New returns a session on the intro screen.
func New(opts ...Option) *Session {
	q := &Session{
		items:  Items,
		sched:  TimerScheduler{},
		delay:  DefaultAdvance,
		sound:  true,
		screen: ScreenIntro,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start begins a fresh run at the first statement.
func (q *Session) Start(_ context.Context) View {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stopAdvance()
	q.index = 0
	q.score = 0
	q.answered = 0
	q.screen = ScreenQuiz
	q.renderItem()
	return q.view()
}

// Answer records choice for the current statement. It returns false when the
// answer was ignored (locked, or not on the quiz screen).
func (q *Session) Answer(ctx context.Context, choice Label) (View, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.screen != ScreenQuiz || q.locked {
		return q.view(), false
	}
	q.locked = true

	item := q.items[q.index]
	correct := choice == item.Correct
	if correct {
		q.score++
	}
	q.feedback = buildFeedback(correct, item)
	if correct {
		q.announcement = "Correct."
	} else {
		q.announcement = fmt.Sprintf("Not quite. Correct answer is %s.", item.Correct)
	}
	kind := cue.Bad
	if correct {
		kind = cue.Good
	}
	cue.Emit(ctx, q.player, q.sound, cue.QuizPalette.Tone(kind))

	q.answered = q.index + 1
	if q.onAnswer != nil {
		q.onAnswer(q.index, choice, correct)
	}
	q.scheduleAdvance()
	return q.view(), true
}

// Key handles a keypress: f answers FARMER, a answers AGRIPRENEUR.
func (q *Session) Key(ctx context.Context, key string) (View, bool) {
	var choice Label
	switch strings.ToLower(key) {
	case "f":
		choice = Farmer
	case "a":
		choice = Agripreneur
	default:
		return q.View(), false
	}
	return q.Answer(ctx, choice)
}

// Finish jumps to the results screen with the current score.
func (q *Session) Finish(_ context.Context) View {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.finish()
	return q.view()
}

// TryAgain returns to the intro screen.
func (q *Session) TryAgain(_ context.Context) View {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stopAdvance()
	q.screen = ScreenIntro
	q.locked = false
	q.feedback = nil
	q.announcement = "Intro screen. Ready to start again."
	return q.view()
}

// SetSound toggles the audible cues.
func (q *Session) SetSound(on bool) View {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sound = on
	return q.view()
}

// Close cancels any pending advance.
func (q *Session) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopAdvance()
}

// View returns the current render model.
func (q *Session) View() View {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.view()
}

func (q *Session) scheduleAdvance() {
	q.stopAdvance()
	gen := q.gen
	q.cancel = q.sched.AfterFunc(q.delay, func() { q.advance(gen) })
}

func (q *Session) stopAdvance() {
	q.gen++
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
}

func (q *Session) advance(gen uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if gen != q.gen || q.screen != ScreenQuiz {
		return
	}
	q.cancel = nil
	q.index++
	if q.index < len(q.items) {
		q.renderItem()
		return
	}
	q.finish()
}

func (q *Session) renderItem() {
	q.stopAdvance()
	q.feedback = nil
	q.locked = false
	q.announcement = fmt.Sprintf("Statement %d of %d.", q.index+1, len(q.items))
}

func (q *Session) finish() {
	q.stopAdvance()
	if q.screen == ScreenResults {
		return
	}
	q.screen = ScreenResults
	q.feedback = nil
	q.announcement = fmt.Sprintf("Quiz finished. Your score is %d out of %d.", q.score, len(q.items))
	if q.onFinish != nil {
		q.onFinish(q.score, len(q.items))
	}
}

func (q *Session) view() View {
	total := len(q.items)
	answered := min(q.answered, total)
	v := View{
		Screen:          q.screen,
		Index:           q.index,
		Total:           total,
		Score:           q.score,
		Answered:        answered,
		Progress:        fmt.Sprintf("%d/%d", answered, total),
		ProgressPercent: float64(answered) / float64(total) * 100,
		Locked:          q.locked,
		Announcement:    q.announcement,
		Sound:           q.sound,
	}
	switch q.screen {
	case ScreenQuiz:
		if q.index < total {
			v.Statement = q.items[q.index].Text
		}
		if q.feedback != nil {
			fb := *q.feedback
			v.Feedback = &fb
		}
	case ScreenResults:
		v.FinalScore = fmt.Sprintf("%d/%d", q.score, total)
		v.Message = ResultMessage(q.score)
	}
	return v
}

func buildFeedback(correct bool, item Item) *Feedback {
	if correct {
		return &Feedback{Correct: true, Icon: "✓", Title: "Correct!", Explain: item.Explain}
	}
	return &Feedback{
		Icon:    "✕",
		Title:   "Not quite",
		Explain: fmt.Sprintf("%s (Correct: %s)", item.Explain, item.Correct),
	}
}
