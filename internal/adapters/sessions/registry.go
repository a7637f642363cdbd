// Package sessions keeps live activity sessions for a bounded idle time.
package sessions

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/agrisiti/agrikit/internal/domain/cue"
	"github.com/agrisiti/agrikit/pkg/logger"
	"github.com/agrisiti/agrikit/pkg/metrics"
)

// Closer is implemented by every activity session.
type Closer interface {
	Close()
}

type entry struct {
	activity  string
	learnerID string
	session   Closer
	removed   atomic.Bool // set on explicit Delete
}

// Registry maps session ids to sessions. Idle sessions expire after the TTL
// and are closed when they leave the registry.
type Registry struct {
	cache   *cache.Cache
	ttl     time.Duration
	cleanup time.Duration
	logger  logger.Logger

	mu     sync.Mutex
	counts map[string]int
}

// New creates a Registry whose sessions expire after ttl without access.
func New(ttl time.Duration, opts ...Option) *Registry {
	r := &Registry{
		ttl:     ttl,
		cleanup: time.Minute,
		logger:  logger.Nop(),
		counts:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.cache = cache.New(ttl, r.cleanup)
	r.cache.OnEvicted(r.evicted)
	return r
}

// Put stores s and returns its new id.
func (r *Registry) Put(activity, learnerID string, s Closer) string {
	id := uuid.NewString()
	r.cache.Set(id, &entry{activity: activity, learnerID: learnerID, session: s}, cache.DefaultExpiration)
	r.adjust(activity, 1)
	return id
}

// Lookup returns the session stored under id when it belongs to learnerID
// and activity. A successful lookup extends the session's lifetime. The
// refresh only lands while the entry is still present, so a session deleted
// or expired concurrently is never put back.
func (r *Registry) Lookup(activity, learnerID, id string) (Closer, error) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	e := v.(*entry)
	if e.activity != activity || e.learnerID != learnerID {
		return nil, ErrNotFound
	}
	if err := r.cache.Replace(id, e, cache.DefaultExpiration); err != nil {
		return nil, ErrNotFound
	}
	return e.session, nil
}

// Get is Lookup with the session asserted to T.
func Get[T Closer](r *Registry, activity, learnerID, id string) (T, error) {
	var zero T
	s, err := r.Lookup(activity, learnerID, id)
	if err != nil {
		return zero, err
	}
	t, ok := s.(T)
	if !ok {
		return zero, ErrNotFound
	}
	return t, nil
}

// Delete closes and forgets the session.
func (r *Registry) Delete(id string) {
	if v, ok := r.cache.Get(id); ok {
		v.(*entry).removed.Store(true)
	}
	r.cache.Delete(id)
}

// Count returns the live sessions for activity.
func (r *Registry) Count(activity string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[activity]
}

// Close closes every session.
func (r *Registry) Close() {
	for id := range r.cache.Items() {
		r.Delete(id)
	}
}

func (r *Registry) evicted(id string, v any) {
	e := v.(*entry)
	e.session.Close()
	r.adjust(e.activity, -1)
	if !e.removed.Load() {
		metrics.RecordSessionEviction(e.activity)
		r.logger.Debug(context.Background(), "session expired",
			logger.String("session_id", id), logger.String("activity", e.activity))
	}
}

func (r *Registry) adjust(activity string, delta int) {
	r.mu.Lock()
	r.counts[activity] += delta
	n := r.counts[activity]
	r.mu.Unlock()
	metrics.UpdateActiveSessions(activity, n)
}

// Live is a registered session together with the tones it has produced
// since the last response.
type Live[T Closer] struct {
	Session T
	Tones   *cue.Recorder
}

// Close implements Closer.
func (l *Live[T]) Close() { l.Session.Close() }
