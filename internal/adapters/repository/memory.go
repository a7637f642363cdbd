package repository

import (
	"context"
	"maps"
	"sync"

	"github.com/agrisiti/agrikit/internal/domain/model"
)

// MemoryStore keeps everything in process. Contents are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	items   map[string]map[string]string
	journal map[string][]model.Event
	ids     map[string]struct{}
	closed  bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(_ ...Option) *MemoryStore {
	return &MemoryStore{
		items:   make(map[string]map[string]string),
		journal: make(map[string][]model.Event),
		ids:     make(map[string]struct{}),
	}
}

func (s *MemoryStore) GetItem(_ context.Context, learnerID, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", ErrClosed
	}
	v, ok := s.items[learnerID][key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) SetItem(_ context.Context, learnerID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.bucket(learnerID)[key] = value
	return nil
}

func (s *MemoryStore) RemoveItem(_ context.Context, learnerID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.items[learnerID], key)
	return nil
}

func (s *MemoryStore) UpdateItem(_ context.Context, learnerID, key string, fn func(string, bool) string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	b := s.bucket(learnerID)
	cur, ok := b[key]
	b[key] = fn(cur, ok)
	return nil
}

func (s *MemoryStore) bucket(learnerID string) map[string]string {
	b, ok := s.items[learnerID]
	if !ok {
		b = make(map[string]string)
		s.items[learnerID] = b
	}
	return b
}

func (s *MemoryStore) AppendJournal(_ context.Context, event model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, dup := s.ids[event.EventID]; dup {
		return ErrDuplicateEvent
	}
	s.ids[event.EventID] = struct{}{}
	event.Detail = maps.Clone(event.Detail)
	s.journal[event.LearnerID] = append(s.journal[event.LearnerID], event)
	return nil
}

func (s *MemoryStore) Journal(_ context.Context, learnerID string, limit int) ([]model.Event, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	events := s.journal[learnerID]
	out := make([]model.Event, 0, min(limit, len(events)))
	for i := len(events) - 1; i >= 0 && len(out) < limit; i-- {
		e := events[i]
		e.Detail = maps.Clone(e.Detail)
		out = append(out, e)
	}
	return out, nil
}

func (s *MemoryStore) JournalCount(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
