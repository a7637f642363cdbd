// Package localstore defines the learner-scoped, string-valued key/value
// contract the activities persist through. It mirrors browser local storage:
// reads of missing or unreadable keys report absence, writes are synchronous
// and last-write-wins.
package localstore

import (
	"encoding/json"
	"sync"
)

// Keys written by the activities.
const (
	KeyCanvas  = "agrisiti_bmc_v1"
	KeyBadges  = "agrisiti_badges_v1"
	KeyProfile = "agrisiti_profile_v1"
	KeyHints   = "agrisiti_hints_v1"
)

// Storage is one learner's key/value space.
type Storage interface {
	// GetItem returns the value for key and whether it exists.
	GetItem(key string) (string, bool)
	// SetItem stores value under key.
	SetItem(key, value string)
	// RemoveItem deletes key; removing a missing key is a no-op.
	RemoveItem(key string)
	// UpdateItem atomically replaces the value for key with fn(current, ok).
	UpdateItem(key string, fn func(current string, ok bool) string)
}

// GetJSON decodes key into v. It reports false when the key is missing or
// the stored text is not valid JSON for v; v is left untouched in that case
// as far as encoding/json allows.
func GetJSON(s Storage, key string, v any) bool {
	raw, ok := s.GetItem(key)
	if !ok || raw == "" {
		return false
	}
	return json.Unmarshal([]byte(raw), v) == nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(s Storage, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.SetItem(key, string(b))
}

// Map is an in-process Storage.
type Map struct {
	mu    sync.Mutex
	items map[string]string
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{items: make(map[string]string)}
}

// GetItem implements Storage.
func (m *Map) GetItem(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok
}

// SetItem implements Storage.
func (m *Map) SetItem(key, value string) {
	m.mu.Lock()
	m.items[key] = value
	m.mu.Unlock()
}

// RemoveItem implements Storage.
func (m *Map) RemoveItem(key string) {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
}

// UpdateItem implements Storage.
func (m *Map) UpdateItem(key string, fn func(current string, ok bool) string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[key]
	m.items[key] = fn(cur, ok)
}
