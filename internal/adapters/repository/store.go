// Package repository persists learner key/value state and the activity journal.
package repository

import (
	"context"

	"github.com/agrisiti/agrikit/internal/domain/model"
)

// MaxJournalLimit caps a single journal read.
const MaxJournalLimit = 500

// Store provides learner-scoped storage and the append-only activity journal.
type Store interface {
	// GetItem returns the value stored under key for learnerID.
	// Returns ErrNotFound if the key is unknown.
	GetItem(ctx context.Context, learnerID, key string) (string, error)
	// SetItem writes value under key, replacing any previous value.
	SetItem(ctx context.Context, learnerID, key, value string) error
	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, learnerID, key string) error
	// UpdateItem atomically replaces the value under key with fn(current, ok).
	UpdateItem(ctx context.Context, learnerID, key string, fn func(current string, ok bool) string) error

	// AppendJournal records an event. Returns ErrDuplicateEvent if the
	// event id was already journaled.
	AppendJournal(ctx context.Context, event model.Event) error
	// Journal returns up to limit events for learnerID, newest first.
	Journal(ctx context.Context, learnerID string, limit int) ([]model.Event, error)
	// JournalCount returns the number of journaled events across learners.
	JournalCount(ctx context.Context) int

	Close() error
}

func checkLimit(limit int) error {
	if limit <= 0 || limit > MaxJournalLimit {
		return ErrInvalidLimit
	}
	return nil
}
