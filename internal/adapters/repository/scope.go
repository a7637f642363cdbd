package repository

import (
	"context"
	"errors"

	"github.com/agrisiti/agrikit/internal/domain/localstore"
	"github.com/agrisiti/agrikit/pkg/logger"
)

// scoped adapts a Store to one learner's localstore.Storage. Read failures
// report absence and write failures are logged and dropped.
type scoped struct {
	store     Store
	learnerID string
	logger    logger.Logger
}

// Scope returns the localstore view of learnerID's items in store.
func Scope(store Store, learnerID string, log logger.Logger) localstore.Storage {
	if log == nil {
		log = logger.Nop()
	}
	return &scoped{store: store, learnerID: learnerID, logger: log}
}

func (s *scoped) GetItem(key string) (string, bool) {
	ctx := context.Background()
	v, err := s.store.GetItem(ctx, s.learnerID, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn(ctx, "storage read failed", s.fields(key, err)...)
		}
		return "", false
	}
	return v, true
}

func (s *scoped) SetItem(key, value string) {
	ctx := context.Background()
	if err := s.store.SetItem(ctx, s.learnerID, key, value); err != nil {
		s.logger.Warn(ctx, "storage write failed", s.fields(key, err)...)
	}
}

func (s *scoped) RemoveItem(key string) {
	ctx := context.Background()
	if err := s.store.RemoveItem(ctx, s.learnerID, key); err != nil {
		s.logger.Warn(ctx, "storage remove failed", s.fields(key, err)...)
	}
}

func (s *scoped) UpdateItem(key string, fn func(string, bool) string) {
	ctx := context.Background()
	if err := s.store.UpdateItem(ctx, s.learnerID, key, fn); err != nil {
		s.logger.Warn(ctx, "storage update failed", s.fields(key, err)...)
	}
}

func (s *scoped) fields(key string, err error) []logger.Field {
	return []logger.Field{logger.String("learner_id", s.learnerID), logger.String("key", key), logger.Error(err)}
}
