package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agrisiti/agrikit/internal/domain/model"
	"github.com/agrisiti/agrikit/pkg/logger"
	"github.com/agrisiti/agrikit/pkg/metrics"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists learner state and the journal in a single SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	logger logger.Logger
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := newSettings(opts)
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("repository: create dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("repository: open %s: %w", path, err)
	}
	// one connection keeps UpdateItem's read-modify-write serialised
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, logger: s.logger}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.logger.Info(ctx, "sqlite store opened", logger.String("path", path))
	return store, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS learner_items (
			learner_id TEXT NOT NULL,
			item_key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY(learner_id, item_key)
		);`,
		`CREATE TABLE IF NOT EXISTS activity_journal (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL UNIQUE,
			learner_id TEXT NOT NULL,
			activity TEXT NOT NULL,
			kind TEXT NOT NULL,
			score REAL NOT NULL DEFAULT 0,
			detail TEXT NOT NULL DEFAULT '{}',
			ts TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_journal_learner ON activity_journal(learner_id, seq);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("repository: init schema: %w", err)
		}
	}
	return nil
}

// observe records latency for op and counts err when non-nil.
func observe(op string, start time.Time, err error) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
	if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrDuplicateEvent) {
		metrics.RecordStoreError(op)
	}
}

func (s *SQLiteStore) GetItem(ctx context.Context, learnerID, key string) (value string, err error) {
	defer func(start time.Time) { observe("get", start, err) }(time.Now())

	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM learner_items WHERE learner_id = ? AND item_key = ?`,
		learnerID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("repository: get %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) SetItem(ctx context.Context, learnerID, key, value string) (err error) {
	defer func(start time.Time) { observe("set", start, err) }(time.Now())

	if err = upsertItem(ctx, s.db, learnerID, key, value); err != nil {
		return fmt.Errorf("repository: set %s: %w", key, err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertItem(ctx context.Context, db execer, learnerID, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO learner_items(learner_id, item_key, value, updated_at) VALUES(?,?,?,?)
		 ON CONFLICT(learner_id, item_key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		learnerID, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) RemoveItem(ctx context.Context, learnerID, key string) (err error) {
	defer func(start time.Time) { observe("remove", start, err) }(time.Now())

	if _, err = s.db.ExecContext(ctx,
		`DELETE FROM learner_items WHERE learner_id = ? AND item_key = ?`, learnerID, key); err != nil {
		return fmt.Errorf("repository: remove %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) UpdateItem(ctx context.Context, learnerID, key string, fn func(string, bool) string) (err error) {
	defer func(start time.Time) { observe("update", start, err) }(time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: update %s: %w", key, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var cur string
	ok := true
	err = tx.QueryRowContext(ctx,
		`SELECT value FROM learner_items WHERE learner_id = ? AND item_key = ?`,
		learnerID, key).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		ok = false
	case err != nil:
		return fmt.Errorf("repository: update %s: %w", key, err)
	}
	if err = upsertItem(ctx, tx, learnerID, key, fn(cur, ok)); err != nil {
		return fmt.Errorf("repository: update %s: %w", key, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("repository: update %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) AppendJournal(ctx context.Context, event model.Event) (err error) {
	defer func(start time.Time) { observe("append", start, err) }(time.Now())

	detail, err := json.Marshal(event.Detail)
	if err != nil {
		return fmt.Errorf("repository: encode detail: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO activity_journal(event_id, learner_id, activity, kind, score, detail, ts)
		 VALUES(?,?,?,?,?,?,?) ON CONFLICT(event_id) DO NOTHING`,
		event.EventID, event.LearnerID, event.Activity, event.Kind, event.Score,
		string(detail), event.TS.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("repository: append %s: %w", event.EventID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDuplicateEvent
	}
	return nil
}

func (s *SQLiteStore) Journal(ctx context.Context, learnerID string, limit int) (events []model.Event, err error) {
	if err = checkLimit(limit); err != nil {
		return nil, err
	}
	defer func(start time.Time) { observe("journal", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, learner_id, activity, kind, score, detail, ts
		 FROM activity_journal WHERE learner_id = ? ORDER BY seq DESC LIMIT ?`,
		learnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("repository: journal: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e      model.Event
			detail string
			ts     string
		)
		if err = rows.Scan(&e.EventID, &e.LearnerID, &e.Activity, &e.Kind, &e.Score, &detail, &ts); err != nil {
			return nil, fmt.Errorf("repository: journal scan: %w", err)
		}
		if detail != "" && detail != "null" {
			if jerr := json.Unmarshal([]byte(detail), &e.Detail); jerr != nil {
				s.logger.Warn(ctx, "corrupt journal detail", logger.String("event_id", e.EventID), logger.Error(jerr))
			}
		}
		e.TS, _ = time.Parse(time.RFC3339Nano, ts)
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: journal: %w", err)
	}
	return events, nil
}

func (s *SQLiteStore) JournalCount(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activity_journal`).Scan(&n); err != nil {
		s.logger.Warn(ctx, "journal count failed", logger.Error(err))
		return 0
	}
	return n
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
