package triviacache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed trivia answer cache keyed by (title, model).
type Store struct {
	db   *sql.DB
	path string
	ttl  time.Duration
	now  func() time.Time
}

// Option customizes the store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open creates or opens the cache at path. A ttl <= 0 keeps entries forever.
func Open(path string, ttl time.Duration, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	// modernc applies _pragma parameters on every new connection.
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := migrate(context.Background(), db, path); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle. It is safe on a nil store.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// TTL returns the configured entry lifetime; zero means entries never expire.
func (s *Store) TTL() time.Duration { return max(s.ttl, 0) }

// Get returns a fresh cached answer. Titles are matched after trimming spaces.
func (s *Store) Get(ctx context.Context, title, model string) (string, bool, error) {
	var answer string
	var created int64
	err := withBusyRetry(ctx, func() error {
		row := s.db.QueryRowContext(ctx, `SELECT answer, created_at FROM trivia WHERE title = ? AND model = ?`,
			strings.TrimSpace(title), model)
		return row.Scan(&answer, &created)
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("read trivia cache: %w", err)
	case s.stale(created):
		return "", false, nil
	}
	return answer, true, nil
}

// Put stores or replaces the answer for (title, model).
func (s *Store) Put(ctx context.Context, title, model, answer string) error {
	const upsert = `INSERT INTO trivia (title, model, answer, created_at) VALUES (?, ?, ?, ?)
ON CONFLICT(title, model) DO UPDATE SET answer = excluded.answer, created_at = excluded.created_at`
	err := withBusyRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, upsert, strings.TrimSpace(title), model, answer, s.now().Unix())
		return err
	})
	if err != nil {
		return fmt.Errorf("write trivia cache: %w", err)
	}
	return nil
}

// Purge removes expired entries and reports how many were deleted.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	var removed int64
	err := withBusyRetry(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM trivia WHERE created_at <= ?`, s.now().Add(-s.ttl).Unix())
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("purge trivia cache: %w", err)
	}
	return removed, nil
}

// Count returns the number of stored entries, expired or not.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trivia`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count trivia cache: %w", err)
	}
	return n, nil
}

func (s *Store) stale(created int64) bool {
	return s.ttl > 0 && !s.now().Before(time.Unix(created, 0).Add(s.ttl))
}
