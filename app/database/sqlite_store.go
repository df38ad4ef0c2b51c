package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lysyi3m/liveblog-comb/app/feed"
)

// SQLiteStore keeps timestamps, the pinned post cache and the snapshot in a
// SQLite database.
type SQLiteStore struct {
	db *DB
}

func NewSQLiteStore(db *DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenSQLiteStore opens the database at path and applies pending migrations.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}

	if _, _, err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return NewSQLiteStore(db), nil
}

func (s *SQLiteStore) Timestamp(ctx context.Context, slug string) (time.Time, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT published_at FROM post_timestamps WHERE slug = ?
	`, slug).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get timestamp: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return ts, true, nil
}

func (s *SQLiteStore) SaveTimestamp(ctx context.Context, slug string, ts time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO post_timestamps (slug, published_at)
		VALUES (?, ?)
		ON CONFLICT (slug) DO NOTHING
	`, slug, ts.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save timestamp: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Pinned(ctx context.Context, slug string) (feed.PinnedEntry, bool, error) {
	var entry feed.PinnedEntry
	err := s.db.QueryRowContext(ctx, `
		SELECT cached_contents, cached_headline FROM pinned_posts WHERE slug = ?
	`, slug).Scan(&entry.CachedContents, &entry.CachedHeadline)
	if errors.Is(err, sql.ErrNoRows) {
		return feed.PinnedEntry{}, false, nil
	}
	if err != nil {
		return feed.PinnedEntry{}, false, fmt.Errorf("failed to get pinned post: %w", err)
	}
	return entry, true, nil
}

func (s *SQLiteStore) SavePinned(ctx context.Context, slug string, entry feed.PinnedEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pinned_posts (slug, cached_contents, cached_headline, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (slug) DO UPDATE SET
			cached_contents = excluded.cached_contents,
			cached_headline = excluded.cached_headline,
			updated_at = excluded.updated_at
	`, slug, entry.CachedContents, entry.CachedHeadline, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save pinned post: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadSnapshot(ctx context.Context) (*feed.State, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM snapshots WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, feed.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var state feed.State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &state, nil
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, state *feed.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, state, saved_at)
		VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			state = excluded.state,
			saved_at = excluded.saved_at
	`, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Health(ctx context.Context) map[string]interface{} {
	if err := s.db.PingContext(ctx); err != nil {
		return map[string]interface{}{"connected": false, "error": err.Error()}
	}

	stats := map[string]interface{}{"connected": true}
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM post_timestamps`).Scan(&count); err == nil {
		stats["timestamps"] = count
	}
	return stats
}
