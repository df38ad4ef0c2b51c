package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lysyi3m/liveblog-comb/app/feed"
)

const keyPrefix = "liveblog"

// RedisStore keeps timestamps, the pinned post cache and the snapshot in
// Redis. Entries never expire.
type RedisStore struct {
	client *redis.Client
}

type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and checks the connection.
func NewRedisStore(ctx context.Context, opts Options) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", opts.Addr, "db", opts.DB)
	return NewRedisStoreWithClient(client), nil
}

func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func timestampKey(slug string) string {
	return fmt.Sprintf("%s:timestamp:%s", keyPrefix, slug)
}

func pinnedKey(slug string) string {
	return fmt.Sprintf("%s:pinned:%s", keyPrefix, slug)
}

func snapshotKey() string {
	return fmt.Sprintf("%s:snapshot", keyPrefix)
}

func (s *RedisStore) Timestamp(ctx context.Context, slug string) (time.Time, bool, error) {
	val, err := s.client.Get(ctx, timestampKey(slug)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get timestamp for %s: %w", slug, err)
	}

	ts, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse timestamp %q: %w", val, err)
	}
	return ts, true, nil
}

// SaveTimestamp uses SETNX so the first writer wins.
func (s *RedisStore) SaveTimestamp(ctx context.Context, slug string, ts time.Time) error {
	err := s.client.SetNX(ctx, timestampKey(slug), ts.UTC().Format(time.RFC3339Nano), 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set timestamp for %s: %w", slug, err)
	}
	return nil
}

func (s *RedisStore) Pinned(ctx context.Context, slug string) (feed.PinnedEntry, bool, error) {
	val, err := s.client.Get(ctx, pinnedKey(slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return feed.PinnedEntry{}, false, nil
	}
	if err != nil {
		return feed.PinnedEntry{}, false, fmt.Errorf("failed to get pinned post %s: %w", slug, err)
	}

	var entry feed.PinnedEntry
	if err := json.Unmarshal(val, &entry); err != nil {
		return feed.PinnedEntry{}, false, fmt.Errorf("failed to decode pinned post %s: %w", slug, err)
	}
	return entry, true, nil
}

func (s *RedisStore) SavePinned(ctx context.Context, slug string, entry feed.PinnedEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal pinned post %s: %w", slug, err)
	}

	if err := s.client.Set(ctx, pinnedKey(slug), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set pinned post %s: %w", slug, err)
	}
	return nil
}

func (s *RedisStore) LoadSnapshot(ctx context.Context) (*feed.State, error) {
	val, err := s.client.Get(ctx, snapshotKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, feed.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var state feed.State
	if err := json.Unmarshal(val, &state); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &state, nil
}

// SaveSnapshot replaces the snapshot with a single SET, which readers see
// either entirely or not at all.
func (s *RedisStore) SaveSnapshot(ctx context.Context, state *feed.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.client.Set(ctx, snapshotKey(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set snapshot: %w", err)
	}
	return nil
}

// Health reports connectivity for the health endpoint.
func (s *RedisStore) Health(ctx context.Context) map[string]interface{} {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return map[string]interface{}{"connected": false, "error": err.Error()}
	}

	stats := map[string]interface{}{"connected": true}
	if dbSize, err := s.client.DBSize(ctx).Result(); err == nil {
		stats["key_count"] = dbSize
	}
	return stats
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
