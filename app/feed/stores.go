package feed

import (
	"context"
	"errors"
	"time"
)

var ErrNoSnapshot = errors.New("no liveblog snapshot available")

// TimestampCache remembers when each post slug was first seen published.
// SaveTimestamp must not overwrite an existing entry.
type TimestampCache interface {
	Timestamp(ctx context.Context, slug string) (time.Time, bool, error)
	SaveTimestamp(ctx context.Context, slug string, ts time.Time) error
}

// PinnedCache keeps the last published revision of the pinned post.
type PinnedCache interface {
	Pinned(ctx context.Context, slug string) (PinnedEntry, bool, error)
	SavePinned(ctx context.Context, slug string, entry PinnedEntry) error
}

// SnapshotStore persists the last successfully parsed state. SaveSnapshot
// replaces the stored value atomically; LoadSnapshot returns ErrNoSnapshot
// when nothing has been saved yet.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context) (*State, error)
	SaveSnapshot(ctx context.Context, state *State) error
}

// Store bundles the persistent capabilities a backend provides.
type Store interface {
	TimestampCache
	PinnedCache
	SnapshotStore
	Close() error
}
