package snapshot

import (
	"context"
	"time"

	"github.com/lysyi3m/liveblog-comb/app/feed"
)

const lockRetryDelay = 50 * time.Millisecond

// Combined serves the caches from a backend store and the snapshot from a
// file.
type Combined struct {
	feed.Store
	files *FileStore
}

func Combine(base feed.Store, files *FileStore) *Combined {
	return &Combined{Store: base, files: files}
}

func (c *Combined) LoadSnapshot(ctx context.Context) (*feed.State, error) {
	return c.files.LoadSnapshot(ctx)
}

func (c *Combined) SaveSnapshot(ctx context.Context, state *feed.State) error {
	return c.files.SaveSnapshot(ctx, state)
}
