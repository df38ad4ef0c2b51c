package feed

import (
	"context"
	"fmt"
	"log/slog"
)

// FindPinned returns the index of the pinned post. The first post is checked
// first since that is where editors keep it; the rest of the list is scanned
// only when it is not there.
func FindPinned(posts []Post) (int, bool) {
	if len(posts) == 0 {
		return 0, false
	}
	if posts[0].Pinned() {
		return 0, true
	}

	for i := 1; i < len(posts); i++ {
		if posts[i].Pinned() {
			slog.Warn("Pinned post is not the first post of the document", "slug", posts[i].Slug, "index", i)
			return i, true
		}
	}
	return 0, false
}

type PinnedComposer struct {
	cache PinnedCache
}

func NewPinnedComposer(cache PinnedCache) *PinnedComposer {
	return &PinnedComposer{cache: cache}
}

// Run fills the cached fields of the pinned post. A published pinned post
// advances the cache; an unpublished one shows the last cached revision, or
// its own draft when nothing was cached yet.
func (c *PinnedComposer) Run(ctx context.Context, post Post) (Post, error) {
	if post.Published() {
		entry := PinnedEntry{
			CachedContents: post.Contents,
			CachedHeadline: post.Headline,
		}
		if err := c.cache.SavePinned(ctx, post.Slug, entry); err != nil {
			return Post{}, fmt.Errorf("failed to save pinned post %q: %w", post.Slug, err)
		}
		post.CachedContents = entry.CachedContents
		post.CachedHeadline = entry.CachedHeadline
		slog.Debug("Pinned post cached", "slug", post.Slug)
		return post, nil
	}

	entry, found, err := c.cache.Pinned(ctx, post.Slug)
	if err != nil {
		return Post{}, fmt.Errorf("failed to read pinned post %q: %w", post.Slug, err)
	}
	if !found {
		slog.Info("No cached pinned post yet, using draft", "slug", post.Slug)
		entry = PinnedEntry{
			CachedContents: post.Contents,
			CachedHeadline: post.Headline,
		}
	}

	post.CachedContents = entry.CachedContents
	post.CachedHeadline = entry.CachedHeadline
	return post, nil
}
