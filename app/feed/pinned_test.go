package feed

import (
	"context"
	"errors"
	"testing"
)

func metaPost(slug string, pinned, published bool) Post {
	flag := func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	}
	post := Post{
		Slug:     slug,
		Headline: slug,
		Contents: "<p>" + slug + "</p>",
		Metadata: map[string]string{
			"slug":      slug,
			"published": flag(published),
		},
	}
	if pinned {
		post.Metadata["pinned"] = "yes"
	}
	return post
}

func TestPostPinnedFlag(t *testing.T) {
	tests := []struct {
		value    string
		present  bool
		expected bool
	}{
		{"yes", true, true},
		{"true", true, true},
		{"1", true, true},
		{"", true, false},
		{"", false, false},
	}

	for _, tt := range tests {
		post := Post{Metadata: map[string]string{}}
		if tt.present {
			post.Metadata["pinned"] = tt.value
		}
		if got := post.Pinned(); got != tt.expected {
			t.Errorf("Pinned() with %q (present=%t): expected %t, got %t", tt.value, tt.present, tt.expected, got)
		}
	}
}

func TestFindPinned(t *testing.T) {
	tests := []struct {
		name     string
		posts    []Post
		expected int
		found    bool
	}{
		{"empty", nil, 0, false},
		{"first post", []Post{metaPost("a", true, true), metaPost("b", false, true)}, 0, true},
		{"later post", []Post{metaPost("a", false, true), metaPost("b", false, false), metaPost("c", true, true)}, 2, true},
		{"first of several", []Post{metaPost("a", false, true), metaPost("b", true, true), metaPost("c", true, true)}, 1, true},
		{"absent", []Post{metaPost("a", false, true), metaPost("b", false, false)}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, found := FindPinned(tt.posts)
			if found != tt.found {
				t.Fatalf("Expected found=%t, got %t", tt.found, found)
			}
			if found && idx != tt.expected {
				t.Errorf("Expected index %d, got %d", tt.expected, idx)
			}
		})
	}
}

func TestPinnedComposerPublishedUpdatesCache(t *testing.T) {
	store := newTestStore()
	composer := NewPinnedComposer(store)

	post := metaPost("key-points", true, true)
	got, err := composer.Run(context.Background(), post)
	if err != nil {
		t.Fatal(err)
	}

	if got.CachedContents != post.Contents || got.CachedHeadline != post.Headline {
		t.Errorf("Expected cached fields to echo the post, got %q / %q", got.CachedContents, got.CachedHeadline)
	}
	entry := store.pinned["key-points"]
	if entry.CachedContents != post.Contents {
		t.Errorf("Expected cache to hold '%s', got '%s'", post.Contents, entry.CachedContents)
	}
}

func TestPinnedComposerUnpublishedUsesCache(t *testing.T) {
	store := newTestStore()
	store.pinned["key-points"] = PinnedEntry{CachedContents: "<p>live</p>", CachedHeadline: "Live"}
	composer := NewPinnedComposer(store)

	post := metaPost("key-points", true, false)
	got, err := composer.Run(context.Background(), post)
	if err != nil {
		t.Fatal(err)
	}

	if got.CachedContents != "<p>live</p>" || got.CachedHeadline != "Live" {
		t.Errorf("Expected cached revision, got %q / %q", got.CachedContents, got.CachedHeadline)
	}
	if got.Contents != post.Contents {
		t.Errorf("Expected working copy to be kept, got '%s'", got.Contents)
	}
	if store.pinnedSaves != 0 {
		t.Errorf("Expected no cache writes, got %d", store.pinnedSaves)
	}
}

func TestPinnedComposerUnpublishedWithoutCache(t *testing.T) {
	store := newTestStore()
	composer := NewPinnedComposer(store)

	post := metaPost("key-points", true, false)
	got, err := composer.Run(context.Background(), post)
	if err != nil {
		t.Fatal(err)
	}

	if got.CachedContents != post.Contents || got.CachedHeadline != post.Headline {
		t.Errorf("Expected draft to be shown, got %q / %q", got.CachedContents, got.CachedHeadline)
	}
	if len(store.pinned) != 0 {
		t.Errorf("Expected cache to stay empty, got %v", store.pinned)
	}
}

func TestPinnedComposerCacheFailure(t *testing.T) {
	store := newTestStore()
	store.failCaches = true
	composer := NewPinnedComposer(store)

	for _, published := range []bool{true, false} {
		_, err := composer.Run(context.Background(), metaPost("key-points", true, published))
		if !errors.Is(err, errStoreDown) {
			t.Errorf("Expected store error (published=%t), got %v", published, err)
		}
	}
}
