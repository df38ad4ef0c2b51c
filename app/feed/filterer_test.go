package feed

import (
	"testing"
	"time"
)

func filtererState() *State {
	pinned := metaPost("key-points", true, false)
	pinned.Contents = "<p>working copy</p>"
	pinned.Headline = "Key points (editing)"
	pinned.CachedContents = "<p>live copy</p>"
	pinned.CachedHeadline = "Key points"
	pinned.Timestamp = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	sponsorship := metaPost("ad", false, true)
	sponsorship.Sponsorship = true

	return &State{
		Status:     StatusDuring,
		PinnedPost: &pinned,
		Posts: []Post{
			metaPost("draft", false, false),
			metaPost("third", false, true),
			sponsorship,
			metaPost("second", false, true),
			metaPost("first", false, true),
		},
	}
}

func TestFiltererPublicView(t *testing.T) {
	state := filtererState()

	view := NewFilterer().Run(state, 2, false)

	expected := []string{"third", "ad", "second", "first"}
	if got := slugs(view.Posts); !equalSlugs(got, expected) {
		t.Errorf("Expected posts %v, got %v", expected, got)
	}
	if view.PinnedPost.Contents != "<p>live copy</p>" || view.PinnedPost.Headline != "Key points" {
		t.Errorf("Expected pinned post to show the live copy, got %q / %q", view.PinnedPost.Contents, view.PinnedPost.Headline)
	}
	if state.PinnedPost.Contents != "<p>working copy</p>" {
		t.Error("Expected state to be left untouched")
	}
	if !view.UpdatedAt.Equal(state.PinnedPost.Timestamp) {
		t.Errorf("Expected updated at %v, got %v", state.PinnedPost.Timestamp, view.UpdatedAt)
	}

	if len(view.Headlines) != 2 {
		t.Fatalf("Expected 2 headlines, got %d", len(view.Headlines))
	}
	if view.Headlines[0].Slug != "third" || view.Headlines[1].Slug != "second" {
		t.Errorf("Expected headlines [third second], got %+v", view.Headlines)
	}
}

func TestFiltererPreview(t *testing.T) {
	state := filtererState()

	view := NewFilterer().Run(state, 10, true)

	if len(view.Posts) != len(state.Posts) {
		t.Errorf("Expected all %d posts, got %d", len(state.Posts), len(view.Posts))
	}
	if view.PinnedPost.Contents != "<p>working copy</p>" {
		t.Errorf("Expected working copy in preview, got '%s'", view.PinnedPost.Contents)
	}
	if len(view.Headlines) != 3 {
		t.Errorf("Expected 3 headlines, got %d", len(view.Headlines))
	}
}

func TestFiltererWithoutPinnedPost(t *testing.T) {
	view := NewFilterer().Run(&State{Status: StatusBefore}, 3, false)

	if view.PinnedPost != nil {
		t.Error("Expected no pinned post")
	}
	if view.Posts == nil || view.Headlines == nil {
		t.Error("Expected empty slices rather than nil")
	}
	if !view.UpdatedAt.IsZero() {
		t.Errorf("Expected zero updated at, got %v", view.UpdatedAt)
	}
}

func TestFiltererFind(t *testing.T) {
	state := filtererState()
	filterer := NewFilterer()

	tests := []struct {
		name     string
		slug     string
		preview  bool
		found    bool
		contents string
	}{
		{"published post", "second", false, true, "<p>second</p>"},
		{"draft hidden", "draft", false, false, ""},
		{"draft in preview", "draft", true, true, "<p>draft</p>"},
		{"sponsorship never found", "ad", true, false, ""},
		{"pinned live copy", "key-points", false, true, "<p>live copy</p>"},
		{"pinned working copy", "key-points", true, true, "<p>working copy</p>"},
		{"unknown", "nope", true, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post, found := filterer.Find(state, tt.slug, tt.preview)
			if found != tt.found {
				t.Fatalf("Expected found=%t, got %t", tt.found, found)
			}
			if found && post.Contents != tt.contents {
				t.Errorf("Expected contents '%s', got '%s'", tt.contents, post.Contents)
			}
		})
	}
}
