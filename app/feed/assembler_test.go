package feed

import (
	"testing"
	"time"
)

var assemblerBase = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func timedPost(slug string, published bool, minutes int) Post {
	post := metaPost(slug, false, published)
	post.Timestamp = assemblerBase.Add(time.Duration(minutes) * time.Minute)
	return post
}

func slugs(posts []Post) []string {
	result := make([]string, 0, len(posts))
	for _, post := range posts {
		result = append(result, post.Slug)
	}
	return result
}

func equalSlugs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sponsorshipSettings(position int) SponsorshipSettings {
	return SponsorshipSettings{Position: position, Slug: "ad", Contents: "<p>Sponsored</p>"}
}

func TestAssemblerSortsNewestFirst(t *testing.T) {
	posts := []Post{
		timedPost("old", true, 0),
		timedPost("new", true, 20),
		timedPost("mid", false, 10),
	}

	ordered, _ := NewAssembler(sponsorshipSettings(SponsorshipDisabled)).Run(posts, nil, "")

	expected := []string{"new", "mid", "old"}
	if got := slugs(ordered); !equalSlugs(got, expected) {
		t.Errorf("Expected order %v, got %v", expected, got)
	}
	if posts[0].Slug != "old" {
		t.Error("Expected input slice to be left untouched")
	}
}

func TestAssemblerSortIsStable(t *testing.T) {
	posts := []Post{
		timedPost("first", true, 5),
		timedPost("second", true, 5),
		timedPost("third", true, 5),
	}

	ordered, _ := NewAssembler(sponsorshipSettings(SponsorshipDisabled)).Run(posts, nil, "")

	expected := []string{"first", "second", "third"}
	if got := slugs(ordered); !equalSlugs(got, expected) {
		t.Errorf("Expected document order %v for equal timestamps, got %v", expected, got)
	}
}

func TestAssemblerSponsorship(t *testing.T) {
	// newest first: p4, d3, p2, p1
	posts := []Post{
		timedPost("p1", true, 1),
		timedPost("p2", true, 2),
		timedPost("d3", false, 3),
		timedPost("p4", true, 4),
	}

	tests := []struct {
		name     string
		position int
		expected []string
	}{
		{"disabled", -1, []string{"p4", "d3", "p2", "p1"}},
		{"position zero", 0, []string{"p4", "ad", "d3", "p2", "p1"}},
		{"after first published", 1, []string{"p4", "ad", "d3", "p2", "p1"}},
		{"skips drafts when counting", 2, []string{"p4", "d3", "p2", "ad", "p1"}},
		{"after the last post", 3, []string{"p4", "d3", "p2", "p1", "ad"}},
		{"not enough published posts", 4, []string{"p4", "d3", "p2", "p1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ordered, _ := NewAssembler(sponsorshipSettings(tt.position)).Run(posts, nil, "")

			if got := slugs(ordered); !equalSlugs(got, tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, got)
			}

			sponsored := 0
			for i, post := range ordered {
				if !post.Sponsorship {
					continue
				}
				sponsored++
				if !post.Published() {
					t.Error("Expected sponsorship post to be published")
				}
				if post.Contents != "<p>Sponsored</p>" {
					t.Errorf("Expected sponsorship contents, got '%s'", post.Contents)
				}
				if !post.Timestamp.Equal(ordered[i-1].Timestamp) {
					t.Errorf("Expected sponsorship timestamp %v, got %v", ordered[i-1].Timestamp, post.Timestamp)
				}
			}
			if sponsored > 1 {
				t.Errorf("Expected at most one sponsorship post, got %d", sponsored)
			}
		})
	}
}

func TestAssemblerPinnedTimestamp(t *testing.T) {
	posts := []Post{
		timedPost("published", true, 5),
		timedPost("draft", false, 30),
	}
	pinned := metaPost("key-points", true, true)

	NewAssembler(sponsorshipSettings(0)).Run(posts, &pinned, "")

	expected := assemblerBase.Add(5 * time.Minute)
	if !pinned.Timestamp.Equal(expected) {
		t.Errorf("Expected pinned timestamp %v, got %v", expected, pinned.Timestamp)
	}
}

func TestAssemblerPinnedTimestampWithoutPublishedPosts(t *testing.T) {
	pinned := metaPost("key-points", true, true)

	NewAssembler(sponsorshipSettings(SponsorshipDisabled)).Run([]Post{timedPost("draft", false, 1)}, &pinned, "")

	if !pinned.Timestamp.IsZero() {
		t.Errorf("Expected zero pinned timestamp, got %v", pinned.Timestamp)
	}
}

func TestAssemblerStatus(t *testing.T) {
	tests := []struct {
		name     string
		posts    []Post
		hint     Status
		expected Status
	}{
		{"no posts", nil, "", StatusBefore},
		{"only drafts", []Post{timedPost("d", false, 1)}, "", StatusBefore},
		{"published post", []Post{timedPost("d", false, 1), timedPost("p", true, 0)}, "", StatusDuring},
		{"feed ended", []Post{timedPost("p", true, 0)}, StatusAfter, StatusAfter},
		{"feed ended without posts", nil, StatusAfter, StatusBefore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, status := NewAssembler(sponsorshipSettings(0)).Run(tt.posts, nil, tt.hint)
			if status != tt.expected {
				t.Errorf("Expected status %q, got %q", tt.expected, status)
			}
		})
	}
}
