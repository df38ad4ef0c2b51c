package feed

import (
	"log/slog"
	"sort"
	"time"
)

const SponsorshipDisabled = -1

type Assembler struct {
	sponsorship SponsorshipSettings
}

func NewAssembler(sponsorship SponsorshipSettings) *Assembler {
	return &Assembler{sponsorship: sponsorship}
}

// Run orders the posts newest first, injects the sponsorship post and derives
// the feed status. The pinned post, when present, gets the feed's last
// updated time as its timestamp. The input slice is not modified.
// A document without any post is "before" whatever the hint says.
func (a *Assembler) Run(posts []Post, pinned *Post, hint Status) ([]Post, Status) {
	if len(posts) == 0 && pinned == nil {
		return []Post{}, StatusBefore
	}

	ordered := make([]Post, len(posts))
	copy(ordered, posts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.After(ordered[j].Timestamp)
	})

	ordered = a.injectSponsorship(ordered)

	if pinned != nil {
		pinned.Timestamp = lastUpdated(ordered)
	}

	return ordered, deriveStatus(ordered, hint)
}

// injectSponsorship inserts the sponsorship post right after the post at which
// the running count of published posts reaches the configured position. When
// that post is the last one, the sponsorship post ends the list.
func (a *Assembler) injectSponsorship(posts []Post) []Post {
	position := a.sponsorship.Position
	if position < 0 {
		return posts
	}

	published := 0
	for i, post := range posts {
		if post.Published() {
			published++
		}
		if published < position {
			continue
		}

		sponsorship := a.sponsorshipPost(post.Timestamp)
		result := make([]Post, 0, len(posts)+1)
		result = append(result, posts[:i+1]...)
		result = append(result, sponsorship)
		result = append(result, posts[i+1:]...)
		slog.Debug("Sponsorship post injected", "index", i+1, "published_before", published)
		return result
	}

	slog.Debug("Not enough published posts for sponsorship", "published", published, "position", position)
	return posts
}

// sponsorshipPost shares the timestamp of the post it follows so the list
// stays sorted.
func (a *Assembler) sponsorshipPost(ts time.Time) Post {
	return Post{
		Slug:     a.sponsorship.Slug,
		Contents: a.sponsorship.Contents,
		Metadata: map[string]string{
			"published": "yes",
			"slug":      a.sponsorship.Slug,
		},
		Timestamp:   ts,
		Sponsorship: true,
	}
}

func lastUpdated(posts []Post) time.Time {
	for _, post := range posts {
		if post.Published() && !post.Sponsorship {
			return post.Timestamp
		}
	}
	return time.Time{}
}

func deriveStatus(posts []Post, hint Status) Status {
	if hint == StatusAfter {
		return StatusAfter
	}
	for _, post := range posts {
		if post.Published() && !post.Sponsorship {
			return StatusDuring
		}
	}
	return StatusBefore
}
