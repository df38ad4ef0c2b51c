package feed

import (
	"time"
)

// View is the feed as served to one audience.
type View struct {
	Status     Status     `json:"status"`
	PinnedPost *Post      `json:"pinned_post"`
	Posts      []Post     `json:"posts"`
	Headlines  []Headline `json:"headlines"`
	UpdatedAt  time.Time  `json:"updated_at,omitzero"`
}

type Headline struct {
	Slug     string `json:"slug"`
	Headline string `json:"headline"`
}

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run builds the public view of the state: drafts are hidden and the pinned
// post shows its last published revision. With preview set every post is
// kept and the pinned post shows its working copy.
func (f *Filterer) Run(state *State, headlines int, preview bool) View {
	view := View{
		Status:    state.Status,
		Posts:     make([]Post, 0, len(state.Posts)),
		Headlines: []Headline{},
	}

	for _, post := range state.Posts {
		if !preview && !post.Published() {
			continue
		}
		view.Posts = append(view.Posts, post)
	}

	if state.PinnedPost != nil {
		pinned := *state.PinnedPost
		if !preview {
			pinned.Contents = pinned.CachedContents
			pinned.Headline = pinned.CachedHeadline
		}
		view.PinnedPost = &pinned
		view.UpdatedAt = pinned.Timestamp
	}

	view.Headlines = f.headlines(view.Posts, headlines)
	return view
}

// Find returns the post with the given slug, looking at the pinned post too.
func (f *Filterer) Find(state *State, slug string, preview bool) (Post, bool) {
	for _, post := range state.Posts {
		if post.Slug != slug || post.Sponsorship {
			continue
		}
		if !preview && !post.Published() {
			return Post{}, false
		}
		return post, true
	}

	if pinned := state.PinnedPost; pinned != nil && pinned.Slug == slug {
		post := *pinned
		if !preview {
			post.Contents = post.CachedContents
			post.Headline = post.CachedHeadline
		}
		return post, true
	}
	return Post{}, false
}

func (f *Filterer) headlines(posts []Post, limit int) []Headline {
	result := make([]Headline, 0, limit)
	for _, post := range posts {
		if len(result) >= limit {
			break
		}
		if post.Sponsorship || !post.Published() || post.Headline == "" {
			continue
		}
		result = append(result, Headline{Slug: post.Slug, Headline: post.Headline})
	}
	return result
}
