package feed

import (
	"time"
)

// Liveblog types

type Status string

const (
	StatusBefore Status = "before"
	StatusDuring Status = "during"
	StatusAfter  Status = "after"
	StatusError  Status = "error"
)

type Author struct {
	Name string `json:"name"`
	Page string `json:"page"`
}

// AuthorRecord is one row of the authors roster.
type AuthorRecord struct {
	Initials string `json:"initials"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Page     string `json:"page"`
	Image    string `json:"image"`
}

// AuthorDirectory maps lowercased initials to roster records.
type AuthorDirectory map[string]AuthorRecord

type Post struct {
	Slug      string            `json:"slug"`
	Headline  string            `json:"headline"`
	Metadata  map[string]string `json:"metadata"`
	Authors   []Author          `json:"authors"`
	Contents  string            `json:"contents"`
	Timestamp time.Time         `json:"timestamp,omitzero"` // zero on a pinned post with no published posts

	CachedContents string `json:"cached_contents,omitempty"` // pinned post only
	CachedHeadline string `json:"cached_headline,omitempty"` // pinned post only

	Sponsorship bool `json:"sponsorship,omitempty"`
}

func (p Post) Published() bool {
	return p.Metadata["published"] == "yes"
}

// Pinned reports whether the post carries a non-empty pinned flag.
func (p Post) Pinned() bool {
	return p.Metadata["pinned"] != ""
}

// State is the parsed liveblog handed to the rendering layer.
type State struct {
	Status     Status `json:"status"`
	PinnedPost *Post  `json:"pinned_post"`
	Posts      []Post `json:"posts"`
}

// PinnedEntry is the last published revision of a pinned post.
type PinnedEntry struct {
	CachedContents string `json:"cached_contents" bson:"cached_contents"`
	CachedHeadline string `json:"cached_headline" bson:"cached_headline"`
}

// Configuration types

type Settings struct {
	Name        string              `yaml:"-"` // Derived from filename (without .yml extension)
	Title       string              `yaml:"title"`
	Description string              `yaml:"description"`
	Link        string              `yaml:"link"` // Public page embedding the liveblog
	Sponsorship SponsorshipSettings `yaml:"sponsorship"`
	Authors     AuthorSettings      `yaml:"authors"`
	Headlines   int                 `yaml:"headline_posts"`
	Timeout     int                 `yaml:"timeout"` // seconds
}

type SponsorshipSettings struct {
	Position int    `yaml:"position"` // -1 disables
	Slug     string `yaml:"slug"`
	Contents string `yaml:"contents"`
}

type AuthorSettings struct {
	DefaultName string `yaml:"default_name"`
	DefaultPage string `yaml:"default_page"`
}
