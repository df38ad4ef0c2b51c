package feed

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gosimple/slug"
)

var ErrMissingSlug = errors.New("published post has no slug")

// section is the part of a raw post the extractor is currently reading.
// Frontmatter delimiters advance it; it never moves backwards.
type section int

const (
	sectionHeadline section = iota
	sectionMetadata
	sectionContent
)

func (s section) next() section {
	if s == sectionContent {
		return s
	}
	return s + 1
}

type Extractor struct {
	authors       AuthorDirectory
	timestamps    TimestampCache
	shortcodes    ShortcodeRenderer
	defaultAuthor Author
	now           func() time.Time
}

func NewExtractor(authors AuthorDirectory, timestamps TimestampCache, shortcodes ShortcodeRenderer,
	defaultAuthor Author, now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{
		authors:       authors,
		timestamps:    timestamps,
		shortcodes:    shortcodes,
		defaultAuthor: defaultAuthor,
		now:           now,
	}
}

// Run turns one raw post into a Post. Content problems are logged and
// degrade the affected field; errors are returned only for failures that must
// abort the whole parse (shortcode rendering, timestamp cache access).
func (e *Extractor) Run(ctx context.Context, raw rawPost) (Post, error) {
	var headlineNodes, metadataNodes, contentNodes []*goquery.Selection

	current := sectionHeadline
	for _, node := range raw {
		if IsFrontmatterDelimiter(node.Text()) {
			if current == sectionContent {
				slog.Debug("Dropping extra frontmatter delimiter inside post contents")
			}
			current = current.next()
			continue
		}

		switch current {
		case sectionHeadline:
			headlineNodes = append(headlineNodes, node)
		case sectionMetadata:
			metadataNodes = append(metadataNodes, node)
		default:
			contentNodes = append(contentNodes, node)
		}
	}

	metadata := e.extractMetadata(metadataNodes)
	rawAuthors, hasAuthors := metadata["authors"]
	delete(metadata, "authors")

	post := Post{
		Slug:     metadata["slug"],
		Headline: e.extractHeadline(headlineNodes),
		Metadata: metadata,
	}
	if post.Slug == "" && post.Published() && !post.Pinned() {
		post.Slug = slug.Make(post.Headline)
		slog.Warn("Published post has no slug, derived one from its headline", "slug", post.Slug)
	}

	contents, err := e.extractContents(contentNodes)
	if err != nil {
		return Post{}, fmt.Errorf("post %q: %w", post.Slug, err)
	}
	post.Contents = contents

	if post.Pinned() {
		return post, nil
	}

	if !hasAuthors {
		slog.Warn("Post has no authors metadata", "slug", post.Slug)
	}
	post.Authors = e.resolveAuthors(rawAuthors)

	post.Timestamp, err = e.resolveTimestamp(ctx, post)
	if err != nil {
		return Post{}, err
	}

	return post, nil
}

func (e *Extractor) extractHeadline(nodes []*goquery.Selection) string {
	headline := ""
	found := false
	for _, node := range nodes {
		if !node.Is("h1, h2, h3, h4, h5, h6") {
			slog.Warn("Unexpected node in headline, ignoring", "text", node.Text())
			continue
		}
		if found {
			slog.Warn("Extra headline found, ignoring", "text", node.Text())
			continue
		}
		headline = strings.TrimSpace(node.Text())
		found = true
	}

	if headline == "" {
		slog.Error("Did not find headline on post", "nodes", len(nodes))
	}
	return headline
}

func (e *Extractor) extractMetadata(nodes []*goquery.Selection) map[string]string {
	metadata := make(map[string]string, len(nodes))
	for _, node := range nodes {
		text := node.Text()
		key, value, ok := ParseMetadataLine(text)
		if !ok {
			slog.Error("Could not parse metadata", "text", text)
			continue
		}
		metadata[key] = value
	}
	return metadata
}

func (e *Extractor) resolveAuthors(raw string) []Author {
	var authors []Author
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, initials, ok := ParseAuthorEntry(entry)
		if !ok {
			slog.Debug("Author entry without initials", "author", entry)
			authors = append(authors, Author{Name: entry})
			continue
		}

		record, found := e.authors[strings.ToLower(initials)]
		if !found {
			slog.Warn("Did not find author in directory", "initials", initials, "name", name)
			authors = append(authors, Author{Name: name})
			continue
		}
		authors = append(authors, Author{Name: record.Name, Page: record.Page})
	}

	if len(authors) == 0 {
		authors = append(authors, e.defaultAuthor)
	}
	return authors
}

func (e *Extractor) extractContents(nodes []*goquery.Selection) (string, error) {
	var b strings.Builder
	for _, node := range nodes {
		text := node.Text()
		if IsShortcode(text) {
			rendered, err := e.shortcodes.Render(strings.TrimSpace(text))
			if err != nil {
				return "", fmt.Errorf("failed to render shortcode: %w", err)
			}
			b.WriteString(rendered)
			continue
		}

		outer, err := goquery.OuterHtml(node)
		if err != nil {
			return "", fmt.Errorf("failed to render node: %w", err)
		}
		replaced, err := e.replaceInlineShortcodes(outer)
		if err != nil {
			return "", err
		}
		b.WriteString(replaced)
	}
	return b.String(), nil
}

func (e *Extractor) replaceInlineShortcodes(markup string) (string, error) {
	matches := FindInlineShortcodes(markup)
	if len(matches) == 0 {
		return markup, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(markup[last:m[0]])
		rendered, err := e.shortcodes.Render(html.UnescapeString(markup[m[0]:m[1]]))
		if err != nil {
			return "", fmt.Errorf("failed to render inline shortcode: %w", err)
		}
		b.WriteString(rendered)
		last = m[1]
	}
	b.WriteString(markup[last:])
	return b.String(), nil
}

// resolveTimestamp keeps published posts at the instant they were first seen
// published; drafts are always "now".
func (e *Extractor) resolveTimestamp(ctx context.Context, post Post) (time.Time, error) {
	now := e.now().UTC()
	if !post.Published() {
		return now, nil
	}
	if post.Slug == "" {
		return time.Time{}, fmt.Errorf("%w (headline %q)", ErrMissingSlug, post.Headline)
	}
	ts, found, err := e.timestamps.Timestamp(ctx, post.Slug)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read timestamp for %q: %w", post.Slug, err)
	}
	if found {
		slog.Debug("Post timestamp retrieved from cache", "slug", post.Slug, "timestamp", ts)
		return ts.UTC(), nil
	}

	if err := e.timestamps.SaveTimestamp(ctx, post.Slug, now); err != nil {
		return time.Time{}, fmt.Errorf("failed to save timestamp for %q: %w", post.Slug, err)
	}

	// Backends may round the instant or keep a concurrent writer's value.
	stored, found, err := e.timestamps.Timestamp(ctx, post.Slug)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read back timestamp for %q: %w", post.Slug, err)
	}
	if !found {
		stored = now
	}
	slog.Debug("Post timestamp cached", "slug", post.Slug, "timestamp", stored)
	return stored.UTC(), nil
}
