package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// SettingsProvider supplies the editorial settings in effect for a parse.
type SettingsProvider interface {
	GetSettings() Settings
}

// StaticSettings is a SettingsProvider that never changes.
type StaticSettings Settings

func (s StaticSettings) GetSettings() Settings {
	return Settings(s)
}

type ParserConfig struct {
	Timestamps  TimestampCache
	Pinned      PinnedCache
	Snapshots   SnapshotStore
	Settings    SettingsProvider
	Shortcodes  ShortcodeRenderer // DefaultShortcodes when nil
	AuthorsPath string            // roster loaded when Run gets no directory
	Now         func() time.Time  // time.Now when nil
}

type Parser struct {
	timestamps  TimestampCache
	snapshots   SnapshotStore
	settings    SettingsProvider
	shortcodes  ShortcodeRenderer
	composer    *PinnedComposer
	authorsPath string
	now         func() time.Time
}

func NewParser(config ParserConfig) *Parser {
	p := &Parser{
		timestamps:  config.Timestamps,
		snapshots:   config.Snapshots,
		settings:    config.Settings,
		shortcodes:  config.Shortcodes,
		composer:    NewPinnedComposer(config.Pinned),
		authorsPath: config.AuthorsPath,
		now:         config.Now,
	}
	if p.shortcodes == nil {
		p.shortcodes = NewDefaultShortcodes()
	}
	if p.settings == nil {
		p.settings = StaticSettings(DefaultSettings())
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Run parses the document into a feed state. When parsing fails, the last
// saved snapshot is returned with StatusError instead. An error is returned
// only when there is no snapshot to fall back to.
func (p *Parser) Run(ctx context.Context, document string, authors AuthorDirectory) (*State, error) {
	start := time.Now()

	state, err := p.parse(ctx, document, authors)
	if err == nil {
		if saveErr := p.snapshots.SaveSnapshot(ctx, state); saveErr != nil {
			slog.Error("Failed to save liveblog snapshot", "error", saveErr)
		}
		slog.Info("Liveblog parsed",
			"status", state.Status,
			"posts", len(state.Posts),
			"published", countPublished(state.Posts),
			"pinned", state.PinnedPost != nil,
			"duration", time.Since(start))
		return state, nil
	}

	slog.Error("Failed to parse liveblog, falling back to snapshot", "error", err)

	snapshot, loadErr := p.snapshots.LoadSnapshot(ctx)
	if loadErr != nil {
		if errors.Is(loadErr, ErrNoSnapshot) {
			return nil, fmt.Errorf("parse failed with no snapshot to fall back to: %w: %w", loadErr, err)
		}
		return nil, fmt.Errorf("failed to load snapshot after parse failure: %w", loadErr)
	}

	snapshot.Status = StatusError
	return snapshot, nil
}

func (p *Parser) parse(ctx context.Context, document string, authors AuthorDirectory) (state *State, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while parsing liveblog: %v", r)
		}
	}()

	settings := p.settings.GetSettings()
	if authors == nil {
		authors = LoadAuthors(p.authorsPath)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	hint, groups := Segment(doc)

	defaultAuthor := Author{Name: settings.Authors.DefaultName, Page: settings.Authors.DefaultPage}
	extractor := NewExtractor(authors, p.timestamps, p.shortcodes, defaultAuthor, p.now)

	posts := make([]Post, 0, len(groups))
	for i, group := range groups {
		post, err := extractor.Run(ctx, group)
		if err != nil {
			return nil, fmt.Errorf("failed to extract post %d: %w", i+1, err)
		}
		posts = append(posts, post)
	}

	var pinned *Post
	if idx, ok := FindPinned(posts); ok {
		composed, err := p.composer.Run(ctx, posts[idx])
		if err != nil {
			return nil, err
		}
		pinned = &composed
		posts = append(posts[:idx:idx], posts[idx+1:]...)
	} else {
		slog.Error("Did not find pinned post", "posts", len(posts))
	}

	ordered, status := NewAssembler(settings.Sponsorship).Run(posts, pinned, hint)
	return &State{
		Status:     status,
		PinnedPost: pinned,
		Posts:      ordered,
	}, nil
}

func countPublished(posts []Post) int {
	count := 0
	for _, post := range posts {
		if post.Published() && !post.Sponsorship {
			count++
		}
	}
	return count
}
