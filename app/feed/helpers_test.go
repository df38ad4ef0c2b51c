package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

var (
	postStartLine = strings.Repeat("+", 50)
	postEndLine   = strings.Repeat("-", 50)
)

// testStore is an in-memory Store with switchable failures.
type testStore struct {
	mu         sync.Mutex
	timestamps map[string]time.Time
	pinned     map[string]PinnedEntry
	snapshot   []byte

	timestampSaves int
	pinnedSaves    int
	failCaches     bool
	failSnapshots  bool
	precision      time.Duration // timestamps are truncated to it on save when set
}

func newTestStore() *testStore {
	return &testStore{
		timestamps: make(map[string]time.Time),
		pinned:     make(map[string]PinnedEntry),
	}
}

var errStoreDown = errors.New("store unavailable")

func (s *testStore) Timestamp(_ context.Context, slug string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCaches {
		return time.Time{}, false, errStoreDown
	}
	ts, ok := s.timestamps[slug]
	return ts, ok, nil
}

func (s *testStore) SaveTimestamp(_ context.Context, slug string, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCaches {
		return errStoreDown
	}
	s.timestampSaves++
	if s.precision > 0 {
		ts = ts.Truncate(s.precision)
	}
	if _, ok := s.timestamps[slug]; !ok {
		s.timestamps[slug] = ts
	}
	return nil
}

func (s *testStore) Pinned(_ context.Context, slug string) (PinnedEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCaches {
		return PinnedEntry{}, false, errStoreDown
	}
	entry, ok := s.pinned[slug]
	return entry, ok, nil
}

func (s *testStore) SavePinned(_ context.Context, slug string, entry PinnedEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCaches {
		return errStoreDown
	}
	s.pinnedSaves++
	s.pinned[slug] = entry
	return nil
}

func (s *testStore) LoadSnapshot(_ context.Context) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSnapshots {
		return nil, errStoreDown
	}
	if s.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	var state State
	if err := json.Unmarshal(s.snapshot, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *testStore) SaveSnapshot(_ context.Context, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSnapshots {
		return errStoreDown
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.snapshot = data
	return nil
}

func (s *testStore) Close() error {
	return nil
}

var _ Store = (*testStore)(nil)

// testClock returns a fixed instant that tests can move forward.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testPost struct {
	headline string
	metadata []string // "key: value" lines
	body     []string // raw HTML nodes
}

func (p testPost) html() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>%s</p>\n", postStartLine)
	if p.headline != "" {
		fmt.Fprintf(&b, "<h1>%s</h1>\n", p.headline)
	}
	b.WriteString("<p>---</p>\n")
	for _, line := range p.metadata {
		fmt.Fprintf(&b, "<p>%s</p>\n", line)
	}
	b.WriteString("<p>---</p>\n")
	for _, node := range p.body {
		b.WriteString(node)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "<p>%s</p>\n", postEndLine)
	return b.String()
}

func buildDocument(posts ...testPost) string {
	var b strings.Builder
	b.WriteString("<html><head><title>Liveblog</title></head><body>\n")
	b.WriteString("<p>Editors: keep the pinned post first.</p>\n")
	for _, post := range posts {
		b.WriteString(post.html())
	}
	b.WriteString("</body></html>")
	return b.String()
}

func pinnedPost(published bool, headline, body string) testPost {
	flag := "no"
	if published {
		flag = "yes"
	}
	return testPost{
		headline: headline,
		metadata: []string{"slug: key-points", "pinned: yes", "published: " + flag},
		body:     []string{"<p>" + body + "</p>"},
	}
}

func publishedPost(slug, headline string) testPost {
	return testPost{
		headline: headline,
		metadata: []string{"slug: " + slug, "published: yes", "authors: Jane Doe (jd)"},
		body:     []string{"<p>" + headline + " body</p>"},
	}
}

func draftPost(slug, headline string) testPost {
	return testPost{
		headline: headline,
		metadata: []string{"slug: " + slug, "published: no", "authors: Jane Doe (jd)"},
		body:     []string{"<p>" + headline + " draft</p>"},
	}
}

func testSettings(position int) Settings {
	settings := DefaultSettings()
	settings.Sponsorship.Position = position
	settings.Authors.DefaultPage = "https://news.example.com"
	return settings
}

func newTestParser(store *testStore, clock *testClock, settings Settings) *Parser {
	return NewParser(ParserConfig{
		Timestamps: store,
		Pinned:     store,
		Snapshots:  store,
		Settings:   StaticSettings(settings),
		Now:        clock.Now,
	})
}

func writeSettings(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
