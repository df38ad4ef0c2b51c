package tasks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/liveblog-comb/app/cfg"
	"github.com/lysyi3m/liveblog-comb/app/database"
	"github.com/lysyi3m/liveblog-comb/app/feed"
)

var testDocument = "<html><body>" +
	"<p>" + strings.Repeat("+", 50) + "</p>" +
	"<h1>Kick-off</h1><p>---</p><p>slug: kick-off</p><p>published: yes</p><p>authors: Jane Doe (jd)</p><p>---</p>" +
	"<p>We are under way.</p>" +
	"<p>" + strings.Repeat("-", 50) + "</p>" +
	"</body></html>"

func writeDocument(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "liveblog.html")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestParser(settings feed.SettingsProvider) *feed.Parser {
	store := database.NewMemoryStore()
	return feed.NewParser(feed.ParserConfig{
		Timestamps: store,
		Pinned:     store,
		Snapshots:  store,
		Settings:   settings,
	})
}

func newTestMemo(t *testing.T) *Memo {
	t.Helper()
	memo, err := NewMemo(4, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return memo
}

func setupTestConfig(t *testing.T, args ...string) {
	t.Helper()
	// Clear os.Args to prevent config parsing from failing
	oldArgs := os.Args
	os.Args = append([]string{"test"}, args...)
	defer func() { os.Args = oldArgs }()

	t.Setenv("TZ", "UTC")

	if _, err := cfg.Load(); err != nil {
		t.Fatal(err)
	}
}
