package feed

import (
	"strings"
	"testing"
)

func TestMarkerMatching(t *testing.T) {
	tests := []struct {
		name  string
		match func(string) bool
		line  string
		want  bool
	}{
		{"feed end", IsFeedEnd, "end", true},
		{"feed end uppercase with spaces", IsFeedEnd, "  END ", true},
		{"feed end inside sentence", IsFeedEnd, "the end of the day", false},
		{"post start", IsPostStart, strings.Repeat("+", 50), true},
		{"post start longer", IsPostStart, " " + strings.Repeat("+", 72) + " ", true},
		{"post start too short", IsPostStart, strings.Repeat("+", 49), false},
		{"post start with text", IsPostStart, strings.Repeat("+", 50) + " new", false},
		{"post end", IsPostEnd, strings.Repeat("-", 50), true},
		{"post end too short", IsPostEnd, strings.Repeat("-", 10), false},
		{"frontmatter", IsFrontmatterDelimiter, "---", true},
		{"frontmatter with non-breaking space", IsFrontmatterDelimiter, "---\u00a0", true},
		{"frontmatter four dashes", IsFrontmatterDelimiter, "----", false},
		{"frontmatter two dashes", IsFrontmatterDelimiter, "--", false},
		{"shortcode line", IsShortcode, `[% embed type="youtube" id="abc" %]`, true},
		{"shortcode with padding", IsShortcode, "  [%image src=x%]  ", true},
		{"shortcode inside text", IsShortcode, `Read [% internal_link slug %] now`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.match(tt.line); got != tt.want {
				t.Errorf("Expected %v for %q, got %v", tt.want, tt.line, got)
			}
		})
	}
}

func TestParseMetadataLine(t *testing.T) {
	tests := []struct {
		line      string
		wantKey   string
		wantValue string
		wantOK    bool
	}{
		{"published: YES", "published", "yes", true},
		{"Slug: Breaking-News", "slug", "breaking-news", true},
		{"authors: Jane Doe (JD), John Roe (jr)", "authors", "Jane Doe (JD), John Roe (jr)", true},
		{"link: https://example.com/a", "link", "https://example.com/a", true},
		{"empty:", "empty", "", true},
		{"no separator here", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			key, value, ok := ParseMetadataLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("Expected ok %v, got %v", tt.wantOK, ok)
			}
			if key != tt.wantKey {
				t.Errorf("Expected key %q, got %q", tt.wantKey, key)
			}
			if value != tt.wantValue {
				t.Errorf("Expected value %q, got %q", tt.wantValue, value)
			}
		})
	}
}

func TestFindInlineShortcodes(t *testing.T) {
	text := `See [% internal_link slug=one %] and [% internal_link two "Second" %], not [% embed x %].`
	matches := FindInlineShortcodes(text)

	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	if got := text[matches[0][0]:matches[0][1]]; got != "[% internal_link slug=one %]" {
		t.Errorf("Unexpected first match %q", got)
	}
	if got := text[matches[1][0]:matches[1][1]]; got != `[% internal_link two "Second" %]` {
		t.Errorf("Unexpected second match %q", got)
	}
}

func TestParseAuthorEntry(t *testing.T) {
	tests := []struct {
		entry        string
		wantName     string
		wantInitials string
		wantOK       bool
	}{
		{"Jane Doe (jd)", "Jane Doe", "jd", true},
		{"Ana María Núñez (AMN)", "Ana María Núñez", "AMN", true},
		{"Jane Doe (j)", "", "", false},
		{"Jane Doe (jdoe)", "", "", false},
		{"Staff writer", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			name, initials, ok := ParseAuthorEntry(tt.entry)
			if ok != tt.wantOK {
				t.Fatalf("Expected ok %v, got %v", tt.wantOK, ok)
			}
			if name != tt.wantName {
				t.Errorf("Expected name %q, got %q", tt.wantName, name)
			}
			if initials != tt.wantInitials {
				t.Errorf("Expected initials %q, got %q", tt.wantInitials, initials)
			}
		})
	}
}
