package feed

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	feedEndRegex     = regexp.MustCompile(`(?i)^\s*end\s*$`)
	postStartRegex   = regexp.MustCompile(`^\s*\+{50,}\s*$`)
	postEndRegex     = regexp.MustCompile(`^\s*-{50,}\s*$`)
	frontmatterRegex = regexp.MustCompile(`^\s*-{3}\s*$`)
	metadataRegex    = regexp.MustCompile(`(?s)^(.*?):(.*)$`)
	shortcodeRegex   = regexp.MustCompile(`(?s)^\s*\[%\s*.*\s*%\]\s*$`)
	inlineLinkRegex  = regexp.MustCompile(`(?s)\[%\s*internal_link\s+.*?\s*%\]`)
	initialsRegex    = regexp.MustCompile(`^(.*)\(([\p{L}\p{N}_]{2,3})\)\s*$`)
)

// normalizeLine folds compatibility characters (non-breaking spaces, full-width
// punctuation) that word-processor exports put into otherwise plain lines.
func normalizeLine(text string) string {
	return norm.NFKC.String(text)
}

func IsFeedEnd(line string) bool {
	return feedEndRegex.MatchString(normalizeLine(line))
}

func IsPostStart(line string) bool {
	return postStartRegex.MatchString(normalizeLine(line))
}

func IsPostEnd(line string) bool {
	return postEndRegex.MatchString(normalizeLine(line))
}

func IsFrontmatterDelimiter(line string) bool {
	return frontmatterRegex.MatchString(normalizeLine(line))
}

func IsShortcode(line string) bool {
	return shortcodeRegex.MatchString(normalizeLine(line))
}

// ParseMetadataLine splits a "key: value" line at its first colon. Keys are
// lowercased; values are lowercased too unless the key is "authors".
func ParseMetadataLine(line string) (key, value string, ok bool) {
	m := metadataRegex.FindStringSubmatch(normalizeLine(line))
	if m == nil {
		return "", "", false
	}

	key = strings.ToLower(strings.TrimSpace(m[1]))
	value = strings.TrimSpace(m[2])
	if key != "authors" {
		value = strings.ToLower(value)
	}
	return key, value, true
}

// FindInlineShortcodes returns the index pairs of internal_link shortcodes
// embedded in free text.
func FindInlineShortcodes(text string) [][]int {
	return inlineLinkRegex.FindAllStringIndex(text, -1)
}

// ParseAuthorEntry matches "Full Name (XX)" and returns the name and initials.
func ParseAuthorEntry(entry string) (name, initials string, ok bool) {
	m := initialsRegex.FindStringSubmatch(entry)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), m[2], true
}
