package feed

import (
	"fmt"
	"html"
	"log/slog"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/microcosm-cc/bluemonday"
)

const DefaultExcerptLength = 280

// ContentExtractor builds the plain-text excerpt shown on a post's share page.
type ContentExtractor struct {
	policy *bluemonday.Policy
}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{
		policy: bluemonday.StrictPolicy(),
	}
}

func (e *ContentExtractor) Run(post Post, maxLength int) (string, error) {
	if strings.TrimSpace(post.Contents) == "" {
		return "", fmt.Errorf("post %q has no contents", post.Slug)
	}
	if maxLength <= 0 {
		maxLength = DefaultExcerptLength
	}

	text := e.readable(post)
	if text == "" {
		text = e.stripped(post.Contents)
	}
	if text == "" {
		return "", fmt.Errorf("no text extracted from post %q", post.Slug)
	}

	return truncateText(text, maxLength), nil
}

func (e *ContentExtractor) readable(post Post) string {
	page := fmt.Sprintf("<html><head><title>%s</title></head><body><article>%s</article></body></html>",
		html.EscapeString(post.Headline), post.Contents)

	article, err := readability.FromReader(strings.NewReader(page), nil)
	if err != nil {
		slog.Debug("Readability could not process post", "slug", post.Slug, "error", err)
		return ""
	}

	var buf strings.Builder
	if err := article.RenderText(&buf); err != nil {
		slog.Debug("Readability could not render post text", "slug", post.Slug, "error", err)
		return ""
	}
	return strings.Join(strings.Fields(buf.String()), " ")
}

func (e *ContentExtractor) stripped(contents string) string {
	text := html.UnescapeString(e.policy.Sanitize(contents))
	return strings.Join(strings.Fields(text), " ")
}

// truncateText cuts text to at most maxLength runes, preferring a word boundary.
func truncateText(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}

	cut := string(runes[:maxLength])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:.") + "…"
}
