package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/lysyi3m/liveblog-comb/app/cfg"
)

type Generator struct {
	policy *bluemonday.Policy
}

func NewGenerator() *Generator {
	return &Generator{
		policy: bluemonday.StrictPolicy(),
	}
}

// Run renders the published posts of the state as RSS 2.0. The sponsorship
// post is not part of the feed.
func (g *Generator) Run(state *State, settings Settings) (string, error) {
	if state == nil {
		return "", fmt.Errorf("state is nil")
	}

	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", settings.Title, 4)
	g.writeElement(&buf, "link", g.channelLink(settings), 4)
	description := settings.Description
	if description == "" {
		description = fmt.Sprintf("Live updates: %s", settings.Title)
	}
	g.writeElement(&buf, "description", description, 4)

	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(g.selfLink())))

	var items []Post
	for _, post := range state.Posts {
		if post.Published() && !post.Sponsorship {
			items = append(items, post)
		}
	}

	lastBuildDate := time.Now().In(time.Local)
	if len(items) > 0 {
		lastBuildDate = items[0].Timestamp.In(time.Local)
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Liveblog-Comb/%s", cfg.Get().Version), 4)

	for _, post := range items {
		g.writeItem(&buf, post, settings)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, post Post, settings Settings) {
	buf.WriteString("    <item>\n")

	link := g.postLink(post, settings)
	if link != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(link)))
		xml.EscapeText(buf, []byte(link))
		buf.WriteString("</guid>\n")
	}

	if post.Headline != "" {
		g.writeElement(buf, "title", post.Headline, 6)
	}

	if g.isURL(link) {
		g.writeElement(buf, "link", link, 6)
	}

	description := g.Summarize(post.Contents)
	if description == "" {
		description = "No description available"
	}
	g.writeElement(buf, "description", description, 6)

	if post.Contents != "" {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(strings.ReplaceAll(post.Contents, "]]>", "]]]]><![CDATA[>"))
		buf.WriteString("]]></content:encoded>\n")
	}

	g.writeElement(buf, "pubDate", post.Timestamp.In(time.Local).Format(time.RFC1123Z), 6)

	names := make([]string, 0, len(post.Authors))
	for _, author := range post.Authors {
		if author.Name != "" {
			names = append(names, author.Name)
		}
	}
	if len(names) > 0 {
		g.writeElement(buf, "author", strings.Join(names, ", "), 6)
	}

	buf.WriteString("    </item>\n")
}

// Summarize strips markup from post contents and collapses whitespace.
func (g *Generator) Summarize(contents string) string {
	text := html.UnescapeString(g.policy.Sanitize(contents))
	return strings.Join(strings.Fields(text), " ")
}

func (g *Generator) channelLink(settings Settings) string {
	if settings.Link != "" {
		return settings.Link
	}
	return g.baseURL()
}

// postLink is the anchor of the post on the liveblog page, falling back to
// its slug when no page is known.
func (g *Generator) postLink(post Post, settings Settings) string {
	if post.Slug == "" {
		return ""
	}
	if settings.Link != "" {
		return fmt.Sprintf("%s#post-%s", settings.Link, post.Slug)
	}
	return fmt.Sprintf("%s/posts/%s", g.baseURL(), post.Slug)
}

func (g *Generator) selfLink() string {
	return fmt.Sprintf("%s/liveblog.rss", g.baseURL())
}

func (g *Generator) baseURL() string {
	if cfg.Get().BaseUrl != "" {
		return strings.TrimSuffix(cfg.Get().BaseUrl, "/")
	}
	return fmt.Sprintf("http://localhost:%s", cfg.Get().Port)
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
