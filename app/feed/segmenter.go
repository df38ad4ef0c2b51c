package feed

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// rawPost holds the nodes between a post-start marker and its post-end marker.
type rawPost []*goquery.Selection

// Segment splits the document body into raw posts. The returned status is
// StatusAfter when the feed-end marker closes the document and empty otherwise.
// Content before the first post-start marker, between posts, and in a post
// left open at the end of the document is discarded.
func Segment(doc *goquery.Document) (Status, []rawPost) {
	body := doc.Find("body").First()

	var status Status
	cutoff := findFeedEnd(body)
	if cutoff != nil {
		status = StatusAfter
	}

	var posts []rawPost
	var current rawPost
	ignoreOrphanText := true
	orphans := 0

	body.Contents().EachWithBreak(func(_ int, child *goquery.Selection) bool {
		node := child.Get(0)
		if node == cutoff {
			return false
		}
		if skipNode(node) {
			return true
		}

		text := child.Text()
		switch {
		case IsPostStart(text):
			if !ignoreOrphanText && len(current) > 0 {
				slog.Warn("Post start marker found inside an open post, discarding its contents", "nodes", len(current))
			}
			ignoreOrphanText = false
			current = nil
		case ignoreOrphanText:
			orphans++
		case IsPostEnd(text):
			posts = append(posts, current)
			current = nil
			ignoreOrphanText = true
		default:
			current = append(current, child)
		}
		return true
	})

	if !ignoreOrphanText {
		slog.Warn("Dropping post without end marker", "nodes", len(current))
	}

	slog.Debug("Document segmented", "posts", len(posts), "orphan_nodes", orphans, "ended", status == StatusAfter)
	return status, posts
}

// findFeedEnd returns the horizontal rule that precedes the feed-end
// paragraph, or nil when the document has not ended.
func findFeedEnd(body *goquery.Selection) *html.Node {
	var cutoff *html.Node
	body.ChildrenFiltered("hr").EachWithBreak(func(_ int, hr *goquery.Selection) bool {
		next := hr.Next()
		if next.Is("p") && IsFeedEnd(next.Text()) {
			cutoff = hr.Get(0)
			return false
		}
		return true
	})
	return cutoff
}

func skipNode(node *html.Node) bool {
	switch node.Type {
	case html.CommentNode, html.DoctypeNode:
		return true
	case html.TextNode:
		return strings.TrimSpace(node.Data) == ""
	}
	return false
}
