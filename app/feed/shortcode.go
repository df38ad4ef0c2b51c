package feed

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// ShortcodeRenderer expands a "[% name args %]" directive into markup.
type ShortcodeRenderer interface {
	Render(code string) (string, error)
}

// Shortcode is a parsed directive.
type Shortcode struct {
	Name string
	Args []string          // positional arguments
	Opts map[string]string // key=value arguments
}

// ParseShortcode parses the text of a directive, delimiters included.
func ParseShortcode(code string) (Shortcode, error) {
	body := strings.TrimSpace(code)
	body = strings.TrimPrefix(body, "[%")
	body = strings.TrimSuffix(body, "%]")

	tokens, err := splitShortcodeArgs(body)
	if err != nil {
		return Shortcode{}, fmt.Errorf("invalid shortcode %q: %w", code, err)
	}
	if len(tokens) == 0 {
		return Shortcode{}, fmt.Errorf("invalid shortcode %q: missing name", code)
	}

	sc := Shortcode{
		Name: strings.ToLower(tokens[0]),
		Opts: make(map[string]string),
	}
	for _, token := range tokens[1:] {
		if key, value, found := strings.Cut(token, "="); found && key != "" {
			sc.Opts[strings.ToLower(key)] = value
			continue
		}
		sc.Args = append(sc.Args, token)
	}
	return sc, nil
}

// splitShortcodeArgs splits on whitespace, keeping double-quoted runs together.
func splitShortcodeArgs(s string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	hasToken := false

	for _, r := range s {
		switch {
		case r == '"' || r == '“' || r == '”':
			inQuotes = !inQuotes
			hasToken = true
		case !inQuotes && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			if hasToken {
				tokens = append(tokens, current.String())
				current.Reset()
				hasToken = false
			}
		default:
			current.WriteRune(r)
			hasToken = true
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("unterminated quote")
	}
	if hasToken {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}

type DefaultShortcodes struct{}

func NewDefaultShortcodes() *DefaultShortcodes {
	return &DefaultShortcodes{}
}

func (d *DefaultShortcodes) Render(code string) (string, error) {
	sc, err := ParseShortcode(normalizeLine(code))
	if err != nil {
		return "", err
	}

	switch sc.Name {
	case "internal_link":
		return d.renderInternalLink(sc)
	default:
		return d.renderPlaceholder(sc), nil
	}
}

func (d *DefaultShortcodes) renderInternalLink(sc Shortcode) (string, error) {
	slug := sc.Opts["slug"]
	if slug == "" && len(sc.Args) > 0 {
		slug = sc.Args[0]
	}
	if slug == "" {
		return "", fmt.Errorf("internal_link shortcode without slug")
	}

	text := sc.Opts["text"]
	if text == "" && len(sc.Args) > 1 {
		text = strings.Join(sc.Args[1:], " ")
	}
	if text == "" {
		text = slug
	}

	return fmt.Sprintf(`<a class="internal-link" href="#post-%s">%s</a>`,
		html.EscapeString(slug), html.EscapeString(text)), nil
}

func (d *DefaultShortcodes) renderPlaceholder(sc Shortcode) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="shortcode shortcode-%s"`, html.EscapeString(sc.Name))

	keys := make([]string, 0, len(sc.Opts))
	for k := range sc.Opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, ` data-%s="%s"`, html.EscapeString(k), html.EscapeString(sc.Opts[k]))
	}
	if len(sc.Args) > 0 {
		fmt.Fprintf(&b, ` data-args="%s"`, html.EscapeString(strings.Join(sc.Args, " ")))
	}
	b.WriteString("></div>")
	return b.String()
}
