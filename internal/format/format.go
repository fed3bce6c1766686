// Package format turns content-block bodies into safe HTML and plain-text excerpts.
package format

import (
	"bytes"
	"html/template"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

// Markdown is the block format value that selects markdown rendering.
const Markdown = "markdown"

// Renderer converts block bodies to HTML. It is safe for concurrent use.
type Renderer struct {
	policy *bluemonday.Policy
	md     goldmark.Markdown
}

// NewRenderer builds a renderer with the content policy: UGC markup plus figures, with
// nofollow on every link.
func NewRenderer() *Renderer {
	return &Renderer{
		policy: newContentPolicy(),
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

func newContentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// Block renders body as sanitized HTML. Markdown bodies are converted first; anything else
// is treated as HTML.
func (r *Renderer) Block(body, format string) template.HTML {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	if strings.EqualFold(strings.TrimSpace(format), Markdown) {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(body), &buf); err == nil {
			body = buf.String()
		}
	}
	return template.HTML(strings.TrimSpace(r.policy.Sanitize(body))) //nolint:gosec // sanitized above
}

// Excerpt returns the visible text of an HTML fragment with whitespace collapsed, cut at a
// word boundary so it stays within limit runes. A cut excerpt ends with an ellipsis.
func Excerpt(fragment string, limit int) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	skip := 0
loop:
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return ""
			}
			break loop
		case html.StartTagToken:
			if name, _ := z.TagName(); isHidden(string(name)) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if name, _ := z.TagName(); isHidden(string(name)) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}

	text := strings.Join(strings.Fields(b.String()), " ")
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:limit-1])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

func isHidden(tag string) bool {
	switch tag {
	case "script", "style", "template", "noscript":
		return true
	}
	return false
}
