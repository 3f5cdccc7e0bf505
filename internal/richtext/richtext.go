package richtext

import (
	"bytes"
	"fmt"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// Kind tags how the content of a Text must be treated when rendered.
// Making the distinction explicit at the type level keeps untrusted markup
// from ever reaching a page unsanitized.
type Kind string

const (
	KindPlain    Kind = "plain"
	KindMarkdown Kind = "markdown"
	KindHTML     Kind = "html"
)

// Text is a tagged rich-text value. HTML content is sanitized on write, so a
// stored KindHTML value is always safe to render verbatim.
type Text struct {
	Kind    Kind   `json:"kind"`
	Content string `json:"content"`
}

var (
	policy   = bluemonday.UGCPolicy()
	markdown = goldmark.New()
)

// Sanitize normalizes incoming rich text for storage. Unknown kinds fall
// back to plain text, and HTML is scrubbed immediately so nothing unsafe is
// ever persisted.
func Sanitize(t Text) Text {
	switch t.Kind {
	case KindMarkdown:
		return t
	case KindHTML:
		return Text{Kind: KindHTML, Content: policy.Sanitize(t.Content)}
	default:
		return Text{Kind: KindPlain, Content: t.Content}
	}
}

// Render returns HTML that is safe to embed in a page regardless of the
// original kind.
func (t Text) Render() (string, error) {
	switch t.Kind {
	case KindMarkdown:
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(t.Content), &buf); err != nil {
			return "", fmt.Errorf("failed to render markdown: %w", err)
		}
		return policy.Sanitize(buf.String()), nil
	case KindHTML:
		// Sanitized on write, but scrub again in case the value predates
		// the sanitizer.
		return policy.Sanitize(t.Content), nil
	default:
		return html.EscapeString(t.Content), nil
	}
}

// IsEmpty reports whether the text has no content
func (t Text) IsEmpty() bool {
	return t.Content == ""
}
