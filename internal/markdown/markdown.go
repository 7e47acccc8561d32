// Package markdown turns Markdown bodies into HTML and inspects their links.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

// Renderer converts a Markdown body to an HTML fragment. It knows nothing of
// front matter.
type Renderer interface {
	Render(body string) (string, error)
}

// Goldmark renders CommonMark plus GitHub flavoured extensions. Raw HTML in
// the body is passed through.
type Goldmark struct {
	md goldmark.Markdown
}

// NewRenderer returns the default goldmark-backed renderer.
func NewRenderer() *Goldmark {
	return &Goldmark{md: newGoldmark()}
}

func newGoldmark() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote, extension.Typographer),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// Render implements Renderer.
func (g *Goldmark) Render(body string) (string, error) {
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(body), &buf); err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "failed to render markdown").Build()
	}
	return buf.String(), nil
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(body string) (string, error)

// Render implements Renderer.
func (f RendererFunc) Render(body string) (string, error) { return f(body) }
