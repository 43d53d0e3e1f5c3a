// Package markdown renders Markdown into HTML.
//
// Two renderers are provided. Renderer wraps goldmark and is what site
// configuration code constructs for shortcodes. Page is the engine's own
// content renderer, used for Markdown pages.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/russross/blackfriday/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ancientlore/quire/config"
)

// Options configures a Renderer.
type Options struct {
	HTML        bool // pass raw HTML through instead of omitting it
	Typographer bool // smart quotes and dashes
}

// Renderer converts Markdown to HTML.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a Renderer with GitHub Flavored Markdown enabled.
func New(opts Options) *Renderer {
	exts := []goldmark.Extender{extension.GFM}
	if opts.Typographer {
		exts = append(exts, extension.Typographer)
	}
	var rOpts []goldmark.Option
	if opts.HTML {
		rOpts = append(rOpts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}
	return &Renderer{
		md: goldmark.New(append(rOpts, goldmark.WithExtensions(exts...))...),
	}
}

// Render converts src to HTML.
func (r *Renderer) Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown: %w", err)
	}
	return buf.String(), nil
}

// Shortcode adapts r into a paired shortcode. Arguments are ignored.
func Shortcode(r *Renderer) config.PairedShortcode {
	return func(content string, _ ...string) (string, error) {
		return r.Render(content)
	}
}

// Page renders the body of a Markdown page. Raw HTML is kept.
func Page(src []byte) []byte {
	return blackfriday.Run(src, blackfriday.WithExtensions(blackfriday.CommonExtensions|blackfriday.Footnotes))
}
