package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTMLPassthrough(t *testing.T) {
	r := New(Options{HTML: true})
	tests := []string{
		`Hello <span class="note">there</span> world`,
		"<div class=\"box\">\n\nsome *text*\n\n</div>",
		`Line with <kbd>Ctrl</kbd>+<kbd>C</kbd>`,
	}
	for _, src := range tests {
		out, err := r.Render(src)
		require.NoError(t, err)
		for _, tag := range []string{`<span class="note">`, `<div class="box">`, `<kbd>`} {
			if strings.Contains(src, tag) {
				assert.Contains(t, out, tag, src)
			}
		}
		assert.NotContains(t, out, "&lt;", src)
	}
}

func TestRenderWithoutHTMLOmitsTags(t *testing.T) {
	r := New(Options{})
	out, err := r.Render(`Hello <span class="note">there</span>`)
	require.NoError(t, err)
	assert.NotContains(t, out, `<span class="note">`)
}

func TestRenderMarkdown(t *testing.T) {
	r := New(Options{HTML: true})
	out, err := r.Render("# Title\n\nSome **bold** text.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<table>")
}

func TestShortcodeIgnoresArgs(t *testing.T) {
	s := Shortcode(New(Options{HTML: true}))
	out, err := s("*hi* <b>there</b>", "ignored")
	require.NoError(t, err)
	assert.Equal(t, "<p><em>hi</em> <b>there</b></p>\n", out)
}

func TestPage(t *testing.T) {
	out := string(Page([]byte("Hello *world*\n\n```go\nfmt.Println(1)\n```\n")))
	assert.Contains(t, out, "<em>world</em>")
	assert.Contains(t, out, `<code class="language-go">`)
}

func TestPageKeepsRawHTML(t *testing.T) {
	out := string(Page([]byte("<div class=\"x\">raw</div>\n\ntext\n")))
	assert.Contains(t, out, `<div class="x">raw</div>`)
}
