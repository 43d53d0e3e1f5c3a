// Package highlight is a syntax highlighting plugin built on chroma.
//
// The plugin rewrites fenced code blocks in rendered HTML pages and adds a
// "highlight" paired shortcode:
//
//	{% highlight "go" %}
//	fmt.Println("hello")
//	{% endhighlight %}
package highlight

import (
	"bytes"
	"fmt"
	"html"
	"path"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/ancientlore/quire/config"
)

// Name is the plugin and transform name.
const Name = "highlight"

// DefaultStyle is the chroma style used when none is given.
const DefaultStyle = "github"

// codeBlock matches fenced code blocks as emitted by Markdown renderers.
var codeBlock = regexp.MustCompile(`(?s)<pre><code class="language-([^"\s]+)">(.*?)</code></pre>`)

// Option customizes the plugin.
type Option func(*Plugin)

// WithStyle selects a chroma style by name.
func WithStyle(name string) Option {
	return func(p *Plugin) { p.style = name }
}

// WithLineNumbers turns line numbers on.
func WithLineNumbers(on bool) Option {
	return func(p *Plugin) { p.lineNumbers = on }
}

// Plugin highlights code. It implements config.Plugin.
type Plugin struct {
	style       string
	lineNumbers bool
}

// New returns a plugin with default options applied.
func New(opts ...Option) *Plugin {
	p := &Plugin{style: DefaultStyle}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Name returns the plugin name.
func (p *Plugin) Name() string { return Name }

// Register adds the transform and the paired shortcode.
func (p *Plugin) Register(b *config.Builder) {
	b.AddTransform(Name, p.Transform)
	b.AddPairedShortcode(Name, p.Shortcode)
}

// Transform highlights fenced code blocks in HTML output.
// Other outputs are returned unchanged.
func (p *Plugin) Transform(outputPath string, content []byte) ([]byte, error) {
	if path.Ext(outputPath) != ".html" || !bytes.Contains(content, []byte(`<code class="language-`)) {
		return content, nil
	}
	var firstErr error
	out := codeBlock.ReplaceAllFunc(content, func(m []byte) []byte {
		sub := codeBlock.FindSubmatch(m)
		code := html.UnescapeString(string(sub[2]))
		s, err := p.Highlight(string(sub[1]), code)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return m
		}
		return []byte(s)
	})
	if firstErr != nil {
		return nil, fmt.Errorf("highlight %s: %w", outputPath, firstErr)
	}
	return out, nil
}

// Shortcode highlights content using the language given as the first argument.
func (p *Plugin) Shortcode(content string, args ...string) (string, error) {
	lang := ""
	if len(args) > 0 {
		lang = args[0]
	}
	return p.Highlight(lang, strings.Trim(content, "\r\n"))
}

// Highlight renders code as HTML for the named language. Unknown languages
// are rendered as plain text.
func (p *Plugin) Highlight(lang, code string) (string, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("tokenise %s: %w", lang, err)
	}
	formatter := chromahtml.New(chromahtml.WithClasses(true), chromahtml.WithLineNumbers(p.lineNumbers))
	var buf bytes.Buffer
	if err := formatter.Format(&buf, styles.Get(p.style), it); err != nil {
		return "", fmt.Errorf("format %s: %w", lang, err)
	}
	return buf.String(), nil
}

// CSS returns the stylesheet for the plugin's style.
func (p *Plugin) CSS() (string, error) {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(p.style)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
