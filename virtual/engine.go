package virtual

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"regexp"
	"strings"
	"text/template"

	"github.com/ancientlore/quire/config"
)

// Engine executes a template source with the given data.
type Engine interface {
	Execute(name string, src []byte, data any) ([]byte, error)
}

// newEngines returns the known engines keyed by identifier.
func newEngines(funcs htmltemplate.FuncMap) map[string]Engine {
	return map[string]Engine{
		config.EnginePlain:  plainEngine{},
		config.EngineGoHTML: htmlEngine{funcs: funcs},
		config.EngineGoText: textEngine{funcs: template.FuncMap(funcs)},
		config.EngineGo: goEngine{
			text: textEngine{funcs: template.FuncMap(funcs)},
			html: htmlEngine{funcs: funcs},
		},
	}
}

// categoryEngine is an engine that depends on the content category.
type categoryEngine interface {
	Engine
	For(category string) Engine
}

// plainEngine leaves the source untouched.
type plainEngine struct{}

func (plainEngine) Execute(_ string, src []byte, _ any) ([]byte, error) {
	return src, nil
}

// htmlEngine executes the source with html/template.
type htmlEngine struct {
	funcs htmltemplate.FuncMap
}

func (e htmlEngine) Execute(name string, src []byte, data any) ([]byte, error) {
	t, err := htmltemplate.New(name).Funcs(e.funcs).Parse(string(src))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// textEngine executes the source with text/template.
type textEngine struct {
	funcs template.FuncMap
}

func (e textEngine) Execute(name string, src []byte, data any) ([]byte, error) {
	t, err := template.New(name).Funcs(e.funcs).Parse(string(src))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// goEngine uses html/template for HTML files and text/template for
// Markdown and data files, which are not HTML documents.
type goEngine struct {
	text textEngine
	html htmlEngine
}

func (e goEngine) Execute(name string, src []byte, data any) ([]byte, error) {
	return e.html.Execute(name, src, data)
}

func (e goEngine) For(category string) Engine {
	if category == config.CategoryHTML {
		return e.html
	}
	return e.text
}

// execute runs src through the engine configured for category and then
// expands paired shortcodes. The plain engine does neither.
func (vfs *FS) execute(category, name string, src []byte, data any) ([]byte, error) {
	engine := vfs.cfg.TemplateEngines.For(category)
	e, ok := vfs.engines[engine]
	if !ok {
		return nil, fmt.Errorf("unknown template engine %q", engine)
	}
	if ce, ok := e.(categoryEngine); ok {
		e = ce.For(category)
	}
	out, err := e.Execute(name, src, data)
	if err != nil || engine == config.EnginePlain {
		return out, err
	}
	return vfs.expandShortcodes(out)
}

// pairedShortcode matches {% name args %}content{% endname %} blocks.
type pairedShortcode struct {
	name string
	re   *regexp.Regexp
	fn   config.PairedShortcode
}

// shortcodeArg matches a quoted or bare argument.
var shortcodeArg = regexp.MustCompile(`"([^"]*)"|'([^']*)'|([^\s,]+)`)

func compileShortcodes(cfg *config.Config) ([]pairedShortcode, error) {
	names := cfg.ShortcodeNames()
	scs := make([]pairedShortcode, 0, len(names))
	for _, name := range names {
		n := regexp.QuoteMeta(name)
		re, err := regexp.Compile(`(?s)\{%-?\s*` + n + `(\s[^%]*?)?\s*-?%\}(.*?)\{%-?\s*end` + n + `\s*-?%\}`)
		if err != nil {
			return nil, fmt.Errorf("shortcode %q: %w", name, err)
		}
		fn, _ := cfg.Shortcode(name)
		scs = append(scs, pairedShortcode{name: name, re: re, fn: fn})
	}
	return scs, nil
}

// parseArgs splits the argument list of an opening shortcode tag.
func parseArgs(s string) []string {
	var args []string
	for _, m := range shortcodeArg.FindAllStringSubmatch(s, -1) {
		switch {
		case m[1] != "" || strings.HasPrefix(m[0], `"`):
			args = append(args, m[1])
		case m[2] != "" || strings.HasPrefix(m[0], `'`):
			args = append(args, m[2])
		default:
			args = append(args, m[3])
		}
	}
	return args
}

// expandShortcodes replaces every paired shortcode block with its output.
func (vfs *FS) expandShortcodes(b []byte) ([]byte, error) {
	if !bytes.Contains(b, []byte("{%")) {
		return b, nil
	}
	var firstErr error
	for _, sc := range vfs.shortcodes {
		b = sc.re.ReplaceAllFunc(b, func(m []byte) []byte {
			sub := sc.re.FindSubmatch(m)
			out, err := sc.fn(string(sub[2]), parseArgs(string(sub[1]))...)
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("shortcode %s: %w", sc.name, err)
				}
				return m
			}
			return []byte(out)
		})
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return b, nil
}
