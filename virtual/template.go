package virtual

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"
)

//go:embed default.html
var defaultTemplate string

// defaultLayout renders Markdown pages that don't name a layout.
const defaultLayout = "default"

// funcMap returns the functions available to templates. Configured filters
// and shortcodes take precedence over the built-in helpers.
func (vfs *FS) funcMap() template.FuncMap {
	funcMap := template.FuncMap{
		"url":         vfs.url,
		"dir":         vfs.dir,
		"sortbyname":  sortByName,
		"sortbytime":  sortByTime,
		"match":       match,
		"filter":      filter,
		"join":        path.Join,
		"ext":         path.Ext,
		"prev":        prev,
		"next":        next,
		"reverse":     reverse,
		"trimsuffix":  strings.TrimSuffix,
		"trimprefix":  strings.TrimPrefix,
		"trimspace":   strings.TrimSpace,
		"mdfile":      vfs.md,
		"frontmatter": vfs.fm,
		"now":         time.Now,
	}
	for _, name := range vfs.cfg.FilterNames() {
		f, _ := vfs.cfg.Filter(name)
		funcMap[name] = func(v any) (string, error) {
			return f(v)
		}
	}
	for _, name := range vfs.cfg.ShortcodeNames() {
		s, _ := vfs.cfg.Shortcode(name)
		funcMap[name] = func(content string, args ...string) (template.HTML, error) {
			out, err := s(content, args...)
			return template.HTML(out), err
		}
	}
	return funcMap
}

// url prefixes site-absolute paths with the configured path prefix.
// Relative paths and external URLs are returned unchanged.
func (vfs *FS) url(p string) string {
	prefix := strings.TrimSuffix(vfs.cfg.PathPrefix, "/")
	if prefix == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return p
	}
	return prefix + p
}

// loadTemplates loads and parses the layouts. The embedded default layout is
// always parsed first so that the includes folder may override it.
func (vfs *FS) loadTemplates() (*template.Template, error) {
	tpl, err := template.New("quire").Funcs(vfs.funcs).Parse(defaultTemplate)
	if err != nil {
		return nil, fmt.Errorf("loadTemplates: %w", err)
	}
	includes := vfs.cfg.Dirs.Includes
	fi, err := fs.Stat(vfs.fs, includes)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !fi.IsDir()) {
		return tpl, nil
	} else if err != nil {
		return nil, fmt.Errorf("loadTemplates: %w", err)
	}
	pattern := path.Join(includes, "*.html")
	matches, err := fs.Glob(vfs.fs, pattern)
	if err != nil {
		return nil, fmt.Errorf("loadTemplates: %w", err)
	}
	if len(matches) == 0 {
		return tpl, nil
	}
	tpl, err = tpl.ParseFS(vfs.fs, pattern)
	if err != nil {
		return nil, fmt.Errorf("loadTemplates: %w", err)
	}
	return tpl, nil
}

// applyLayout executes the named layout. The ".html" extension may be omitted.
func (vfs *FS) applyLayout(name string, d data) ([]byte, error) {
	tpl := vfs.getTemplates()
	t := tpl.Lookup(name)
	if t == nil {
		t = tpl.Lookup(name + ".html")
	}
	if t == nil {
		return nil, fmt.Errorf("layout %q not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, d); err != nil {
		return nil, fmt.Errorf("layout %q: %w", name, err)
	}
	return buf.Bytes(), nil
}
