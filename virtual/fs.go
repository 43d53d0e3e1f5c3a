/*
virtual implements a "virtual" view over the site's input directory that renders templates
as they are opened. It is the rendering layer of the quire engine: the build walks it to write
the output directory, and the preview server serves it directly.

The view is driven by a *config.Config. Template engines, filters, shortcodes, transforms,
passthrough rules and the path prefix all come from there.

Special Folders

The includes folder ("_includes" by default) holds layouts as HTML templates. A layout called
"default" is used for Markdown pages whose front matter does not name one; an embedded version
is used if the folder does not provide it.

The data folder ("_data" by default) holds global data files in TOML, YAML or JSON format. Each
file is first run through the data template engine and then made available to templates as
.Data.<basename>.

A file "quire.cfg" at the root holds preview server settings, read with ServerConfig.

These folders and files, along with hidden files and folders (those starting with "."), are
not visible through the view.

Templates

When "/foo/bar.html" is opened and the underlying "/foo/bar.html" exists, it is treated as an
HTML template: front matter is removed, the body is run through the HTML template engine and,
if the front matter names a layout, the result is wrapped in it.

When "/foo/bar.html" does not exist but "/foo/bar.md" does, the Markdown file is run through
the Markdown template engine, rendered to HTML and wrapped in its layout.

Every rendered page then passes through the transforms registered in the configuration.

Passthrough

Files that are not templates are only visible when they fall under one of the configuration's
passthrough rules, and are then presented unchanged. This includes the raw Markdown files in a
passthrough folder. When a rendered page and a passthrough file share a name, the rendered
page wins.

Front Matter

Markdown and HTML templates may start with front matter, either TOML delimited by "+++" or YAML
delimited by "---". For example:

    +++
    # This is my front matter
    title = "My glorious page"
    +++
    # This is my Heading
    This is my [Markdown](https://en.wikipedia.org/wiki/Markdown).

Front matter may include:

	Name       Type                  Description
	---------  -----------------     -----------------------------------------
	title         string             Title of page
	date          time               Publish date
	tags          array of strings   Tags for the page
	layout        string             Layout used to render this file
	redirect      string             You can use this to issue an HTML meta-tag redirect
	description   string             Summary of the page

Template Functions

Templates receive front matter (virtual.FrontMatter), page information (virtual.PageInfo),
rendered content, global data and the environment name. Every filter and shortcode in the
configuration is available as a function of the same name. Paired shortcodes can also be
used as blocks:

	{% markdown %}
	Some *Markdown* with <span>HTML</span>.
	{% endmarkdown %}

The following helpers are also available:

	url(path string) string
		Prefix an absolute path with the configured path prefix
	dir(path string) []virtual.File
		Return the contents of the given folder, excluding special files
	sortbyname([]virtual.File) []virtual.File
		Sort by name (reverse)
	sortbytime([]virtual.File) []virtual.File
		Sort by time (reverse)
	match(string, ...string) bool
		Match string against file patterns
	filter([]virtual.File, ...string) []virtual.File
		Filter list against file patterns
	join(parts ...string) string
		The same as path.Join
	ext(path string) string
		The same as path.Ext
	prev([]virtual.File, string) *virtual.File
		Find the previous file based on Filename
	next([]virtual.File, string) *virtual.File
		Find the next file based on Filename
	reverse([]virtual.File) []virtual.File
		Reverse the list
	trimsuffix(string, string) string
		The same as strings.TrimSuffix
	trimprefix(string, string) string
		The same as strings.TrimPrefix
	trimspace(string) string
		The same as strings.TrimSpace
	mdfile(string) template.HTML
		Render a Markdown file into HTML
	frontmatter(string) *virtual.FrontMatter
		Read front matter from file
	now() time.Time
		Current time

Errors

To assist web implementations that want to serve a custom page for 404 or 500 errors, you can
create 404.md and 500.md files in the root. They are rendered like any other page, but the "dir"
template function does not list them, nor index pages.
*/
package virtual

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ancientlore/quire/config"
	"github.com/ancientlore/quire/logging"
)

// FS provides a rendered view of a site's input directory.
type FS struct {
	fs    fs.FS
	cfg   *config.Config
	log   *zap.Logger
	funcs template.FuncMap

	engines    map[string]Engine
	shortcodes []pairedShortcode

	mu   sync.RWMutex
	tpl  *template.Template
	data map[string]any
}

// New returns a new FS that presents a rendered view of innerFS, which
// must be rooted at cfg.Dirs.Input.
func New(innerFS fs.FS, cfg *config.Config, logger *zap.Logger) (*FS, error) {
	var vfs = FS{
		fs:  innerFS,
		cfg: cfg,
		log: logging.OrNop(logger),
	}
	vfs.funcs = vfs.funcMap()
	vfs.engines = newEngines(vfs.funcs)
	for _, id := range []string{cfg.TemplateEngines.Markdown, cfg.TemplateEngines.Data, cfg.TemplateEngines.HTML} {
		if _, ok := vfs.engines[id]; !ok {
			return nil, fmt.Errorf("unknown template engine %q", id)
		}
	}
	var err error
	vfs.shortcodes, err = compileShortcodes(cfg)
	if err != nil {
		return nil, err
	}
	if err := vfs.Reload(); err != nil {
		return nil, err
	}
	return &vfs, nil
}

// Reload reads the layouts and the global data again.
func (vfs *FS) Reload() error {
	tpl, err := vfs.loadTemplates()
	if err != nil {
		return err
	}
	data, err := vfs.loadData()
	if err != nil {
		return err
	}
	vfs.mu.Lock()
	defer vfs.mu.Unlock()
	vfs.tpl = tpl
	vfs.data = data
	return nil
}

// Open opens the named file.
//
// When Open returns an error, it is of type *fs.PathError
// with the Op field set to "open", the Path field set to name,
// and the Err field describing the problem.
//
// Open rejects attempts to open names that do not satisfy
// fs.ValidPath(name), returning a *PathError with Err set to
// ErrInvalid or ErrNotExist.
func (vfs *FS) Open(name string) (fs.File, error) {
	// Make sure the path is valid per fs rules
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	// Don't show hidden or special files
	if vfs.isHidden(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	f, err := vfs.fs.Open(name)
	if err != nil {
		// An HTML page may be backed by a Markdown file
		if errors.Is(err, fs.ErrNotExist) && path.Ext(name) == ".html" {
			mf, err2 := vfs.fs.Open(strings.TrimSuffix(name, ".html") + ".md")
			if err2 == nil {
				defer mf.Close()
				rf, err := vfs.newMarkdownFile(mf, name)
				return openResult(name, rf, err)
			}
		}
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	// Directories need to be virtual so that we don't
	// accidentally pick up the wrong ReadDir implementation.
	if fi.IsDir() {
		// don't close f because it will be used for ReadDir
		return &virtualDir{File: f, vfs: vfs, path: name}, nil
	}
	if path.Ext(name) == ".html" {
		defer f.Close()
		rf, err := vfs.newHTMLFile(f, name)
		return openResult(name, rf, err)
	}
	if vfs.cfg.IsPassthrough(name) {
		return f, nil
	}
	f.Close()
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// openResult converts render failures into path errors.
func openResult(name string, f *renderFile, err error) (fs.File, error) {
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return f, nil
}

// getTemplates returns the current layouts.
func (vfs *FS) getTemplates() *template.Template {
	vfs.mu.RLock()
	defer vfs.mu.RUnlock()
	return vfs.tpl
}

// globalData returns the current global data.
func (vfs *FS) globalData() map[string]any {
	vfs.mu.RLock()
	defer vfs.mu.RUnlock()
	return vfs.data
}
