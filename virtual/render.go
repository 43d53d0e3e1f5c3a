package virtual

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"

	"go.uber.org/zap"

	"github.com/ancientlore/quire/config"
	"github.com/ancientlore/quire/markdown"
)

// renderFile holds the output of a rendered template.
type renderFile struct {
	info   virtualFileInfo
	reader *bytes.Reader // Main Reader to use
}

// Stat returns a FileInfo describing the file.
func (f *renderFile) Stat() (fs.FileInfo, error) {
	return f.info, nil
}

// Read reads up to len(b) bytes from the File. It returns the number of bytes read
// and any error encountered. At end of file, Read returns 0, io.EOF.
func (f *renderFile) Read(b []byte) (int, error) {
	return f.reader.Read(b)
}

// Seek sets the offset for the next Read or Write to offset, interpreted according
// to whence: io.SeekStart means relative to the start of the file, io.SeekCurrent
// means relative to the current offset, and io.SeekEnd means relative to the end.
// Seek returns the new offset relative to the start of the file and an error, if any.
func (f *renderFile) Seek(offset int64, whence int) (int64, error) {
	return f.reader.Seek(offset, whence)
}

// Close closes the file. Rendered files are in memory, so this function does nothing.
func (f *renderFile) Close() error {
	return nil
}

// newRenderFile wraps rendered output using the source file's metadata.
func newRenderFile(fi fs.FileInfo, pathname string, b []byte) *renderFile {
	return &renderFile{
		info: virtualFileInfo{
			FileInfo: fi,
			name:     path.Base(pathname),
			size:     int64(len(b)),
		},
		reader: bytes.NewReader(b),
	}
}

// PageInfo has information about the current page.
type PageInfo struct {
	Path     string // folder of the page, relative to the input root
	Filename string // base name of the output file
}

// Pathname joins the path and filename.
func (p PageInfo) Pathname() string {
	return path.Join(p.Path, p.Filename)
}

// URL returns the site-absolute URL of the page, without the path prefix.
func (p PageInfo) URL() string {
	return "/" + p.Pathname()
}

// data is what is passed to templates.
type data struct {
	FrontMatter FrontMatter    // front matter from the source file or defaults
	Page        PageInfo       // information about current page
	Content     template.HTML  // rendered content, for layouts
	Data        map[string]any // global data files
	Env         string         // environment name
}

func (vfs *FS) pageData(pathname string, front FrontMatter) data {
	p, bn := path.Split(pathname)
	return data{
		FrontMatter: front,
		Page: PageInfo{
			Path:     p,
			Filename: bn,
		},
		Data: vfs.globalData(),
		Env:  vfs.cfg.Environment,
	}
}

// newMarkdownFile reads the underlying markdown file, extracts the front matter,
// runs the Markdown template engine, renders the markdown, and executes the layout,
// returning the resulting renderFile.
func (vfs *FS) newMarkdownFile(f fs.File, pathname string) (*renderFile, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("newMarkdownFile: %w", err)
	}
	front, body, err := parseFrontMatter(b)
	if err != nil {
		return nil, fmt.Errorf("newMarkdownFile: %w", err)
	}

	d := vfs.pageData(pathname, front)
	body, err = vfs.execute(config.CategoryMarkdown, pathname, body, d)
	if err != nil {
		return nil, fmt.Errorf("newMarkdownFile: %w", err)
	}
	d.Content = template.HTML(markdown.Page(body))

	layout := front.Layout
	if layout == "" {
		layout = defaultLayout
	}
	out, err := vfs.applyLayout(layout, d)
	if err != nil {
		return nil, fmt.Errorf("newMarkdownFile: %w", err)
	}
	out, err = vfs.transform(pathname, out)
	if err != nil {
		return nil, fmt.Errorf("newMarkdownFile: %w", err)
	}
	vfs.log.Debug("rendered markdown", zap.String("page", pathname), zap.String("layout", layout))
	return newRenderFile(fi, pathname, out), nil
}

// newHTMLFile runs an HTML template through the HTML template engine and its
// layout, if any, returning the resulting renderFile.
func (vfs *FS) newHTMLFile(f fs.File, pathname string) (*renderFile, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("newHTMLFile: %w", err)
	}
	front, body, err := parseFrontMatter(b)
	if err != nil {
		return nil, fmt.Errorf("newHTMLFile: %w", err)
	}

	d := vfs.pageData(pathname, front)
	out, err := vfs.execute(config.CategoryHTML, pathname, body, d)
	if err != nil {
		return nil, fmt.Errorf("newHTMLFile: %w", err)
	}
	if front.Layout != "" {
		d.Content = template.HTML(out)
		out, err = vfs.applyLayout(front.Layout, d)
		if err != nil {
			return nil, fmt.Errorf("newHTMLFile: %w", err)
		}
	}
	out, err = vfs.transform(pathname, out)
	if err != nil {
		return nil, fmt.Errorf("newHTMLFile: %w", err)
	}
	vfs.log.Debug("rendered html", zap.String("page", pathname))
	return newRenderFile(fi, pathname, out), nil
}

// transform runs the configured transforms in order.
func (vfs *FS) transform(pathname string, b []byte) ([]byte, error) {
	var err error
	for _, t := range vfs.cfg.Transforms() {
		b, err = t.Fn(pathname, b)
		if err != nil {
			return nil, fmt.Errorf("transform %s: %w", t.Name, err)
		}
	}
	return b, nil
}
