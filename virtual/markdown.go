package virtual

import (
	"html/template"
	"io/fs"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/ancientlore/quire/markdown"
)

// pathToMarkdown maps a site path, such as "/posts/" or "/posts/a.html",
// to the Markdown file behind it.
func pathToMarkdown(name string) string {
	if strings.HasSuffix(name, "/") {
		name += "index.md"
	}
	name = strings.TrimPrefix(path.Clean(name), "/")
	switch path.Ext(name) {
	case "":
		return name + ".md"
	case ".html":
		return strings.TrimSuffix(name, ".html") + ".md"
	}
	return name
}

// md renders a Markdown file for the mdfile template function. Template
// directives in the file are not executed.
func (vfs *FS) md(name string) template.HTML {
	b, err := fs.ReadFile(vfs.fs, pathToMarkdown(name))
	if err == nil {
		var body []byte
		_, body, err = parseFrontMatter(b)
		if err == nil {
			return template.HTML(markdown.Page(body))
		}
	}
	vfs.log.Warn("mdfile", zap.String("file", name), zap.Error(err))
	return ""
}

// fm reads the front matter of a Markdown file for the frontmatter
// template function.
func (vfs *FS) fm(name string) *FrontMatter {
	var front FrontMatter
	if err := vfs.readFrontMatter(pathToMarkdown(name), &front); err != nil {
		vfs.log.Warn("frontmatter", zap.String("file", name), zap.Error(err))
		return nil
	}
	return &front
}
