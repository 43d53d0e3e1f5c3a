package virtual

import (
	"bytes"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FrontMatter holds data scraped from a page.
type FrontMatter struct {
	Title       string    `toml:"title" yaml:"title"`             // Title of this page
	Date        time.Time `toml:"date" yaml:"date"`               // Date the article appears
	Layout      string    `toml:"layout" yaml:"layout"`           // The name of the layout to use
	Tags        []string  `toml:"tags" yaml:"tags"`               // Tags to assign to this article
	Redirect    string    `toml:"redirect" yaml:"redirect"`       // Issue a redirect to another location
	Description string    `toml:"description" yaml:"description"` // Summary of the page
}

// frontMatterFormat is a delimiter and the decoder for what it encloses.
type frontMatterFormat struct {
	re        *regexp.Regexp
	delimiter string
	unmarshal func([]byte, any) error
}

// frontMatterFormats are the regular expressions used to split out front matter.
var frontMatterFormats = []frontMatterFormat{
	{regexp.MustCompile(`(?m)^\s*\+\+\+\s*$`), "+++", toml.Unmarshal},
	{regexp.MustCompile(`(?m)^\s*---\s*$`), "---", yaml.Unmarshal},
}

// extractFrontMatter splits the front matter and content. format is nil when
// there is no front matter.
func extractFrontMatter(x []byte) (fm, r []byte, format *frontMatterFormat) {
	trimmed := bytes.TrimLeft(x, " \t\r\n")
	for i := range frontMatterFormats {
		f := &frontMatterFormats[i]
		if !bytes.HasPrefix(trimmed, []byte(f.delimiter)) {
			continue
		}
		subs := f.re.Split(string(x), 3)
		if len(subs) != 3 {
			return nil, x, nil
		}
		if s := strings.TrimSpace(subs[0]); len(s) > 0 {
			return nil, x, nil
		}
		return []byte(strings.TrimSpace(subs[1])), []byte(strings.TrimSpace(subs[2])), f
	}
	return nil, x, nil
}

// parseFrontMatter extracts and unmarshals front matter, returning the rest of the content.
func parseFrontMatter(b []byte) (FrontMatter, []byte, error) {
	var front FrontMatter
	fm, r, format := extractFrontMatter(b)
	if format != nil && len(fm) > 0 {
		if err := format.unmarshal(fm, &front); err != nil {
			return front, nil, fmt.Errorf("front matter: %w", err)
		}
	}
	return front, r, nil
}

// readFrontMatter extracts and unmarshals front matter from the given file.
func (vfs *FS) readFrontMatter(name string, fm *FrontMatter) error {
	b, err := fs.ReadFile(vfs.fs, name)
	if err != nil {
		return fmt.Errorf("readFrontMatter: %w", err)
	}
	front, _, err := parseFrontMatter(b)
	if err != nil {
		return fmt.Errorf("readFrontMatter: %w", err)
	}
	mergeFrontMatter(fm, front)
	return nil
}

// mergeFrontMatter copies the fields that are set in src over dst.
func mergeFrontMatter(dst *FrontMatter, src FrontMatter) {
	if src.Title != "" {
		dst.Title = src.Title
	}
	if !src.Date.IsZero() {
		dst.Date = src.Date
	}
	if src.Layout != "" {
		dst.Layout = src.Layout
	}
	if src.Tags != nil {
		dst.Tags = src.Tags
	}
	if src.Redirect != "" {
		dst.Redirect = src.Redirect
	}
	if src.Description != "" {
		dst.Description = src.Description
	}
}
