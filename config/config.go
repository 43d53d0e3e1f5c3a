/*
Package config holds the build configuration consumed by the quire engine.

A Config is assembled with a Builder, in the same way a site's configuration
function registers passthrough copies, filters, shortcodes and plugins, and is
then frozen. The engine reads the frozen Config once and never changes it.

Registration is mapping-based: a second filter or shortcode with the same name
replaces the first. The Builder logs a warning when that happens but does not
fail.
*/
package config

import (
	"path"
	"slices"
	"sort"
	"strings"
)

// Template engine identifiers.
const (
	EnginePlain  = "plain"  // no template processing
	EngineGoHTML = "gohtml" // html/template
	EngineGoText = "gotext" // text/template
	// EngineGo runs text/template for Markdown and data files and
	// html/template for HTML files.
	EngineGo = "go"
)

// Content categories, each processed by its own engine.
const (
	CategoryMarkdown = "markdown"
	CategoryData     = "data"
	CategoryHTML     = "html"
)

// Filter is a named function applied to a single value in templates.
type Filter func(v any) (string, error)

// PairedShortcode transforms a delimited block of content into HTML.
// Extra arguments given in the opening tag are passed in args.
type PairedShortcode func(content string, args ...string) (string, error)

// Transform rewrites rendered output before it is written.
// outputPath is the slash-separated path of the file within the output.
type Transform func(outputPath string, content []byte) ([]byte, error)

// Plugin registers itself with a Builder.
type Plugin interface {
	Name() string
	Register(b *Builder)
}

// Dirs maps the engine's input and output directories.
// Includes and Data are relative to Input.
type Dirs struct {
	Input    string
	Output   string
	Includes string
	Data     string
}

// TemplateEngines selects the engine for each content category.
type TemplateEngines struct {
	Markdown string // preprocesses Markdown files before rendering
	Data     string // preprocesses global data files
	HTML     string // processes HTML files
}

// For returns the engine identifier of a content category, or "" for an
// unknown category.
func (e TemplateEngines) For(category string) string {
	switch category {
	case CategoryMarkdown:
		return e.Markdown
	case CategoryData:
		return e.Data
	case CategoryHTML:
		return e.HTML
	}
	return ""
}

// DefaultDirs returns the engine's default directory layout.
func DefaultDirs() Dirs {
	return Dirs{
		Input:    ".",
		Output:   "_site",
		Includes: "_includes",
		Data:     "_data",
	}
}

// NamedTransform is a transform along with its registration name.
type NamedTransform struct {
	Name string
	Fn   Transform
}

// Config is the resolved build configuration.
type Config struct {
	Passthrough     []string // source directories copied verbatim
	Plugins         []string // registered plugin names in order
	TemplateEngines TemplateEngines
	Dirs            Dirs
	PathPrefix      string // prefix applied to site URLs by the url filter
	Environment     string // value of ELEVENTY_ENV used at resolution

	filters    map[string]Filter
	shortcodes map[string]PairedShortcode
	transforms []NamedTransform
}

// Filter returns the named filter.
func (c *Config) Filter(name string) (Filter, bool) {
	f, ok := c.filters[name]
	return f, ok
}

// FilterNames returns the sorted filter names.
func (c *Config) FilterNames() []string {
	return sortedKeys(c.filters)
}

// Shortcode returns the named paired shortcode.
func (c *Config) Shortcode(name string) (PairedShortcode, bool) {
	s, ok := c.shortcodes[name]
	return s, ok
}

// ShortcodeNames returns the sorted shortcode names.
func (c *Config) ShortcodeNames() []string {
	return sortedKeys(c.shortcodes)
}

// Transforms returns the transforms in registration order.
func (c *Config) Transforms() []NamedTransform {
	return slices.Clone(c.transforms)
}

// PassthroughRoots returns the passthrough rules relative to the input
// directory, in slash form. Rules outside the input directory are omitted.
func (c *Config) PassthroughRoots() []string {
	var roots []string
	for _, p := range c.Passthrough {
		if rel, ok := relToInput(c.Dirs.Input, p); ok {
			roots = append(roots, rel)
		}
	}
	return roots
}

// IsPassthrough reports whether name, relative to the input directory,
// falls under a passthrough rule.
func (c *Config) IsPassthrough(name string) bool {
	for _, root := range c.PassthroughRoots() {
		if root == "." || name == root || strings.HasPrefix(name, root+"/") {
			return true
		}
	}
	return false
}

// relToInput converts p into a slash path relative to input.
func relToInput(input, p string) (string, bool) {
	input = path.Clean(strings.ReplaceAll(input, `\`, "/"))
	p = path.Clean(strings.ReplaceAll(p, `\`, "/"))
	if input == "." {
		if p == ".." || strings.HasPrefix(p, "../") || path.IsAbs(p) {
			return "", false
		}
		return p, true
	}
	if p == input {
		return ".", true
	}
	if rel, ok := strings.CutPrefix(p, input+"/"); ok {
		return rel, true
	}
	return "", false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
