/*
Package site resolves the build configuration for this site.

Resolve is called once when the engine starts. It registers:

  - passthrough copies of src/css, src/assets and src/pages
  - the postDate filter
  - the markdown paired shortcode, with raw HTML passthrough
  - the syntax highlighting plugin
  - Go templates for Markdown, data and HTML (html/template for HTML only)
  - src as the input directory and _site as the output directory

The src/pages rule is needed because the engine only picks up template files
on its own; the other files under pages would otherwise be left out.

The environment name is passed in rather than read from ELEVENTY_ENV so that
Resolve has no hidden inputs.
*/
package site

import (
	"time"

	"go.uber.org/zap"

	"github.com/ancientlore/quire/config"
	"github.com/ancientlore/quire/datefmt"
	"github.com/ancientlore/quire/highlight"
	"github.com/ancientlore/quire/markdown"
)

const (
	// EnvVar is the environment variable holding the environment name.
	EnvVar = "ELEVENTY_ENV"
	// Development is the environment name for local builds.
	Development = "development"
	// HostedPathPrefix is the URL prefix of the hosted deployment.
	HostedPathPrefix = "/quire/"

	InputDir  = "src"
	OutputDir = "_site"

	// Engine is the template engine for every content category.
	Engine = config.EngineGo
)

// Passthrough returns the directories copied verbatim into the output.
func Passthrough() []string {
	return []string{
		InputDir + "/css",
		InputDir + "/assets",
		InputDir + "/pages",
	}
}

// Options are the inputs to Resolve.
type Options struct {
	Env      string         // value of ELEVENTY_ENV
	Locale   string         // locale for postDate; defaults to en-US
	Location *time.Location // zone for postDate; defaults to time.Local
	Logger   *zap.Logger
}

// PathPrefix returns the URL prefix for the environment: empty for
// development, HostedPathPrefix otherwise.
func PathPrefix(env string) string {
	if env == Development {
		return ""
	}
	return HostedPathPrefix
}

// Resolve builds the site configuration.
func Resolve(opts Options) *config.Config {
	b := config.NewBuilder(opts.Logger)

	for _, p := range Passthrough() {
		b.AddPassthroughCopy(p)
	}

	b.AddFilter("postDate", datefmt.PostDate(opts.Locale, opts.Location))

	md := markdown.New(markdown.Options{HTML: true})
	b.AddPairedShortcode("markdown", markdown.Shortcode(md))

	b.AddPlugin(highlight.New())

	b.SetEnvironment(opts.Env)
	b.SetPathPrefix(PathPrefix(opts.Env))

	b.SetTemplateEngines(config.TemplateEngines{
		Markdown: Engine,
		Data:     Engine,
		HTML:     Engine,
	})
	b.SetDirs(config.Dirs{
		Input:  InputDir,
		Output: OutputDir,
	})
	return b.Config()
}
