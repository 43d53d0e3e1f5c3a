package config

import (
	"maps"
	"path"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Builder collects registrations and produces a Config.
// A Builder is not safe for concurrent use.
type Builder struct {
	log *zap.Logger

	passthrough []string
	plugins     []string
	engines     TemplateEngines
	dirs        Dirs
	prefix      string
	env         string

	filters    map[string]Filter
	shortcodes map[string]PairedShortcode
	transforms []NamedTransform
}

// NewBuilder returns an empty Builder using the engine defaults.
// A nil logger discards diagnostics.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		log:        logger,
		dirs:       DefaultDirs(),
		filters:    make(map[string]Filter),
		shortcodes: make(map[string]PairedShortcode),
	}
}

// AddPassthroughCopy copies the directory at p into the output unchanged.
// p is relative to the working directory, such as "src/css".
func (b *Builder) AddPassthroughCopy(p string) {
	p = path.Clean(strings.ReplaceAll(p, `\`, "/"))
	if slices.Contains(b.passthrough, p) {
		return
	}
	b.passthrough = append(b.passthrough, p)
}

// AddFilter registers a filter. A previous filter with the same name is replaced.
func (b *Builder) AddFilter(name string, f Filter) {
	if _, ok := b.filters[name]; ok {
		b.log.Warn("filter registered twice; keeping the last one", zap.String("filter", name))
	}
	b.filters[name] = f
}

// AddPairedShortcode registers a paired shortcode. A previous shortcode with
// the same name is replaced.
func (b *Builder) AddPairedShortcode(name string, s PairedShortcode) {
	if _, ok := b.shortcodes[name]; ok {
		b.log.Warn("shortcode registered twice; keeping the last one", zap.String("shortcode", name))
	}
	b.shortcodes[name] = s
}

// AddTransform registers an output transform. A previous transform with the
// same name is replaced in place.
func (b *Builder) AddTransform(name string, t Transform) {
	for i := range b.transforms {
		if b.transforms[i].Name == name {
			b.log.Warn("transform registered twice; keeping the last one", zap.String("transform", name))
			b.transforms[i].Fn = t
			return
		}
	}
	b.transforms = append(b.transforms, NamedTransform{Name: name, Fn: t})
}

// AddPlugin lets p register itself. A plugin name is only registered once.
func (b *Builder) AddPlugin(p Plugin) {
	if slices.Contains(b.plugins, p.Name()) {
		b.log.Warn("plugin already registered", zap.String("plugin", p.Name()))
		return
	}
	b.plugins = append(b.plugins, p.Name())
	p.Register(b)
	b.log.Debug("registered plugin", zap.String("plugin", p.Name()))
}

// SetTemplateEngines selects the template engines. Empty fields mean EnginePlain.
func (b *Builder) SetTemplateEngines(e TemplateEngines) {
	b.engines = e
}

// SetDirs sets the directory mapping. Empty fields keep their defaults.
func (b *Builder) SetDirs(d Dirs) {
	def := DefaultDirs()
	if d.Input == "" {
		d.Input = def.Input
	}
	if d.Output == "" {
		d.Output = def.Output
	}
	if d.Includes == "" {
		d.Includes = def.Includes
	}
	if d.Data == "" {
		d.Data = def.Data
	}
	b.dirs = d
}

// SetPathPrefix sets the URL prefix used by the url filter.
func (b *Builder) SetPathPrefix(prefix string) {
	b.prefix = prefix
}

// SetEnvironment records the environment name the configuration was resolved for.
func (b *Builder) SetEnvironment(env string) {
	b.env = env
}

// Config returns a snapshot of the registrations. Later calls on the
// Builder do not affect a returned Config.
func (b *Builder) Config() *Config {
	engines := b.engines
	if engines.Markdown == "" {
		engines.Markdown = EnginePlain
	}
	if engines.Data == "" {
		engines.Data = EnginePlain
	}
	if engines.HTML == "" {
		engines.HTML = EnginePlain
	}
	return &Config{
		Passthrough:     slices.Clone(b.passthrough),
		Plugins:         slices.Clone(b.plugins),
		TemplateEngines: engines,
		Dirs:            b.dirs,
		PathPrefix:      b.prefix,
		Environment:     b.env,
		filters:         maps.Clone(b.filters),
		shortcodes:      maps.Clone(b.shortcodes),
		transforms:      slices.Clone(b.transforms),
	}
}
