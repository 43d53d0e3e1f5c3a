package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ancientlore/quire/config"
)

type stubPlugin struct {
	calls int
}

func (p *stubPlugin) Name() string { return "stub" }

func (p *stubPlugin) Register(b *config.Builder) {
	p.calls++
	b.AddFilter("stub", func(v any) (string, error) { return "stub", nil })
}

func TestDuplicateFilterLastWins(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	b := config.NewBuilder(zap.New(core))

	b.AddFilter("upper", func(v any) (string, error) { return "first", nil })
	b.AddFilter("upper", func(v any) (string, error) { return "second", nil })

	f, ok := b.Config().Filter("upper")
	require.True(t, ok)
	s, err := f(nil)
	require.NoError(t, err)
	assert.Equal(t, "second", s)

	require.Equal(t, 1, logs.FilterMessageSnippet("filter registered twice").Len())
	assert.Equal(t, "upper", logs.All()[0].ContextMap()["filter"])
}

func TestDuplicateShortcodeLastWins(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	b := config.NewBuilder(zap.New(core))

	b.AddPairedShortcode("box", func(c string, _ ...string) (string, error) { return "<div>" + c + "</div>", nil })
	b.AddPairedShortcode("box", func(c string, _ ...string) (string, error) { return "<section>" + c + "</section>", nil })

	s, ok := b.Config().Shortcode("box")
	require.True(t, ok)
	out, err := s("x")
	require.NoError(t, err)
	assert.Equal(t, "<section>x</section>", out)
	assert.Equal(t, 1, logs.Len())
}

func TestDuplicateTransformReplacedInPlace(t *testing.T) {
	b := config.NewBuilder(nil)
	noop := func(_ string, c []byte) ([]byte, error) { return c, nil }
	b.AddTransform("a", noop)
	b.AddTransform("b", noop)
	b.AddTransform("a", func(_ string, _ []byte) ([]byte, error) { return []byte("a2"), nil })

	tr := b.Config().Transforms()
	require.Len(t, tr, 2)
	assert.Equal(t, "a", tr[0].Name)
	out, err := tr[0].Fn("index.html", nil)
	require.NoError(t, err)
	assert.Equal(t, "a2", string(out))
}

func TestPluginRegisteredOnce(t *testing.T) {
	b := config.NewBuilder(nil)
	p := &stubPlugin{}
	b.AddPlugin(p)
	b.AddPlugin(p)

	cfg := b.Config()
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, []string{"stub"}, cfg.Plugins)
	assert.Equal(t, []string{"stub"}, cfg.FilterNames())
}

func TestPassthroughIdempotent(t *testing.T) {
	b := config.NewBuilder(nil)
	b.AddPassthroughCopy("src/css")
	b.AddPassthroughCopy("src/css/")
	b.AddPassthroughCopy("src/assets")
	assert.Equal(t, []string{"src/css", "src/assets"}, b.Config().Passthrough)
}

func TestConfigIsSnapshot(t *testing.T) {
	b := config.NewBuilder(nil)
	b.AddPassthroughCopy("src/css")
	cfg := b.Config()

	b.AddPassthroughCopy("src/pages")
	b.AddFilter("late", func(v any) (string, error) { return "", nil })

	assert.Equal(t, []string{"src/css"}, cfg.Passthrough)
	_, ok := cfg.Filter("late")
	assert.False(t, ok)
}

func TestDefaults(t *testing.T) {
	cfg := config.NewBuilder(nil).Config()
	assert.Equal(t, config.TemplateEngines{
		Markdown: config.EnginePlain,
		Data:     config.EnginePlain,
		HTML:     config.EnginePlain,
	}, cfg.TemplateEngines)
	assert.Equal(t, config.DefaultDirs(), cfg.Dirs)
}

func TestSetDirsKeepsDefaults(t *testing.T) {
	b := config.NewBuilder(nil)
	b.SetDirs(config.Dirs{Input: "src", Output: "_site"})
	d := b.Config().Dirs
	assert.Equal(t, "src", d.Input)
	assert.Equal(t, "_includes", d.Includes)
	assert.Equal(t, "_data", d.Data)
}

func TestPassthroughRoots(t *testing.T) {
	b := config.NewBuilder(nil)
	b.SetDirs(config.Dirs{Input: "src", Output: "_site"})
	b.AddPassthroughCopy("src/css")
	b.AddPassthroughCopy("src/pages")
	b.AddPassthroughCopy("vendor/js")
	cfg := b.Config()

	assert.Equal(t, []string{"css", "pages"}, cfg.PassthroughRoots())

	tests := []struct {
		name string
		want bool
	}{
		{"css", true},
		{"css/site.css", true},
		{"pages/about/team.jpg", true},
		{"cssx/site.css", false},
		{"index.md", false},
		{"js/app.js", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cfg.IsPassthrough(tt.name), tt.name)
	}
}

func TestTemplateEnginesFor(t *testing.T) {
	e := config.TemplateEngines{Markdown: config.EngineGo, Data: config.EngineGoText, HTML: config.EngineGoHTML}
	assert.Equal(t, config.EngineGo, e.For(config.CategoryMarkdown))
	assert.Equal(t, config.EngineGoText, e.For(config.CategoryData))
	assert.Equal(t, config.EngineGoHTML, e.For(config.CategoryHTML))
	assert.Empty(t, e.For("css"))
}
