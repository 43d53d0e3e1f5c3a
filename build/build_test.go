package build

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ancientlore/quire/config"
	"github.com/ancientlore/quire/site"
)

var sampleSite = map[string]string{
	"src/index.md":            "---\ntitle: Home\ndate: 2024-01-05\n---\n# Hello\n\n{{ .FrontMatter.Date | postDate }}\n",
	"src/about.html":          "<h1>About</h1>",
	"src/tips.md":             "# Tips\n\nPut the `<script>` tag last and close `<style>` early.\n\n<!-- more -->\n\n`{{ .Data.site.tagline }}`\n",
	"src/css/site.css":        "body {}",
	"src/assets/img/logo.svg": "<svg/>",
	"src/pages/guide.md":      "# Guide\n",
	"src/pages/manual.pdf":    "%PDF",
	"src/notes.txt":           "ignored",
	"src/_includes/base.html": "{{.Content}}",
	"src/_data/site.yaml":     "name: test\ntagline: A <script> free blog\n",
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func outputFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files
}

func resolve(t *testing.T) *config.Config {
	return site.Resolve(site.Options{Env: site.Development, Location: time.UTC, Logger: zaptest.NewLogger(t)})
}

func TestRun(t *testing.T) {
	dir := writeTree(t, sampleSite)
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	res, err := Run(context.Background(), resolve(t), Options{WorkDir: dir, Logger: zaptest.NewLogger(t), Metrics: metrics})
	require.NoError(t, err)

	out := filepath.Join(dir, "_site")
	assert.Equal(t, []string{
		"about.html",
		"assets/img/logo.svg",
		"css/site.css",
		"index.html",
		"pages/guide.html",
		"pages/guide.md",
		"pages/manual.pdf",
		"tips.html",
	}, outputFiles(t, out))

	assert.Equal(t, 4, res.Rendered)
	assert.Equal(t, 4, res.Copied)
	assert.NotEmpty(t, res.ID)

	b, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "<h1>Hello</h1>")
	assert.Contains(t, string(b), "Jan 5, 2024")

	b, err = os.ReadFile(filepath.Join(out, "tips.html"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "<code>&lt;script&gt;</code>")
	assert.Contains(t, string(b), "<!-- more -->")
	assert.Contains(t, string(b), "<code>A &lt;script&gt; free blog</code>")

	b, err = os.ReadFile(filepath.Join(out, "css", "site.css"))
	require.NoError(t, err)
	assert.Equal(t, "body {}", string(b))

	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.files.WithLabelValues(KindRendered)))
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.files.WithLabelValues(KindCopied)))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.failures))
}

func TestRunPassthroughOrder(t *testing.T) {
	build := func(rules []string) []string {
		dir := writeTree(t, sampleSite)
		b := config.NewBuilder(nil)
		for _, r := range rules {
			b.AddPassthroughCopy(r)
		}
		b.SetTemplateEngines(config.TemplateEngines{Markdown: site.Engine, Data: site.Engine, HTML: site.Engine})
		b.SetDirs(config.Dirs{Input: "src", Output: "_site"})
		b.AddFilter("postDate", func(v any) (string, error) { return "date", nil })
		_, err := Run(context.Background(), b.Config(), Options{WorkDir: dir})
		require.NoError(t, err)
		return outputFiles(t, filepath.Join(dir, "_site"))
	}
	rules := site.Passthrough()
	forward := build(rules)
	reversed := build([]string{rules[2], rules[1], rules[0]})
	assert.Equal(t, forward, reversed)
}

func TestRunMissingInput(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	_, err := Run(context.Background(), resolve(t), Options{WorkDir: t.TempDir(), Metrics: metrics})
	assert.ErrorIs(t, err, ErrInputMissing)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.failures))
}

func TestRunCanceled(t *testing.T) {
	dir := writeTree(t, sampleSite)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, resolve(t), Options{WorkDir: dir})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRenderError(t *testing.T) {
	files := map[string]string{"src/index.md": "{{ .Broken "}
	_, err := Run(context.Background(), resolve(t), Options{WorkDir: writeTree(t, files)})
	var pe *fs.PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "index.html", pe.Path)
}

func TestRunOutputInsideInput(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"index.md":          "# Root\n",
		"_site/stale.html":  "old",
		"_site/nested.html": "old",
	})
	b := config.NewBuilder(nil)
	b.SetDirs(config.Dirs{Input: ".", Output: "_site"})
	res, err := Run(context.Background(), b.Config(), Options{WorkDir: dir})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rendered)
	assert.Equal(t, []string{"index.html", "nested.html", "stale.html"}, outputFiles(t, filepath.Join(dir, "_site")))
}

func TestOutputWithinInput(t *testing.T) {
	assert.Equal(t, "_site", outputWithinInput("src", filepath.Join("src", "_site")))
	assert.Equal(t, "", outputWithinInput("src", "_site"))
	assert.Equal(t, "", outputWithinInput("src", "src"))
}
