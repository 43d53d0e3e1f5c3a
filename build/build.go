// Package build writes a site to its output directory.
//
// Run is the engine side of the build configuration: it opens the input
// directory through the rendering view in package virtual and writes every
// visible file, rendered pages and passthrough copies alike, to the output
// directory.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ancientlore/quire/config"
	"github.com/ancientlore/quire/logging"
	"github.com/ancientlore/quire/virtual"
)

// File kinds reported in metrics and results.
const (
	KindRendered = "rendered"
	KindCopied   = "copied"
)

// ErrInputMissing is returned when the input directory does not exist.
var ErrInputMissing = errors.New("input directory missing")

// Options control a build.
type Options struct {
	WorkDir string // directory the configured paths are relative to; empty means the current directory
	Logger  *zap.Logger
	Metrics *Metrics
}

// Result summarizes a build.
type Result struct {
	ID       string
	Rendered int
	Copied   int
	Duration time.Duration
}

// Run builds the site described by cfg.
func Run(ctx context.Context, cfg *config.Config, opts Options) (res *Result, err error) {
	res = &Result{ID: uuid.NewString()}
	log := logging.OrNop(opts.Logger).With(zap.String("build", res.ID))
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		opts.Metrics.done(res.Duration, err)
	}()

	input := filepath.Join(opts.WorkDir, filepath.FromSlash(cfg.Dirs.Input))
	output := filepath.Join(opts.WorkDir, filepath.FromSlash(cfg.Dirs.Output))
	fi, err := os.Stat(input)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !fi.IsDir()) {
		return res, fmt.Errorf("%w: %s", ErrInputMissing, input)
	} else if err != nil {
		return res, fmt.Errorf("build: %w", err)
	}
	if n := len(cfg.Passthrough) - len(cfg.PassthroughRoots()); n > 0 {
		log.Warn("ignoring passthrough rules outside the input directory", zap.Int("count", n), zap.Strings("rules", cfg.Passthrough))
	}

	vfs, err := virtual.New(os.DirFS(input), cfg, log)
	if err != nil {
		return res, fmt.Errorf("build: %w", err)
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		return res, fmt.Errorf("build: %w", err)
	}
	skip := outputWithinInput(input, output)

	log.Info("build started", zap.String("input", input), zap.String("output", output), zap.String("env", cfg.Environment))
	err = fs.WalkDir(vfs, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if name != "." && name == skip {
				return fs.SkipDir
			}
			return nil
		}
		if err := writeFile(vfs, name, filepath.Join(output, filepath.FromSlash(name))); err != nil {
			return err
		}
		kind := KindCopied
		if path.Ext(name) == ".html" {
			kind = KindRendered
			res.Rendered++
		} else {
			res.Copied++
		}
		opts.Metrics.file(kind)
		log.Debug("wrote", zap.String("file", name), zap.String("kind", kind))
		return nil
	})
	if err != nil {
		log.Error("build failed", zap.Error(err))
		return res, fmt.Errorf("build: %w", err)
	}
	log.Info("build finished",
		zap.Int("rendered", res.Rendered),
		zap.Int("copied", res.Copied),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

// writeFile copies name from fsys to dest, creating parent directories.
func writeFile(fsys fs.FS, name, dest string) error {
	src, err := fsys.Open(name)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	dst, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	return dst.Close()
}

// outputWithinInput returns the slash path of output relative to input when
// output lies inside input, or "" otherwise.
func outputWithinInput(input, output string) string {
	rel, err := filepath.Rel(input, output)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return filepath.ToSlash(rel)
}
