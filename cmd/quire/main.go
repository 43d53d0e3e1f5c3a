// Command quire builds the site in the current folder, or serves a live
// rendering of it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/ancientlore/cachefs"
	"github.com/facebookgo/flagenv"
	"github.com/golang/groupcache"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ancientlore/quire/build"
	"github.com/ancientlore/quire/config"
	"github.com/ancientlore/quire/logging"
	"github.com/ancientlore/quire/site"
	"github.com/ancientlore/quire/virtual"
	"github.com/ancientlore/quire/web"
)

type options struct {
	root              string
	env               string
	locale            string
	serve             bool
	port              int
	cacheSize         int64
	cacheDuration     time.Duration
	readTimeout       time.Duration
	readHeaderTimeout time.Duration
	writeTimeout      time.Duration
	debug             bool
}

// main is where it all begins.
func main() {
	// .env values are defaults; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "cannot load .env: %s\n", err)
		os.Exit(1)
	}

	var opts options
	flag.StringVar(&opts.root, "root", ".", "Project folder containing the input directory.")
	flag.StringVar(&opts.env, "eleventy-env", "", "Environment name; \"development\" disables the path prefix.")
	flag.StringVar(&opts.locale, "locale", "", "Locale used to format dates.")
	flag.BoolVar(&opts.serve, "serve", false, "Serve the site instead of building it.")
	flag.IntVar(&opts.port, "port", 8080, "Port to listen on.")
	flag.Int64Var(&opts.cacheSize, "cache", 10*1024*1024, "Size of the preview cache in bytes.")
	flag.DurationVar(&opts.cacheDuration, "cache-duration", 10*time.Second, "How long preview pages are cached.")
	flag.DurationVar(&opts.readTimeout, "readtimeout", 10*time.Second, "HTTP server read timeout.")
	flag.DurationVar(&opts.readHeaderTimeout, "readheadertimeout", 5*time.Second, "HTTP server read header timeout.")
	flag.DurationVar(&opts.writeTimeout, "writetimeout", 30*time.Second, "HTTP server write timeout.")
	flag.BoolVar(&opts.debug, "debug", false, "Log human-readable debug output.")
	flag.Parse()
	flagenv.Parse()

	logger, err := logging.New(opts.debug || opts.env == site.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := os.Chdir(opts.root); err != nil {
		logger.Fatal("cannot switch to root", zap.String("root", opts.root), zap.Error(err))
	}

	cfg := site.Resolve(site.Options{
		Env:    opts.env,
		Locale: opts.locale,
		Logger: logger,
	})
	logger.Info("configuration resolved",
		zap.String("env", cfg.Environment),
		zap.String("pathPrefix", cfg.PathPrefix),
		zap.Strings("passthrough", cfg.Passthrough),
		zap.Strings("plugins", cfg.Plugins),
		zap.Strings("filters", cfg.FilterNames()),
		zap.Strings("shortcodes", cfg.ShortcodeNames()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.serve {
		err = serve(ctx, cfg, opts, logger)
	} else {
		_, err = build.Run(ctx, cfg, build.Options{
			Logger:  logger,
			Metrics: build.NewMetrics(prometheus.DefaultRegisterer),
		})
	}
	if err != nil {
		logger.Error("quire failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(2)
	}
}

// serve renders the input directory on request until ctx is done.
func serve(ctx context.Context, cfg *config.Config, opts options, logger *zap.Logger) error {
	vfs, err := virtual.New(os.DirFS(filepath.FromSlash(cfg.Dirs.Input)), cfg, logger)
	if err != nil {
		return err
	}
	srvCfg, err := vfs.ServerConfig()
	if err != nil {
		return err
	}

	// Single process, so groupcache has no peers
	groupcache.RegisterPeerPicker(func() groupcache.PeerPicker { return groupcache.NoPeers{} })
	cached := cachefs.New(vfs, &cachefs.Config{
		GroupName:   "quire",
		SizeInBytes: opts.cacheSize,
		Duration:    opts.cacheDuration,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", web.HeaderHandler(
		web.ExpiresHandler(
			gziphandler.GzipHandler(
				web.ErrorHandler(http.FileServer(http.FS(cached)), cached, logger),
			),
			time.Duration(srvCfg.Expires),
			time.Duration(srvCfg.StaticExpires),
		),
		srvCfg.Headers))

	var srv = http.Server{
		Addr:              fmt.Sprintf(":%d", opts.port),
		Handler:           web.LogHandler(mux, logger),
		ReadTimeout:       opts.readTimeout,
		WriteTimeout:      opts.writeTimeout,
		ReadHeaderTimeout: opts.readHeaderTimeout,
	}

	// SIGHUP reloads layouts and global data
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-hup:
				if err := vfs.Reload(); err != nil {
					logger.Error("reload failed", zap.Error(err))
				} else {
					logger.Info("reloaded layouts and data")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown", zap.Error(err))
		}
	}()

	logger.Info("listening for requests", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server: %w", err)
	}
	logger.Info("goodbye")
	return nil
}
