// Package web holds the HTTP handlers used by the preview server.
package web

import (
	"errors"
	"io/fs"
	"net/http"

	"go.uber.org/zap"

	"github.com/ancientlore/quire/logging"
)

// errorPages maps status codes to the pages served in their place.
var errorPages = map[int]string{
	http.StatusNotFound:            "404.html",
	http.StatusInternalServerError: "500.html",
}

// ErrorHandler replaces the body of 404 and 500 responses with /404.html or
// /500.html from fsys, when those pages exist.
func ErrorHandler(h http.Handler, fsys fs.FS, logger *zap.Logger) http.Handler {
	log := logging.OrNop(logger)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(&errorPageWriter{ResponseWriter: w, fsys: fsys, log: log}, r)
	})
}

type errorPageWriter struct {
	http.ResponseWriter
	fsys     fs.FS
	log      *zap.Logger
	replaced bool
	err      error
}

// Write discards the handler's own body once an error page has been sent.
func (w *errorPageWriter) Write(b []byte) (int, error) {
	if w.replaced {
		return len(b), w.err
	}
	return w.ResponseWriter.Write(b)
}

func (w *errorPageWriter) WriteHeader(statusCode int) {
	name, ok := errorPages[statusCode]
	if !ok {
		w.ResponseWriter.WriteHeader(statusCode)
		return
	}
	page, err := fs.ReadFile(w.fsys, name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			w.log.Warn("cannot load error page", zap.String("page", name), zap.Error(err))
		}
		w.ResponseWriter.WriteHeader(statusCode)
		return
	}
	hdr := w.Header()
	hdr.Set("Content-Type", "text/html; charset=utf-8")
	hdr.Del("Content-Length")
	hdr.Del("X-Content-Type-Options")
	w.ResponseWriter.WriteHeader(statusCode)
	w.replaced = true
	_, w.err = w.ResponseWriter.Write(page)
}
