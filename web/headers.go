package web

import (
	"net/http"
	"strings"
	"time"
)

var gmt = func() *time.Location {
	loc, err := time.LoadLocation("GMT")
	if err != nil {
		return time.UTC
	}
	return loc
}()

// HeaderHandler sets the given headers on every response.
func HeaderHandler(h http.Handler, headers map[string]string) http.Handler {
	if len(headers) == 0 {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		h.ServeHTTP(w, r)
	})
}

// ExpiresHandler sets the Expires header, using pageExpiry for rendered pages
// and staticExpiry for everything else. A zero duration sets no header.
func ExpiresHandler(h http.Handler, pageExpiry, staticExpiry time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expiry := staticExpiry
		if isPage(r.URL.Path) {
			expiry = pageExpiry
		}
		if expiry != 0 {
			w.Header().Set("Expires", expiresAt(time.Now(), expiry))
		}
		h.ServeHTTP(w, r)
	})
}

// isPage reports whether p names a rendered page or a folder index.
func isPage(p string) bool {
	return p == "" || strings.HasSuffix(p, "/") || strings.HasSuffix(p, ".html")
}

func expiresAt(now time.Time, d time.Duration) string {
	return now.Add(d).In(gmt).Format(time.RFC1123)
}
