package controller

import (
	"net/http"
	"path"
	"strings"
)

// WithCacheControl sets Cache-Control on responses: fingerprinted build
// assets under assetsPrefix are immutable, everything else (HTML documents,
// sitemap, robots.txt) must be revalidated.
func WithCacheControl(assetsPrefix string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case assetsPrefix != "" && strings.HasPrefix(r.URL.Path, assetsPrefix):
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		case path.Ext(r.URL.Path) == "" || path.Ext(r.URL.Path) == ".html":
			w.Header().Set("Cache-Control", "no-cache")
		default:
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}

		next.ServeHTTP(w, r)
	})
}
