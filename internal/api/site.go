package api

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

const indexFile = "index.html"

// SiteHandler serves a pre-rendered single page application build.
type SiteHandler struct {
	fsys fs.FS
}

// NewSiteHandler serves the build found in distDir.
func NewSiteHandler(distDir string) *SiteHandler {
	return &SiteHandler{fsys: os.DirFS(distDir)}
}

// Resolve maps a request path to a file of the build. Lookup order: the
// file itself, the pre-rendered <path>/index.html, <path>.html and finally
// the application shell index.html. Paths with a file extension never fall
// back to the shell. The bool is false when nothing matched.
func (h *SiteHandler) Resolve(urlPath string) (string, bool) {
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		return indexFile, h.isFile(indexFile)
	}

	for _, candidate := range []string{name, path.Join(name, indexFile), name + ".html"} {
		if h.isFile(candidate) {
			return candidate, true
		}
	}

	if path.Ext(name) != "" {
		return "", false
	}

	return indexFile, h.isFile(indexFile)
}

func (h *SiteHandler) isFile(name string) bool {
	st, err := fs.Stat(h.fsys, name)

	return err == nil && st.Mode().IsRegular()
}

// ServeHTTP implements http.Handler.
func (h *SiteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)

		return
	}

	name, ok := h.Resolve(r.URL.Path)
	if !ok {
		http.NotFound(w, r)

		return
	}

	http.ServeFileFS(w, r, h.fsys, name)
}
