package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"backoffice/pkg/response"
)

// SPAHandler serves a built single-page application from a directory, falling
// back to index.html for client-side routes. Unknown /api/ paths get a JSON 404.
type SPAHandler struct {
	dir string
}

func NewSPAHandler(dir string) *SPAHandler {
	return &SPAHandler{dir: dir}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api" {
		response.Error(w, http.StatusNotFound, "not found")
		return
	}
	if h.dir == "" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		response.Error(w, http.StatusNotFound, "not found")
		return
	}

	// Try to serve the exact file.
	name := filepath.Join(h.dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		if containsDot(r.URL.Path) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		http.ServeFile(w, r, name)
		return
	}

	// File not found - fall back to index.html for SPA routing.
	index := filepath.Join(h.dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		response.Error(w, http.StatusNotFound, "not found")
		return
	}
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	http.ServeFile(w, r, index)
}

// containsDot checks if the last path segment has a file extension.
func containsDot(path string) bool {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return false
		}
		if path[i] == '.' {
			return true
		}
	}
	return false
}
