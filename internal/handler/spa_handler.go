package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const indexFile = "index.html"

// SPAHandler serves the prebuilt frontend bundle. Paths that do not name an
// existing file fall back to index.html so client-side routes resolve.
type SPAHandler struct {
	dir   string
	files http.Handler
}

// NewSPAHandler creates an SPAHandler rooted at dir.
func NewSPAHandler(dir string) *SPAHandler {
	return &SPAHandler{dir: dir, files: http.FileServer(http.Dir(dir))}
}

// ServeHTTP handles GET and HEAD for every non-API path.
func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// API paths never get the SPA entry point.
	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "Not found"})
		return
	}

	// path.Clean on a rooted path strips any ".." segments.
	upath := path.Clean("/" + r.URL.Path)
	full := filepath.Join(h.dir, filepath.FromSlash(upath))

	if info, err := os.Stat(full); err == nil {
		if !info.IsDir() {
			h.files.ServeHTTP(w, r)
			return
		}
		if _, err := os.Stat(filepath.Join(full, indexFile)); err == nil {
			h.files.ServeHTTP(w, r)
			return
		}
	}

	h.serveIndex(w, r)
}

// serveIndex writes the entry point without FileServer's index.html redirect.
func (h *SPAHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(filepath.Join(h.dir, indexFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, indexFile, info.ModTime(), f)
}
