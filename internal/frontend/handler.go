// Package frontend provides the built-in web chat UI.
package frontend

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed web
var webFS embed.FS

// Handler serves the embedded frontend static files.
type Handler struct {
	fileServer http.Handler
	files      fs.FS
	prefix     string
}

// NewHandler creates a frontend handler that serves embedded static files.
// The prefix is the URL path prefix (e.g., "/ui").
func NewHandler(prefix string) *Handler {
	subFS, _ := fs.Sub(webFS, "web")

	return &Handler{
		fileServer: http.FileServer(http.FS(subFS)),
		files:      subFS,
		prefix:     prefix,
	}
}

// ServeHTTP serves embedded static files with SPA fallback to index.html.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, h.prefix)
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		path = "index.html"
	}

	if _, err := fs.Stat(h.files, path); err != nil {
		// Unknown path, serve index.html for client-side routing.
		r.URL.Path = h.prefix + "/"
	}

	http.StripPrefix(h.prefix, h.fileServer).ServeHTTP(w, r)
}

// Mount registers the frontend handler on the given ServeMux.
// It mounts on both "/" and the handler's prefix.
func Mount(mux *http.ServeMux, h *Handler) {
	mux.Handle(h.prefix+"/", h)
	mux.Handle("/", h)
}
