// Package site serves the built frontend from disk.
package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/okian/stride/pkg/logger"
)

// Error constants
var (
	ErrNoIndex   = errors.New("static dir has no index.html")
	ErrStaticDir = errors.New("static dir unreadable")
)

// Register serves dir at / when it holds an index.html. Unknown paths that
// are not under /api/ fall back to index.html so client-side routes resolve.
// The pattern carries no method so it never conflicts with method-less API
// routes; ServeHTTP enforces GET and HEAD. A missing build returns
// ErrNoIndex and leaves / unregistered.
func Register(ctx context.Context, mux *http.ServeMux, dir string) error {
	if mux == nil {
		panic("mux is nil")
	}
	h, err := NewRootHandler(dir)
	if err != nil {
		logger.Default().Named("site").Warn(ctx, "frontend not served",
			logger.String("dir", dir),
			logger.Error(err),
		)
		return err
	}
	mux.Handle("/", h)
	return nil
}

// RootHandler serves static files with an index.html fallback.
type RootHandler struct {
	dir   string
	files http.Handler
}

// NewRootHandler creates a handler for dir.
func NewRootHandler(dir string) (*RootHandler, error) {
	info, err := os.Stat(filepath.Join(dir, "index.html"))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, errors.Join(ErrNoIndex, err)
	case err != nil:
		return nil, errors.Join(ErrStaticDir, err)
	case info.IsDir():
		return nil, fmt.Errorf("%w: index.html is a directory", ErrNoIndex)
	}
	return &RootHandler{dir: dir, files: http.FileServer(http.Dir(dir))}, nil
}

func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if strings.HasPrefix(r.URL.Path, "/api/") {
		http.NotFound(w, r)
		return
	}
	name := filepath.Join(h.dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
	if info, err := os.Stat(name); err != nil || (info.IsDir() && r.URL.Path != "/") {
		http.ServeFile(w, r, filepath.Join(h.dir, "index.html"))
		return
	}
	h.files.ServeHTTP(w, r)
}
