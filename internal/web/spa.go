package web

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"records-service/common/httputil"
)

// APINotFound answers unmatched /api routes with a JSON 404.
func APINotFound(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithError(w, http.StatusNotFound, "Not found")
}

// SPA serves files from a static directory and falls back to index.html for
// any other GET so client-side routes resolve.
type SPA struct {
	dir string
}

func NewSPA(dir string) *SPA {
	return &SPA{dir: dir}
}

func (s *SPA) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		APINotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		APINotFound(w, r)
		return
	}

	name := filepath.Join(s.dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		http.ServeFile(w, r, name)
		return
	}

	index := filepath.Join(s.dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, index)
}
