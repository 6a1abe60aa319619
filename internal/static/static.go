// Package static раздает собранный фронтенд: существующие файлы отдаются как
// есть, на все остальные пути отвечает index.html.
package static

import (
	"errors"
	"io/fs"
	"net/http"
	"path"

	"mediazip/internal/logger"
)

const indexFile = "/index.html"

type Handler struct {
	root http.FileSystem
}

// New раздает файлы из каталога dir.
func New(dir string) *Handler {
	return NewFS(http.Dir(dir))
}

func NewFS(root http.FileSystem) *Handler {
	return &Handler{root: root}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	name := path.Clean("/" + r.URL.Path)
	if name == "/" {
		name = indexFile
	}

	if h.serveFile(w, r, name) {
		return
	}

	logger.FromContext(r.Context()).Debug("fallback to index", "op", "static", "path", r.URL.Path)
	if !h.serveFile(w, r, indexFile) {
		http.NotFound(w, r)
	}
}

// serveFile отдает обычный файл. Для каталогов и отсутствующих файлов - false.
func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, name string) bool {
	f, err := h.root.Open(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.FromContext(r.Context()).Warn("open failed", "op", "static", "name", name, "error", err)
		}
		return false
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil || st.IsDir() {
		return false
	}

	// Content-Type ServeContent выводит из расширения
	http.ServeContent(w, r, st.Name(), st.ModTime(), f)
	return true
}
