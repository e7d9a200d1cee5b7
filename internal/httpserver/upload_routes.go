package httpserver

import (
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"messenger/internal/blob"
)

// UploadRoutes returns a sub-router mounted at /uploads that serves stored
// message attachments.
func UploadRoutes(blobs *blob.DiskStore) chi.Router {
	r := chi.NewRouter()

	r.Get("/{filename}", func(w http.ResponseWriter, r *http.Request) {
		filename := chi.URLParam(r, "filename")
		f, err := blobs.Open(filename)
		switch {
		case errors.Is(err, blob.ErrInvalidName):
			badRequest(w, "invalid filename")
			return
		case errors.Is(err, os.ErrNotExist):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "file not found"})
			return
		case err != nil:
			writeError(w, err)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			writeError(w, err)
			return
		}
		http.ServeContent(w, r, filename, info.ModTime(), f)
	})

	return r
}
