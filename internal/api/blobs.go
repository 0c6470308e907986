package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/garderoba/internal/blob"
)

// BlobReader reads stored photos.
type BlobReader interface {
	Get(ctx context.Context, key string) ([]byte, string, error)
}

// BlobsHandler serves item photos at their public URLs. Keys embed a random
// image id, so the content under a key never changes.
type BlobsHandler struct {
	Objects BlobReader
}

// Get handles GET /blobs/{key...}.
func (h *BlobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if !blob.ValidKey(key) {
		http.NotFound(w, r)
		return
	}

	data, mime, err := h.Objects.Get(r.Context(), key)
	if errors.Is(err, blob.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to read blob", "key", key, "error", err)
		http.Error(w, "failed to read photo", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Write(data)
}
