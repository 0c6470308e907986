package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/erazemk/garderoba/internal/closet"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

type validationResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// closetError maps closet errors to responses. It reports whether err was
// one of them.
func closetError(w http.ResponseWriter, err error) bool {
	var verr *closet.ValidationError
	switch {
	case errors.As(err, &verr):
		jsonResponse(w, http.StatusBadRequest, validationResponse{Error: "invalid item", Fields: verr.Fields})
	case errors.Is(err, closet.ErrNotFound):
		jsonError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, closet.ErrFetchFailed):
		jsonError(w, http.StatusServiceUnavailable, closet.ErrFetchFailed.Error())
	case errors.Is(err, closet.ErrSuperseded):
		jsonError(w, http.StatusConflict, closet.ErrSuperseded.Error())
	default:
		return false
	}
	return true
}

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(target)
}
