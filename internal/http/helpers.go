package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"rinkbook/internal/core"
	"rinkbook/internal/services"
	"rinkbook/internal/storage"
)

// maxBodyBytes bounds JSON request bodies. Imports carry whole snapshots.
const maxBodyBytes = 8 << 20

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// errBadBody marks a request body that could not be decoded.
var errBadBody = errors.New("invalid request body")

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "Request failed",
			"request_id", chimiddleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err)
	}
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

// respondServiceError maps service and storage errors onto status codes.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errBadBody), errors.Is(err, services.ErrValidation):
		respondError(w, r, http.StatusUnprocessableEntity, err.Error(), err)
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "resource not found", err)
	default:
		respondError(w, r, http.StatusInternalServerError, "internal server error", err)
	}
}

// decodeJSON reads the request body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

// seasonParam reads the optional "season" query value. An empty value lets
// the service pick the current season.
func seasonParam(r *http.Request) core.Season {
	return core.Season(strings.TrimSpace(r.URL.Query().Get("season")))
}
