package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"hisab/internal/core"
)

type errorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			slog.Error("Failed to encode response body", "error", err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, message, field string) {
	writeJSON(w, status, errorBody{Message: message, Field: field})
}

// writeDomainError maps a domain error onto the wire taxonomy. Validation
// failures become 400 with the implicated field where one exists, missing
// rows become 404, and everything else becomes a generic 500 with the
// detail kept server-side.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", "")
	case errors.Is(err, core.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "invalid amount", "amount")
	case errors.Is(err, core.ErrInvalidType):
		writeError(w, http.StatusBadRequest, "type must be credit or debit", "type")
	case errors.Is(err, core.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD", "date")
	case errors.Is(err, core.ErrEmptyName):
		writeError(w, http.StatusBadRequest, "name is required", "name")
	case errors.Is(err, core.ErrDuplicateCode):
		writeError(w, http.StatusBadRequest, "category code already in use", "code")
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err,
			"method", r.Method,
			"url", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error", "")
	}
}
