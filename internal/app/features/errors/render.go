// internal/app/features/errors/render.go

// Package errors renders API failures as JSON. Handlers hand any error
// to RenderError and the taxonomy decides the status code, so no
// handler picks status codes by hand.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/presently-app/presently/internal/app/system/apperr"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

// RenderJSON writes v as the JSON response body with the given status.
func RenderJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RenderError maps an error kind to its HTTP status and writes the JSON
// body. Internal faults are logged with their cause but reported to the
// client without it.
func RenderError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var status int
	switch {
	case stderrors.Is(err, apperr.ErrInvalid):
		status = http.StatusBadRequest
	case stderrors.Is(err, apperr.ErrForbidden):
		status = http.StatusForbidden
	case stderrors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case stderrors.Is(err, apperr.ErrConflict):
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("internal error", zap.Error(err))
		msg = "internal error"
	}

	RenderJSON(w, status, errorResponse{Error: msg})
}
