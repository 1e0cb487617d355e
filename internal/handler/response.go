// Package handler implements the HTTP layer: it parses requests, calls the
// service layer, and translates domain errors into status codes.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/snippetbin/internal/apperror"
)

// ErrorResponse is the standard error format for non-validation failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP response.
//
// Validation failures are special-cased: the body is a map of field name to
// messages, so a client can report every problem at once. Everything else
// uses the ErrorResponse shape.
func writeError(w http.ResponseWriter, err error) {
	var verrs apperror.ValidationErrors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusBadRequest, verrs)
		return
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation):
			field := appErr.Field
			if field == "" {
				field = "detail"
			}
			writeJSON(w, http.StatusBadRequest, map[string][]string{field: {appErr.Message}})
		case errors.Is(err, apperror.ErrNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: appErr.Message})
		case errors.Is(err, apperror.ErrUnauthorized):
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: appErr.Message})
		case errors.Is(err, apperror.ErrForbidden):
			writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: appErr.Message})
		case errors.Is(err, apperror.ErrConflict):
			writeJSON(w, http.StatusConflict, ErrorResponse{Error: "conflict", Message: appErr.Message})
		default:
			writeInternalError(w, err)
		}
		return
	}

	writeInternalError(w, err)
}

func writeInternalError(w http.ResponseWriter, err error) {
	// Internal details stay in the log, never in the response body.
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "something went wrong",
	})
}
