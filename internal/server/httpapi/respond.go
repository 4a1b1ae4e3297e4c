package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/logging"
)

// errorBody is the uniform error envelope: {"error":{"message":..,"status":..}}.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func respondWithJSON(ctx context.Context, w http.ResponseWriter, code int, payload any, logger logging.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error(ctx, "failed to marshal JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error(ctx, "failed to write HTTP response", "error", err)
	}
}

func respondWithError(ctx context.Context, w http.ResponseWriter, code int, message string, logger logging.Logger) {
	respondWithJSON(ctx, w, code, errorBody{Error: errorDetail{Message: message, Status: code}}, logger)
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrConflict),
		errors.Is(err, common.ErrReference),
		errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError is the single place where errors become responses. Unknown
// errors are logged and answered without detail.
func writeError(ctx context.Context, w http.ResponseWriter, err error, logger logging.Logger) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.Error(ctx, "request failed", "error", err)
		respondWithError(ctx, w, code, http.StatusText(code), logger)
		return
	}
	respondWithError(ctx, w, code, common.MessageOf(err, http.StatusText(code)), logger)
}
