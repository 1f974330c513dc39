package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sagaasachin/MaanClothing/internal/logger"
	"github.com/sagaasachin/MaanClothing/internal/repository"
	"github.com/sagaasachin/MaanClothing/internal/service"
	"go.uber.org/zap"
)

// statusClientClosedRequest is the nginx convention for a caller that went
// away before the response was ready.
const statusClientClosedRequest = 499

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps domain and persistence errors to HTTP responses.
// Anything unrecognised is logged and reported as a 500 without details.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *service.ValidationError

	switch {
	case errors.As(err, &vErr):
		respondError(w, http.StatusBadRequest, "invalid_argument", vErr.Error())
	case errors.Is(err, service.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, repository.ErrInsufficientStock):
		respondError(w, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.Is(err, repository.ErrConflict):
		respondError(w, http.StatusConflict, "conflict", "the resource was modified concurrently, retry the request")
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrCartNotFound),
		errors.Is(err, repository.ErrItemNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	case errors.Is(err, context.Canceled):
		logger.FromContext(r.Context()).Debug("request canceled by client", zap.Error(err))
		respondError(w, statusClientClosedRequest, "canceled", "request canceled")
	default:
		logger.FromContext(r.Context()).Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
