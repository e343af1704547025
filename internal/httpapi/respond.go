package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/godilite/call-insights/internal/scoring"
	"github.com/godilite/call-insights/internal/service"
	"go.uber.org/zap"
)

type envelope struct {
	Data      any        `json:"data,omitempty"`
	Error     *errorBody `json:"error,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondOK(w http.ResponseWriter, r *http.Request, data any) {
	writeJSON(w, http.StatusOK, envelope{Data: data, RequestID: RequestIDFromContext(r.Context())})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, envelope{
		Error:     &errorBody{Code: code, Message: msg},
		RequestID: RequestIDFromContext(r.Context()),
	})
}

// handleError maps service errors onto HTTP statuses. Unexpected errors are
// logged and reported without detail.
func (h *Handlers) handleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var scoringErr *scoring.ScoringError
	switch {
	case errors.Is(err, service.ErrNoCalls):
		respondError(w, r, http.StatusNotFound, "no_calls", "no calls found for the given period")
	case errors.Is(err, service.ErrNoScores):
		respondError(w, r, http.StatusNotFound, "no_scores", "no scored calls found for the given period")
	case errors.Is(err, service.ErrCallNotFound):
		respondError(w, r, http.StatusNotFound, "call_not_found", "call not found")
	case errors.Is(err, service.ErrNotScored):
		respondError(w, r, http.StatusNotFound, "not_scored", "call has not been scored")
	case errors.Is(err, service.ErrInvalidWindow):
		respondError(w, r, http.StatusBadRequest, "invalid_window", err.Error())
	case errors.As(err, &scoringErr):
		respondError(w, r, http.StatusUnprocessableEntity, scoringErr.Reason(), "call cannot be scored: "+scoringErr.Reason())
	case errors.Is(err, service.ErrSupplierNotConfigured):
		respondError(w, r, http.StatusServiceUnavailable, "supplier_not_configured", "call supplier is not configured")
	case errors.Is(err, service.ErrSupplierFailure):
		h.logger.Error("supplier failure", zap.String("op", op), zap.Error(err))
		respondError(w, r, http.StatusBadGateway, "supplier_error", "supplier error")
	case errors.Is(err, service.ErrStorageFailure):
		h.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "storage_error", "database error")
	default:
		h.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal", op+" failed")
	}
}
