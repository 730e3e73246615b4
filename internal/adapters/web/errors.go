package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"purchasing-admin/internal/core"
	"purchasing-admin/internal/logging"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorResponse(w, status, errorResponse{
		Error:     message,
		Code:      code,
		RequestID: logging.RequestID(r.Context()),
	})
}

func writeErrorResponse(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps a service error kind to its HTTP status.
// Unclassified errors are logged and reported as 500 without their detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *core.ValidationError
		nf *core.NotFoundError
		ce *core.ConflictError
		te *core.TransactionError
	)
	resp := errorResponse{Error: err.Error(), RequestID: logging.RequestID(r.Context())}

	switch {
	case errors.As(err, &ve):
		resp.Code, resp.Field = "VALIDATION_ERROR", ve.Field
		writeErrorResponse(w, http.StatusUnprocessableEntity, resp)
	case errors.As(err, &nf):
		resp.Code = "NOT_FOUND"
		writeErrorResponse(w, http.StatusNotFound, resp)
	case errors.As(err, &ce):
		resp.Code = "CONFLICT"
		writeErrorResponse(w, http.StatusConflict, resp)
	case errors.Is(err, core.ErrNotImplemented):
		resp.Code = "NOT_IMPLEMENTED"
		writeErrorResponse(w, http.StatusNotImplemented, resp)
	case errors.As(err, &te):
		slog.ErrorContext(r.Context(), "transaction failed", "op", te.Op, "err", te.Err)
		resp.Error, resp.Code = "transaction failed, no changes were saved", "TRANSACTION_ERROR"
		writeErrorResponse(w, http.StatusInternalServerError, resp)
	default:
		slog.ErrorContext(r.Context(), "request failed", "err", err)
		resp.Error, resp.Code = "internal server error", "INTERNAL_ERROR"
		writeErrorResponse(w, http.StatusInternalServerError, resp)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
