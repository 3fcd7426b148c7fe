package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cimillas/bloodbank/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeValidationFailed   = "validation_failed"
	codeInvalidID          = "invalid_id"
	codeInvalidPagination  = "invalid_pagination"
	codeNotReady           = "not_ready"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeErrorDetails(w, status, code, msg, nil)
}

func writeErrorDetails(w http.ResponseWriter, status int, code, msg string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Message: msg,
		Code:    code,
		Details: details,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"message":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// statusForKind is the single mapping from error kind to HTTP status.
func statusForKind(k domain.Kind) int {
	switch k {
	case domain.KindValidation, domain.KindInsufficientStock:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders a service failure. Unclassified errors are logged
// with the request logger and hidden behind a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		writeErrorDetails(w, statusForKind(de.Kind), de.Code, de.Message, de.Details)
		return
	}
	LoggerFrom(r.Context()).ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
