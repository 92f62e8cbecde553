package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/passabola/chatbot/internal/errs"
	"github.com/passabola/chatbot/pkg/logger"
)

const (
	CodeInvalidInput     = "invalid_input"
	CodeInternalError    = "internal_error"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"

	GenericErrorMessage = "An unexpected error occurred"
)

type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (h *responseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Code:  code,
		Error: message,
	}); err != nil {
		log := logger.FromContext(r.Context())
		log.Error("failed to encode error response", "error", err, "status", status, "code", code)
	}
}

// HandleError maps err to a status. Only input validation is reported back
// to the caller; every other failure becomes the same generic 500.
func (h *responseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var (
		validationErr *errs.ValidationError
		externalErr   *errs.ExternalServiceError
		toolErr       *errs.UnsupportedToolError
		malformedErr  *errs.MalformedFunctionCallError
	)

	switch {
	case errors.As(err, &validationErr):
		log.Warn("validation failed", "error", validationErr.Message)
		h.WriteError(w, r, http.StatusBadRequest, CodeInvalidInput, validationErr.Message)
		return

	case errors.As(err, &externalErr):
		level := slog.LevelError
		if externalErr.Transient {
			level = slog.LevelWarn
		}
		log.Log(r.Context(), level, "external service error",
			"service", externalErr.Service,
			"transient", externalErr.Transient,
			"error", externalErr.Message)

	case errors.As(err, &toolErr):
		log.Error("model requested unsupported tool", "tool", toolErr.Tool)

	case errors.As(err, &malformedErr):
		log.Error("malformed function call", "error", malformedErr.Message)

	default:
		log.Error("unexpected error",
			"error", err,
			"type", fmt.Sprintf("%T", err))
	}

	h.WriteError(w, r, http.StatusInternalServerError, CodeInternalError, GenericErrorMessage)
}
