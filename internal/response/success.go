package response

import (
	"encoding/json"
	"net/http"

	"github.com/passabola/chatbot/pkg/logger"
)

// WriteSuccess encodes data as the whole response body. Chat clients read
// the answer from the top-level "response" field, so there is no envelope.
func (h *responseHandler) WriteSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Last-ditch logging; can't return an error now
		logger.FromContext(r.Context()).Error("failed to encode success response", "error", err, "status", status)
	}
}
