package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/passabola/chatbot/internal/dto"
	"github.com/passabola/chatbot/internal/errs"
	"github.com/passabola/chatbot/internal/response"
)

const maxChatBodyBytes = 64 << 10

// ChatService is implemented by both the FAQ responder and the assistant.
type ChatService interface {
	Reply(ctx context.Context, message string) (dto.ChatResponse, error)
}

type chatHandlers struct {
	ResponseHandler response.ResponseHandler
	ChatSvc         ChatService
}

func NewChatHandlers(deps *Deps) *chatHandlers {
	return &chatHandlers{
		ResponseHandler: deps.ResponseHandler,
		ChatSvc:         deps.ChatSvc,
	}
}

func (h *chatHandlers) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var body dto.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("request body must be a JSON object with a message field"))
		return
	}
	// whitespace-only counts as missing; the matcher would only ever fall back
	if strings.TrimSpace(body.Message) == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("message is required"))
		return
	}

	resp, err := h.ChatSvc.Reply(r.Context(), body.Message)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}
