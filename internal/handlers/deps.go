package handlers

import (
	"log/slog"

	"github.com/passabola/chatbot/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	ChatSvc         ChatService
	ServiceName     string
}
