package handlers

import (
	"net/http"
	"time"

	"github.com/passabola/chatbot/internal/dto"
	"github.com/passabola/chatbot/internal/response"
)

type healthHandlers struct {
	ResponseHandler response.ResponseHandler
	ServiceName     string
	clockNow        func() time.Time
}

func NewHealthHandlers(deps *Deps) *healthHandlers {
	return &healthHandlers{
		ResponseHandler: deps.ResponseHandler,
		ServiceName:     deps.ServiceName,
		clockNow:        time.Now,
	}
}

func (h *healthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, dto.HealthResponse{
		Status:    "healthy",
		Service:   h.ServiceName,
		Timestamp: h.clockNow().UTC(),
	})
}
