package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/passabola/chatbot/internal/handlers"
	"github.com/passabola/chatbot/internal/middleware"
	"github.com/passabola/chatbot/internal/response"
)

// NewRouter wires the chat and health endpoints shared by both binaries.
// CORS is only enabled when allowedOrigins is non-empty.
func NewRouter(deps *handlers.Deps, allowedOrigins []string) chi.Router {
	r := chi.NewRouter()

	lm := middleware.NewLoggerMiddleware(deps.Log)
	rm := middleware.NewRecoverMiddleware(deps.ResponseHandler)

	r.Use(chimiddleware.RequestID)
	r.Use(lm.LoggerMiddleware)
	r.Use(rm.Recover)
	if len(allowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}).Handler)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		deps.ResponseHandler.WriteError(w, r, http.StatusNotFound, response.CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		deps.ResponseHandler.WriteError(w, r, http.StatusMethodNotAllowed, response.CodeMethodNotAllowed, "method not allowed")
	})

	ch := handlers.NewChatHandlers(deps)
	hh := handlers.NewHealthHandlers(deps)

	r.Post("/chat", ch.Chat)
	r.Get("/health", hh.Health)
	return r
}
