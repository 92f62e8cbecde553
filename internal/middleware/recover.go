package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/passabola/chatbot/internal/response"
	"github.com/passabola/chatbot/pkg/logger"
)

type recoverMiddleware struct {
	ResponseHandler response.ResponseHandler
}

func NewRecoverMiddleware(rh response.ResponseHandler) *recoverMiddleware {
	return &recoverMiddleware{ResponseHandler: rh}
}

// Recover turns a panic in a handler into the generic 500 payload.
func (m *recoverMiddleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.FromContext(r.Context()).Error("handler panicked",
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
			)
			m.ResponseHandler.HandleError(w, r, fmt.Errorf("panic: %v", rec))
		}()

		next.ServeHTTP(w, r)
	})
}
