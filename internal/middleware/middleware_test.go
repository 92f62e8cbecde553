package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/passabola/chatbot/internal/response"
	"github.com/passabola/chatbot/pkg/logger"
)

func TestLoggerMiddlewareInjectsRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := NewLoggerMiddleware(log)

	var fromCtx *slog.Logger
	h := chimiddleware.RequestID(m.LoggerMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = logger.FromContext(r.Context())
		fromCtx.Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/chat", nil))

	if fromCtx == nil {
		t.Fatalf("expected logger in context")
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected handler line and access line, got %d: %q", len(lines), buf.String())
	}

	var handlerLine map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &handlerLine); err != nil {
		t.Fatalf("unmarshal handler line: %v", err)
	}
	if handlerLine["method"] != "POST" || handlerLine["path"] != "/chat" {
		t.Fatalf("missing request attributes: %v", handlerLine)
	}
	if id, _ := handlerLine["request_id"].(string); id == "" {
		t.Fatalf("expected request id, got %v", handlerLine["request_id"])
	}

	var access map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &access); err != nil {
		t.Fatalf("unmarshal access line: %v", err)
	}
	if access["msg"] != "request completed" || access["status"] != float64(http.StatusTeapot) {
		t.Fatalf("unexpected access line: %v", access)
	}
	if access["level"] != "WARN" {
		t.Fatalf("expected WARN for 4xx, got %v", access["level"])
	}
}

func TestLoggerMiddlewareDefaultsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	m := NewLoggerMiddleware(log)

	h := m.LoggerMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	var access map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &access); err != nil {
		t.Fatalf("unmarshal access line: %v", err)
	}
	if access["status"] != float64(http.StatusOK) {
		t.Fatalf("expected status 200, got %v", access["status"])
	}
}

func TestRecoverWritesGenericError(t *testing.T) {
	log := slog.New(logger.NewTestHandler(slog.LevelInfo))
	m := NewRecoverMiddleware(response.New(log))

	h := m.Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("matcher exploded")
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	h.ServeHTTP(rr, req.WithContext(logger.ToContext(req.Context(), log)))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body response.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body.Code != response.CodeInternalError || body.Error != response.GenericErrorMessage {
		t.Fatalf("unexpected body: %+v", body)
	}
	if strings.Contains(rr.Body.String(), "matcher exploded") {
		t.Fatalf("panic value leaked to client")
	}
}

func TestRecoverRepanicsOnAbort(t *testing.T) {
	m := NewRecoverMiddleware(response.New(slog.New(logger.NewTestHandler(slog.LevelInfo))))
	h := m.Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Fatalf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
