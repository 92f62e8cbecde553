package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/passabola/chatbot/internal/bootstrap"
	"github.com/passabola/chatbot/internal/config"
	"github.com/passabola/chatbot/internal/handlers"
	"github.com/passabola/chatbot/internal/response"
	"github.com/passabola/chatbot/internal/router"
	"github.com/passabola/chatbot/internal/services"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.RunFAQ(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// services
	faqserv := services.NewFAQService(bs.Matcher)

	// response handler
	rh := response.New(bs.Log)

	// dependencies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.ChatSvc = faqserv
	deps.ServiceName = bs.ServiceName

	// router
	r := router.NewRouter(deps, cfg.CORSAllowedOrigins)
	addr := cfg.Addr(config.DefaultFAQPort)
	bs.Log.Info("server listening", "addr", addr)
	err = http.ListenAndServe(addr, r)
	exitOnError("server start failed", err, bs.Log)
}
