// Package main provides the entry point for the webhook relay.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mmmuzammal/framer-outseta-webhook/internal/audit"
	"github.com/mmmuzammal/framer-outseta-webhook/internal/auth"
	"github.com/mmmuzammal/framer-outseta-webhook/internal/config"
	"github.com/mmmuzammal/framer-outseta-webhook/internal/crm"
	"github.com/mmmuzammal/framer-outseta-webhook/internal/handler"
	"github.com/mmmuzammal/framer-outseta-webhook/internal/logger"
	"github.com/mmmuzammal/framer-outseta-webhook/internal/relay"
)

// Run is the testable entrypoint for the application.
func Run(ctx context.Context) error {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.Env)
	log.Info("Starting Framer webhook relay")

	client := crm.NewClient(cfg.OutsetaBaseURL, cfg.OutsetaAPIKey, cfg.OutsetaAPISecret, log)
	svc := relay.New(cfg, client, log)
	h := handler.New(log, auth.New(cfg), audit.New(cfg.AuditLogPath, log), svc, validator.New())

	r := chi.NewRouter()
	r.Get("/healthz", h.Healthz)
	r.Post("/webhook/framer-submission", h.Relay)
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down server")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := Run(ctx); err != nil {
		os.Exit(1)
	}
}
