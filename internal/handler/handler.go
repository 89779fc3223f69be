// Package handler contains HTTP handlers for the webhook relay.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mmmuzammal/framer-outseta-webhook/internal/apperror"
	"github.com/mmmuzammal/framer-outseta-webhook/internal/audit"
	"github.com/mmmuzammal/framer-outseta-webhook/internal/auth"
	"github.com/mmmuzammal/framer-outseta-webhook/internal/form"
	"github.com/mmmuzammal/framer-outseta-webhook/internal/relay"
)

// Handler wraps the relay pipeline behind HTTP.
type Handler struct {
	log      *zap.Logger
	auth     *auth.Authenticator
	audit    *audit.Writer
	relay    relay.Service
	validate *validator.Validate
}

// New creates a new Handler instance.
func New(log *zap.Logger, a *auth.Authenticator, w *audit.Writer, svc relay.Service, v *validator.Validate) *Handler {
	return &Handler{log: log, auth: a, audit: w, relay: svc, validate: v}
}

// Healthz is a simple health check endpoint.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Relay receives one form submission and forwards it to the CRM.
func (h *Handler) Relay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.Warn("failed to read request body", zap.Error(err))
		body = nil
	}
	fields := form.Parse(body, r.Header.Get("Content-Type"))

	if !h.auth.Authorize(r, fields) {
		h.log.Warn("rejected webhook with invalid secret", zap.String("remote", r.RemoteAddr))
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid webhook secret"})
		return
	}

	sub := form.Canonical(fields)
	if err := h.validate.Struct(sub); err != nil {
		h.log.Warn("validation failed", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": apperror.ValidationMessage(err)})
		return
	}

	h.audit.Record(sub, body)

	result, err := h.relay.Process(r.Context(), sub)
	if err != nil {
		var upstream *apperror.UpstreamError
		if errors.As(err, &upstream) {
			h.log.Error("relay aborted on upstream failure",
				zap.String("endpoint", upstream.Endpoint),
				zap.Int("status", upstream.Status))
		} else {
			h.log.Error("relay failed", zap.Error(err))
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "server error"})
		return
	}

	resp := map[string]any{
		"ok":     true,
		"person": result.Person,
	}
	if result.Account != nil {
		resp["account"] = result.Account
	}
	if result.Subscription != nil {
		resp["subscription"] = result.Subscription
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
