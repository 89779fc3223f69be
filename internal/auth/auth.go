// Package auth validates the shared webhook secret.
package auth

import (
	"net/http"
	"strings"

	"github.com/mmmuzammal/framer-outseta-webhook/internal/config"
)

// Header names the platform and older export versions have used.
const (
	headerSecret          = "X-Webhook-Secret"
	headerFramerSecret    = "X-Framer-Webhook-Secret"
	headerFramerSignature = "X-Framer-Signature"
)

// Authenticator checks inbound requests against the configured secret.
type Authenticator struct {
	secret        string
	sources       []string
	trustPlatform bool
}

// New creates an Authenticator from config.
func New(cfg *config.Config) *Authenticator {
	return &Authenticator{
		secret:        cfg.WebhookSecret,
		sources:       cfg.SecretSources,
		trustPlatform: cfg.TrustPlatformSignature,
	}
}

// Authorize reports whether the request may proceed. fields is the already
// normalized body; the candidate secret is taken from the first configured
// source that yields one and compared case-sensitively after trimming. An
// empty configured secret rejects everything. When the platform-signature
// trust flag is on, a request carrying the platform signature header skips
// the secret check entirely.
func (a *Authenticator) Authorize(r *http.Request, fields map[string]string) bool {
	if a.trustPlatform && r.Header.Get(headerFramerSignature) != "" {
		return true
	}
	if a.secret == "" {
		return false
	}

	candidate := a.candidate(r, fields)
	return strings.TrimSpace(candidate) == a.secret
}

func (a *Authenticator) candidate(r *http.Request, fields map[string]string) string {
	for _, source := range a.sources {
		switch source {
		case config.SecretSourceBody:
			if v := fields["webhook_secret"]; v != "" {
				return v
			}
			if v := fields["secret"]; v != "" {
				return v
			}
		case config.SecretSourceHeader:
			if v := r.Header.Get(headerSecret); v != "" {
				return v
			}
			if v := r.Header.Get(headerFramerSecret); v != "" {
				return v
			}
		case config.SecretSourceQuery:
			q := r.URL.Query()
			if v := q.Get("webhook_secret"); v != "" {
				return v
			}
			if v := q.Get("secret"); v != "" {
				return v
			}
		}
	}
	return ""
}
