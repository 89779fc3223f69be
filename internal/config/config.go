// Package config handles application configuration via environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Secret sources the authenticator may consult, in configured order.
const (
	SecretSourceBody   = "body"
	SecretSourceHeader = "header"
	SecretSourceQuery  = "query"
)

// Config holds all configurable values for the app.
type Config struct {
	Env  string
	Port string

	WebhookSecret          string
	SecretSources          []string
	TrustPlatformSignature bool

	OutsetaBaseURL   string
	OutsetaAPIKey    string
	OutsetaAPISecret string

	NewsletterListUID string
	PlanUIDs          map[string]string
	SupportTickets    bool

	AuditLogPath string
}

// Load reads environment variables and populates a Config struct.
func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		WebhookSecret:          os.Getenv("FRAMER_WEBHOOK_SECRET"),
		SecretSources:          parseSecretSources(getEnv("SECRET_SOURCES", "body,header,query")),
		TrustPlatformSignature: getBool("TRUST_PLATFORM_SIGNATURE", false),

		OutsetaBaseURL:   getEnv("OUTSETA_BASE_URL", "https://api.outseta.com/api/v1"),
		OutsetaAPIKey:    os.Getenv("OUTSETA_API_KEY"),
		OutsetaAPISecret: os.Getenv("OUTSETA_API_SECRET"),

		NewsletterListUID: os.Getenv("NEWSLETTER_LIST_UID"),
		PlanUIDs: map[string]string{
			"base":    os.Getenv("BASE_PLAN_UID"),
			"premium": os.Getenv("PREMIUM_PLAN_UID"),
		},
		SupportTickets: getBool("SUPPORT_TICKETS", false),

		AuditLogPath: getEnv("AUDIT_LOG_PATH", "data/submissions.ndjson"),
	}
}

func parseSecretSources(raw string) []string {
	var sources []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		switch s {
		case SecretSourceBody, SecretSourceHeader, SecretSourceQuery:
			sources = append(sources, s)
		default:
			log.Panicf("Invalid SECRET_SOURCES entry: %q", s)
		}
	}
	if len(sources) == 0 {
		log.Panicf("SECRET_SOURCES must name at least one source")
	}
	return sources
}

func getBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		log.Panicf("Invalid %s: %v", key, err)
	}
	return b
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
