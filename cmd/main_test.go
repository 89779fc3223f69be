package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRun_StartsAndShutsDown(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("PORT", "18080")
	t.Setenv("FRAMER_WEBHOOK_SECRET", "S")
	t.Setenv("OUTSETA_BASE_URL", "http://localhost:9999") // dummy endpoint
	t.Setenv("AUDIT_LOG_PATH", t.TempDir()+"/submissions.ndjson")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := Run(ctx)
	assert.NoError(t, err)
}
