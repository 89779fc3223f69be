// Package audit appends accepted submissions to a local NDJSON log.
// Writes are best-effort: the relay path must never fail because the
// local disk did. Concurrent processes rely on O_APPEND being atomic for
// small writes, which POSIX grants for regular files.
package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mmmuzammal/framer-outseta-webhook/internal/model"
)

// Writer appends one audit record per accepted submission.
type Writer struct {
	log  *zap.Logger
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// New creates a Writer. An empty path disables persistence.
func New(path string, log *zap.Logger) *Writer {
	return &Writer{log: log, path: path, now: time.Now}
}

// Record appends one line for the submission together with the raw body.
// Failures are logged and swallowed.
func (w *Writer) Record(sub model.Submission, raw []byte) {
	if w.path == "" {
		return
	}

	line, err := json.Marshal(model.AuditRecord{
		Time:       w.now().UTC(),
		Submission: sub,
		Raw:        string(raw),
	})
	if err != nil {
		w.log.Warn("audit: marshal failed", zap.Error(err))
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			w.log.Warn("audit: create log directory failed", zap.String("path", w.path), zap.Error(err))
			return
		}
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		w.log.Warn("audit: open log failed", zap.String("path", w.path), zap.Error(err))
		return
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		w.log.Warn("audit: write failed", zap.String("path", w.path), zap.Error(err))
	}
}
