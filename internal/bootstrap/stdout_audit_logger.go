package bootstrap

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

type AuditLog struct {
	Action  string         `json:"action"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta,omitempty"`
	At      time.Time      `json:"at"`
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}

type stdoutAuditLogger struct{}

func NewStdoutAuditLogger() AuditLogger {
	return stdoutAuditLogger{}
}

func (stdoutAuditLogger) Log(_ context.Context, entry AuditLog) {
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		log.Printf("audit: %s %s", entry.Action, entry.Message)
		return
	}
	log.Printf("audit: %s", payload)
}
