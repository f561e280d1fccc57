package ports

import (
	"context"
	"time"
)

// AuditEventType names a security-relevant occurrence.
type AuditEventType string

const (
	AuditAccountRegistered AuditEventType = "account_registered"
	AuditLoginSucceeded    AuditEventType = "login_succeeded"
	AuditLoginFailed       AuditEventType = "login_failed"
	AuditAccessDenied      AuditEventType = "access_denied"
)

// AuditEvent never carries secrets, hashes or tokens.
type AuditEvent struct {
	ID         string
	Type       AuditEventType
	Username   string
	AccountID  int64
	Reason     string
	OccurredAt time.Time
}

// AuditRecorder accepts events without blocking the caller.
type AuditRecorder interface {
	Record(event AuditEvent)
}

// AuditRepository persists audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event AuditEvent) error
}

// NopAuditRecorder discards every event.
type NopAuditRecorder struct{}

func (NopAuditRecorder) Record(AuditEvent) {}
