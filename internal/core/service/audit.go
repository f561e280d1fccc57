package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/lemon/task-api/internal/core/ports"
)

// auditor stamps events with an id and timestamp before handing them to the
// recorder. A nil recorder discards events.
type auditor struct {
	rec ports.AuditRecorder
	now func() time.Time
}

func newAuditor(rec ports.AuditRecorder) auditor {
	if rec == nil {
		rec = ports.NopAuditRecorder{}
	}
	return auditor{rec: rec, now: time.Now}
}

func (a auditor) record(typ ports.AuditEventType, username string, accountID int64, reason string) {
	a.rec.Record(ports.AuditEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		Username:   username,
		AccountID:  accountID,
		Reason:     reason,
		OccurredAt: a.now().UTC(),
	})
}
