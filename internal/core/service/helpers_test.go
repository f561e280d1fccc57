package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lemon/task-api/internal/core/domain"
	"github.com/lemon/task-api/internal/core/ports"
	"github.com/lemon/task-api/internal/infrastructure/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type recordingAudit struct {
	mu     sync.Mutex
	events []ports.AuditEvent
}

func (r *recordingAudit) Record(event ports.AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingAudit) ofType(typ ports.AuditEventType) []ports.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ports.AuditEvent
	for _, e := range r.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

type stubGuard struct {
	acquired bool
	err      error
	released []string
}

func (g *stubGuard) Acquire(context.Context, string) (string, bool, error) {
	if g.err != nil || !g.acquired {
		return "", false, g.err
	}
	return "lock-1", true, nil
}

func (g *stubGuard) Release(_ context.Context, username, token string) error {
	g.released = append(g.released, username+"/"+token)
	return nil
}

// countingHasher wraps the bcrypt hasher and counts dummy verifications.
type countingHasher struct {
	*security.BcryptHasher
	dummies int
}

func (h *countingHasher) VerifyDummy(plaintext string) {
	h.dummies++
	h.BcryptHasher.VerifyDummy(plaintext)
}

func newTestHasher(t *testing.T) *countingHasher {
	t.Helper()
	h, err := security.NewBcryptHasher(4)
	if err != nil {
		t.Fatalf("NewBcryptHasher: %v", err)
	}
	return &countingHasher{BcryptHasher: h}
}

func newTestTokens(t *testing.T) *security.JWTService {
	t.Helper()
	tokens, err := security.NewJWTService(testSecret, security.DefaultTokenTTL)
	if err != nil {
		t.Fatalf("NewJWTService: %v", err)
	}
	return tokens
}

func principal(id int64, username string, role domain.Role) *domain.Principal {
	return &domain.Principal{ID: id, Username: username, Role: role}
}

func assertErr(t *testing.T, got, want error) {
	t.Helper()
	if !errors.Is(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
