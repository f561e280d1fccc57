package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lemon/task-api/internal/core/domain"
	"github.com/lemon/task-api/internal/core/ports"
	"github.com/lemon/task-api/internal/infrastructure/db/memory"
)

func newAccountFixture(t *testing.T) (*AccountService, *memory.AccountRepository, *countingHasher) {
	t.Helper()
	hasher := newTestHasher(t)
	hash, _ := hasher.Hash("secret1")

	accounts := memory.NewAccountRepository()
	accounts.Put(&domain.Account{ID: 1, Username: "juan", PasswordHash: hash, Role: domain.RoleUser, Enabled: true})
	accounts.Put(&domain.Account{ID: 2, Username: "pedro", PasswordHash: hash, Role: domain.RoleUser, Enabled: true})
	accounts.Put(&domain.Account{ID: 3, Username: "root", PasswordHash: hash, Role: domain.RoleAdmin, Enabled: true})

	return NewAccountService(accounts, hasher, nil, zerolog.Nop()), accounts, hasher
}

func TestAccountService_List(t *testing.T) {
	svc, _, _ := newAccountFixture(t)
	ctx := context.Background()

	if _, err := svc.List(ctx, principal(1, "juan", domain.RoleUser)); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for USER, got %v", err)
	}
	all, err := svc.List(ctx, principal(3, "root", domain.RoleAdmin))
	if err != nil || len(all) != 3 {
		t.Fatalf("admin List: %d accounts, err=%v", len(all), err)
	}
}

func TestAccountService_ListDenialIsAudited(t *testing.T) {
	accounts := memory.NewAccountRepository()
	accounts.Put(&domain.Account{ID: 1, Username: "juan", Role: domain.RoleUser, Enabled: true})
	audit := &recordingAudit{}
	svc := NewAccountService(accounts, newTestHasher(t), audit, zerolog.Nop())

	_, err := svc.List(context.Background(), principal(1, "juan", domain.RoleUser))
	assertErr(t, err, domain.ErrForbidden)

	denied := audit.ofType(ports.AuditAccessDenied)
	if len(denied) != 1 || denied[0].AccountID != 1 || denied[0].Reason != "accounts" {
		t.Fatalf("expected one access_denied event for the listing, got %+v", denied)
	}
}

func TestAccountService_GetChecksPolicyBeforeLookup(t *testing.T) {
	svc, _, _ := newAccountFixture(t)
	ctx := context.Background()
	juan := principal(1, "juan", domain.RoleUser)

	if _, err := svc.Get(ctx, juan, 2); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Get(ctx, juan, 999); err != domain.ErrForbidden {
		t.Fatalf("USER probing a missing id must see ErrForbidden, got %v", err)
	}
	_, err := svc.Get(ctx, principal(3, "root", domain.RoleAdmin), 999)
	assertErr(t, err, domain.ErrNotFound)

	own, err := svc.Get(ctx, juan, 1)
	if err != nil || own.Username != "juan" {
		t.Fatalf("own account: %+v err=%v", own, err)
	}
}

func TestAccountService_Update(t *testing.T) {
	svc, accounts, hasher := newAccountFixture(t)
	ctx := context.Background()
	juan := principal(1, "juan", domain.RoleUser)

	_, err := svc.Update(ctx, juan, 1, ports.AccountUpdate{Username: "pedro"})
	assertErr(t, err, domain.ErrDuplicateUsername)

	_, err = svc.Update(ctx, juan, 1, ports.AccountUpdate{Username: "juan", Password: "ñññ"})
	assertErr(t, err, domain.ErrInvalidInput)

	updated, err := svc.Update(ctx, juan, 1, ports.AccountUpdate{Username: "juanito", Password: "newpass1"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Username != "juanito" || updated.Role != domain.RoleUser {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	stored, _ := accounts.FindByID(ctx, 1)
	if !hasher.Verify("newpass1", stored.PasswordHash) {
		t.Fatalf("password must be re-hashed")
	}

	kept, err := svc.Update(ctx, juan, 1, ports.AccountUpdate{Username: "juanito"})
	if err != nil {
		t.Fatalf("Update without password: %v", err)
	}
	if kept.PasswordHash != stored.PasswordHash {
		t.Fatalf("empty password must keep the current hash")
	}

	if _, err := svc.Update(ctx, juan, 2, ports.AccountUpdate{Username: "x"}); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAccountService_Delete(t *testing.T) {
	svc, accounts, _ := newAccountFixture(t)
	ctx := context.Background()
	admin := principal(3, "root", domain.RoleAdmin)

	if err := svc.Delete(ctx, principal(1, "juan", domain.RoleUser), 2); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, admin, 2); err != nil {
		t.Fatalf("admin Delete: %v", err)
	}
	if exists, _ := accounts.ExistsByUsername(ctx, "pedro"); exists {
		t.Fatalf("pedro should be gone")
	}
	assertErr(t, svc.Delete(ctx, admin, 2), domain.ErrAccountNotFound)
}
