package service

import (
	"context"
	"testing"

	"github.com/lemon/task-api/internal/core/domain"
	"github.com/lemon/task-api/internal/infrastructure/db/memory"
)

func TestIdentityResolver_Resolve(t *testing.T) {
	tokens := newTestTokens(t)
	accounts := memory.NewAccountRepository()
	accounts.Put(&domain.Account{ID: 7, Username: "juan", Role: domain.RoleUser, Enabled: true})
	accounts.Put(&domain.Account{ID: 9, Username: "ana", Role: domain.RoleUser, Enabled: false})
	accounts.Put(&domain.Account{ID: 10, Username: "eve", Role: domain.Role("SUPERUSER"), Enabled: true})
	resolver := NewIdentityResolver(tokens, accounts)

	issue := func(subject string) string {
		t.Helper()
		tok, err := tokens.Issue(subject)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		return tok.Token
	}

	p, err := resolver.Resolve(context.Background(), issue("juan"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.ID != 7 || p.Username != "juan" || p.Role != domain.RoleUser {
		t.Fatalf("unexpected principal: %+v", p)
	}

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-token", domain.ErrTokenInvalid},
		{"unknown account", issue("ghost"), domain.ErrUnauthenticated},
		{"disabled account", issue("ana"), domain.ErrUnauthenticated},
		{"unknown role", issue("eve"), domain.ErrUnauthenticated},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := resolver.Resolve(context.Background(), tc.token)
			assertErr(t, err, tc.want)
			if p != nil {
				t.Fatalf("expected no principal, got %+v", p)
			}
		})
	}
}

func TestIdentityResolver_RoleReadFromStore(t *testing.T) {
	tokens := newTestTokens(t)
	accounts := memory.NewAccountRepository()
	accounts.Put(&domain.Account{ID: 1, Username: "root", Role: domain.RoleUser, Enabled: true})
	resolver := NewIdentityResolver(tokens, accounts)

	tok, _ := tokens.Issue("root")
	accounts.Put(&domain.Account{ID: 1, Username: "root", Role: domain.RoleAdmin, Enabled: true})

	p, err := resolver.Resolve(context.Background(), tok.Token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !p.IsAdmin() {
		t.Fatalf("role must come from the store at resolution time")
	}
}
