package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/lemon/task-api/internal/core/domain"
	"github.com/lemon/task-api/internal/core/ports"
)

// IdentityResolver validates a bearer token and loads the account it names.
type IdentityResolver struct {
	tokens   ports.TokenService
	accounts ports.AccountRepository
}

func NewIdentityResolver(tokens ports.TokenService, accounts ports.AccountRepository) *IdentityResolver {
	return &IdentityResolver{tokens: tokens, accounts: accounts}
}

// Resolve returns the principal for token. Token failures surface as
// domain.ErrTokenInvalid or domain.ErrTokenExpired; a missing or disabled
// account as domain.ErrUnauthenticated.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (*domain.Principal, error) {
	claims, err := r.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	account, err := r.accounts.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: unknown account", domain.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	if !account.Enabled {
		return nil, fmt.Errorf("%w: account disabled", domain.ErrUnauthenticated)
	}
	if !account.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrUnauthenticated, account.Role)
	}

	return domain.PrincipalFor(account), nil
}
