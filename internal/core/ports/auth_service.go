package ports

import (
	"context"

	"github.com/lemon/task-api/internal/core/domain"
)

// AuthResult is returned by both registration and login.
type AuthResult struct {
	Token     string
	AccountID int64
	Username  string
	Role      domain.Role
}

type AuthService interface {
	Register(ctx context.Context, username, password string) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
}

// IdentityResolver turns a bearer token into the request principal.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Principal, error)
}
