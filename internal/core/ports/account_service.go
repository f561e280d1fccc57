package ports

import (
	"context"

	"github.com/lemon/task-api/internal/core/domain"
)

// AccountUpdate holds the mutable account fields. An empty Password keeps
// the current one.
type AccountUpdate struct {
	Username string
	Password string
}

type AccountService interface {
	List(ctx context.Context, principal *domain.Principal) ([]*domain.Account, error)
	Get(ctx context.Context, principal *domain.Principal, id int64) (*domain.Account, error)
	Update(ctx context.Context, principal *domain.Principal, id int64, in AccountUpdate) (*domain.Account, error)
	Delete(ctx context.Context, principal *domain.Principal, id int64) error
}
