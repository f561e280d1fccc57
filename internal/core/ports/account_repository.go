package ports

import (
	"context"

	"github.com/lemon/task-api/internal/core/domain"
)

// AccountRepository is the credential side of the resource store.
// Lookups for absent accounts return domain.ErrAccountNotFound.
type AccountRepository interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	FindAll(ctx context.Context) ([]*domain.Account, error)
	// Save inserts the account when ID is zero (assigning a new ID) and
	// replaces it otherwise. A username collision returns
	// domain.ErrDuplicateUsername.
	Save(ctx context.Context, account *domain.Account) (*domain.Account, error)
	DeleteByID(ctx context.Context, id int64) error
}
