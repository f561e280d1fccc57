package ports

import (
	"context"

	"github.com/lemon/task-api/internal/core/domain"
)

// TaskRepository persists tasks. Lookups for absent tasks return
// domain.ErrTaskNotFound.
type TaskRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Task, error)
	FindByOwner(ctx context.Context, ownerID int64) ([]*domain.Task, error)
	// Save inserts the task when ID is zero and replaces it otherwise.
	Save(ctx context.Context, task *domain.Task) (*domain.Task, error)
	DeleteByID(ctx context.Context, id int64) error
}
