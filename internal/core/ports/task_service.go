package ports

import (
	"context"
	"time"

	"github.com/lemon/task-api/internal/core/domain"
)

// TaskInput carries the caller-editable fields of a task.
type TaskInput struct {
	Title       string
	Description string
	Completed   bool
	DueDate     *time.Time
}

// TaskService exposes task use cases. Every call receives the principal
// explicitly; a nil principal is rejected with domain.ErrUnauthenticated.
type TaskService interface {
	List(ctx context.Context, principal *domain.Principal, ownerID int64) ([]*domain.Task, error)
	Get(ctx context.Context, principal *domain.Principal, id int64) (*domain.Task, error)
	Create(ctx context.Context, principal *domain.Principal, in TaskInput) (*domain.Task, error)
	Update(ctx context.Context, principal *domain.Principal, id int64, in TaskInput) (*domain.Task, error)
	Delete(ctx context.Context, principal *domain.Principal, id int64) error
}
