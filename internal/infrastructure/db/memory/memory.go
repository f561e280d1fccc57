// Package memory is an in-process implementation of the resource store,
// used by tests and by local runs without MongoDB. Both repositories are
// safe for concurrent use and hand out copies, never internal pointers.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/lemon/task-api/internal/core/domain"
)

// AccountRepository implements ports.AccountRepository.
type AccountRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*domain.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{byID: make(map[int64]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

func (r *AccountRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findByUsername(username) != nil, nil
}

func (r *AccountRepository) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a := r.findByUsername(username)
	if a == nil {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *AccountRepository) FindByID(_ context.Context, id int64) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *AccountRepository) FindAll(_ context.Context) ([]*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Account, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, cloneAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Save enforces username uniqueness the way a unique index would.
func (r *AccountRepository) Save(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := r.findByUsername(account.Username); existing != nil && existing.ID != account.ID {
		return nil, domain.ErrDuplicateUsername
	}

	c := cloneAccount(account)
	if c.ID == 0 {
		r.nextID++
		c.ID = r.nextID
	} else if _, ok := r.byID[c.ID]; !ok {
		return nil, domain.ErrAccountNotFound
	}
	r.byID[c.ID] = c
	return cloneAccount(c), nil
}

func (r *AccountRepository) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

// Put stores account under its own ID, bypassing ID assignment. Intended for
// seeding fixtures with well-known IDs.
func (r *AccountRepository) Put(account *domain.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[account.ID] = cloneAccount(account)
	if account.ID > r.nextID {
		r.nextID = account.ID
	}
}

func (r *AccountRepository) findByUsername(username string) *domain.Account {
	for _, a := range r.byID {
		if a.Username == username {
			return a
		}
	}
	return nil
}

// TaskRepository implements ports.TaskRepository.
type TaskRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*domain.Task
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{byID: make(map[int64]*domain.Task)}
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}

func (r *TaskRepository) FindByID(_ context.Context, id int64) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *TaskRepository) FindByOwner(_ context.Context, ownerID int64) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Task, 0)
	for _, t := range r.byID {
		if t.OwnerID == ownerID {
			out = append(out, cloneTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TaskRepository) Save(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := cloneTask(task)
	if c.ID == 0 {
		r.nextID++
		c.ID = r.nextID
	} else if _, ok := r.byID[c.ID]; !ok {
		return nil, domain.ErrTaskNotFound
	}
	r.byID[c.ID] = c
	return cloneTask(c), nil
}

func (r *TaskRepository) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

// Put stores task under its own ID. Intended for seeding fixtures.
func (r *TaskRepository) Put(task *domain.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[task.ID] = cloneTask(task)
	if task.ID > r.nextID {
		r.nextID = task.ID
	}
}
