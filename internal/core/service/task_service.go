package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/lemon/task-api/internal/core/domain"
	"github.com/lemon/task-api/internal/core/policy"
	"github.com/lemon/task-api/internal/core/ports"
)

// TaskService implements the task use cases. Lookups run before the
// ownership check, so a missing task is reported as not found to everyone.
type TaskService struct {
	tasks    ports.TaskRepository
	accounts ports.AccountRepository
	audit    auditor
	log      zerolog.Logger
}

func NewTaskService(tasks ports.TaskRepository, accounts ports.AccountRepository, audit ports.AuditRecorder, log zerolog.Logger) *TaskService {
	return &TaskService{
		tasks:    tasks,
		accounts: accounts,
		audit:    newAuditor(audit),
		log:      log,
	}
}

// List returns the tasks owned by ownerID, or by the principal when ownerID
// is zero.
func (s *TaskService) List(ctx context.Context, p *domain.Principal, ownerID int64) ([]*domain.Task, error) {
	if err := policy.Enforce(p, policy.Authenticated()); err != nil {
		return nil, err
	}
	if ownerID == 0 {
		ownerID = p.ID
	}
	if err := s.authorize(p, ownerID, "owner:"+strconv.FormatInt(ownerID, 10)); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, p *domain.Principal, id int64) (*domain.Task, error) {
	return s.load(ctx, p, id)
}

// Create stores a task owned by the principal. The owner is never taken
// from the input.
func (s *TaskService) Create(ctx context.Context, p *domain.Principal, in ports.TaskInput) (*domain.Task, error) {
	if err := policy.Enforce(p, policy.Authenticated()); err != nil {
		return nil, err
	}
	if _, err := s.accounts.FindByID(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	now := timestamp()
	task, err := s.tasks.Save(ctx, &domain.Task{
		OwnerID:     p.ID,
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.log.Debug().Int64("task_id", task.ID).Int64("owner_id", task.OwnerID).Msg("task created")
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, p *domain.Principal, id int64, in ports.TaskInput) (*domain.Task, error) {
	task, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}

	task.Title = in.Title
	task.Description = in.Description
	task.Completed = in.Completed
	task.DueDate = in.DueDate
	task.UpdatedAt = timestamp()

	updated, err := s.tasks.Save(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, p *domain.Principal, id int64) error {
	if _, err := s.load(ctx, p, id); err != nil {
		return err
	}
	if err := s.tasks.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// load fetches a task and checks that p owns it or is an admin.
func (s *TaskService) load(ctx context.Context, p *domain.Principal, id int64) (*domain.Task, error) {
	if err := policy.Enforce(p, policy.Authenticated()); err != nil {
		return nil, err
	}

	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(p, task.OwnerID, "task:"+strconv.FormatInt(id, 10)); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) authorize(p *domain.Principal, ownerID int64, resource string) error {
	err := policy.Enforce(p, policy.RequireSelfOrRole(ownerID, domain.RoleAdmin))
	if err != nil {
		s.audit.record(ports.AuditAccessDenied, p.Username, p.ID, resource)
	}
	return err
}
