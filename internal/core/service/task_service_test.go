package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lemon/task-api/internal/core/domain"
	"github.com/lemon/task-api/internal/core/ports"
	"github.com/lemon/task-api/internal/infrastructure/db/memory"
)

type taskFixture struct {
	svc   *TaskService
	tasks *memory.TaskRepository
	audit *recordingAudit
	juan  *domain.Principal
	pedro *domain.Principal
	admin *domain.Principal
}

// newTaskFixture seeds juan (1) owning task 7 and pedro (2) owning task 8.
func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	accounts := memory.NewAccountRepository()
	accounts.Put(&domain.Account{ID: 1, Username: "juan", Role: domain.RoleUser, Enabled: true})
	accounts.Put(&domain.Account{ID: 2, Username: "pedro", Role: domain.RoleUser, Enabled: true})
	accounts.Put(&domain.Account{ID: 3, Username: "root", Role: domain.RoleAdmin, Enabled: true})

	tasks := memory.NewTaskRepository()
	tasks.Put(&domain.Task{ID: 7, OwnerID: 2, Title: "pedro's"})
	tasks.Put(&domain.Task{ID: 8, OwnerID: 1, Title: "juan's"})

	audit := &recordingAudit{}
	return &taskFixture{
		svc:   NewTaskService(tasks, accounts, audit, zerolog.Nop()),
		tasks: tasks,
		audit: audit,
		juan:  principal(1, "juan", domain.RoleUser),
		pedro: principal(2, "pedro", domain.RoleUser),
		admin: principal(3, "root", domain.RoleAdmin),
	}
}

func TestTaskService_GetOwnership(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Get(ctx, f.juan, 7); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for foreign task, got %v", err)
	}
	task, err := f.svc.Get(ctx, f.juan, 8)
	if err != nil || task.ID != 8 {
		t.Fatalf("expected own task 8, got %+v err=%v", task, err)
	}
	_, err = f.svc.Get(ctx, f.juan, 999)
	assertErr(t, err, domain.ErrNotFound)

	if _, err := f.svc.Get(ctx, f.admin, 7); err != nil {
		t.Fatalf("admin must read any task, got %v", err)
	}
	if _, err := f.svc.Get(ctx, nil, 8); err != domain.ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated without principal, got %v", err)
	}

	denied := f.audit.ofType(ports.AuditAccessDenied)
	if len(denied) != 1 || denied[0].Username != "juan" || denied[0].Reason != "task:7" {
		t.Fatalf("unexpected access_denied events: %+v", denied)
	}
}

func TestTaskService_List(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	own, err := f.svc.List(ctx, f.juan, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(own) != 1 || own[0].ID != 8 {
		t.Fatalf("expected only task 8, got %+v", own)
	}

	if _, err := f.svc.List(ctx, f.juan, 2); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden listing another owner, got %v", err)
	}

	foreign, err := f.svc.List(ctx, f.admin, 2)
	if err != nil || len(foreign) != 1 || foreign[0].ID != 7 {
		t.Fatalf("admin listing pedro's tasks: %+v err=%v", foreign, err)
	}
}

func TestTaskService_CreateOwnedByPrincipal(t *testing.T) {
	f := newTaskFixture(t)

	task, err := f.svc.Create(context.Background(), f.pedro, ports.TaskInput{Title: "write report"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.OwnerID != 2 {
		t.Fatalf("expected owner 2, got %d", task.OwnerID)
	}
	if task.ID <= 8 {
		t.Fatalf("expected a fresh id above seeded ones, got %d", task.ID)
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}
}

func TestTaskService_CreateForDeletedAccount(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.svc.Create(context.Background(), principal(42, "gone", domain.RoleUser), ports.TaskInput{Title: "x"})
	assertErr(t, err, domain.ErrAccountNotFound)
}

func TestTaskService_UpdateAndDelete(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Update(ctx, f.juan, 7, ports.TaskInput{Title: "hijack"}); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	stored, _ := f.tasks.FindByID(ctx, 7)
	if stored.Title != "pedro's" {
		t.Fatalf("forbidden update must not write, title is %q", stored.Title)
	}

	updated, err := f.svc.Update(ctx, f.juan, 8, ports.TaskInput{Title: "done", Completed: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "done" || !updated.Completed || updated.OwnerID != 1 {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if err := f.svc.Delete(ctx, f.juan, 7); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden deleting foreign task, got %v", err)
	}
	if err := f.svc.Delete(ctx, f.admin, 7); err != nil {
		t.Fatalf("admin Delete: %v", err)
	}
	_, err = f.tasks.FindByID(ctx, 7)
	assertErr(t, err, domain.ErrTaskNotFound)
}
