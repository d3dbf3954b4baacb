package services

import (
	"context"

	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/policy"
	"github.com/yukikurage/project-task-api/internal/repository"
)

// TaskCompletionService marks tasks as done.
//
// CompleteTask runs four stages (validate, load, authorize, mutate) and each
// stage fails with its own error kind, so a caller can tell a missing task
// from a task that belongs to someone else without reading the message.
type TaskCompletionService struct {
	store repository.Store
}

// NewTaskCompletionService creates a new TaskCompletionService
func NewTaskCompletionService(store repository.Store) *TaskCompletionService {
	return &TaskCompletionService{store: store}
}

// CompleteTask sets the task's status to DONE and returns the updated task.
func (s *TaskCompletionService) CompleteTask(ctx context.Context, taskID uint64, actor policy.Actor) (*models.Task, error) {
	if err := s.validate(taskID, actor); err != nil {
		return nil, err
	}

	var completed *models.Task
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		task, err := s.load(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if err := s.authorize(actor, task); err != nil {
			return err
		}
		completed, err = s.mutate(ctx, tx, task.ID)
		return err
	})
	if err != nil {
		return nil, passThrough("complete task", err)
	}

	return completed, nil
}

func (s *TaskCompletionService) validate(taskID uint64, actor policy.Actor) error {
	if taskID == 0 {
		return ErrTaskIDRequired
	}
	if !actor.Authenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

func (s *TaskCompletionService) load(ctx context.Context, tx repository.Store, taskID uint64) (*models.Task, error) {
	task, err := tx.Tasks().FindByID(ctx, taskID, "Assignments")
	if err != nil {
		return nil, notFoundOr(ErrTaskNotFound, "load task", err)
	}
	return task, nil
}

func (s *TaskCompletionService) authorize(actor policy.Actor, task *models.Task) error {
	if !policy.CanCompleteTask(actor, task.Assignments) {
		return forbidden("only the task's assignees or a global admin may complete it")
	}
	return nil
}

func (s *TaskCompletionService) mutate(ctx context.Context, tx repository.Store, taskID uint64) (*models.Task, error) {
	task, err := tx.Tasks().MarkDone(ctx, taskID)
	if err != nil {
		return nil, storageError("mark task done", err)
	}
	return task, nil
}
