package services

import (
	"context"
	"errors"

	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/policy"
	"github.com/yukikurage/project-task-api/internal/repository"
)

// TaskAssignmentService assigns users to tasks and removes them again.
type TaskAssignmentService struct {
	store repository.Store
}

// NewTaskAssignmentService creates a new TaskAssignmentService
func NewTaskAssignmentService(store repository.Store) *TaskAssignmentService {
	return &TaskAssignmentService{store: store}
}

func validateAssignmentInput(actor policy.Actor, targetUserID string, taskID uint64) error {
	if taskID == 0 {
		return ErrTaskIDRequired
	}
	if targetUserID == "" {
		return ErrUserIDRequired
	}
	if !actor.Authenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

// Assign links targetUserID to the task. The load, the policy checks and the
// insert run in one transaction; a concurrent duplicate still surfaces as a
// conflict through the unique index.
func (s *TaskAssignmentService) Assign(ctx context.Context, actor policy.Actor, targetUserID string, taskID uint64) (*models.TaskAssignment, error) {
	if err := validateAssignmentInput(actor, targetUserID, taskID); err != nil {
		return nil, err
	}

	var assignment *models.TaskAssignment
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		task, err := tx.Tasks().FindWithProjectAndAssignees(ctx, taskID)
		if err != nil {
			return notFoundOr(ErrTaskNotFound, "load task", err)
		}

		if !policy.CanAssignOrUnassignTask(actor, task.Project) {
			return forbidden("only project admins or global admins may assign tasks")
		}
		if task.ProjectID != nil && !policy.IsEligibleAssignee(targetUserID, task.Project) {
			return ErrAssigneeNotInProject
		}

		if err := ensureUserExists(ctx, tx, targetUserID); err != nil {
			return err
		}

		created, err := tx.Tasks().CreateAssignment(ctx, targetUserID, taskID)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateAssignment) {
				return ErrAlreadyAssigned
			}
			return storageError("create assignment", err)
		}
		assignment = created
		return nil
	})
	if err != nil {
		return nil, passThrough("assign task", err)
	}

	return assignment, nil
}

// Unassign removes every assignment of targetUserID to the task. Removing an
// assignment that does not exist is not an error.
func (s *TaskAssignmentService) Unassign(ctx context.Context, actor policy.Actor, targetUserID string, taskID uint64) error {
	if err := validateAssignmentInput(actor, targetUserID, taskID); err != nil {
		return err
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		task, err := tx.Tasks().FindWithProjectAndAssignees(ctx, taskID)
		if err != nil {
			return notFoundOr(ErrTaskNotFound, "load task", err)
		}

		if !policy.CanAssignOrUnassignTask(actor, task.Project) {
			return forbidden("only project admins or global admins may unassign tasks")
		}

		if _, err := tx.Tasks().DeleteAssignment(ctx, targetUserID, taskID); err != nil {
			return storageError("delete assignment", err)
		}
		return nil
	})

	return passThrough("unassign task", err)
}
