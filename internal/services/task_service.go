package services

import (
	"context"
	"strings"
	"time"

	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/policy"
	"github.com/yukikurage/project-task-api/internal/repository"
)

// PriorityClassifier derives a priority from a task description. It never
// fails.
type PriorityClassifier interface {
	Classify(ctx context.Context, description string) models.TaskPriority
}

// TaskService handles the task lifecycle: create, edit, read and delete.
type TaskService struct {
	store      repository.Store
	classifier PriorityClassifier
}

// NewTaskService creates a new TaskService
func NewTaskService(store repository.Store, classifier PriorityClassifier) *TaskService {
	return &TaskService{
		store:      store,
		classifier: classifier,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description *string
	Priority    *models.TaskPriority
	ProjectID   *uint64
	// Deadline is a date (2006-01-02) or an RFC 3339 timestamp.
	Deadline *string
	UseAI    bool
}

// EditTaskInput is a patch; nil fields are left alone. An empty Deadline
// clears it.
type EditTaskInput struct {
	Title       *string
	Description *string
	Priority    *models.TaskPriority
	Status      *models.TaskStatus
	Deadline    *string
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	ProjectID *uint64
	Status    *models.TaskStatus
	Priority  *models.TaskPriority
	Page      int
	PageSize  int
}

// CreateTask validates, authorizes and stores a new task.
func (s *TaskService) CreateTask(ctx context.Context, actor policy.Actor, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	deadline, err := parseDeadline(input.Deadline)
	if err != nil {
		return nil, err
	}
	if !actor.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	if input.ProjectID != nil {
		project, err := s.store.Projects().FindWithMembersAndAdmins(ctx, *input.ProjectID)
		if err != nil {
			return nil, notFoundOr(ErrProjectNotFound, "load project", err)
		}
		if !policy.CanCreateOrEditProjectTask(actor, project) {
			return nil, forbidden("only project admins or global admins may create tasks in this project")
		}
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Priority:    s.resolvePriority(ctx, input.Description, input.UseAI, input.Priority),
		ProjectID:   input.ProjectID,
		Deadline:    deadline,
	}
	task.SetStatus(models.TaskStatusTodo)

	if err := s.store.Tasks().Create(ctx, task); err != nil {
		return nil, storageError("create task", err)
	}

	return task, nil
}

// resolvePriority applies the creation table: with useAI and a description
// the classifier decides, otherwise an explicit priority wins, otherwise
// MEDIUM. A blank description still counts as supplied and classifies as
// MEDIUM.
func (s *TaskService) resolvePriority(ctx context.Context, description *string, useAI bool, given *models.TaskPriority) models.TaskPriority {
	if useAI && description != nil {
		return s.classify(ctx, *description)
	}
	if given != nil {
		return *given
	}
	return models.PriorityMedium
}

// classify skips the classifier for blank text, which is always MEDIUM.
func (s *TaskService) classify(ctx context.Context, description string) models.TaskPriority {
	if strings.TrimSpace(description) == "" {
		return models.PriorityMedium
	}
	return s.classifier.Classify(ctx, description)
}

// EditTask applies a patch. Only global admins may edit. Any description in
// the patch re-runs the classifier unless the patch also sets a priority.
// Only the columns named by the patch are written.
func (s *TaskService) EditTask(ctx context.Context, actor policy.Actor, taskID uint64, patch EditTaskInput) (*models.Task, error) {
	if taskID == 0 {
		return nil, ErrTaskIDRequired
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, ErrTitleRequired
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	deadline, err := parseDeadline(patch.Deadline)
	if err != nil {
		return nil, err
	}
	if !actor.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if !policy.CanEditTask(actor) {
		return nil, forbidden("only global admins may edit tasks")
	}

	// Classification stays outside the transaction.
	priority := patch.Priority
	if priority == nil && patch.Description != nil {
		derived := s.classify(ctx, *patch.Description)
		priority = &derived
	}

	changes := map[string]interface{}{}
	if patch.Title != nil {
		changes["title"] = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		changes["description"] = *patch.Description
	}
	if priority != nil {
		changes["priority"] = *priority
	}
	if patch.Deadline != nil {
		changes["deadline"] = deadline
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		task, err := tx.Tasks().FindByID(ctx, taskID)
		if err != nil {
			return notFoundOr(ErrTaskNotFound, "load task", err)
		}

		if patch.Status != nil {
			if task.Status == models.TaskStatusDone && *patch.Status != models.TaskStatusDone {
				return ErrTaskAlreadyDone
			}
			changes["status"] = *patch.Status
			changes["completed"] = *patch.Status == models.TaskStatusDone
		}
		if len(changes) == 0 {
			return nil
		}

		if err := tx.Tasks().UpdateFields(ctx, taskID, changes); err != nil {
			return storageError("update task", err)
		}
		return nil
	})
	if err != nil {
		return nil, passThrough("edit task", err)
	}

	return s.getTask(ctx, taskID)
}

// ListTasks returns every task to global admins. Other users see tasks of
// projects they belong to plus tasks assigned to them.
func (s *TaskService) ListTasks(ctx context.Context, actor policy.Actor, input ListTasksInput) ([]models.Task, int64, error) {
	if !actor.Authenticated() {
		return nil, 0, ErrNotAuthenticated
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, 0, ErrInvalidPriority
	}

	filter := repository.TaskFilter{
		ProjectID: input.ProjectID,
		Status:    input.Status,
		Priority:  input.Priority,
		Page:      input.Page,
		PageSize:  input.PageSize,
	}
	if !actor.IsGlobalAdmin() {
		filter.VisibleToUserID = &actor.ID
	}

	tasks, total, err := s.store.Tasks().List(ctx, filter)
	if err != nil {
		return nil, 0, storageError("list tasks", err)
	}

	return tasks, total, nil
}

// ListMyTasks returns the tasks assigned to the actor.
func (s *TaskService) ListMyTasks(ctx context.Context, actor policy.Actor) ([]models.Task, error) {
	if !actor.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	tasks, _, err := s.store.Tasks().List(ctx, repository.TaskFilter{AssignedUserID: &actor.ID})
	if err != nil {
		return nil, storageError("list my tasks", err)
	}
	return tasks, nil
}

// GetTask returns a task the actor can see.
func (s *TaskService) GetTask(ctx context.Context, actor policy.Actor, taskID uint64) (*models.Task, error) {
	if taskID == 0 {
		return nil, ErrTaskIDRequired
	}
	if !actor.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	task, err := s.store.Tasks().FindWithProjectAndAssignees(ctx, taskID)
	if err != nil {
		return nil, notFoundOr(ErrTaskNotFound, "load task", err)
	}

	if !policy.CanViewProject(actor, task.Project) && !isAssignee(actor.ID, task.Assignments) {
		return nil, forbidden("you do not have access to this task")
	}

	return task, nil
}

// DeleteTask removes a task and its assignments.
func (s *TaskService) DeleteTask(ctx context.Context, actor policy.Actor, taskID uint64) error {
	if taskID == 0 {
		return ErrTaskIDRequired
	}
	if !actor.Authenticated() {
		return ErrNotAuthenticated
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		task, err := tx.Tasks().FindWithProjectAndAssignees(ctx, taskID)
		if err != nil {
			return notFoundOr(ErrTaskNotFound, "load task", err)
		}
		if !policy.CanDeleteTask(actor, task.Project) {
			return forbidden("only project admins or global admins may delete tasks")
		}
		if err := tx.Tasks().Delete(ctx, taskID); err != nil {
			return notFoundOr(ErrTaskNotFound, "delete task", err)
		}
		return nil
	})

	return passThrough("delete task", err)
}

func (s *TaskService) getTask(ctx context.Context, id uint64) (*models.Task, error) {
	task, err := s.store.Tasks().FindByID(ctx, id, "Assignments", "Assignments.User")
	if err != nil {
		return nil, notFoundOr(ErrTaskNotFound, "load task", err)
	}
	return task, nil
}

func isAssignee(userID string, assignments []models.TaskAssignment) bool {
	for _, a := range assignments {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

var deadlineLayouts = []string{time.RFC3339, "2006-01-02"}

// parseDeadline returns nil for a nil or empty value.
func parseDeadline(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(*value)); err == nil {
			return &t, nil
		}
	}
	return nil, ErrInvalidDeadline
}
