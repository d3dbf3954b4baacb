package dto

import (
	"time"

	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/services"
	"github.com/yukikurage/project-task-api/internal/utils"
)

// TaskAssignmentDTO represents a task assignment in API responses
type TaskAssignmentDTO struct {
	ID         uint64    `json:"id"`
	TaskID     uint64    `json:"task_id"`
	UserID     string    `json:"user_id"`
	User       *UserDTO  `json:"user,omitempty"`
	AssignedAt time.Time `json:"assigned_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description *string             `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	Status      models.TaskStatus   `json:"status"`
	Completed   bool                `json:"completed"`
	ProjectID   *uint64             `json:"project_id"`
	Deadline    *time.Time          `json:"deadline"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Project     *ProjectDTO         `json:"project,omitempty"`
	Assignments []TaskAssignmentDTO `json:"assignments"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// PriorityDTO is the classifier's answer
type PriorityDTO struct {
	Description      string              `json:"description"`
	Priority         models.TaskPriority `json:"priority"`
	ProcessingTimeMs int64               `json:"processing_time_ms"`
}

// ToTaskAssignmentDTO converts an assignment. The user is included when
// preloaded.
func ToTaskAssignmentDTO(a models.TaskAssignment) TaskAssignmentDTO {
	dto := TaskAssignmentDTO{
		ID:         a.ID,
		TaskID:     a.TaskID,
		UserID:     a.UserID,
		AssignedAt: a.CreatedAt,
	}
	if a.User.ID != "" {
		user := ToUserDTO(a.User)
		dto.User = &user
	}
	return dto
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		Completed:   task.Completed,
		ProjectID:   task.ProjectID,
		Deadline:    task.Deadline,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Assignments: make([]TaskAssignmentDTO, len(task.Assignments)),
	}

	// Include project if preloaded
	if task.Project != nil {
		project := ToProjectDTO(*task.Project)
		dto.Project = &project
	}

	for i, assignment := range task.Assignments {
		dto.Assignments[i] = ToTaskAssignmentDTO(assignment)
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, params utils.PaginationParams, totalCount int64) TaskListResponse {
	return TaskListResponse{
		Tasks:      ToTaskDTOs(tasks),
		Pagination: params.Response(totalCount),
	}
}

// ToPriorityDTO converts a classifier result
func ToPriorityDTO(p services.DetectedPriority) PriorityDTO {
	return PriorityDTO{
		Description:      p.Description,
		Priority:         p.Priority,
		ProcessingTimeMs: p.ProcessingTime.Milliseconds(),
	}
}
