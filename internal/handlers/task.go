package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-task-api/internal/dto"
	apierrors "github.com/yukikurage/project-task-api/internal/errors"
	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/services"
	"github.com/yukikurage/project-task-api/internal/utils"
)

// TaskHandler serves task endpoints
type TaskHandler struct {
	taskService       *services.TaskService
	assignmentService *services.TaskAssignmentService
	completionService *services.TaskCompletionService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService *services.TaskService, assignmentService *services.TaskAssignmentService, completionService *services.TaskCompletionService) *TaskHandler {
	return &TaskHandler{
		taskService:       taskService,
		assignmentService: assignmentService,
		completionService: completionService,
	}
}

// ListTasks lists the tasks visible to the current user, optionally
// filtered by project_id, status and priority.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var query struct {
		ProjectID *uint64 `form:"project_id"`
		Status    string  `form:"status"`
		Priority  string  `form:"priority"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		apierrors.BadRequest(c, "Invalid query parameters")
		return
	}

	params := utils.GetPaginationParams(c)
	input := services.ListTasksInput{
		ProjectID: query.ProjectID,
		Page:      params.Page,
		PageSize:  params.Limit,
	}
	if query.Status != "" {
		status := models.TaskStatus(strings.ToUpper(query.Status))
		input.Status = &status
	}
	if query.Priority != "" {
		priority := models.TaskPriority(strings.ToUpper(query.Priority))
		input.Priority = &priority
	}

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), actor, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

// ListMyTasks lists the tasks assigned to the current user.
func (h *TaskHandler) ListMyTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListMyTasks(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req struct {
		Title       string  `json:"title" binding:"required"`
		Description *string `json:"description"`
		Priority    *string `json:"priority"`
		ProjectID   *uint64 `json:"project_id"`
		Deadline    *string `json:"deadline"`
		UseAI       bool    `json:"use_ai"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), actor, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    priorityOf(req.Priority),
		ProjectID:   req.ProjectID,
		Deadline:    req.Deadline,
		UseAI:       req.UseAI,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns a single task
func (h *TaskHandler) GetTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := idParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), actor, taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. Omitted fields are left unchanged.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Priority    *string `json:"priority"`
		Status      *string `json:"status"`
		Deadline    *string `json:"deadline"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	patch := services.EditTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    priorityOf(req.Priority),
		Deadline:    req.Deadline,
	}
	if req.Status != nil {
		status := models.TaskStatus(strings.ToUpper(*req.Status))
		patch.Status = &status
	}

	task, err := h.taskService.EditTask(c.Request.Context(), actor, taskID, patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task and its assignments
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), actor, taskID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

type assignmentRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// AssignTask assigns a user to a task
func (h *TaskHandler) AssignTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req assignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	assignment, err := h.assignmentService.Assign(c.Request.Context(), actor, req.UserID, taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskAssignmentDTO(*assignment))
}

// UnassignTask removes a user from a task
func (h *TaskHandler) UnassignTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req assignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.assignmentService.Unassign(c.Request.Context(), actor, req.UserID, taskID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User unassigned from task"})
}

// CompleteTask marks a task as done
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := idParam(c, "id")
	if !ok {
		return
	}

	task, err := h.completionService.CompleteTask(c.Request.Context(), taskID, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

func priorityOf(value *string) *models.TaskPriority {
	if value == nil {
		return nil
	}
	priority := models.TaskPriority(strings.ToUpper(*value))
	return &priority
}
