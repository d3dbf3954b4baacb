package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-task-api/internal/dto"
	apierrors "github.com/yukikurage/project-task-api/internal/errors"
	"github.com/yukikurage/project-task-api/internal/policy"
	"github.com/yukikurage/project-task-api/internal/services"
)

// ProjectHandler serves project and membership endpoints.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

type membershipRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// CreateProject creates a new project. Global admins only.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), actor, services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects lists the projects visible to the current user.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	projects, err := h.projectService.ListProjects(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]dto.ProjectSummaryDTO, len(projects))
	for i, p := range projects {
		items[i] = dto.ToProjectSummaryDTO(p)
	}
	c.JSON(http.StatusOK, gin.H{"projects": items})
}

// ListMembers lists the members of a project.
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	members, err := h.projectService.ListMembers(c.Request.Context(), actor, projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]dto.ProjectMemberDTO, len(members))
	for i, m := range members {
		items[i] = dto.ToProjectMemberDTO(m)
	}
	c.JSON(http.StatusOK, gin.H{"members": items})
}

// AddMember enrolls a user in a project.
func (h *ProjectHandler) AddMember(c *gin.Context) {
	h.changeMembership(c, "Member added", h.projectService.AddMember)
}

// AddAdmin promotes a user to project admin.
func (h *ProjectHandler) AddAdmin(c *gin.Context) {
	h.changeMembership(c, "Admin added", h.projectService.AddAdmin)
}

// RemoveMember removes a user from a project, including any admin role.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.RemoveMember(c.Request.Context(), actor, projectID, c.Param("user_id")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

type membershipChange func(ctx context.Context, actor policy.Actor, projectID uint64, userID string) error

func (h *ProjectHandler) changeMembership(c *gin.Context, message string, apply membershipChange) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req membershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := apply(c.Request.Context(), actor, projectID, req.UserID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": message})
}
