package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-task-api/internal/dto"
	apierrors "github.com/yukikurage/project-task-api/internal/errors"
	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/services"
)

// UserHandler serves the global-admin user management endpoints.
type UserHandler struct {
	authService *services.AuthService
}

func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// ListUsers returns every user with the ids of their projects.
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	users, err := h.authService.ListUsers(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]dto.UserWithProjectsDTO, len(users))
	for i, u := range users {
		items[i] = dto.ToUserWithProjectsDTO(u)
	}
	c.JSON(http.StatusOK, gin.H{"users": items})
}

// SetRole changes a user's global role.
func (h *UserHandler) SetRole(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.SetRole(c.Request.Context(), actor, c.Param("id"), models.Role(strings.ToUpper(req.Role)))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}
