package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-task-api/internal/dto"
	"github.com/yukikurage/project-task-api/internal/services"
)

// PriorityHandler exposes the priority classifier.
type PriorityHandler struct {
	priorityService *services.PriorityService
}

func NewPriorityHandler(priorityService *services.PriorityService) *PriorityHandler {
	return &PriorityHandler{priorityService: priorityService}
}

// DetectPriority classifies a description taken from the "description"
// query parameter (GET) or JSON body field (POST).
func (h *PriorityHandler) DetectPriority(c *gin.Context) {
	var req struct {
		Description string `json:"description" form:"description"`
	}
	if c.Request.Method == http.MethodGet {
		req.Description = c.Query("description")
	} else if err := c.ShouldBindJSON(&req); err != nil {
		respondServiceError(c, services.ErrDescriptionRequired)
		return
	}

	result, err := h.priorityService.Detect(c.Request.Context(), req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPriorityDTO(*result))
}
