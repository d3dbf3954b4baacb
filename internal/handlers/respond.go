package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-task-api/internal/constants"
	apierrors "github.com/yukikurage/project-task-api/internal/errors"
	"github.com/yukikurage/project-task-api/internal/middleware"
	"github.com/yukikurage/project-task-api/internal/policy"
	"github.com/yukikurage/project-task-api/internal/services"
)

// respondServiceError maps a service error kind onto its HTTP status.
// Storage faults are already logged by the service and never leak detail.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrInvalidInput):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUnauthenticated):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotEligible):
		apierrors.NotEligible(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}

// currentActor writes a 401 when the request carries no identity.
func currentActor(c *gin.Context) (policy.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return policy.Actor{}, false
	}
	return actor, true
}

// idParam reads an id parsed by middleware.RequireIDParam.
func idParam(c *gin.Context, name string) (uint64, bool) {
	id, ok := middleware.GetIDParam(c, name)
	if !ok {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}
