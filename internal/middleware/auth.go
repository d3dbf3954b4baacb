package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-task-api/internal/constants"
	apierrors "github.com/yukikurage/project-task-api/internal/errors"
	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/policy"
)

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, _ := session.Get(constants.ContextKeyUserID).(string)
		role, _ := session.Get(constants.ContextKeyRole).(string)

		if userID == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !models.Role(role).Valid() {
			role = string(models.RoleUser)
		}

		// Store the actor in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Set(constants.ContextKeyRole, models.Role(role))
		c.Next()
	}
}

// RequireGlobalAdmin must run after RequireAuth.
func RequireGlobalAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !policy.CanManageUsers(actor) {
			apierrors.Forbidden(c, "Only global admins can perform this action")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, ok := c.Get(constants.ContextKeyUserID)
	if !ok {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

// GetActor returns the authenticated identity and its global role.
func GetActor(c *gin.Context) (policy.Actor, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		return policy.Actor{}, false
	}

	role, _ := c.Get(constants.ContextKeyRole)
	r, _ := role.(models.Role)
	if r == "" {
		r = models.RoleUser
	}

	return policy.Actor{ID: userID, Role: r}, true
}

// StartSession records the user in the session cookie.
func StartSession(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	session.Set(constants.ContextKeyRole, string(user.Role))
	return session.Save()
}
