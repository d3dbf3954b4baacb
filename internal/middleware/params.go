package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/project-task-api/internal/errors"
)

func idContextKey(param string) string {
	return "param_" + param
}

// RequireIDParam parses the named path parameter as a positive integer id
// and stores it in context. Anything else is rejected with 400.
func RequireIDParam(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param(param), 10, 64)
		if err != nil || id == 0 {
			apierrors.BadRequest(c, "Invalid "+param)
			c.Abort()
			return
		}

		c.Set(idContextKey(param), id)
		c.Next()
	}
}

// GetIDParam returns an id stored by RequireIDParam.
func GetIDParam(c *gin.Context, param string) (uint64, bool) {
	v, ok := c.Get(idContextKey(param))
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
