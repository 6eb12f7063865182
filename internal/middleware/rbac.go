package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/civitas-app/civitas-api/internal/models"
	appErrors "github.com/civitas-app/civitas-api/pkg/errors"
	"github.com/civitas-app/civitas-api/pkg/response"
)

// RequireRoles blocks the request unless at least one of the user's held
// positions carries one of the given roles. Route-level gating only; the
// per-transition authorization table lives in the workflow core.
func RequireRoles(roles ...models.RoleName) gin.HandlerFunc {
	allowed := make(map[models.RoleName]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		for _, position := range claims.Positions {
			if _, ok := allowed[position.Role]; ok {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.Clone(appErrors.ErrInsufficientRights, "none of your positions may access this resource"))
		c.Abort()
	}
}
