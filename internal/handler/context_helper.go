package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/civitas-app/civitas-api/internal/middleware"
	"github.com/civitas-app/civitas-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func authFromContext(c *gin.Context) *models.AuthContext {
	return claimsFromContext(c).AuthContext()
}
