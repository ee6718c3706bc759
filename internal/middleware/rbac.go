package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
	appErrors "github.com/noah-isme/sma-attendance-scoring/pkg/errors"
	"github.com/noah-isme/sma-attendance-scoring/pkg/response"
)

// RequireRoles only lets callers whose token carries one of roles through.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := value.(*models.JWTClaims)
		if !ok || claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireFeature answers FEATURE_DISABLED for routes behind a switched-off flag.
func RequireFeature(enabled bool, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			response.Error(c, appErrors.Clone(appErrors.ErrFeatureOff, name+" is disabled"))
			c.Abort()
			return
		}
		c.Next()
	}
}
