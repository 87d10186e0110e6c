package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/piyushaneja30/licensing-portal/internal/domain/models"
)

// RequireRole enforces an exact role match. The role model is flat: admin is
// not implicitly granted user-only paths, and vice versa.
func RequireRole(role models.Role, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := Principal(c)
		if principal == nil {
			logger.Error("role check reached without a principal; Auth middleware missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		if principal.Role != role {
			logger.Warn("role denied",
				zap.String("account_id", principal.ID.String()),
				zap.String("have", string(principal.Role)),
				zap.String("want", string(role)),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin access required"})
			return
		}
		c.Next()
	}
}
