package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tempo-schedule-api/internal/models"
	"github.com/noah-isme/tempo-schedule-api/internal/service"
	appErrors "github.com/noah-isme/tempo-schedule-api/pkg/errors"
	"github.com/noah-isme/tempo-schedule-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// JWT protects routes by requiring a valid access token.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// CurrentClaims returns the verified claims of the request, or nil on an open route.
func CurrentClaims(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.JWTClaims)
	return claims
}

// AdminOnly chains token verification and the ADMIN role check. When the auth service has no
// admin password configured the chain is empty and the routes are open.
func AdminOnly(authService *service.AuthService) []gin.HandlerFunc {
	if !authService.Enabled() {
		return nil
	}
	return []gin.HandlerFunc{JWT(authService), RequireRoles(models.RoleAdmin)}
}
