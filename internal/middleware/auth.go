package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/legalcms/backend/internal/apperrors"
	"github.com/legalcms/backend/internal/logger"
	"github.com/legalcms/backend/internal/models"
	"github.com/legalcms/backend/internal/services"
	"github.com/legalcms/backend/internal/session"
)

const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
	contextClaims   = "session_claims"
)

// Authenticator verifies a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (session.Claims, error)
}

// AuthMiddleware requires a valid, unrevoked bearer token and stores the
// caller's identity in the context.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")))
		if err != nil {
			status := apperrors.HTTPStatus(err)
			if status >= http.StatusInternalServerError {
				logger.WithError(err, "auth_middleware").WithField("request_id", RequestID(c)).Error("Authentication failed")
			}
			c.AbortWithStatusJSON(status, gin.H{"error": apperrors.PublicMessage(err, "Invalid token")})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(contextClaims, claims)
		c.Next()
	}
}

// RequireRoles lets the request through only for the listed roles. It must
// run after AuthMiddleware.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentRole(c)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}

// RequirePractitioner admits admins and staff.
func RequirePractitioner() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin, models.RoleStaff)
}

func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func CurrentRole(c *gin.Context) models.UserRole {
	if v, ok := c.Get(ContextUserRole); ok {
		if role, ok := v.(models.UserRole); ok {
			return role
		}
	}
	return ""
}

func CurrentClaims(c *gin.Context) (session.Claims, bool) {
	v, ok := c.Get(contextClaims)
	if !ok {
		return session.Claims{}, false
	}
	claims, ok := v.(session.Claims)
	return claims, ok
}

// CurrentActor is the authenticated caller as the services see it.
func CurrentActor(c *gin.Context) services.Actor {
	return services.Actor{ID: CurrentUserID(c), Role: CurrentRole(c)}
}
