package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-report-portal/internal/models"
	"github.com/noah-isme/faculty-report-portal/internal/service"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
	"github.com/noah-isme/faculty-report-portal/pkg/response"
)

// ContextViewKindKey stores the parsed :kind route parameter.
const ContextViewKindKey = "viewKind"

// RequireRoles admits sessions whose role is listed.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		session := CurrentSession(c)
		if session == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[session.User.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireViewKind validates the :kind parameter against the session role.
func RequireViewKind() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := CurrentSession(c)
		if session == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		kind, ok := service.ParseViewKind(c.Param("kind"))
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown view"))
			c.Abort()
			return
		}
		if !service.RoleCanView(session.User.Role, kind) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "this view is not available for your role"))
			c.Abort()
			return
		}
		c.Set(ContextViewKindKey, kind)
		c.Next()
	}
}

// ViewKind returns the kind stored by RequireViewKind.
func ViewKind(c *gin.Context) service.ViewKind {
	if value, exists := c.Get(ContextViewKindKey); exists {
		if kind, ok := value.(service.ViewKind); ok {
			return kind
		}
	}
	return ""
}
