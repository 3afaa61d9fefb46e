package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-report-portal/internal/models"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
	"github.com/noah-isme/faculty-report-portal/pkg/response"
)

// ContextSessionKey is the gin context key storing the portal session.
const ContextSessionKey = "currentSession"

type sessionResolver interface {
	Current(ctx context.Context, sessionID string) (*models.Session, error)
}

// Session protects routes by requiring `Authorization: Bearer <session-id>`.
func Session(sessions sessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := bearer(c.GetHeader("Authorization"))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		session, err := sessions.Current(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

// OptionalSession attaches the session when present but does not block.
func OptionalSession(sessions sessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := bearer(c.GetHeader("Authorization"))
		if err != nil {
			c.Next()
			return
		}
		if session, err := sessions.Current(c.Request.Context(), id); err == nil {
			c.Set(ContextSessionKey, session)
		}
		c.Next()
	}
}

// CurrentSession returns the session stored by Session, or nil.
func CurrentSession(c *gin.Context) *models.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	session, _ := value.(*models.Session)
	return session
}

func bearer(header string) (string, error) {
	if header == "" {
		return "", appErrors.ErrUnauthorized
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
