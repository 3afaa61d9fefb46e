package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-report-portal/internal/middleware"
	"github.com/noah-isme/faculty-report-portal/internal/models"
	"github.com/noah-isme/faculty-report-portal/internal/service"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
)

func sessionFromContext(c *gin.Context) (*models.Session, error) {
	session := middleware.CurrentSession(c)
	if session == nil {
		return nil, appErrors.ErrUnauthorized
	}
	return session, nil
}

// viewFromContext resolves the session and the validated :kind.
func viewFromContext(c *gin.Context) (*models.Session, service.ViewKind, error) {
	session, err := sessionFromContext(c)
	if err != nil {
		return nil, "", err
	}
	kind := middleware.ViewKind(c)
	if kind == "" {
		parsed, ok := service.ParseViewKind(c.Param("kind"))
		if !ok {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "unknown view")
		}
		kind = parsed
	}
	return session, kind, nil
}

func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be a positive integer")
	}
	return id, nil
}

func bindError(err error, what string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+what+" payload")
}
