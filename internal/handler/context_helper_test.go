package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalmiddleware "github.com/noah-isme/faculty-report-portal/internal/middleware"
	"github.com/noah-isme/faculty-report-portal/internal/service"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
)

func TestIDParam(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	id, err := idParam(c, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "0", "-3", "x1"} {
		c.Params = gin.Params{{Key: "id", Value: raw}}
		_, err := idParam(c, "id")
		assert.ErrorIs(t, err, appErrors.ErrValidation, raw)
	}
}

func TestViewFromContextFallsBackToParam(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/views/principal", nil)
	c.Params = gin.Params{{Key: "kind", Value: "principal"}}

	_, _, err := viewFromContext(c)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	c.Set(internalmiddleware.ContextSessionKey, testSessions["prl"])
	session, kind, err := viewFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, "prl", session.ID)
	assert.Equal(t, service.KindPrincipal, kind)

	c.Params = gin.Params{{Key: "kind", Value: "archive"}}
	_, _, err = viewFromContext(c)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
