package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-report-portal/internal/dto"
	internalmiddleware "github.com/noah-isme/faculty-report-portal/internal/middleware"
	"github.com/noah-isme/faculty-report-portal/internal/models"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
)

type fakeDashboardService struct {
	resp    *dto.DashboardResponse
	public  *dto.PublicResponse
	hit     bool
	err     error
	session *models.Session
}

func (f *fakeDashboardService) Load(_ context.Context, session *models.Session) (*dto.DashboardResponse, error) {
	f.session = session
	return f.resp, f.err
}

func (f *fakeDashboardService) Public(context.Context) (*dto.PublicResponse, bool, error) {
	return f.public, f.hit, f.err
}

func dashboardRouter(svc dashboardService) *gin.Engine {
	h := NewDashboardHandler(svc)
	r := gin.New()
	r.Use(internalmiddleware.WithResponseMeta())
	r.GET("/public/stats", h.Public)
	r.GET("/dashboard", withTestSession(), internalmiddleware.RequireRoles(models.RolePRL, models.RoleProgramLeader, models.RoleFMG), h.Dashboard)
	return r
}

func TestDashboardHandlerFlagsPartialResult(t *testing.T) {
	resp := dto.DefaultDashboard()
	resp.Failures = []string{"attendance", "ratings"}
	svc := &fakeDashboardService{resp: &resp}

	w := performRequest(dashboardRouter(svc), http.MethodGet, "/dashboard", "prl", nil)

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, true, env.Meta["partial"])
	assert.Contains(t, string(env.Data), `"failures":["attendance","ratings"]`)
	require.NotNil(t, svc.session)
	assert.Equal(t, "prl", svc.session.ID)
}

func TestDashboardHandlerRestrictedToReviewers(t *testing.T) {
	svc := &fakeDashboardService{}
	w := performRequest(dashboardRouter(svc), http.MethodGet, "/dashboard", "lec", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, svc.session)

	w = performRequest(dashboardRouter(svc), http.MethodGet, "/dashboard", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDashboardHandlerSessionExpired(t *testing.T) {
	svc := &fakeDashboardService{err: appErrors.ErrSessionExpired}
	w := performRequest(dashboardRouter(svc), http.MethodGet, "/dashboard", "prl", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, appErrors.ErrSessionExpired.Code, decode(t, w).Error.Code)
}

func TestDashboardHandlerPublicCacheMeta(t *testing.T) {
	public := dto.DefaultPublic()
	svc := &fakeDashboardService{public: &public, hit: true}

	w := performRequest(dashboardRouter(svc), http.MethodGet, "/public/stats", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w).Meta["cache_hit"])
}
