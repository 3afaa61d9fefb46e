package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-report-portal/internal/dto"
	"github.com/noah-isme/faculty-report-portal/internal/middleware"
	"github.com/noah-isme/faculty-report-portal/internal/models"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
	"github.com/noah-isme/faculty-report-portal/pkg/response"
)

type dashboardService interface {
	Load(ctx context.Context, session *models.Session) (*dto.DashboardResponse, error)
	Public(ctx context.Context) (*dto.PublicResponse, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Dashboard godoc
// @Summary Aggregate dashboard
// @Description Eight independently loaded sections; failed sections keep defaults and are listed in failures
// @Tags Dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.service.Load(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "partial", len(summary.Failures) > 0)
	response.JSON(c, http.StatusOK, summary, middleware.ExtractMeta(c))
}

// Public godoc
// @Summary Public teaser statistics
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /public/stats [get]
func (h *DashboardHandler) Public(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	stats, cacheHit, err := h.service.Public(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, stats, middleware.ExtractMeta(c))
}
