package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-report-portal/internal/analytics"
	"github.com/noah-isme/faculty-report-portal/internal/dto"
	"github.com/noah-isme/faculty-report-portal/internal/models"
	"github.com/noah-isme/faculty-report-portal/internal/service"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
	"github.com/noah-isme/faculty-report-portal/pkg/response"
)

type viewReader interface {
	Load(ctx context.Context, session *models.Session, kind service.ViewKind, force bool) (*dto.ViewSnapshot, error)
	Reports(ctx context.Context, session *models.Session, kind service.ViewKind, filter analytics.ReportFilter) ([]dto.ReportView, error)
	Analytics(ctx context.Context, session *models.Session, kind service.ViewKind) (*dto.ViewAnalytics, error)
	MarkNotificationRead(session *models.Session, kind service.ViewKind, id string) error
	DismissAlert(session *models.Session, kind service.ViewKind, id string) error
}

// ViewHandler exposes the per-role view containers.
type ViewHandler struct {
	views viewReader
}

// NewViewHandler constructs the handler.
func NewViewHandler(views viewReader) *ViewHandler {
	return &ViewHandler{views: views}
}

// Snapshot godoc
// @Summary View snapshot
// @Description Loads the view on first access; refresh=true forces a refetch
// @Tags Views
// @Security BearerAuth
// @Produce json
// @Param kind path string true "student, reports or principal"
// @Param refresh query bool false "Force refetch"
// @Success 200 {object} response.Envelope
// @Router /views/{kind} [get]
func (h *ViewHandler) Snapshot(c *gin.Context) {
	session, kind, err := viewFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	force, _ := strconv.ParseBool(c.Query("refresh"))
	snap, err := h.views.Load(c.Request.Context(), session, kind, force)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snap)
}

// Reports godoc
// @Summary Filtered reports
// @Tags Views
// @Security BearerAuth
// @Produce json
// @Param kind path string true "View kind"
// @Param search query string false "Matches topic, outcomes, lecturer or course"
// @Param status query string false "pending, approved or rejected"
// @Param course_id query int false "Course ID"
// @Param week query int false "Teaching week"
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Param min_attendance query number false "Minimum attendance percent"
// @Param max_attendance query number false "Maximum attendance percent"
// @Param has_challenges query bool false "Only reports with or without challenges"
// @Success 200 {object} response.Envelope
// @Router /views/{kind}/reports [get]
func (h *ViewHandler) Reports(c *gin.Context) {
	session, kind, err := viewFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var query dto.ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report filter"))
		return
	}
	filter, err := reportFilter(query)
	if err != nil {
		response.Error(c, err)
		return
	}
	reports, err := h.views.Reports(c.Request.Context(), session, kind, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, map[string]interface{}{"total": len(reports)})
}

func reportFilter(q dto.ReportQuery) (analytics.ReportFilter, error) {
	filter := analytics.ReportFilter{
		Search:        q.Search,
		Status:        models.ReportStatus(q.Status),
		CourseID:      q.CourseID,
		Week:          q.Week,
		MinAttendance: q.MinAttendance,
		MaxAttendance: q.MaxAttendance,
		HasChallenges: q.HasChallenges,
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return filter, appErrors.Clone(appErrors.ErrValidation, "status must be pending, approved or rejected")
	}
	if q.CourseID < 0 || q.Week < 0 {
		return filter, appErrors.Clone(appErrors.ErrValidation, "course_id and week must not be negative")
	}
	for _, pct := range []*float64{q.MinAttendance, q.MaxAttendance} {
		if pct != nil && (*pct < 0 || *pct > 100) {
			return filter, appErrors.Clone(appErrors.ErrValidation, "attendance bounds must be between 0 and 100")
		}
	}
	for _, bound := range []struct {
		raw string
		dst **time.Time
	}{{q.DateFrom, &filter.DateFrom}, {q.DateTo, &filter.DateTo}} {
		if bound.raw == "" {
			continue
		}
		day, err := time.Parse(time.DateOnly, bound.raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "dates must use YYYY-MM-DD")
		}
		*bound.dst = &day
	}
	return filter, nil
}

// Analytics godoc
// @Summary Derived analytics of a view
// @Tags Views
// @Security BearerAuth
// @Produce json
// @Param kind path string true "View kind"
// @Success 200 {object} response.Envelope
// @Router /views/{kind}/analytics [get]
func (h *ViewHandler) Analytics(c *gin.Context) {
	session, kind, err := viewFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.views.Analytics(c.Request.Context(), session, kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// MarkNotificationRead godoc
// @Summary Mark a notification read
// @Tags Views
// @Security BearerAuth
// @Param kind path string true "View kind"
// @Param id path string true "Notification ID"
// @Success 204
// @Router /views/{kind}/notifications/{id}/read [post]
func (h *ViewHandler) MarkNotificationRead(c *gin.Context) {
	session, kind, err := viewFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.views.MarkNotificationRead(session, kind, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DismissAlert godoc
// @Summary Dismiss an alert
// @Tags Views
// @Security BearerAuth
// @Param kind path string true "View kind"
// @Param id path string true "Alert ID"
// @Success 204
// @Router /views/{kind}/alerts/{id} [delete]
func (h *ViewHandler) DismissAlert(c *gin.Context) {
	session, kind, err := viewFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.views.DismissAlert(session, kind, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
