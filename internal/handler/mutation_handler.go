package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-report-portal/internal/dto"
	"github.com/noah-isme/faculty-report-portal/internal/models"
	"github.com/noah-isme/faculty-report-portal/internal/service"

	"github.com/noah-isme/faculty-report-portal/pkg/response"
)

type viewWriter interface {
	SubmitReport(ctx context.Context, session *models.Session, kind service.ViewKind, req dto.ReportRequest) (*dto.ViewSnapshot, error)
	UpdateReport(ctx context.Context, session *models.Session, kind service.ViewKind, id int64, req dto.ReportRequest) (*dto.ViewSnapshot, error)
	DeleteReport(ctx context.Context, session *models.Session, kind service.ViewKind, id int64) (*dto.ViewSnapshot, error)
	ReviewReport(ctx context.Context, session *models.Session, kind service.ViewKind, id int64, req dto.ReviewRequest) (*dto.ViewSnapshot, error)
	BulkReview(ctx context.Context, session *models.Session, kind service.ViewKind, req dto.BulkReviewRequest) (*dto.ViewSnapshot, error)
	AddRating(ctx context.Context, session *models.Session, kind service.ViewKind, req dto.RatingRequest) (*dto.ViewSnapshot, error)
	ScheduleClass(ctx context.Context, session *models.Session, kind service.ViewKind, req dto.ClassRequest) (*dto.ViewSnapshot, error)
	DeleteClass(ctx context.Context, session *models.Session, kind service.ViewKind, id int64) (*dto.ViewSnapshot, error)
	AddCourse(ctx context.Context, session *models.Session, kind service.ViewKind, req dto.CourseRequest) (*dto.ViewSnapshot, error)
	UpdateCourse(ctx context.Context, session *models.Session, kind service.ViewKind, id int64, req dto.CourseRequest) (*dto.ViewSnapshot, error)
	DeleteCourse(ctx context.Context, session *models.Session, kind service.ViewKind, id int64) (*dto.ViewSnapshot, error)
	AddLecture(ctx context.Context, session *models.Session, kind service.ViewKind, req dto.LectureRequest) (*dto.ViewSnapshot, error)
}

// MutationHandler forwards view writes. Every successful write answers
// with the refetched view snapshot.
type MutationHandler struct {
	views viewWriter
}

// NewMutationHandler constructs the handler.
func NewMutationHandler(views viewWriter) *MutationHandler {
	return &MutationHandler{views: views}
}

// withBody binds a JSON body and runs a create-style write.
func withBody[T any](c *gin.Context, what string, status int, run func(ctx context.Context, session *models.Session, kind service.ViewKind, req T) (*dto.ViewSnapshot, error)) {
	session, kind, err := viewFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, what))
		return
	}
	snap, err := run(c.Request.Context(), session, kind, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, status, snap)
}

// withIDBody binds :id and a JSON body.
func withIDBody[T any](c *gin.Context, what string, run func(ctx context.Context, session *models.Session, kind service.ViewKind, id int64, req T) (*dto.ViewSnapshot, error)) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	withBody(c, what, http.StatusOK, func(ctx context.Context, session *models.Session, kind service.ViewKind, req T) (*dto.ViewSnapshot, error) {
		return run(ctx, session, kind, id, req)
	})
}

func withID(c *gin.Context, run func(ctx context.Context, session *models.Session, kind service.ViewKind, id int64) (*dto.ViewSnapshot, error)) {
	session, kind, err := viewFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	snap, err := run(c.Request.Context(), session, kind, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snap)
}

// SubmitReport godoc
// @Summary Submit a lecture report
// @Tags Mutations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param kind path string true "View kind"
// @Param payload body dto.ReportRequest true "Report"
// @Success 201 {object} response.Envelope
// @Router /views/{kind}/reports [post]
func (h *MutationHandler) SubmitReport(c *gin.Context) {
	withBody(c, "report", http.StatusCreated, h.views.SubmitReport)
}

// UpdateReport godoc
// @Summary Update a report
// @Tags Mutations
// @Security BearerAuth
// @Param kind path string true "View kind"
// @Param id path int true "Report ID"
// @Param payload body dto.ReportRequest true "Report"
// @Success 200 {object} response.Envelope
// @Router /views/{kind}/reports/{id} [put]
func (h *MutationHandler) UpdateReport(c *gin.Context) {
	withIDBody(c, "report", h.views.UpdateReport)
}

// DeleteReport godoc
// @Summary Delete a report
// @Tags Mutations
// @Security BearerAuth
// @Param kind path string true "View kind"
// @Param id path int true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /views/{kind}/reports/{id} [delete]
func (h *MutationHandler) DeleteReport(c *gin.Context) {
	withID(c, h.views.DeleteReport)
}

// ReviewReport godoc
// @Summary Approve or reject a report
// @Tags Mutations
// @Security BearerAuth
// @Param kind path string true "View kind"
// @Param id path int true "Report ID"
// @Param payload body dto.ReviewRequest true "Review"
// @Success 200 {object} response.Envelope
// @Router /views/{kind}/reports/{id}/review [put]
func (h *MutationHandler) ReviewReport(c *gin.Context) {
	withIDBody(c, "review", h.views.ReviewReport)
}

// BulkReview godoc
// @Summary Review several reports
// @Tags Mutations
// @Security BearerAuth
// @Param kind path string true "View kind"
// @Param payload body dto.BulkReviewRequest true "Bulk review"
// @Success 200 {object} response.Envelope
// @Router /views/{kind}/reports/bulk-review [post]
func (h *MutationHandler) BulkReview(c *gin.Context) {
	withBody(c, "bulk review", http.StatusOK, h.views.BulkReview)
}

// AddRating godoc
// @Summary Submit a rating
// @Tags Mutations
// @Security BearerAuth
// @Param kind path string true "View kind"
// @Param payload body dto.RatingRequest true "Rating"
// @Success 201 {object} response.Envelope
// @Router /views/{kind}/ratings [post]
func (h *MutationHandler) AddRating(c *gin.Context) {
	withBody(c, "rating", http.StatusCreated, h.views.AddRating)
}

// ScheduleClass godoc
// @Summary Schedule a class
// @Tags Mutations
// @Security BearerAuth
// @Param kind path string true "View kind"
// @Param payload body dto.ClassRequest true "Class"
// @Success 201 {object} response.Envelope
// @Router /views/{kind}/classes [post]
func (h *MutationHandler) ScheduleClass(c *gin.Context) {
	withBody(c, "class", http.StatusCreated, h.views.ScheduleClass)
}

// DeleteClass godoc
// @Summary Remove a scheduled class
// @Tags Mutations
// @Security BearerAuth
// @Param kind path string true "View kind"
// @Param id path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /views/{kind}/classes/{id} [delete]
func (h *MutationHandler) DeleteClass(c *gin.Context) {
	withID(c, h.views.DeleteClass)
}

// AddCourse godoc
// @Summary Add a course
// @Tags Mutations
// @Security BearerAuth
// @Param kind path string true "View kind"
// @Param payload body dto.CourseRequest true "Course"
// @Success 201 {object} response.Envelope
// @Router /views/{kind}/courses [post]
func (h *MutationHandler) AddCourse(c *gin.Context) {
	withBody(c, "course", http.StatusCreated, h.views.AddCourse)
}

// UpdateCourse godoc
// @Summary Update a course
// @Tags Mutations
// @Security BearerAuth
// @Param kind path string true "View kind"
// @Param id path int true "Course ID"
// @Param payload body dto.CourseRequest true "Course"
// @Success 200 {object} response.Envelope
// @Router /views/{kind}/courses/{id} [put]
func (h *MutationHandler) UpdateCourse(c *gin.Context) {
	withIDBody(c, "course", h.views.UpdateCourse)
}

// DeleteCourse godoc
// @Summary Delete a course
// @Tags Mutations
// @Security BearerAuth
// @Param kind path string true "View kind"
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /views/{kind}/courses/{id} [delete]
func (h *MutationHandler) DeleteCourse(c *gin.Context) {
	withID(c, h.views.DeleteCourse)
}

// AddLecture godoc
// @Summary Add lecture material
// @Tags Mutations
// @Security BearerAuth
// @Param kind path string true "View kind"
// @Param payload body dto.LectureRequest true "Lecture"
// @Success 201 {object} response.Envelope
// @Router /views/{kind}/lectures [post]
func (h *MutationHandler) AddLecture(c *gin.Context) {
	withBody(c, "lecture", http.StatusCreated, h.views.AddLecture)
}
