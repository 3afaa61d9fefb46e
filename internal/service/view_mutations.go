package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-report-portal/internal/dto"
	"github.com/noah-isme/faculty-report-portal/internal/models"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
)

// Lists a mutation can mark busy.
const (
	ListReports  = "reports"
	ListRatings  = "ratings"
	ListClasses  = "classes"
	ListCourses  = "courses"
	ListLectures = "lectures"
)

type mutation string

const (
	mutSubmitReport mutation = "submit_report"
	mutUpdateReport mutation = "update_report"
	mutDeleteReport mutation = "delete_report"
	mutReviewReport mutation = "review_report"
	mutAddRating    mutation = "add_rating"
	mutAddClass     mutation = "schedule_class"
	mutDeleteClass  mutation = "delete_class"
	mutAddCourse    mutation = "add_course"
	mutUpdateCourse mutation = "update_course"
	mutDeleteCourse mutation = "delete_course"
	mutAddLecture   mutation = "add_lecture"
)

// mutationKinds lists the views each write may be issued from. The role
// check happens when the container is resolved.
var mutationKinds = map[mutation][]ViewKind{
	mutSubmitReport: {KindReports},
	mutUpdateReport: {KindReports},
	mutDeleteReport: {KindReports},
	mutReviewReport: {KindReports, KindPrincipal},
	mutAddRating:    {KindStudent, KindReports},
	mutAddClass:     {KindReports, KindPrincipal},
	mutDeleteClass:  {KindReports, KindPrincipal},
	mutAddCourse:    {KindPrincipal},
	mutUpdateCourse: {KindPrincipal},
	mutDeleteCourse: {KindPrincipal},
	mutAddLecture:   {KindReports, KindPrincipal},
}

func allowed(m mutation, kind ViewKind) bool {
	for _, k := range mutationKinds[m] {
		if k == kind {
			return true
		}
	}
	return false
}

// mutate runs one upstream write for a view. No local edit is made: on
// success the view is refetched in full.
func (s *ViewService) mutate(ctx context.Context, session *models.Session, kind ViewKind, m mutation, list, success string, payload interface{}, action func(ctx context.Context, token string) error) error {
	if session == nil || !session.HasToken() {
		return appErrors.ErrMissingToken
	}
	c, err := s.container(session, kind)
	if err != nil {
		return err
	}
	if !allowed(m, kind) {
		return appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("%s is not available from the %s view", m, kind))
	}
	if payload != nil {
		if err := s.validator.Struct(payload); err != nil {
			appErr := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+list+" payload")
			c.pushAlert(models.AlertError, appErr.Message, appErr.Code)
			return appErr
		}
	}

	c.markBusy(list)
	err = action(ctx, session.Token)
	c.clearBusy(list)

	if err != nil {
		if errors.Is(err, appErrors.ErrSessionExpired) {
			s.expire(ctx, session)
			return appErrors.ErrSessionExpired
		}
		appErr := appErrors.FromError(err)
		c.pushAlert(models.AlertError, appErr.Message, appErr.Code)
		s.logger.Warn("view mutation failed",
			zap.String("kind", string(kind)),
			zap.String("mutation", string(m)),
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
		return err
	}

	c.pushAlert(models.AlertSuccess, success, "")
	c.notify(list, success)
	_ = s.cache.Invalidate(ctx, "dash:*")
	return s.refresh(ctx, session, c)
}

// SubmitReport creates a lecturer report.
func (s *ViewService) SubmitReport(ctx context.Context, session *models.Session, kind ViewKind, req dto.ReportRequest) (*dto.ViewSnapshot, error) {
	return s.run(ctx, session, kind, mutSubmitReport, ListReports, "Report submitted successfully", req, func(ctx context.Context, token string) error {
		return s.gateway.CreateReport(ctx, token, req)
	})
}

// UpdateReport edits a report.
func (s *ViewService) UpdateReport(ctx context.Context, session *models.Session, kind ViewKind, id int64, req dto.ReportRequest) (*dto.ViewSnapshot, error) {
	return s.run(ctx, session, kind, mutUpdateReport, ListReports, "Report updated successfully", req, func(ctx context.Context, token string) error {
		return s.gateway.UpdateReport(ctx, token, id, req)
	})
}

// DeleteReport removes a report.
func (s *ViewService) DeleteReport(ctx context.Context, session *models.Session, kind ViewKind, id int64) (*dto.ViewSnapshot, error) {
	return s.run(ctx, session, kind, mutDeleteReport, ListReports, "Report deleted", nil, func(ctx context.Context, token string) error {
		return s.gateway.DeleteReport(ctx, token, id)
	})
}

// ReviewReport approves or rejects a report.
func (s *ViewService) ReviewReport(ctx context.Context, session *models.Session, kind ViewKind, id int64, req dto.ReviewRequest) (*dto.ViewSnapshot, error) {
	msg := fmt.Sprintf("Report %s", req.Status)
	return s.run(ctx, session, kind, mutReviewReport, ListReports, msg, req, func(ctx context.Context, token string) error {
		return s.gateway.ReviewReport(ctx, token, id, req)
	})
}

// BulkReview reviews several reports in one upstream call.
func (s *ViewService) BulkReview(ctx context.Context, session *models.Session, kind ViewKind, req dto.BulkReviewRequest) (*dto.ViewSnapshot, error) {
	msg := fmt.Sprintf("%d reports %s", len(req.ReportIDs), req.Status)
	return s.run(ctx, session, kind, mutReviewReport, ListReports, msg, req, func(ctx context.Context, token string) error {
		return s.gateway.BulkReviewReports(ctx, token, req)
	})
}

// AddRating submits a rating.
func (s *ViewService) AddRating(ctx context.Context, session *models.Session, kind ViewKind, req dto.RatingRequest) (*dto.ViewSnapshot, error) {
	return s.run(ctx, session, kind, mutAddRating, ListRatings, "Rating submitted successfully", req, func(ctx context.Context, token string) error {
		return s.gateway.CreateRating(ctx, token, req)
	})
}

// ScheduleClass adds a class to the timetable.
func (s *ViewService) ScheduleClass(ctx context.Context, session *models.Session, kind ViewKind, req dto.ClassRequest) (*dto.ViewSnapshot, error) {
	return s.run(ctx, session, kind, mutAddClass, ListClasses, "Class scheduled successfully", req, func(ctx context.Context, token string) error {
		return s.gateway.CreateClass(ctx, token, req)
	})
}

// DeleteClass removes a scheduled class.
func (s *ViewService) DeleteClass(ctx context.Context, session *models.Session, kind ViewKind, id int64) (*dto.ViewSnapshot, error) {
	return s.run(ctx, session, kind, mutDeleteClass, ListClasses, "Class removed", nil, func(ctx context.Context, token string) error {
		return s.gateway.DeleteClass(ctx, token, id)
	})
}

// AddCourse creates a course.
func (s *ViewService) AddCourse(ctx context.Context, session *models.Session, kind ViewKind, req dto.CourseRequest) (*dto.ViewSnapshot, error) {
	return s.run(ctx, session, kind, mutAddCourse, ListCourses, "Course added successfully", req, func(ctx context.Context, token string) error {
		return s.gateway.CreateCourse(ctx, token, req)
	})
}

// UpdateCourse edits a course.
func (s *ViewService) UpdateCourse(ctx context.Context, session *models.Session, kind ViewKind, id int64, req dto.CourseRequest) (*dto.ViewSnapshot, error) {
	return s.run(ctx, session, kind, mutUpdateCourse, ListCourses, "Course updated successfully", req, func(ctx context.Context, token string) error {
		return s.gateway.UpdateCourse(ctx, token, id, req)
	})
}

// DeleteCourse removes a course.
func (s *ViewService) DeleteCourse(ctx context.Context, session *models.Session, kind ViewKind, id int64) (*dto.ViewSnapshot, error) {
	return s.run(ctx, session, kind, mutDeleteCourse, ListCourses, "Course deleted", nil, func(ctx context.Context, token string) error {
		return s.gateway.DeleteCourse(ctx, token, id)
	})
}

// AddLecture attaches lecture material to a course.
func (s *ViewService) AddLecture(ctx context.Context, session *models.Session, kind ViewKind, req dto.LectureRequest) (*dto.ViewSnapshot, error) {
	return s.run(ctx, session, kind, mutAddLecture, ListLectures, "Lecture added successfully", req, func(ctx context.Context, token string) error {
		return s.gateway.CreateLecture(ctx, token, req)
	})
}

func (s *ViewService) run(ctx context.Context, session *models.Session, kind ViewKind, m mutation, list, success string, payload interface{}, action func(ctx context.Context, token string) error) (*dto.ViewSnapshot, error) {
	if err := s.mutate(ctx, session, kind, m, list, success, payload, action); err != nil {
		return nil, err
	}
	c, err := s.container(session, kind)
	if err != nil {
		return nil, err
	}
	return c.snapshot(), nil
}
