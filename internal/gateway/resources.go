package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/noah-isme/faculty-report-portal/internal/dto"
	"github.com/noah-isme/faculty-report-portal/internal/models"
)

func list[T any](ctx context.Context, c *Client, token, path string) ([]T, error) {
	out := make([]T, 0)
	if err := c.get(ctx, token, path, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = make([]T, 0)
	}
	return out, nil
}

func one[T any](ctx context.Context, c *Client, token, path string) (T, error) {
	var out T
	err := c.get(ctx, token, path, &out)
	return out, err
}

// Courses lists the courses visible to the token holder.
func (c *Client) Courses(ctx context.Context, token string) ([]models.Course, error) {
	return list[models.Course](ctx, c, token, "/api/courses")
}

// Reports lists lecturer reports.
func (c *Client) Reports(ctx context.Context, token string) ([]models.Report, error) {
	return list[models.Report](ctx, c, token, "/api/reports")
}

// SelfRatings lists the caller's self-assessment ratings.
func (c *Client) SelfRatings(ctx context.Context, token string) ([]models.Rating, error) {
	return list[models.Rating](ctx, c, token, "/api/ratings/self")
}

// CourseRatings lists course evaluations.
func (c *Client) CourseRatings(ctx context.Context, token string) ([]models.Rating, error) {
	return list[models.Rating](ctx, c, token, "/api/ratings/course")
}

// Classes lists scheduled classes.
func (c *Client) Classes(ctx context.Context, token string) ([]models.ScheduledClass, error) {
	return list[models.ScheduledClass](ctx, c, token, "/api/classes")
}

// Lecturers lists lecturer profiles.
func (c *Client) Lecturers(ctx context.Context, token string) ([]models.UserProfile, error) {
	return list[models.UserProfile](ctx, c, token, "/api/lecturers")
}

// Lectures lists course material.
func (c *Client) Lectures(ctx context.Context, token string) ([]models.Lecture, error) {
	return list[models.Lecture](ctx, c, token, "/api/lectures")
}

// PrincipalReports lists reports in the reviewer's scope.
func (c *Client) PrincipalReports(ctx context.Context, token string) ([]models.Report, error) {
	return list[models.Report](ctx, c, token, "/api/principal/reports")
}

// PrincipalCourses lists courses in the reviewer's scope.
func (c *Client) PrincipalCourses(ctx context.Context, token string) ([]models.Course, error) {
	return list[models.Course](ctx, c, token, "/api/principal/courses")
}

// PrincipalRatings lists ratings in the reviewer's scope.
func (c *Client) PrincipalRatings(ctx context.Context, token string) ([]models.Rating, error) {
	return list[models.Rating](ctx, c, token, "/api/principal/ratings")
}

// PrincipalClasses lists classes in the reviewer's scope.
func (c *Client) PrincipalClasses(ctx context.Context, token string) ([]models.ScheduledClass, error) {
	return list[models.ScheduledClass](ctx, c, token, "/api/principal/classes")
}

// PrincipalLecturers lists lecturers in the reviewer's scope.
func (c *Client) PrincipalLecturers(ctx context.Context, token string) ([]models.UserProfile, error) {
	return list[models.UserProfile](ctx, c, token, "/api/principal/lecturers")
}

// PrincipalLectures lists course material in the reviewer's scope.
func (c *Client) PrincipalLectures(ctx context.Context, token string) ([]models.Lecture, error) {
	return list[models.Lecture](ctx, c, token, "/api/principal/lectures")
}

func (c *Client) UserStats(ctx context.Context, token string) (dto.UserStats, error) {
	return one[dto.UserStats](ctx, c, token, "/api/users/stats")
}

func (c *Client) CourseStats(ctx context.Context, token string) (dto.CourseStats, error) {
	return one[dto.CourseStats](ctx, c, token, "/api/courses/stats")
}

func (c *Client) ReportCounts(ctx context.Context, token string) (dto.ReportCounts, error) {
	return one[dto.ReportCounts](ctx, c, token, "/api/reports/stats")
}

func (c *Client) AttendanceStats(ctx context.Context, token string) (dto.AttendanceStats, error) {
	return one[dto.AttendanceStats](ctx, c, token, "/api/attendance/stats")
}

func (c *Client) RecentActivities(ctx context.Context, token string) ([]dto.Activity, error) {
	return list[dto.Activity](ctx, c, token, "/api/activities/recent")
}

func (c *Client) RatingStats(ctx context.Context, token string) (dto.RatingStats, error) {
	return one[dto.RatingStats](ctx, c, token, "/api/ratings/stats")
}

func (c *Client) SystemPerformance(ctx context.Context, token string) (dto.PerformanceStats, error) {
	return one[dto.PerformanceStats](ctx, c, token, "/api/system/performance")
}

func (c *Client) ReportWorkflow(ctx context.Context, token string) (dto.WorkflowStats, error) {
	return one[dto.WorkflowStats](ctx, c, token, "/api/reports/workflow")
}

// PublicStats needs no token.
func (c *Client) PublicStats(ctx context.Context) (dto.PublicStats, error) {
	return one[dto.PublicStats](ctx, c, "", "/api/public-stats")
}

// PublicRatings needs no token.
func (c *Client) PublicRatings(ctx context.Context) (dto.PublicRatings, error) {
	return one[dto.PublicRatings](ctx, c, "", "/api/ratings/public")
}

func (c *Client) AggregatedRatings(ctx context.Context, token string) ([]dto.AggregatedRating, error) {
	return list[dto.AggregatedRating](ctx, c, token, "/api/ratings/aggregated")
}

func (c *Client) RatingTrends(ctx context.Context, token string) ([]dto.RatingTrendPoint, error) {
	return list[dto.RatingTrendPoint](ctx, c, token, "/api/ratings/trends")
}

// CreateReport submits a new report.
func (c *Client) CreateReport(ctx context.Context, token string, req dto.ReportRequest) error {
	return c.send(ctx, http.MethodPost, token, "/api/reports", req, nil)
}

// UpdateReport replaces a report.
func (c *Client) UpdateReport(ctx context.Context, token string, id int64, req dto.ReportRequest) error {
	return c.send(ctx, http.MethodPut, token, fmt.Sprintf("/api/reports/%d", id), req, nil)
}

// DeleteReport removes a report.
func (c *Client) DeleteReport(ctx context.Context, token string, id int64) error {
	return c.send(ctx, http.MethodDelete, token, fmt.Sprintf("/api/reports/%d", id), nil, nil)
}

// ReviewReport approves or rejects a report.
func (c *Client) ReviewReport(ctx context.Context, token string, id int64, req dto.ReviewRequest) error {
	return c.send(ctx, http.MethodPut, token, fmt.Sprintf("/api/reports/%d/review", id), req, nil)
}

// BulkReviewReports reviews several reports in one call.
func (c *Client) BulkReviewReports(ctx context.Context, token string, req dto.BulkReviewRequest) error {
	return c.send(ctx, http.MethodPost, token, "/api/reports/bulk-review", req, nil)
}

// CreateRating submits a rating.
func (c *Client) CreateRating(ctx context.Context, token string, req dto.RatingRequest) error {
	return c.send(ctx, http.MethodPost, token, "/api/ratings", req, nil)
}

// CreateClass schedules a class.
func (c *Client) CreateClass(ctx context.Context, token string, req dto.ClassRequest) error {
	return c.send(ctx, http.MethodPost, token, "/api/classes", req, nil)
}

// DeleteClass cancels a scheduled class.
func (c *Client) DeleteClass(ctx context.Context, token string, id int64) error {
	return c.send(ctx, http.MethodDelete, token, fmt.Sprintf("/api/classes/%d", id), nil, nil)
}

// CreateCourse adds a course.
func (c *Client) CreateCourse(ctx context.Context, token string, req dto.CourseRequest) error {
	return c.send(ctx, http.MethodPost, token, "/api/courses", req, nil)
}

// UpdateCourse replaces a course.
func (c *Client) UpdateCourse(ctx context.Context, token string, id int64, req dto.CourseRequest) error {
	return c.send(ctx, http.MethodPut, token, fmt.Sprintf("/api/courses/%d", id), req, nil)
}

// DeleteCourse removes a course.
func (c *Client) DeleteCourse(ctx context.Context, token string, id int64) error {
	return c.send(ctx, http.MethodDelete, token, fmt.Sprintf("/api/courses/%d", id), nil, nil)
}

// CreateLecture attaches material to a course.
func (c *Client) CreateLecture(ctx context.Context, token string, req dto.LectureRequest) error {
	return c.send(ctx, http.MethodPost, token, "/api/lectures", req, nil)
}

// Ping reports whether the upstream answers at all. Any response below 500
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()
	_, err := c.roundTrip(callCtx, http.MethodGet, "", "/api/public-stats", nil)
	if err == nil || !retryable(err) {
		return nil
	}
	return err
}
