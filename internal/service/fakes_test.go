package service

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/faculty-report-portal/internal/dto"
	"github.com/noah-isme/faculty-report-portal/internal/gateway"
	"github.com/noah-isme/faculty-report-portal/internal/models"
)

// fakePortal stands in for the upstream gateway. Errors are keyed by
// method name.
type fakePortal struct {
	mu     sync.Mutex
	calls  map[string]int
	errs   map[string]error
	tokens []string

	data       models.Collections
	selfRating []models.Rating
	auth       *gateway.AuthResult

	aggregated []dto.AggregatedRating
	trends     []dto.RatingTrendPoint
	public     dto.PublicStats
}

func newFakePortal() *fakePortal {
	return &fakePortal{calls: map[string]int{}, errs: map[string]error{}}
}

func (f *fakePortal) hit(name, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	f.tokens = append(f.tokens, token)
	return f.errs[name]
}

func (f *fakePortal) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakePortal) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakePortal) setErr(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[name] = err
}

func ret[T any](f *fakePortal, name, token string, v T) (T, error) {
	if err := f.hit(name, token); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func (f *fakePortal) Login(_ context.Context, _ dto.LoginRequest) (*gateway.AuthResult, error) {
	return ret(f, "Login", "", f.auth)
}

func (f *fakePortal) Register(_ context.Context, _ dto.RegisterRequest) (*gateway.AuthResult, error) {
	return ret(f, "Register", "", f.auth)
}

func (f *fakePortal) Courses(_ context.Context, token string) ([]models.Course, error) {
	return ret(f, "Courses", token, f.data.Courses)
}

func (f *fakePortal) Reports(_ context.Context, token string) ([]models.Report, error) {
	return ret(f, "Reports", token, f.data.Reports)
}

func (f *fakePortal) SelfRatings(_ context.Context, token string) ([]models.Rating, error) {
	return ret(f, "SelfRatings", token, f.selfRating)
}

func (f *fakePortal) CourseRatings(_ context.Context, token string) ([]models.Rating, error) {
	return ret(f, "CourseRatings", token, f.data.Ratings)
}

func (f *fakePortal) Classes(_ context.Context, token string) ([]models.ScheduledClass, error) {
	return ret(f, "Classes", token, f.data.Classes)
}

func (f *fakePortal) Lecturers(_ context.Context, token string) ([]models.UserProfile, error) {
	return ret(f, "Lecturers", token, f.data.Lecturers)
}

func (f *fakePortal) PrincipalReports(_ context.Context, token string) ([]models.Report, error) {
	return ret(f, "PrincipalReports", token, f.data.Reports)
}

func (f *fakePortal) PrincipalCourses(_ context.Context, token string) ([]models.Course, error) {
	return ret(f, "PrincipalCourses", token, f.data.Courses)
}

func (f *fakePortal) PrincipalRatings(_ context.Context, token string) ([]models.Rating, error) {
	return ret(f, "PrincipalRatings", token, f.data.Ratings)
}

func (f *fakePortal) PrincipalClasses(_ context.Context, token string) ([]models.ScheduledClass, error) {
	return ret(f, "PrincipalClasses", token, f.data.Classes)
}

func (f *fakePortal) PrincipalLecturers(_ context.Context, token string) ([]models.UserProfile, error) {
	return ret(f, "PrincipalLecturers", token, f.data.Lecturers)
}

func (f *fakePortal) PrincipalLectures(_ context.Context, token string) ([]models.Lecture, error) {
	return ret(f, "PrincipalLectures", token, f.data.Lectures)
}

func (f *fakePortal) AggregatedRatings(_ context.Context, token string) ([]dto.AggregatedRating, error) {
	return ret(f, "AggregatedRatings", token, f.aggregated)
}

func (f *fakePortal) RatingTrends(_ context.Context, token string) ([]dto.RatingTrendPoint, error) {
	return ret(f, "RatingTrends", token, f.trends)
}

func (f *fakePortal) UserStats(_ context.Context, token string) (dto.UserStats, error) {
	return ret(f, "UserStats", token, dto.UserStats{TotalUsers: 42, Students: 30, Lecturers: 10})
}

func (f *fakePortal) CourseStats(_ context.Context, token string) (dto.CourseStats, error) {
	return ret(f, "CourseStats", token, dto.CourseStats{TotalCourses: 8, ActiveCourses: 6})
}

func (f *fakePortal) ReportCounts(_ context.Context, token string) (dto.ReportCounts, error) {
	return ret(f, "ReportCounts", token, dto.ReportCounts{TotalReports: 12, Approved: 7})
}

func (f *fakePortal) AttendanceStats(_ context.Context, token string) (dto.AttendanceStats, error) {
	return ret(f, "AttendanceStats", token, dto.AttendanceStats{AverageRate: 81.5})
}

func (f *fakePortal) RecentActivities(_ context.Context, token string) ([]dto.Activity, error) {
	return ret(f, "RecentActivities", token, []dto.Activity{{ID: 1, Type: "report", Description: "Week 3 submitted"}})
}

func (f *fakePortal) RatingStats(_ context.Context, token string) (dto.RatingStats, error) {
	return ret(f, "RatingStats", token, dto.RatingStats{AverageRating: 4.2, TotalRatings: 15})
}

func (f *fakePortal) SystemPerformance(_ context.Context, token string) (dto.PerformanceStats, error) {
	return ret(f, "SystemPerformance", token, dto.PerformanceStats{UptimePercent: 99.9})
}

func (f *fakePortal) ReportWorkflow(_ context.Context, token string) (dto.WorkflowStats, error) {
	return ret(f, "ReportWorkflow", token, dto.WorkflowStats{Submitted: 12})
}

func (f *fakePortal) PublicStats(_ context.Context) (dto.PublicStats, error) {
	return ret(f, "PublicStats", "", f.public)
}

func (f *fakePortal) PublicRatings(_ context.Context) (dto.PublicRatings, error) {
	return ret(f, "PublicRatings", "", dto.PublicRatings{AverageRating: 4.1, TotalRatings: 9})
}

func (f *fakePortal) CreateReport(_ context.Context, token string, _ dto.ReportRequest) error {
	return f.hit("CreateReport", token)
}

func (f *fakePortal) UpdateReport(_ context.Context, token string, _ int64, _ dto.ReportRequest) error {
	return f.hit("UpdateReport", token)
}

func (f *fakePortal) DeleteReport(_ context.Context, token string, _ int64) error {
	return f.hit("DeleteReport", token)
}

func (f *fakePortal) ReviewReport(_ context.Context, token string, _ int64, _ dto.ReviewRequest) error {
	return f.hit("ReviewReport", token)
}

func (f *fakePortal) BulkReviewReports(_ context.Context, token string, _ dto.BulkReviewRequest) error {
	return f.hit("BulkReviewReports", token)
}

func (f *fakePortal) CreateRating(_ context.Context, token string, _ dto.RatingRequest) error {
	return f.hit("CreateRating", token)
}

func (f *fakePortal) CreateClass(_ context.Context, token string, _ dto.ClassRequest) error {
	return f.hit("CreateClass", token)
}

func (f *fakePortal) DeleteClass(_ context.Context, token string, _ int64) error {
	return f.hit("DeleteClass", token)
}

func (f *fakePortal) CreateCourse(_ context.Context, token string, _ dto.CourseRequest) error {
	return f.hit("CreateCourse", token)
}

func (f *fakePortal) UpdateCourse(_ context.Context, token string, _ int64, _ dto.CourseRequest) error {
	return f.hit("UpdateCourse", token)
}

func (f *fakePortal) DeleteCourse(_ context.Context, token string, _ int64) error {
	return f.hit("DeleteCourse", token)
}

func (f *fakePortal) CreateLecture(_ context.Context, token string, _ dto.LectureRequest) error {
	return f.hit("CreateLecture", token)
}

type expiryRecorder struct {
	mu      sync.Mutex
	expired []string
	onEnd   func(string)
}

func (e *expiryRecorder) Expire(_ context.Context, sessionID string) {
	e.mu.Lock()
	e.expired = append(e.expired, sessionID)
	e.mu.Unlock()
	if e.onEnd != nil {
		e.onEnd(sessionID)
	}
}

func sampleCollections() models.Collections {
	day := func(d int) models.Timestamp {
		return models.NewTimestamp(time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC))
	}
	return models.Collections{
		Courses: []models.Course{
			{ID: 1, Name: "Data Structures", Code: "DS101", LecturerID: 7},
			{ID: 2, Name: "Networks", Code: "NW201", LecturerID: 8},
		},
		Lecturers: []models.UserProfile{
			{ID: 7, Username: "thabo.m", Role: models.RoleLecturer},
			{ID: 8, Username: "lerato.k", Role: models.RoleLecturer},
		},
		Reports: []models.Report{
			{ID: 1, CourseID: 1, LecturerID: 7, Week: 1, Topic: "Arrays", Date: day(4), ActualStudents: 40, TotalStudents: 50, Status: models.ReportStatusApproved},
			{ID: 2, CourseID: 2, LecturerID: 8, Week: 1, Topic: "OSI model", Date: day(5), ActualStudents: 0, TotalStudents: 0, Status: models.ReportStatusPending},
		},
		Ratings: []models.Rating{
			{ID: 1, CourseID: 1, LecturerID: 7, Rating: 5, RatingType: models.RatingTypeCourse},
			{ID: 2, CourseID: 2, LecturerID: 8, Rating: 2, RatingType: models.RatingTypeCourse},
		},
		Classes: []models.ScheduledClass{
			{ID: 1, CourseID: 1, LecturerID: 7, Date: day(20), Time: "09:00", Room: "B12"},
		},
	}
}

func reviewerSession() *models.Session {
	return &models.Session{ID: "sess-prl", Token: "upstream-prl", User: models.UserProfile{ID: 3, Username: "prl.admin", Role: models.RolePRL}}
}

func lecturerSession() *models.Session {
	return &models.Session{ID: "sess-lec", Token: "upstream-lec", User: models.UserProfile{ID: 7, Username: "thabo.m", Role: models.RoleLecturer}}
}

func studentSession() *models.Session {
	return &models.Session{ID: "sess-stu", Token: "upstream-stu", User: models.UserProfile{ID: 21, Username: "sipho", Role: models.RoleStudent}}
}
