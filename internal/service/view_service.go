package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/faculty-report-portal/internal/analytics"
	"github.com/noah-isme/faculty-report-portal/internal/dto"
	"github.com/noah-isme/faculty-report-portal/internal/models"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
)

type viewReader interface {
	Courses(ctx context.Context, token string) ([]models.Course, error)
	Reports(ctx context.Context, token string) ([]models.Report, error)
	SelfRatings(ctx context.Context, token string) ([]models.Rating, error)
	CourseRatings(ctx context.Context, token string) ([]models.Rating, error)
	Classes(ctx context.Context, token string) ([]models.ScheduledClass, error)
	Lecturers(ctx context.Context, token string) ([]models.UserProfile, error)
	PrincipalReports(ctx context.Context, token string) ([]models.Report, error)
	PrincipalCourses(ctx context.Context, token string) ([]models.Course, error)
	PrincipalRatings(ctx context.Context, token string) ([]models.Rating, error)
	PrincipalClasses(ctx context.Context, token string) ([]models.ScheduledClass, error)
	PrincipalLecturers(ctx context.Context, token string) ([]models.UserProfile, error)
	PrincipalLectures(ctx context.Context, token string) ([]models.Lecture, error)
	AggregatedRatings(ctx context.Context, token string) ([]dto.AggregatedRating, error)
	RatingTrends(ctx context.Context, token string) ([]dto.RatingTrendPoint, error)
}

type viewWriter interface {
	CreateReport(ctx context.Context, token string, req dto.ReportRequest) error
	UpdateReport(ctx context.Context, token string, id int64, req dto.ReportRequest) error
	DeleteReport(ctx context.Context, token string, id int64) error
	ReviewReport(ctx context.Context, token string, id int64, req dto.ReviewRequest) error
	BulkReviewReports(ctx context.Context, token string, req dto.BulkReviewRequest) error
	CreateRating(ctx context.Context, token string, req dto.RatingRequest) error
	CreateClass(ctx context.Context, token string, req dto.ClassRequest) error
	DeleteClass(ctx context.Context, token string, id int64) error
	CreateCourse(ctx context.Context, token string, req dto.CourseRequest) error
	UpdateCourse(ctx context.Context, token string, id int64, req dto.CourseRequest) error
	DeleteCourse(ctx context.Context, token string, id int64) error
	CreateLecture(ctx context.Context, token string, req dto.LectureRequest) error
}

type viewGateway interface {
	viewReader
	viewWriter
}

type sessionTerminator interface {
	Expire(ctx context.Context, sessionID string)
}

// ViewServiceConfig tunes view behaviour.
type ViewServiceConfig struct {
	AlertTTL         time.Duration
	SubmissionTarget int
	TrendWeeks       int
}

// ViewService keeps one container per (session, kind) and runs loads,
// mutations and derived analytics against them.
type ViewService struct {
	gateway   viewGateway
	sessions  sessionTerminator
	validator *validator.Validate
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       ViewServiceConfig
	now       func() time.Time

	mu         sync.RWMutex
	containers map[string]map[ViewKind]*viewContainer
}

// ViewServiceParams groups constructor dependencies.
type ViewServiceParams struct {
	Gateway  viewGateway
	Sessions sessionTerminator
	Validate *validator.Validate
	Cache    *CacheService
	Metrics  *MetricsService
	Logger   *zap.Logger
	Config   ViewServiceConfig
}

// NewViewService constructs a ViewService.
func NewViewService(params ViewServiceParams) *ViewService {
	cfg := params.Config
	if cfg.AlertTTL <= 0 {
		cfg.AlertTTL = 30 * time.Second
	}
	if cfg.SubmissionTarget <= 0 {
		cfg.SubmissionTarget = analytics.DefaultSubmissionTarget
	}
	if cfg.TrendWeeks <= 0 {
		cfg.TrendWeeks = analytics.DefaultTrendWeeks
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validate
	if validate == nil {
		validate = validator.New()
	}
	return &ViewService{
		gateway:    params.Gateway,
		sessions:   params.Sessions,
		validator:  validate,
		cache:      params.Cache,
		metrics:    params.Metrics,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
		containers: make(map[string]map[ViewKind]*viewContainer),
	}
}

// CloseSession closes and forgets every container of a session. It is
// registered as a session end listener.
func (s *ViewService) CloseSession(sessionID string) {
	s.mu.Lock()
	views := s.containers[sessionID]
	delete(s.containers, sessionID)
	open := len(s.containers)
	s.mu.Unlock()

	for _, c := range views {
		c.close()
	}
	s.metrics.SetActiveSessions(open)
}

func (s *ViewService) container(session *models.Session, kind ViewKind) (*viewContainer, error) {
	if !RoleCanView(session.User.Role, kind) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "this view is not available for your role")
	}

	s.mu.RLock()
	c := s.containers[session.ID][kind]
	s.mu.RUnlock()
	if c != nil {
		return c, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	views, ok := s.containers[session.ID]
	if !ok {
		views = make(map[ViewKind]*viewContainer)
		s.containers[session.ID] = views
	}
	if c = views[kind]; c == nil {
		c = newViewContainer(kind, s.cfg.AlertTTL, s.now)
		views[kind] = c
	}
	s.metrics.SetActiveSessions(len(s.containers))
	return c, nil
}

// Load returns the view snapshot, fetching when the view is not ready or
// force is set. A failed fetch leaves the container in the error state
// with its previous data; only an expired session is returned as an error.
func (s *ViewService) Load(ctx context.Context, session *models.Session, kind ViewKind, force bool) (*dto.ViewSnapshot, error) {
	c, err := s.container(session, kind)
	if err != nil {
		return nil, err
	}
	if !force && c.ready() {
		return c.snapshot(), nil
	}
	if err := s.refresh(ctx, session, c); err != nil {
		return nil, err
	}
	return c.snapshot(), nil
}

func (s *ViewService) refresh(ctx context.Context, session *models.Session, c *viewContainer) error {
	gen, ok := c.begin()
	if !ok {
		return appErrors.ErrSessionExpired
	}
	data, err := s.fetch(ctx, c.kind, session.Token)
	if errors.Is(err, appErrors.ErrSessionExpired) {
		s.expire(ctx, session)
		return appErrors.ErrSessionExpired
	}
	applied := c.apply(gen, data, err)

	outcome := "ready"
	switch {
	case !applied:
		outcome = "stale"
	case err != nil:
		outcome = "error"
		s.logger.Warn("view load failed", zap.String("kind", string(c.kind)), zap.String("session_id", session.ID), zap.Error(err))
	}
	s.metrics.RecordViewLoad(string(c.kind), outcome)
	return nil
}

func (s *ViewService) expire(ctx context.Context, session *models.Session) {
	if s.sessions != nil {
		s.sessions.Expire(ctx, session.ID)
		return
	}
	s.CloseSession(session.ID)
}

// fetch loads the kind's sources concurrently. The first failure cancels
// the rest.
func (s *ViewService) fetch(ctx context.Context, kind ViewKind, token string) (models.Collections, error) {
	var data models.Collections
	g, gctx := errgroup.WithContext(ctx)
	gw := s.gateway

	switch kind {
	case KindStudent:
		var self, course []models.Rating
		g.Go(func() (err error) { data.Courses, err = gw.Courses(gctx, token); return })
		g.Go(func() (err error) { data.Reports, err = gw.Reports(gctx, token); return })
		g.Go(func() (err error) { self, err = gw.SelfRatings(gctx, token); return })
		g.Go(func() (err error) { course, err = gw.CourseRatings(gctx, token); return })
		g.Go(func() (err error) { data.Classes, err = gw.Classes(gctx, token); return })
		if err := g.Wait(); err != nil {
			return models.Collections{}, err
		}
		data.Ratings = append(self, course...)
	case KindReports:
		g.Go(func() (err error) { data.Courses, err = gw.Courses(gctx, token); return })
		g.Go(func() (err error) { data.Reports, err = gw.Reports(gctx, token); return })
		g.Go(func() (err error) { data.Ratings, err = gw.CourseRatings(gctx, token); return })
		g.Go(func() (err error) { data.Classes, err = gw.Classes(gctx, token); return })
		g.Go(func() (err error) { data.Lecturers, err = gw.Lecturers(gctx, token); return })
		if err := g.Wait(); err != nil {
			return models.Collections{}, err
		}
	case KindPrincipal:
		g.Go(func() (err error) { data.Reports, err = gw.PrincipalReports(gctx, token); return })
		g.Go(func() (err error) { data.Courses, err = gw.PrincipalCourses(gctx, token); return })
		g.Go(func() (err error) { data.Ratings, err = gw.PrincipalRatings(gctx, token); return })
		g.Go(func() (err error) { data.Classes, err = gw.PrincipalClasses(gctx, token); return })
		g.Go(func() (err error) { data.Lecturers, err = gw.PrincipalLecturers(gctx, token); return })
		g.Go(func() (err error) { data.Lectures, err = gw.PrincipalLectures(gctx, token); return })
		if err := g.Wait(); err != nil {
			return models.Collections{}, err
		}
	}
	return data.Clone(), nil
}

// Collections returns a copy of the view's data, loading it first when
// needed. A view whose first load failed returns that failure; a view
// holding earlier data keeps serving it.
func (s *ViewService) Collections(ctx context.Context, session *models.Session, kind ViewKind) (models.Collections, error) {
	c, err := s.container(session, kind)
	if err != nil {
		return models.Collections{}, err
	}
	snap, err := s.Load(ctx, session, kind, false)
	if err != nil {
		return models.Collections{}, err
	}
	if err := c.unavailable(); err != nil {
		return models.Collections{}, err
	}
	return snap.Data, nil
}

// Reports filters the view's reports for the session's role and resolves
// course and lecturer labels.
func (s *ViewService) Reports(ctx context.Context, session *models.Session, kind ViewKind, filter analytics.ReportFilter) ([]dto.ReportView, error) {
	data, err := s.Collections(ctx, session, kind)
	if err != nil {
		return nil, err
	}
	filter.Role = session.User.Role
	filter.ActorID = session.User.ID
	dir := analytics.NewDirectory(data.Courses, data.Lecturers)

	filtered := analytics.FilterReports(data.Reports, filter, dir)
	out := make([]dto.ReportView, 0, len(filtered))
	for _, r := range filtered {
		view := dto.ReportView{Report: r, Course: dir.CourseLabel(r.CourseID), Lecturer: dir.LecturerName(r.LecturerID)}
		if rate, ok := analytics.AttendanceRate(r); ok {
			rounded := float64(int(rate*100+0.5)) / 100
			view.AttendanceRate = &rounded
		}
		out = append(out, view)
	}
	return out, nil
}

// Analytics derives the statistics shown on the view. The principal view
// also pulls the upstream aggregated ratings and trends; failures there
// are listed, not returned.
func (s *ViewService) Analytics(ctx context.Context, session *models.Session, kind ViewKind) (*dto.ViewAnalytics, error) {
	data, err := s.Collections(ctx, session, kind)
	if err != nil {
		return nil, err
	}
	result := s.derive(data, session.User)

	if kind == KindPrincipal {
		var (
			mu       sync.Mutex
			failures []string
		)
		fail := func(section string, err error) {
			mu.Lock()
			defer mu.Unlock()
			failures = append(failures, section)
			s.logger.Warn("analytics section failed", zap.String("section", section), zap.Error(err))
		}
		var g errgroup.Group
		g.Go(func() error {
			rows, err := s.gateway.AggregatedRatings(ctx, session.Token)
			if err != nil {
				fail("aggregatedRatings", err)
				return nil
			}
			result.AggregatedRatings = rows
			return nil
		})
		g.Go(func() error {
			points, err := s.gateway.RatingTrends(ctx, session.Token)
			if err != nil {
				fail("ratingTrends", err)
				return nil
			}
			result.RatingTrends = points
			return nil
		})
		_ = g.Wait()
		result.Failures = failures
	}
	return result, nil
}

func (s *ViewService) derive(data models.Collections, user models.UserProfile) *dto.ViewAnalytics {
	dir := analytics.NewDirectory(data.Courses, data.Lecturers)
	visible := analytics.FilterReports(data.Reports, analytics.ReportFilter{Role: user.Role, ActorID: user.ID}, dir)
	evaluations := analytics.CourseEvaluations(data.Ratings)
	return &dto.ViewAnalytics{
		ReportStats:       analytics.ComputeReportStats(visible, s.cfg.SubmissionTarget),
		CourseRatings:     analytics.ComputeRatingAggregate(evaluations, analytics.GroupByCourse, dir),
		LecturerRatings:   analytics.ComputeRatingAggregate(evaluations, analytics.GroupByLecturer, dir),
		CoursePerformance: analytics.ComputeCoursePerformance(data.Courses, visible, evaluations),
		WeeklyTrends:      analytics.ActiveWeeks(analytics.ComputeWeeklyTrends(visible, s.cfg.TrendWeeks)),
		Timeline:          analytics.GroupClassesByTime(data.Classes, s.now()),
	}
}

// MarkNotificationRead flags a local notification as read.
func (s *ViewService) MarkNotificationRead(session *models.Session, kind ViewKind, id string) error {
	c, err := s.container(session, kind)
	if err != nil {
		return err
	}
	if !c.markRead(id) {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	return nil
}

// DismissAlert removes an alert before it expires.
func (s *ViewService) DismissAlert(session *models.Session, kind ViewKind, id string) error {
	c, err := s.container(session, kind)
	if err != nil {
		return err
	}
	if !c.dismissAlert(id) {
		return appErrors.Clone(appErrors.ErrNotFound, "alert not found")
	}
	return nil
}
