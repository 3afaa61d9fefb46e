package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/faculty-report-portal/internal/dto"
	"github.com/noah-isme/faculty-report-portal/internal/models"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
)

const publicCacheKey = "dash:public"

type dashboardGateway interface {
	UserStats(ctx context.Context, token string) (dto.UserStats, error)
	CourseStats(ctx context.Context, token string) (dto.CourseStats, error)
	ReportCounts(ctx context.Context, token string) (dto.ReportCounts, error)
	AttendanceStats(ctx context.Context, token string) (dto.AttendanceStats, error)
	RecentActivities(ctx context.Context, token string) ([]dto.Activity, error)
	RatingStats(ctx context.Context, token string) (dto.RatingStats, error)
	SystemPerformance(ctx context.Context, token string) (dto.PerformanceStats, error)
	ReportWorkflow(ctx context.Context, token string) (dto.WorkflowStats, error)
	PublicStats(ctx context.Context) (dto.PublicStats, error)
	PublicRatings(ctx context.Context) (dto.PublicRatings, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes the aggregate dashboard and the public teaser
// from independent upstream reads.
type DashboardService struct {
	gateway  dashboardGateway
	sessions sessionTerminator
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
	cfg      DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Gateway  dashboardGateway
	Sessions sessionTerminator
	Cache    *CacheService
	Metrics  *MetricsService
	Logger   *zap.Logger
	Config   DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		gateway:  params.Gateway,
		sessions: params.Sessions,
		cache:    params.Cache,
		metrics:  params.Metrics,
		logger:   logger,
		now:      time.Now,
		cfg:      cfg,
	}
}

// failureLog collects failed section names from concurrent reads.
type failureLog struct {
	mu       sync.Mutex
	sections []string
	expired  bool
}

func (f *failureLog) add(section string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sections = append(f.sections, section)
	if errors.Is(err, appErrors.ErrSessionExpired) {
		f.expired = true
	}
}

func (f *failureLog) list() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string{}, f.sections...)
	sort.Strings(out)
	return out
}

// section runs fetch and stores its result in dst. A failure leaves dst
// untouched and is recorded instead of returned.
func section[T any](ctx context.Context, g *errgroup.Group, s *DashboardService, failures *failureLog, name string, dst *T, fetch func(context.Context) (T, error)) {
	g.Go(func() error {
		value, err := fetch(ctx)
		if err != nil {
			failures.add(name, err)
			s.metrics.RecordSectionFailure(name)
			s.logger.Warn("dashboard section failed", zap.String("section", name), zap.Error(err))
			return nil
		}
		*dst = value
		return nil
	})
}

// Load issues the eight section reads concurrently and waits for all of
// them. Failed sections keep their defaults. An upstream 401 ends the
// session and is the only error returned.
func (s *DashboardService) Load(ctx context.Context, session *models.Session) (*dto.DashboardResponse, error) {
	if !session.HasToken() {
		return nil, appErrors.ErrMissingToken
	}
	token := session.Token
	resp := dto.DefaultDashboard()
	failures := &failureLog{}
	gw := s.gateway

	var g errgroup.Group
	section(ctx, &g, s, failures, dto.SectionUsers, &resp.Users, func(ctx context.Context) (dto.UserStats, error) {
		return gw.UserStats(ctx, token)
	})
	section(ctx, &g, s, failures, dto.SectionCourses, &resp.Courses, func(ctx context.Context) (dto.CourseStats, error) {
		return gw.CourseStats(ctx, token)
	})
	section(ctx, &g, s, failures, dto.SectionReports, &resp.Reports, func(ctx context.Context) (dto.ReportCounts, error) {
		return gw.ReportCounts(ctx, token)
	})
	section(ctx, &g, s, failures, dto.SectionAttendance, &resp.Attendance, func(ctx context.Context) (dto.AttendanceStats, error) {
		return gw.AttendanceStats(ctx, token)
	})
	section(ctx, &g, s, failures, dto.SectionActivities, &resp.Activities, func(ctx context.Context) ([]dto.Activity, error) {
		items, err := gw.RecentActivities(ctx, token)
		if items == nil && err == nil {
			items = []dto.Activity{}
		}
		return items, err
	})
	section(ctx, &g, s, failures, dto.SectionRatings, &resp.Ratings, func(ctx context.Context) (dto.RatingStats, error) {
		stats, err := gw.RatingStats(ctx, token)
		if err == nil && stats.Distribution == nil {
			stats.Distribution = dto.DefaultRatingStats().Distribution
		}
		return stats, err
	})
	section(ctx, &g, s, failures, dto.SectionPerformance, &resp.Performance, func(ctx context.Context) (dto.PerformanceStats, error) {
		return gw.SystemPerformance(ctx, token)
	})
	section(ctx, &g, s, failures, dto.SectionWorkflow, &resp.Workflow, func(ctx context.Context) (dto.WorkflowStats, error) {
		return gw.ReportWorkflow(ctx, token)
	})
	_ = g.Wait()

	if failures.expired {
		if s.sessions != nil {
			s.sessions.Expire(ctx, session.ID)
		}
		return nil, appErrors.ErrSessionExpired
	}

	resp.Failures = failures.list()
	resp.GeneratedAt = s.now().UTC()
	if len(resp.Failures) > 0 {
		s.logger.Warn("dashboard partially loaded", zap.Strings("failures", resp.Failures), zap.Int("sections", len(dto.DashboardSections)))
	}
	return &resp, nil
}

// Public serves the signed-out teaser. Complete results are cached; a
// partial result is returned but not cached.
func (s *DashboardService) Public(ctx context.Context) (*dto.PublicResponse, bool, error) {
	if s.cache != nil {
		var cached dto.PublicResponse
		hit, err := s.cache.Get(ctx, publicCacheKey, &cached)
		if err != nil {
			s.logger.Warn("public stats cache read failed", zap.Error(err))
		} else if hit {
			return &cached, true, nil
		}
	}

	resp := dto.DefaultPublic()
	failures := &failureLog{}
	gw := s.gateway

	var g errgroup.Group
	section(ctx, &g, s, failures, "public_stats", &resp.Stats, gw.PublicStats)
	section(ctx, &g, s, failures, "public_ratings", &resp.Ratings, func(ctx context.Context) (dto.PublicRatings, error) {
		ratings, err := gw.PublicRatings(ctx)
		if err == nil && ratings.Recent == nil {
			ratings.Recent = []models.Rating{}
		}
		return ratings, err
	})
	_ = g.Wait()

	resp.Failures = failures.list()
	if len(resp.Failures) == 0 && s.cache != nil {
		if err := s.cache.Set(ctx, publicCacheKey, resp, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("public stats cache write failed", zap.Error(err))
		}
	}
	return &resp, false, nil
}
