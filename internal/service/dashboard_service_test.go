package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-report-portal/internal/dto"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
)

func TestDashboardLoadSettlesAllSections(t *testing.T) {
	portal := newFakePortal()
	portal.setErr("AttendanceStats", appErrors.ErrNetwork)
	portal.setErr("RatingStats", appErrors.ErrUpstream)
	portal.setErr("ReportWorkflow", context.DeadlineExceeded)

	svc := NewDashboardService(DashboardServiceParams{Gateway: portal, Logger: zap.NewNop()})
	resp, err := svc.Load(context.Background(), reviewerSession())
	require.NoError(t, err)

	assert.Equal(t, []string{dto.SectionAttendance, dto.SectionRatings, dto.SectionWorkflow}, resp.Failures)
	assert.Equal(t, 42, resp.Users.TotalUsers)
	assert.Equal(t, 12, resp.Reports.TotalReports)
	assert.Len(t, resp.Activities, 1)
	assert.Equal(t, dto.AttendanceStats{}, resp.Attendance)
	assert.Equal(t, dto.DefaultRatingStats(), resp.Ratings)
	assert.Equal(t, dto.WorkflowStats{}, resp.Workflow)
	for _, name := range []string{"UserStats", "CourseStats", "ReportCounts", "AttendanceStats", "RecentActivities", "RatingStats", "SystemPerformance", "ReportWorkflow"} {
		assert.Equal(t, 1, portal.count(name), name)
	}
}

func TestDashboardLoadExpiredSession(t *testing.T) {
	portal := newFakePortal()
	portal.setErr("UserStats", appErrors.ErrSessionExpired)
	recorder := &expiryRecorder{}

	svc := NewDashboardService(DashboardServiceParams{Gateway: portal, Sessions: recorder})
	_, err := svc.Load(context.Background(), reviewerSession())
	require.ErrorIs(t, err, appErrors.ErrSessionExpired)
	assert.Equal(t, []string{"sess-prl"}, recorder.expired)
}

func TestDashboardLoadRequiresToken(t *testing.T) {
	portal := newFakePortal()
	session := reviewerSession()
	session.Token = ""

	svc := NewDashboardService(DashboardServiceParams{Gateway: portal})
	_, err := svc.Load(context.Background(), session)
	require.ErrorIs(t, err, appErrors.ErrMissingToken)
	assert.Zero(t, portal.total())
}

func TestDashboardPublicUsesCache(t *testing.T) {
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, zap.NewNop(), true)

	portal := newFakePortal()
	portal.public = dto.PublicStats{TotalStudents: 120, TotalCourses: 14}
	svc := NewDashboardService(DashboardServiceParams{Gateway: portal, Cache: cache})

	first, cached, err := svc.Public(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 120, first.Stats.TotalStudents)
	assert.Empty(t, first.Failures)

	second, cached, err := svc.Public(context.Background())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first.Stats, second.Stats)
	assert.Equal(t, 1, portal.count("PublicStats"))
}

func TestDashboardPublicPartialIsNotCached(t *testing.T) {
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, zap.NewNop(), true)

	portal := newFakePortal()
	portal.setErr("PublicRatings", appErrors.ErrNetwork)
	svc := NewDashboardService(DashboardServiceParams{Gateway: portal, Cache: cache})

	resp, _, err := svc.Public(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"public_ratings"}, resp.Failures)
	assert.NotNil(t, resp.Ratings.Recent)

	_, cached, err := svc.Public(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, portal.count("PublicStats"))
}

type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

func TestMutationInvalidatesDashboardCache(t *testing.T) {
	store := newMemoryCache()
	cache := NewCacheService(store, nil, time.Minute, zap.NewNop(), true)
	require.NoError(t, cache.Set(context.Background(), publicCacheKey, dto.DefaultPublic(), 0))

	portal := newFakePortal()
	svc := NewViewService(ViewServiceParams{Gateway: portal, Cache: cache})
	_, err := svc.DeleteClass(context.Background(), lecturerSession(), KindReports, 4)
	require.NoError(t, err)

	hit, err := cache.Get(context.Background(), publicCacheKey, &dto.PublicResponse{})
	require.NoError(t, err)
	assert.False(t, hit)
}
