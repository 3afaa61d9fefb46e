package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-report-portal/internal/models"
)

func day(y int, m time.Month, d int) models.Timestamp {
	return models.NewTimestamp(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func ptr[T any](v T) *T { return &v }

func sampleDirectory() Directory {
	return NewDirectory(
		[]models.Course{
			{ID: 1, Name: "Software Engineering", Code: "SE101", LecturerID: 5},
			{ID: 2, Name: "Databases", Code: "DB201", LecturerID: 7},
		},
		[]models.UserProfile{
			{ID: 5, Username: "thabo", Role: models.RoleLecturer},
			{ID: 7, Username: "lerato", Role: models.RoleLecturer},
		},
	)
}

func sampleReports() []models.Report {
	return []models.Report{
		{ID: 1, CourseID: 1, LecturerID: 5, Week: 1, Topic: "Requirements", Date: day(2024, 3, 4), ActualStudents: 30, TotalStudents: 40, Status: models.ReportStatusApproved},
		{ID: 2, CourseID: 2, LecturerID: 7, Week: 1, Topic: "Normal forms", Date: day(2024, 3, 5), ActualStudents: 10, TotalStudents: 20, Status: models.ReportStatusPending, Challenges: "projector broken"},
		{ID: 3, CourseID: 1, LecturerID: 5, Week: 2, Topic: "Design patterns", Date: day(2024, 3, 11), ActualStudents: 0, TotalStudents: 0, Status: models.ReportStatusRejected},
		{ID: 4, CourseID: 2, LecturerID: 7, Week: 3, Topic: "Indexes", Date: day(2024, 3, 18), ActualStudents: 18, TotalStudents: 20, Status: models.ReportStatusApproved, Outcomes: "B-tree lab done"},
	}
}

func TestComputeReportStats(t *testing.T) {
	stats := ComputeReportStats(sampleReports(), DefaultSubmissionTarget)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Approved)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 3, stats.AttendanceSamples)
	assert.InDelta(t, (75.0+50.0+90.0)/3, stats.AvgAttendanceRate, 0.01)
	assert.Equal(t, 0.2, stats.SubmissionRate)
}

func TestComputeReportStatsNeverProducesNaN(t *testing.T) {
	for _, reports := range [][]models.Report{nil, {}, {{TotalStudents: 0, ActualStudents: 3}, {TotalStudents: 0}}} {
		stats := ComputeReportStats(reports, DefaultSubmissionTarget)
		assert.False(t, math.IsNaN(stats.AvgAttendanceRate))
		assert.False(t, math.IsInf(stats.AvgAttendanceRate, 0))
		assert.Equal(t, 0.0, stats.AvgAttendanceRate)
	}

	assert.Equal(t, 0.0, ComputeReportStats(sampleReports(), 0).SubmissionRate)
}

func TestComputeReportStatsCapsSubmissionRate(t *testing.T) {
	reports := make([]models.Report, 25)
	assert.Equal(t, 1.0, ComputeReportStats(reports, 20).SubmissionRate)
}

func TestComputeRatingAggregateBoundaryIsNotFlagged(t *testing.T) {
	ratings := []models.Rating{
		{LecturerID: 1, Rating: 2},
		{LecturerID: 1, Rating: 4},
	}
	agg := ComputeRatingAggregate(ratings, GroupByLecturer, Directory{})

	require.Len(t, agg.Groups, 1)
	assert.Equal(t, 3.0, agg.Groups[0].Average)
	assert.Empty(t, agg.Alerts)
}

func TestComputeRatingAggregateFlagsPoorGroups(t *testing.T) {
	ratings := []models.Rating{
		{CourseID: 2, Rating: 2},
		{CourseID: 2, Rating: 3},
		{CourseID: 1, Rating: 5},
		{CourseID: 1, Rating: 4},
		{CourseID: 1, Rating: 9},
		{CourseID: 3, Rating: 0},
	}
	agg := ComputeRatingAggregate(ratings, GroupByCourse, sampleDirectory())

	require.Len(t, agg.Groups, 2)
	assert.Equal(t, int64(1), agg.Groups[0].ID)
	assert.Equal(t, 2, agg.Groups[0].Count)
	assert.Equal(t, 4.5, agg.Groups[0].Average)
	require.Len(t, agg.Alerts, 1)
	assert.Equal(t, RatingAlert{
		Type:    GroupByCourse,
		ID:      2,
		Name:    "Databases (DB201)",
		Rating:  2.5,
		Message: "Databases (DB201) has a low average rating of 2.5",
	}, agg.Alerts[0])
}

func TestComputeRatingAggregateUnknownGroup(t *testing.T) {
	agg := ComputeRatingAggregate([]models.Rating{{CourseID: 1, Rating: 1}}, GroupBy("room"), Directory{})
	assert.Empty(t, agg.Groups)
	assert.Empty(t, agg.Alerts)
}

func TestComputeCoursePerformance(t *testing.T) {
	courses := []models.Course{
		{ID: 2, Name: "Databases", Code: "DB201"},
		{ID: 1, Name: "Software Engineering", Code: "SE101"},
		{ID: 9, Name: "Unused"},
	}
	ratings := []models.Rating{{CourseID: 2, Rating: 4}, {CourseID: 2, Rating: 5}}
	perf := ComputeCoursePerformance(courses, sampleReports(), ratings)

	require.Len(t, perf, 3)
	assert.Equal(t, "Databases (DB201)", perf[0].Course)
	assert.Equal(t, 2, perf[0].TotalReports)
	assert.Equal(t, 50.0, perf[0].ApprovalRate)
	assert.Equal(t, 70.0, perf[0].AvgAttendance)
	assert.Equal(t, 4.5, perf[0].AvgRating)

	assert.Equal(t, 2, perf[1].TotalReports)
	assert.Equal(t, 50.0, perf[1].ApprovalRate)
	assert.Equal(t, 75.0, perf[1].AvgAttendance)
	assert.Equal(t, 1, perf[1].AttendanceSamples)

	assert.Equal(t, "Unused", perf[2].Course)
	assert.Equal(t, 0, perf[2].TotalReports)
	assert.Equal(t, 0.0, perf[2].ApprovalRate)
	assert.Equal(t, 0.0, perf[2].AvgRating)
}

func TestComputeWeeklyTrends(t *testing.T) {
	trends := ComputeWeeklyTrends(sampleReports(), 0)
	require.Len(t, trends, DefaultTrendWeeks)
	assert.Equal(t, WeeklyTrend{Week: 1, Submissions: 2, Approved: 1, AvgAttendance: 62.5}, trends[0])
	assert.Equal(t, WeeklyTrend{Week: 2, Submissions: 1}, trends[1])
	assert.Equal(t, WeeklyTrend{Week: 16}, trends[15])

	active := ActiveWeeks(trends)
	require.Len(t, active, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{active[0].Week, active[1].Week, active[2].Week})

	assert.Len(t, ComputeWeeklyTrends(sampleReports(), 2), 2)
}

func TestFilterReportsEmptyFilterIsPassThrough(t *testing.T) {
	reports := sampleReports()
	assert.Equal(t, reports, FilterReports(reports, ReportFilter{}, sampleDirectory()))
	assert.Empty(t, FilterReports(nil, ReportFilter{}, Directory{}))
}

func TestFilterReportsLecturerSeesOwnReports(t *testing.T) {
	reports := []models.Report{{ID: 1, LecturerID: 5}, {ID: 2, LecturerID: 7}}
	out := FilterReports(reports, ReportFilter{Role: models.RoleLecturer, ActorID: 5}, Directory{})
	require.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0].ID)
}

func TestFilterReportsRoleVisibility(t *testing.T) {
	reports := sampleReports()
	dir := sampleDirectory()

	students := FilterReports(reports, ReportFilter{Role: models.RoleStudent}, dir)
	assert.Len(t, students, 2)
	for _, r := range students {
		assert.Equal(t, models.ReportStatusApproved, r.Status)
	}
	assert.Len(t, FilterReports(reports, ReportFilter{Role: models.RolePRL}, dir), 4)
	assert.Len(t, FilterReports(reports, ReportFilter{Role: models.RoleFMG}, dir), 4)
	assert.Empty(t, FilterReports(reports, ReportFilter{Role: models.UserRole("Guest")}, dir))
}

func TestFilterReportsCombinesCriteria(t *testing.T) {
	reports := sampleReports()
	dir := sampleDirectory()

	cases := []struct {
		name   string
		filter ReportFilter
		want   []int64
	}{
		{"search topic", ReportFilter{Search: "NORMAL"}, []int64{2}},
		{"search outcomes", ReportFilter{Search: "b-tree"}, []int64{4}},
		{"search lecturer", ReportFilter{Search: "thab"}, []int64{1, 3}},
		{"search course name", ReportFilter{Search: "databases"}, []int64{2, 4}},
		{"status", ReportFilter{Status: models.ReportStatusApproved}, []int64{1, 4}},
		{"course and week", ReportFilter{CourseID: 2, Week: 3}, []int64{4}},
		{"inclusive date range", ReportFilter{DateFrom: ptr(time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC)), DateTo: ptr(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC))}, []int64{2, 3}},
		{"attendance range skips undefined", ReportFilter{MinAttendance: ptr(50.0), MaxAttendance: ptr(80.0)}, []int64{1, 2}},
		{"min attendance only", ReportFilter{MinAttendance: ptr(0.0)}, []int64{1, 2, 4}},
		{"has challenges", ReportFilter{HasChallenges: ptr(true)}, []int64{2}},
		{"no challenges", ReportFilter{HasChallenges: ptr(false)}, []int64{1, 3, 4}},
		{"and-combined", ReportFilter{Status: models.ReportStatusApproved, Search: "index"}, []int64{4}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := FilterReports(reports, tc.filter, dir)
			ids := make([]int64, 0, len(out))
			for _, r := range out {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestFilterReportsIsIdempotent(t *testing.T) {
	dir := sampleDirectory()
	filter := ReportFilter{Search: "a", MinAttendance: ptr(10.0), Role: models.RoleProgramLeader}
	once := FilterReports(sampleReports(), filter, dir)
	twice := FilterReports(once, filter, dir)
	assert.Equal(t, once, twice)
}

func TestFilterReportsSearchSkipsUnresolvedReferences(t *testing.T) {
	orphan := models.Report{ID: 9, CourseID: 99, LecturerID: 98, Topic: "Recursion", Status: models.ReportStatusApproved}
	reports := append(sampleReports(), orphan)
	dir := sampleDirectory()

	for _, needle := range []string{"a", "n/a", "/"} {
		for _, r := range FilterReports(reports, ReportFilter{Search: needle}, dir) {
			assert.NotEqual(t, int64(9), r.ID, needle)
		}
	}
	matched := FilterReports(reports, ReportFilter{Search: "recur"}, dir)
	require.Len(t, matched, 1)
	assert.Equal(t, int64(9), matched[0].ID)

	byLecturer := FilterReports(reports, ReportFilter{Search: "lerato"}, dir)
	assert.Len(t, byLecturer, 2)
}

func TestGroupClassesByTime(t *testing.T) {
	now := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
	yesterday := models.ScheduledClass{ID: 1, Date: day(2024, 3, 8), Time: "09:00"}
	today := models.ScheduledClass{ID: 2, Date: day(2024, 3, 9), Time: "08:00"}
	tomorrow := models.ScheduledClass{ID: 3, Date: day(2024, 3, 10), Time: "10:00"}
	lastWeek := models.ScheduledClass{ID: 4, Date: day(2024, 3, 1)}

	timeline := GroupClassesByTime([]models.ScheduledClass{tomorrow, yesterday, lastWeek, today, {ID: 5}}, now)

	assert.Equal(t, []models.ScheduledClass{today, tomorrow}, timeline.Upcoming)
	assert.Equal(t, []models.ScheduledClass{yesterday, lastWeek}, timeline.Past)
}

func TestGroupClassesByTimeUsesNowsZone(t *testing.T) {
	johannesburg := time.FixedZone("SAST", 2*60*60)
	now := time.Date(2026, 10, 16, 0, 10, 0, 0, johannesburg)
	lateUTC := models.ScheduledClass{ID: 1, Date: models.NewTimestamp(time.Date(2026, 10, 15, 23, 30, 0, 0, time.UTC))}
	earlierUTC := models.ScheduledClass{ID: 2, Date: models.NewTimestamp(time.Date(2026, 10, 15, 21, 0, 0, 0, time.UTC))}
	dateOnly := models.ScheduledClass{ID: 3, Date: day(2026, 10, 16), Time: "09:00"}

	timeline := GroupClassesByTime([]models.ScheduledClass{dateOnly, lateUTC, earlierUTC}, now)

	require.Len(t, timeline.Upcoming, 2)
	assert.Equal(t, int64(1), timeline.Upcoming[0].ID)
	assert.Equal(t, int64(3), timeline.Upcoming[1].ID)
	require.Len(t, timeline.Past, 1)
	assert.Equal(t, int64(2), timeline.Past[0].ID)
}

func TestGroupClassesByTimeEmpty(t *testing.T) {
	timeline := GroupClassesByTime(nil, time.Now())
	assert.Empty(t, timeline.Upcoming)
	assert.Empty(t, timeline.Past)
}

func TestDirectoryResolvesLabels(t *testing.T) {
	dir := sampleDirectory()
	assert.Equal(t, "Software Engineering (SE101)", dir.CourseLabel(1))
	assert.Equal(t, "Databases", dir.CourseName(2))
	assert.Equal(t, "lerato", dir.LecturerName(7))
	assert.Equal(t, NotAvailable, dir.CourseLabel(99))
	assert.Equal(t, NotAvailable, dir.CourseName(99))
	assert.Equal(t, NotAvailable, dir.LecturerName(99))
}
