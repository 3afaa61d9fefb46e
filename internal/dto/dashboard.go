package dto

import (
	"time"

	"github.com/noah-isme/faculty-report-portal/internal/models"
)

// Dashboard section keys, in the order the dashboard renders them.
const (
	SectionUsers       = "users"
	SectionCourses     = "courses"
	SectionReports     = "reports"
	SectionAttendance  = "attendance"
	SectionActivities  = "activities"
	SectionRatings     = "ratings"
	SectionPerformance = "performance"
	SectionWorkflow    = "workflow"
)

// DashboardSections lists every section the aggregate dashboard loads.
var DashboardSections = []string{
	SectionUsers, SectionCourses, SectionReports, SectionAttendance,
	SectionActivities, SectionRatings, SectionPerformance, SectionWorkflow,
}

// UserStats counts accounts per role.
type UserStats struct {
	TotalUsers     int `json:"total_users"`
	Students       int `json:"students"`
	Lecturers      int `json:"lecturers"`
	PRLs           int `json:"prls"`
	ProgramLeaders int `json:"program_leaders"`
}

// CourseStats summarises the course catalogue.
type CourseStats struct {
	TotalCourses  int `json:"total_courses"`
	ActiveCourses int `json:"active_courses"`
	Departments   int `json:"departments"`
}

// ReportCounts summarises report submissions server side.
type ReportCounts struct {
	TotalReports int `json:"total_reports"`
	Pending      int `json:"pending"`
	Approved     int `json:"approved"`
	Rejected     int `json:"rejected"`
}

// AttendanceStats summarises attendance across reports.
type AttendanceStats struct {
	AverageRate   float64 `json:"average_rate"`
	TotalSessions int     `json:"total_sessions"`
	LowAttendance int     `json:"low_attendance"`
}

// Activity is one entry of the recent activity feed.
type Activity struct {
	ID          int64            `json:"id"`
	Type        string           `json:"type"`
	Description string           `json:"description"`
	User        string           `json:"user,omitempty"`
	Timestamp   models.Timestamp `json:"timestamp"`
}

// RatingStats summarises ratings server side.
type RatingStats struct {
	AverageRating float64        `json:"average_rating"`
	TotalRatings  int            `json:"total_ratings"`
	Distribution  map[string]int `json:"distribution"`
}

// PerformanceStats reports upstream system health.
type PerformanceStats struct {
	UptimePercent  float64 `json:"uptime_percent"`
	ResponseTimeMs float64 `json:"response_time_ms"`
	ActiveUsers    int     `json:"active_users"`
}

// WorkflowStats tracks report review throughput.
type WorkflowStats struct {
	Submitted      int     `json:"submitted"`
	UnderReview    int     `json:"under_review"`
	Approved       int     `json:"approved"`
	Rejected       int     `json:"rejected"`
	AvgReviewHours float64 `json:"avg_review_hours"`
}

// DashboardResponse is the aggregated dashboard payload. Sections listed in
// Failures hold their defaults.
type DashboardResponse struct {
	Users       UserStats        `json:"users"`
	Courses     CourseStats      `json:"courses"`
	Reports     ReportCounts     `json:"reports"`
	Attendance  AttendanceStats  `json:"attendance"`
	Activities  []Activity       `json:"activities"`
	Ratings     RatingStats      `json:"ratings"`
	Performance PerformanceStats `json:"performance"`
	Workflow    WorkflowStats    `json:"workflow"`
	Failures    []string         `json:"failures"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

// PublicStats is the teaser shown to signed-out visitors.
type PublicStats struct {
	TotalStudents  int `json:"total_students"`
	TotalLecturers int `json:"total_lecturers"`
	TotalCourses   int `json:"total_courses"`
	TotalReports   int `json:"total_reports"`
}

// PublicRatings is the public rating summary.
type PublicRatings struct {
	AverageRating float64         `json:"average_rating"`
	TotalRatings  int             `json:"total_ratings"`
	Recent        []models.Rating `json:"recent"`
}

// PublicResponse combines the teaser reads.
type PublicResponse struct {
	Stats    PublicStats   `json:"stats"`
	Ratings  PublicRatings `json:"ratings"`
	Failures []string      `json:"failures"`
}

// DefaultDashboard returns the payload with every section at its default.
func DefaultDashboard() DashboardResponse {
	return DashboardResponse{
		Users:       UserStats{},
		Courses:     CourseStats{},
		Reports:     ReportCounts{},
		Attendance:  AttendanceStats{},
		Activities:  []Activity{},
		Ratings:     DefaultRatingStats(),
		Performance: PerformanceStats{},
		Workflow:    WorkflowStats{},
		Failures:    []string{},
	}
}

// DefaultRatingStats returns an empty distribution over the 1-5 scale.
func DefaultRatingStats() RatingStats {
	return RatingStats{Distribution: map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}}
}

// DefaultPublic returns the teaser payload with zeroed sections.
func DefaultPublic() PublicResponse {
	return PublicResponse{Ratings: PublicRatings{Recent: []models.Rating{}}, Failures: []string{}}
}
