package dto

import (
	"time"

	"github.com/noah-isme/faculty-report-portal/internal/analytics"
	"github.com/noah-isme/faculty-report-portal/internal/models"
)

// ViewError describes the last failed load of a view.
type ViewError struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// ViewSnapshot is the JSON view model of one view container.
type ViewSnapshot struct {
	Kind          string                `json:"kind"`
	State         string                `json:"state"`
	Generation    uint64                `json:"generation"`
	Data          models.Collections    `json:"data"`
	Busy          []string              `json:"busy"`
	Alerts        []models.Alert        `json:"alerts"`
	Notifications []models.Notification `json:"notifications"`
	LastError     *ViewError            `json:"lastError,omitempty"`
	LoadedAt      *time.Time            `json:"loadedAt,omitempty"`
}

// ReportView is a report with its references resolved for display.
type ReportView struct {
	models.Report
	Course         string   `json:"course"`
	Lecturer       string   `json:"lecturer"`
	AttendanceRate *float64 `json:"attendance_rate"`
}

// ReportQuery binds the report filter query string.
type ReportQuery struct {
	Search        string   `form:"search"`
	Status        string   `form:"status" validate:"omitempty,oneof=pending approved rejected"`
	CourseID      int64    `form:"course_id" validate:"min=0"`
	Week          int      `form:"week" validate:"min=0"`
	DateFrom      string   `form:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo        string   `form:"date_to" validate:"omitempty,datetime=2006-01-02"`
	MinAttendance *float64 `form:"min_attendance" validate:"omitempty,min=0,max=100"`
	MaxAttendance *float64 `form:"max_attendance" validate:"omitempty,min=0,max=100"`
	HasChallenges *bool    `form:"has_challenges"`
}

// RatingTrendPoint is one period of the upstream rating trend series.
type RatingTrendPoint struct {
	Period  string  `json:"period"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// AggregatedRating is one row of the upstream aggregated ratings.
type AggregatedRating struct {
	CourseID   int64   `json:"course_id"`
	LecturerID int64   `json:"lecturer_id"`
	Average    float64 `json:"average"`
	Count      int     `json:"count"`
}

// ViewAnalytics is the derived analytics payload of a view.
type ViewAnalytics struct {
	ReportStats       analytics.ReportStats         `json:"reportStats"`
	CourseRatings     analytics.RatingAggregate     `json:"courseRatings"`
	LecturerRatings   analytics.RatingAggregate     `json:"lecturerRatings"`
	CoursePerformance []analytics.CoursePerformance `json:"coursePerformance"`
	WeeklyTrends      []analytics.WeeklyTrend       `json:"weeklyTrends"`
	Timeline          analytics.ClassTimeline       `json:"timeline"`
	RatingTrends      []RatingTrendPoint            `json:"ratingTrends,omitempty"`
	AggregatedRatings []AggregatedRating            `json:"aggregatedRatings,omitempty"`
	Failures          []string                      `json:"failures,omitempty"`
}
