package analytics

import (
	"math"

	"github.com/noah-isme/faculty-report-portal/internal/models"
)

// DefaultSubmissionTarget is the report count the progress bar fills at.
const DefaultSubmissionTarget = 20

// ReportStats summarises a report collection.
type ReportStats struct {
	Total             int     `json:"total"`
	Approved          int     `json:"approved"`
	Pending           int     `json:"pending"`
	Rejected          int     `json:"rejected"`
	AvgAttendanceRate float64 `json:"avgAttendanceRate"`
	AttendanceSamples int     `json:"attendanceSamples"`
	SubmissionRate    float64 `json:"submissionRate"`
	SubmissionTarget  int     `json:"submissionTarget"`
}

// AttendanceRate returns actual/total as a percentage. ok is false when the
// report has no enrolled students.
func AttendanceRate(r models.Report) (rate float64, ok bool) {
	if r.TotalStudents <= 0 {
		return 0, false
	}
	return float64(r.ActualStudents) / float64(r.TotalStudents) * 100, true
}

// ComputeReportStats counts reports by status and averages attendance over
// reports with a defined rate. SubmissionRate is min(total/target, 1).
func ComputeReportStats(reports []models.Report, target int) ReportStats {
	stats := ReportStats{Total: len(reports), SubmissionTarget: target}

	var attendanceSum float64
	for _, r := range reports {
		switch r.Status {
		case models.ReportStatusApproved:
			stats.Approved++
		case models.ReportStatusPending:
			stats.Pending++
		case models.ReportStatusRejected:
			stats.Rejected++
		}
		if rate, ok := AttendanceRate(r); ok {
			attendanceSum += rate
			stats.AttendanceSamples++
		}
	}

	stats.AvgAttendanceRate = round2(safeDiv(attendanceSum, float64(stats.AttendanceSamples)))
	if target > 0 {
		stats.SubmissionRate = round2(math.Min(float64(stats.Total)/float64(target), 1))
	}
	return stats
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}
