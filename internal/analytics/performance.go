package analytics

import "github.com/noah-isme/faculty-report-portal/internal/models"

// CoursePerformance summarises reports and ratings for one course.
type CoursePerformance struct {
	CourseID          int64   `json:"courseId"`
	Course            string  `json:"course"`
	TotalReports      int     `json:"totalReports"`
	Approved          int     `json:"approved"`
	ApprovalRate      float64 `json:"approvalRate"`
	AvgAttendance     float64 `json:"avgAttendance"`
	AttendanceSamples int     `json:"attendanceSamples"`
	AvgRating         float64 `json:"avgRating"`
	RatingCount       int     `json:"ratingCount"`
}

// ComputeCoursePerformance returns one row per course in input order.
func ComputeCoursePerformance(courses []models.Course, reports []models.Report, ratings []models.Rating) []CoursePerformance {
	out := make([]CoursePerformance, 0, len(courses))
	for _, c := range courses {
		perf := CoursePerformance{CourseID: c.ID, Course: c.Name}
		if c.Code != "" {
			perf.Course = c.Name + " (" + c.Code + ")"
		}

		var attendance float64
		for _, r := range reports {
			if r.CourseID != c.ID {
				continue
			}
			perf.TotalReports++
			if r.Status == models.ReportStatusApproved {
				perf.Approved++
			}
			if rate, ok := AttendanceRate(r); ok {
				attendance += rate
				perf.AttendanceSamples++
			}
		}

		var ratingSum int
		for _, r := range ratings {
			if r.CourseID != c.ID || !r.InRange() {
				continue
			}
			ratingSum += r.Rating
			perf.RatingCount++
		}

		perf.ApprovalRate = round2(safeDiv(float64(perf.Approved)*100, float64(perf.TotalReports)))
		perf.AvgAttendance = round2(safeDiv(attendance, float64(perf.AttendanceSamples)))
		perf.AvgRating = round2(safeDiv(float64(ratingSum), float64(perf.RatingCount)))
		out = append(out, perf)
	}
	return out
}
