package analytics

import "github.com/noah-isme/faculty-report-portal/internal/models"

// DefaultTrendWeeks is the semester length trends are computed over.
const DefaultTrendWeeks = 16

// WeeklyTrend aggregates the reports filed for one teaching week.
type WeeklyTrend struct {
	Week          int     `json:"week"`
	Submissions   int     `json:"submissions"`
	Approved      int     `json:"approved"`
	AvgAttendance float64 `json:"avgAttendance"`
}

// ComputeWeeklyTrends returns weeks 1..weekCount, including empty weeks.
// Reports outside that range are not counted.
func ComputeWeeklyTrends(reports []models.Report, weekCount int) []WeeklyTrend {
	if weekCount <= 0 {
		weekCount = DefaultTrendWeeks
	}
	trends := make([]WeeklyTrend, weekCount)
	sums := make([]float64, weekCount)
	samples := make([]int, weekCount)
	for i := range trends {
		trends[i].Week = i + 1
	}

	for _, r := range reports {
		if r.Week < 1 || r.Week > weekCount {
			continue
		}
		i := r.Week - 1
		trends[i].Submissions++
		if r.Status == models.ReportStatusApproved {
			trends[i].Approved++
		}
		if rate, ok := AttendanceRate(r); ok {
			sums[i] += rate
			samples[i]++
		}
	}
	for i := range trends {
		trends[i].AvgAttendance = round2(safeDiv(sums[i], float64(samples[i])))
	}
	return trends
}

// ActiveWeeks drops weeks without submissions.
func ActiveWeeks(trends []WeeklyTrend) []WeeklyTrend {
	out := make([]WeeklyTrend, 0, len(trends))
	for _, t := range trends {
		if t.Submissions > 0 {
			out = append(out, t)
		}
	}
	return out
}
