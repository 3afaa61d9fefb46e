package analytics

import (
	"strings"
	"time"

	"github.com/noah-isme/faculty-report-portal/internal/models"
)

// ReportFilter narrows a report list. Zero values match everything.
type ReportFilter struct {
	Search        string
	Status        models.ReportStatus
	CourseID      int64
	Week          int
	Role          models.UserRole
	ActorID       int64
	DateFrom      *time.Time
	DateTo        *time.Time
	MinAttendance *float64
	MaxAttendance *float64
	HasChallenges *bool
}

// FilterReports keeps the reports matching every set criterion, in input order.
func FilterReports(reports []models.Report, f ReportFilter, dir Directory) []models.Report {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Report, 0, len(reports))
	for _, r := range reports {
		if !visibleTo(r, f.Role, f.ActorID) {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.CourseID != 0 && r.CourseID != f.CourseID {
			continue
		}
		if f.Week != 0 && r.Week != f.Week {
			continue
		}
		if !inDateRange(r.Date, f.DateFrom, f.DateTo) {
			continue
		}
		if !inAttendanceRange(r, f.MinAttendance, f.MaxAttendance) {
			continue
		}
		if f.HasChallenges != nil && (strings.TrimSpace(r.Challenges) != "") != *f.HasChallenges {
			continue
		}
		if search != "" && !matchesSearch(r, search, dir) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func visibleTo(r models.Report, role models.UserRole, actorID int64) bool {
	switch {
	case role == "":
		return true
	case role == models.RoleLecturer:
		return r.LecturerID == actorID
	case role == models.RoleStudent:
		return r.Status == models.ReportStatusApproved
	case role.Reviewer():
		return true
	}
	return false
}

func inDateRange(date models.Timestamp, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	if date.IsZero() {
		return false
	}
	day := dayKey(date.Time)
	if from != nil && day < dayKey(*from) {
		return false
	}
	if to != nil && day > dayKey(*to) {
		return false
	}
	return true
}

func inAttendanceRange(r models.Report, lo, hi *float64) bool {
	if lo == nil && hi == nil {
		return true
	}
	rate, ok := AttendanceRate(r)
	if !ok {
		return false
	}
	if lo != nil && rate < *lo {
		return false
	}
	if hi != nil && rate > *hi {
		return false
	}
	return true
}

// matchesSearch looks at resolved references only; an unknown course or
// lecturer contributes no text.
func matchesSearch(r models.Report, needle string, dir Directory) bool {
	fields := []string{r.Topic, r.Outcomes}
	if name, ok := dir.Lecturer(r.LecturerID); ok {
		fields = append(fields, name)
	}
	if course, ok := dir.Course(r.CourseID); ok {
		fields = append(fields, course.Name)
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// dayKey orders calendar days using the value's own location.
func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
