package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/noah-isme/faculty-report-portal/internal/analytics"
	"github.com/noah-isme/faculty-report-portal/internal/models"
	"github.com/noah-isme/faculty-report-portal/pkg/export"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
)

// Export dataset names accepted in URLs and job requests.
const (
	DatasetReports   = "reports"
	DatasetRatings   = "ratings"
	DatasetCourses   = "courses"
	DatasetClasses   = "classes"
	DatasetLectures  = "lectures"
	DatasetAnalytics = "analytics"
	DatasetAll       = "all"
)

// ValidDataset reports whether name is an exportable dataset.
func ValidDataset(name string) bool {
	switch name {
	case DatasetReports, DatasetRatings, DatasetCourses, DatasetClasses, DatasetLectures, DatasetAnalytics, DatasetAll:
		return true
	}
	return false
}

func multiSheet(dataset string) bool {
	return dataset == DatasetAnalytics || dataset == DatasetAll
}

// sheetBuilder turns view collections into export sheets with labels
// resolved through the directory.
type sheetBuilder struct {
	data   models.Collections
	dir    analytics.Directory
	target int
	weeks  int
}

func newSheetBuilder(data models.Collections, user models.UserProfile, target, weeks int) sheetBuilder {
	dir := analytics.NewDirectory(data.Courses, data.Lecturers)
	data.Reports = analytics.FilterReports(data.Reports, analytics.ReportFilter{Role: user.Role, ActorID: user.ID}, dir)
	return sheetBuilder{data: data, dir: dir, target: target, weeks: weeks}
}

// build returns the sheets for dataset. It fails with NO_DATA when the
// source collections are empty, before anything is rendered.
func (b sheetBuilder) build(dataset string) ([]export.Dataset, error) {
	var sheets []export.Dataset
	switch dataset {
	case DatasetReports:
		sheets = []export.Dataset{b.reports()}
	case DatasetRatings:
		sheets = []export.Dataset{b.ratings()}
	case DatasetCourses:
		sheets = []export.Dataset{b.courses()}
	case DatasetClasses:
		sheets = []export.Dataset{b.classes()}
	case DatasetLectures:
		sheets = []export.Dataset{b.lectures()}
	case DatasetAll:
		sheets = []export.Dataset{b.reports(), b.ratings(), b.courses(), b.classes(), b.lectures()}
	case DatasetAnalytics:
		sheets = b.analytics()
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown export dataset %q", dataset))
	}

	nonEmpty := sheets[:0]
	for _, sheet := range sheets {
		if !sheet.Empty() {
			nonEmpty = append(nonEmpty, sheet)
		}
	}
	if len(nonEmpty) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoData, fmt.Sprintf("no %s data to export", dataset))
	}
	return nonEmpty, nil
}

func (b sheetBuilder) reports() export.Dataset {
	ds := export.Dataset{
		Name:    "Reports",
		Headers: []string{"Course", "Lecturer", "Week", "Date", "Topic", "Status", "Actual Students", "Total Students", "Attendance Rate", "Outcomes", "Recommendations", "Challenges"},
	}
	for _, r := range b.data.Reports {
		ds.Rows = append(ds.Rows, map[string]string{
			"Course":          b.dir.CourseLabel(r.CourseID),
			"Lecturer":        b.dir.LecturerName(r.LecturerID),
			"Week":            strconv.Itoa(r.Week),
			"Date":            formatDate(r.Date),
			"Topic":           r.Topic,
			"Status":          string(r.Status),
			"Actual Students": strconv.Itoa(r.ActualStudents),
			"Total Students":  strconv.Itoa(r.TotalStudents),
			"Attendance Rate": attendanceCell(r),
			"Outcomes":        r.Outcomes,
			"Recommendations": r.Recommendations,
			"Challenges":      r.Challenges,
		})
	}
	return ds
}

func (b sheetBuilder) ratings() export.Dataset {
	ds := export.Dataset{
		Name:    "Ratings",
		Headers: []string{"Course", "Lecturer", "Rating", "Type", "Comment", "Date"},
	}
	for _, r := range b.data.Ratings {
		ds.Rows = append(ds.Rows, map[string]string{
			"Course":   b.dir.CourseLabel(r.CourseID),
			"Lecturer": b.dir.LecturerName(r.LecturerID),
			"Rating":   strconv.Itoa(r.Rating),
			"Type":     string(r.RatingType),
			"Comment":  r.Comment,
			"Date":     formatDate(r.CreatedAt),
		})
	}
	return ds
}

func (b sheetBuilder) courses() export.Dataset {
	ds := export.Dataset{
		Name:    "Courses",
		Headers: []string{"Course", "Lecturer", "Department", "Credits", "Schedule"},
	}
	for _, c := range b.data.Courses {
		ds.Rows = append(ds.Rows, map[string]string{
			"Course":     b.dir.CourseLabel(c.ID),
			"Lecturer":   b.dir.LecturerName(c.LecturerID),
			"Department": c.Department,
			"Credits":    strconv.Itoa(c.Credits),
			"Schedule":   c.Schedule,
		})
	}
	return ds
}

func (b sheetBuilder) classes() export.Dataset {
	ds := export.Dataset{
		Name:    "Classes",
		Headers: []string{"Course", "Lecturer", "Date", "Time", "Room", "Topic"},
	}
	for _, c := range b.data.Classes {
		ds.Rows = append(ds.Rows, map[string]string{
			"Course":   b.dir.CourseLabel(c.CourseID),
			"Lecturer": b.dir.LecturerName(c.LecturerID),
			"Date":     formatDate(c.Date),
			"Time":     c.Time,
			"Room":     c.Room,
			"Topic":    c.Topic,
		})
	}
	return ds
}

func (b sheetBuilder) lectures() export.Dataset {
	ds := export.Dataset{
		Name:    "Lectures",
		Headers: []string{"Course", "Title", "Description", "Materials", "File"},
	}
	for _, l := range b.data.Lectures {
		ds.Rows = append(ds.Rows, map[string]string{
			"Course":      b.dir.CourseLabel(l.CourseID),
			"Title":       l.Title,
			"Description": l.Description,
			"Materials":   l.Materials,
			"File":        l.FileRef,
		})
	}
	return ds
}

func (b sheetBuilder) analytics() []export.Dataset {
	summary := export.Dataset{Name: "Report Summary", Headers: []string{"Metric", "Value"}}
	if len(b.data.Reports) > 0 {
		stats := analytics.ComputeReportStats(b.data.Reports, b.target)
		avg := analytics.NotAvailable
		if stats.AttendanceSamples > 0 {
			avg = percent(stats.AvgAttendanceRate)
		}
		summary.Rows = []map[string]string{
			{"Metric": "Total Reports", "Value": strconv.Itoa(stats.Total)},
			{"Metric": "Approved", "Value": strconv.Itoa(stats.Approved)},
			{"Metric": "Pending", "Value": strconv.Itoa(stats.Pending)},
			{"Metric": "Rejected", "Value": strconv.Itoa(stats.Rejected)},
			{"Metric": "Average Attendance", "Value": avg},
			{"Metric": "Submission Rate", "Value": percent(stats.SubmissionRate * 100)},
		}
	}

	evaluations := analytics.CourseEvaluations(b.data.Ratings)
	performance := export.Dataset{
		Name:    "Course Performance",
		Headers: []string{"Course", "Reports", "Approved", "Approval Rate", "Avg Attendance", "Avg Rating", "Ratings"},
	}
	for _, p := range analytics.ComputeCoursePerformance(b.data.Courses, b.data.Reports, evaluations) {
		performance.Rows = append(performance.Rows, map[string]string{
			"Course":         p.Course,
			"Reports":        strconv.Itoa(p.TotalReports),
			"Approved":       strconv.Itoa(p.Approved),
			"Approval Rate":  ratioCell(p.ApprovalRate, p.TotalReports, percent),
			"Avg Attendance": ratioCell(p.AvgAttendance, p.AttendanceSamples, percent),
			"Avg Rating":     ratioCell(p.AvgRating, p.RatingCount, oneDecimal),
			"Ratings":        strconv.Itoa(p.RatingCount),
		})
	}

	trends := export.Dataset{Name: "Weekly Trends", Headers: []string{"Week", "Submissions", "Approved", "Avg Attendance"}}
	for _, w := range analytics.ComputeWeeklyTrends(b.data.Reports, b.weeks) {
		trends.Rows = append(trends.Rows, map[string]string{
			"Week":           strconv.Itoa(w.Week),
			"Submissions":    strconv.Itoa(w.Submissions),
			"Approved":       strconv.Itoa(w.Approved),
			"Avg Attendance": percent(w.AvgAttendance),
		})
	}

	alerts := export.Dataset{Name: "Rating Alerts", Headers: []string{"Type", "Name", "Average", "Message"}}
	for _, groupBy := range []analytics.GroupBy{analytics.GroupByCourse, analytics.GroupByLecturer} {
		for _, a := range analytics.ComputeRatingAggregate(evaluations, groupBy, b.dir).Alerts {
			alerts.Rows = append(alerts.Rows, map[string]string{
				"Type":    string(a.Type),
				"Name":    a.Name,
				"Average": oneDecimal(a.Rating),
				"Message": a.Message,
			})
		}
	}

	return []export.Dataset{summary, performance, trends, alerts}
}

func attendanceCell(r models.Report) string {
	rate, ok := analytics.AttendanceRate(r)
	if !ok {
		return analytics.NotAvailable
	}
	return percent(rate)
}

func ratioCell(value float64, samples int, format func(float64) string) string {
	if samples == 0 {
		return analytics.NotAvailable
	}
	return format(value)
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

func oneDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatDate(ts models.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.DateOnly)
}
