package models

// ReportStatus captures the review state of a lecturer report.
type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusApproved ReportStatus = "approved"
	ReportStatusRejected ReportStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusPending, ReportStatusApproved, ReportStatusRejected:
		return true
	}
	return false
}

// Report is a lecturer's per-session submission for one course and week.
type Report struct {
	ID              int64        `json:"id"`
	CourseID        int64        `json:"course_id"`
	LecturerID      int64        `json:"lecturer_id"`
	Week            int          `json:"week"`
	Topic           string       `json:"topic"`
	Date            Timestamp    `json:"date"`
	ActualStudents  int          `json:"actual_students"`
	TotalStudents   int          `json:"total_students"`
	Outcomes        string       `json:"outcomes,omitempty"`
	Recommendations string       `json:"recommendations,omitempty"`
	Challenges      string       `json:"challenges,omitempty"`
	Feedback        string       `json:"feedback,omitempty"`
	Status          ReportStatus `json:"status"`
	CreatedAt       Timestamp    `json:"created_at"`
}
