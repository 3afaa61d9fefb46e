package dto

import "github.com/noah-isme/faculty-report-portal/internal/models"

// ReportRequest creates or updates a lecturer report.
type ReportRequest struct {
	CourseID        int64  `json:"course_id" validate:"required,gt=0"`
	Week            int    `json:"week" validate:"required,min=1"`
	Topic           string `json:"topic" validate:"required"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	ActualStudents  int    `json:"actual_students" validate:"min=0,ltefield=TotalStudents"`
	TotalStudents   int    `json:"total_students" validate:"min=0"`
	Outcomes        string `json:"outcomes,omitempty"`
	Recommendations string `json:"recommendations,omitempty"`
	Challenges      string `json:"challenges,omitempty"`
}

// ReviewRequest approves or rejects one report.
type ReviewRequest struct {
	Status   models.ReportStatus `json:"status" validate:"required,oneof=approved rejected"`
	Feedback string              `json:"feedback,omitempty"`
}

// BulkReviewRequest reviews several reports at once.
type BulkReviewRequest struct {
	ReportIDs []int64             `json:"report_ids" validate:"required,min=1,dive,gt=0"`
	Status    models.ReportStatus `json:"status" validate:"required,oneof=approved rejected"`
	Feedback  string              `json:"feedback,omitempty"`
}

// RatingRequest submits a rating.
type RatingRequest struct {
	CourseID   int64             `json:"course_id" validate:"required,gt=0"`
	LecturerID int64             `json:"lecturer_id,omitempty" validate:"omitempty,gt=0"`
	Rating     int               `json:"rating" validate:"required,min=1,max=5"`
	Comment    string            `json:"comment,omitempty" validate:"max=1000"`
	RatingType models.RatingType `json:"rating_type" validate:"required,oneof=self course"`
}

// ClassRequest schedules a class.
type ClassRequest struct {
	CourseID int64  `json:"course_id" validate:"required,gt=0"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Time     string `json:"time" validate:"required,datetime=15:04"`
	Room     string `json:"room" validate:"required"`
	Topic    string `json:"topic,omitempty"`
}

// CourseRequest creates or updates a course.
type CourseRequest struct {
	Name       string `json:"name" validate:"required"`
	Code       string `json:"code" validate:"required,max=16"`
	LecturerID int64  `json:"lecturer_id,omitempty" validate:"omitempty,gt=0"`
	Department string `json:"department,omitempty"`
	Credits    int    `json:"credits,omitempty" validate:"min=0,max=60"`
	Schedule   string `json:"schedule,omitempty"`
}

// LectureRequest attaches material to a course.
type LectureRequest struct {
	CourseID    int64  `json:"course_id" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	Materials   string `json:"materials,omitempty"`
	FileRef     string `json:"file_url,omitempty" validate:"omitempty,url"`
}
