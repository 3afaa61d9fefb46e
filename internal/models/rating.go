package models

// RatingType distinguishes student self-assessment from course evaluation.
type RatingType string

const (
	RatingTypeSelf   RatingType = "self"
	RatingTypeCourse RatingType = "course"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Rating is a 1-5 evaluation of a course or lecturer.
type Rating struct {
	ID         int64      `json:"id"`
	CourseID   int64      `json:"course_id"`
	LecturerID int64      `json:"lecturer_id"`
	Rating     int        `json:"rating"`
	Comment    string     `json:"comment,omitempty"`
	CreatedAt  Timestamp  `json:"created_at"`
	RatingType RatingType `json:"rating_type,omitempty"`
}

// InRange reports whether the rating value is usable for aggregation.
func (r Rating) InRange() bool {
	return r.Rating >= MinRating && r.Rating <= MaxRating
}
