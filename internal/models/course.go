package models

// Course is a taught course as returned by the upstream API.
type Course struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	LecturerID int64  `json:"lecturer_id"`
	Department string `json:"department,omitempty"`
	Credits    int    `json:"credits,omitempty"`
	Schedule   string `json:"schedule,omitempty"`
}

// Lecture is course material attached to a course.
type Lecture struct {
	ID          int64  `json:"id"`
	CourseID    int64  `json:"course_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Materials   string `json:"materials,omitempty"`
	FileRef     string `json:"file_url,omitempty"`
}
