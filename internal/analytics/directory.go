package analytics

import (
	"fmt"

	"github.com/noah-isme/faculty-report-portal/internal/models"
)

// NotAvailable is rendered wherever a reference or a ratio cannot be resolved.
const NotAvailable = "N/A"

// Directory resolves course and lecturer references against in-memory
// collections. Lookups are linear; collections are a few hundred rows.
type Directory struct {
	courses   []models.Course
	lecturers []models.UserProfile
}

// NewDirectory builds a directory over the given collections.
func NewDirectory(courses []models.Course, lecturers []models.UserProfile) Directory {
	return Directory{courses: courses, lecturers: lecturers}
}

// Course returns the course with id.
func (d Directory) Course(id int64) (models.Course, bool) {
	for _, c := range d.courses {
		if c.ID == id {
			return c, true
		}
	}
	return models.Course{}, false
}

// CourseLabel returns "Name (CODE)", or N/A when the course is unknown.
func (d Directory) CourseLabel(id int64) string {
	c, ok := d.Course(id)
	if !ok {
		return NotAvailable
	}
	if c.Code == "" {
		return c.Name
	}
	return fmt.Sprintf("%s (%s)", c.Name, c.Code)
}

// CourseName returns the course name, or N/A.
func (d Directory) CourseName(id int64) string {
	c, ok := d.Course(id)
	if !ok || c.Name == "" {
		return NotAvailable
	}
	return c.Name
}

// Lecturer returns the username of lecturer id.
func (d Directory) Lecturer(id int64) (string, bool) {
	for _, l := range d.lecturers {
		if l.ID == id && l.Username != "" {
			return l.Username, true
		}
	}
	return "", false
}

// LecturerName returns the lecturer's username, or N/A.
func (d Directory) LecturerName(id int64) string {
	if name, ok := d.Lecturer(id); ok {
		return name
	}
	return NotAvailable
}
