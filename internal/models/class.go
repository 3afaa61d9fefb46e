package models

import (
	"fmt"
	"time"
)

// ScheduledClass is one scheduled teaching session.
type ScheduledClass struct {
	ID         int64     `json:"id"`
	CourseID   int64     `json:"course_id"`
	LecturerID int64     `json:"lecturer_id"`
	Date       Timestamp `json:"date"`
	Time       string    `json:"time,omitempty"`
	Room       string    `json:"room,omitempty"`
	Topic      string    `json:"topic,omitempty"`
}

// StartsAt returns the class start in loc. A Date carrying a clock time is
// that instant; a date-only value is combined with the HH:MM Time, where a
// missing or unparsable time means the start of the day.
func (c ScheduledClass) StartsAt(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	if !c.Date.IsZero() && !c.Date.DateOnly() {
		return c.Date.In(loc)
	}
	y, m, d := c.Date.Date()
	var hour, minute int
	if c.Time != "" {
		if _, err := fmt.Sscanf(c.Time, "%d:%d", &hour, &minute); err != nil || hour > 23 || minute > 59 {
			hour, minute = 0, 0
		}
	}
	return time.Date(y, m, d, hour, minute, 0, 0, loc)
}
