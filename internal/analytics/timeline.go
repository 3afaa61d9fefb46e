package analytics

import (
	"sort"
	"time"

	"github.com/noah-isme/faculty-report-portal/internal/models"
)

// ClassTimeline partitions scheduled classes around a reference day.
type ClassTimeline struct {
	Upcoming []models.ScheduledClass `json:"upcoming"`
	Past     []models.ScheduledClass `json:"past"`
}

// GroupClassesByTime puts classes on or after now's calendar day in Upcoming
// (earliest first) and earlier ones in Past (latest first). Days are taken in
// now's location. Classes without a date are dropped.
func GroupClassesByTime(classes []models.ScheduledClass, now time.Time) ClassTimeline {
	loc := now.Location()
	today := dayKey(now)
	timeline := ClassTimeline{Upcoming: []models.ScheduledClass{}, Past: []models.ScheduledClass{}}
	for _, c := range classes {
		if c.Date.IsZero() {
			continue
		}
		if classDay(c, loc) >= today {
			timeline.Upcoming = append(timeline.Upcoming, c)
		} else {
			timeline.Past = append(timeline.Past, c)
		}
	}
	sort.SliceStable(timeline.Upcoming, func(i, j int) bool {
		return timeline.Upcoming[i].StartsAt(loc).Before(timeline.Upcoming[j].StartsAt(loc))
	})
	sort.SliceStable(timeline.Past, func(i, j int) bool {
		return timeline.Past[i].StartsAt(loc).After(timeline.Past[j].StartsAt(loc))
	})
	return timeline
}

// classDay keys a class by calendar day. Date-only values are already a
// calendar day; timestamps with a clock time are moved into loc first.
func classDay(c models.ScheduledClass, loc *time.Location) int {
	if c.Date.DateOnly() {
		return dayKey(c.Date.Time)
	}
	return dayKey(c.Date.In(loc))
}
