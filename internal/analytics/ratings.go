package analytics

import (
	"fmt"
	"sort"

	"github.com/noah-isme/faculty-report-portal/internal/models"
)

// PoorRatingThreshold is the mean below which a group raises an alert.
const PoorRatingThreshold = 3.0

// GroupBy selects the rating field to aggregate on.
type GroupBy string

const (
	GroupByCourse   GroupBy = "course"
	GroupByLecturer GroupBy = "lecturer"
)

// RatingGroup is the aggregate for one course or lecturer.
type RatingGroup struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// RatingAlert flags a group whose mean rating is below the threshold.
type RatingAlert struct {
	Type    GroupBy `json:"type"`
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Rating  float64 `json:"rating"`
	Message string  `json:"message"`
}

// RatingAggregate holds per-group rating statistics.
type RatingAggregate struct {
	GroupBy GroupBy       `json:"groupBy"`
	Groups  []RatingGroup `json:"groups"`
	Alerts  []RatingAlert `json:"alerts"`
}

// CourseEvaluations keeps the ratings that evaluate a course. Student
// self-assessments are dropped; an untyped rating counts as an evaluation.
func CourseEvaluations(ratings []models.Rating) []models.Rating {
	out := make([]models.Rating, 0, len(ratings))
	for _, r := range ratings {
		if r.RatingType == models.RatingTypeSelf {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ComputeRatingAggregate groups ratings by course or lecturer. Values
// outside [1,5] are ignored. Groups are ordered by id.
func ComputeRatingAggregate(ratings []models.Rating, groupBy GroupBy, dir Directory) RatingAggregate {
	agg := RatingAggregate{GroupBy: groupBy, Groups: []RatingGroup{}, Alerts: []RatingAlert{}}
	if groupBy != GroupByCourse && groupBy != GroupByLecturer {
		return agg
	}

	type acc struct {
		count int
		sum   int
	}
	byID := make(map[int64]*acc)
	for _, r := range ratings {
		if !r.InRange() {
			continue
		}
		id := r.CourseID
		if groupBy == GroupByLecturer {
			id = r.LecturerID
		}
		a, ok := byID[id]
		if !ok {
			a = &acc{}
			byID[id] = a
		}
		a.count++
		a.sum += r.Rating
	}

	ids := make([]int64, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		a := byID[id]
		mean := float64(a.sum) / float64(a.count)
		name := dir.CourseLabel(id)
		if groupBy == GroupByLecturer {
			name = dir.LecturerName(id)
		}
		agg.Groups = append(agg.Groups, RatingGroup{ID: id, Name: name, Count: a.count, Average: round2(mean)})
		if mean < PoorRatingThreshold {
			agg.Alerts = append(agg.Alerts, RatingAlert{
				Type:    groupBy,
				ID:      id,
				Name:    name,
				Rating:  round2(mean),
				Message: fmt.Sprintf("%s has a low average rating of %.1f", name, mean),
			})
		}
	}
	return agg
}
