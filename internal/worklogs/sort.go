package worklogs

import (
	"sort"
	"strconv"
	"time"

	"jira-sprint-worklogs/internal/models"
)

// SortSprints orders sprints by start date ascending. A missing start date sorts as the
// earliest possible date; equal starts are ordered by id.
func SortSprints(sprints []*models.Sprint) {
	sort.SliceStable(sprints, func(i, j int) bool {
		si, sj := startOf(sprints[i]), startOf(sprints[j])
		if !si.Equal(sj) {
			return si.Before(sj)
		}
		return idLess(sprints[i].ID, sprints[j].ID)
	})
}

func startOf(s *models.Sprint) time.Time {
	if s.StartDate == nil {
		return time.Time{}
	}
	return *s.StartDate
}

// idLess compares numerically when both ids are numbers, so "9" sorts before "10".
func idLess(a, b string) bool {
	ai, errA := strconv.ParseInt(a, 10, 64)
	bi, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return ai < bi
	}
	return a < b
}
