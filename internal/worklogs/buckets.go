package worklogs

import (
	"fmt"

	"jira-sprint-worklogs/internal/common"
	"jira-sprint-worklogs/internal/models"
)

// MaxWindowDays caps the day buckets generated for one sprint.
const MaxWindowDays = 366

// WindowDays is the number of calendar days in a dated sprint's window, 0 for open sprints.
func WindowDays(sprint *models.Sprint) int {
	if !sprint.IsDated() || sprint.EndDate.Before(*sprint.StartDate) {
		return 0
	}
	return int(sprint.EndDate.Sub(*sprint.StartDate).Hours()/24) + 1
}

// FillDays rebuilds a dated sprint's buckets as one entry per day in [start, end],
// keeping the worklogs already bucketed. Open sprints and windows longer than
// MaxWindowDays are left untouched.
// Calling it again on a filled sprint changes nothing.
func FillDays(sprint *models.Sprint) error {
	if !sprint.IsDated() || WindowDays(sprint) > MaxWindowDays {
		return nil
	}

	start, end := *sprint.StartDate, *sprint.EndDate
	var days []*models.Day
	index := make(map[string]*models.Day)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := &models.Day{Date: d, Worklogs: []*models.Worklog{}}
		days = append(days, day)
		index[day.Key()] = day
	}

	for _, existing := range sprint.Days() {
		day, ok := index[existing.Key()]
		if !ok {
			return common.NewInternalError("DAY_OUT_OF_WINDOW",
				fmt.Sprintf("sprint %s has a bucket for %s outside its window", sprint.ID, existing.Key()))
		}
		day.Worklogs = append(day.Worklogs, existing.Worklogs...)
	}

	sprint.SetDays(days)
	return nil
}

// bucketWorklogs places attributed worklogs into their sprint's day buckets and returns
// the ones without a sprint. A worklog pointing at a sprint the cache does not know is an
// attribution defect and aborts the run.
func bucketWorklogs(cache *SprintCache, worklogs []*models.Worklog) ([]*models.Worklog, error) {
	sprintless := make([]*models.Worklog, 0)
	for _, w := range worklogs {
		if w.Sprint == nil {
			sprintless = append(sprintless, w)
			continue
		}

		sprint, ok := cache.Get(w.Sprint.ID)
		if !ok || sprint != w.Sprint {
			return nil, common.NewInternalError("SPRINT_NOT_DISCOVERED",
				fmt.Sprintf("worklog %s references sprint %s which was not discovered in this run", w.ID, w.Sprint.ID)).
				WithContext("issue", w.IssueKey)
		}
		sprint.AddWorklog(w)
	}
	return sprintless, nil
}
