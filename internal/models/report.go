package models

import "time"

// Report is the result of one aggregation run. Consumers must treat it as read-only.
type Report struct {
	// Sprints are ordered by start date, open-start sprints first.
	Sprints            []*Sprint  `json:"sprints"`
	SprintlessWorklogs []*Worklog `json:"sprintless_worklogs"`
	GeneratedAt        time.Time  `json:"generated_at"`
}

// Sprint finds a sprint of the report by id.
func (r *Report) Sprint(id string) (*Sprint, bool) {
	for _, s := range r.Sprints {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// WorklogCount counts bucketed and sprint-less worklogs.
func (r *Report) WorklogCount() int {
	count := len(r.SprintlessWorklogs)
	for _, s := range r.Sprints {
		count += len(s.Worklogs())
	}
	return count
}
