package models

import (
	"encoding/json"
	"math"
	"time"
)

// Worklog is a single time-tracking entry logged against an issue.
type Worklog struct {
	ID               string
	IssueKey         string
	Author           string
	TimeSpentSeconds int
	LogDate          time.Time

	// Sprint is nil until attribution finds a containing sprint.
	Sprint *Sprint
}

// Hours returns the unrounded time spent in hours.
func (w *Worklog) Hours() float64 {
	return float64(w.TimeSpentSeconds) / 3600
}

// Days returns the unrounded time spent in working days of hoursPerDay hours.
func (w *Worklog) Days(hoursPerDay float64) float64 {
	return w.Hours() / hoursPerDay
}

func (w *Worklog) DayKey() string {
	return DayKey(w.LogDate)
}

func (w *Worklog) SprintID() string {
	if w.Sprint == nil {
		return ""
	}
	return w.Sprint.ID
}

func (w *Worklog) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID               string  `json:"id"`
		IssueKey         string  `json:"issue_key"`
		Author           string  `json:"author,omitempty"`
		TimeSpentSeconds int     `json:"time_spent_seconds"`
		Hours            float64 `json:"hours"`
		LogDate          string  `json:"log_date"`
		SprintID         string  `json:"sprint_id,omitempty"`
	}{
		ID:               w.ID,
		IssueKey:         w.IssueKey,
		Author:           w.Author,
		TimeSpentSeconds: w.TimeSpentSeconds,
		Hours:            Round2(w.Hours()),
		LogDate:          w.DayKey(),
		SprintID:         w.SprintID(),
	})
}

// Round2 rounds to two decimals for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
