package models

import (
	"encoding/json"
	"sort"
	"time"
)

// Sprint is an iteration window. A sprint without both dates is open and contains nothing.
type Sprint struct {
	ID        string
	Name      string
	State     string
	StartDate *time.Time
	EndDate   *time.Time

	days []*Day
}

// Day is one calendar day of a sprint and the worklogs logged on it.
type Day struct {
	Date     time.Time
	Worklogs []*Worklog
}

func (d *Day) Key() string {
	return DayKey(d.Date)
}

func (d *Day) TotalSeconds() int {
	total := 0
	for _, w := range d.Worklogs {
		total += w.TimeSpentSeconds
	}
	return total
}

// Hours returns the unrounded hours logged on the day.
func (d *Day) Hours() float64 {
	return float64(d.TotalSeconds()) / 3600
}

func (d *Day) hasWorklog(id string) bool {
	for _, w := range d.Worklogs {
		if w.ID == id {
			return true
		}
	}
	return false
}

// IsDated reports whether both window bounds are known.
func (s *Sprint) IsDated() bool {
	return s.StartDate != nil && s.EndDate != nil
}

// Contains reports whether the worklog's date falls in [StartDate, EndDate].
func (s *Sprint) Contains(w *Worklog) bool {
	if !s.IsDated() {
		return false
	}
	return !w.LogDate.Before(*s.StartDate) && !w.LogDate.After(*s.EndDate)
}

// Days returns the day buckets in ascending date order.
func (s *Sprint) Days() []*Day {
	return s.days
}

// Day looks up a bucket by its YYYY-MM-DD key.
func (s *Sprint) Day(key string) (*Day, bool) {
	for _, d := range s.days {
		if d.Key() == key {
			return d, true
		}
	}
	return nil, false
}

// SetDays replaces the day buckets. Callers pass them in ascending order.
func (s *Sprint) SetDays(days []*Day) {
	s.days = days
}

// AddWorklog appends w to the bucket of its log date, creating the bucket in order if needed.
// Adding a worklog id already present in that bucket is a no-op.
func (s *Sprint) AddWorklog(w *Worklog) {
	key := w.DayKey()
	if day, ok := s.Day(key); ok {
		if !day.hasWorklog(w.ID) {
			day.Worklogs = append(day.Worklogs, w)
		}
		return
	}

	idx := sort.Search(len(s.days), func(i int) bool {
		return s.days[i].Key() > key
	})
	day := &Day{Date: w.LogDate, Worklogs: []*Worklog{w}}
	s.days = append(s.days, nil)
	copy(s.days[idx+1:], s.days[idx:])
	s.days[idx] = day
}

// Worklogs returns every bucketed worklog in day order.
func (s *Sprint) Worklogs() []*Worklog {
	var out []*Worklog
	for _, d := range s.days {
		out = append(out, d.Worklogs...)
	}
	return out
}

func (s *Sprint) TotalSeconds() int {
	total := 0
	for _, d := range s.days {
		total += d.TotalSeconds()
	}
	return total
}

func optionalDayKey(t *time.Time) *string {
	if t == nil {
		return nil
	}
	key := DayKey(*t)
	return &key
}

func (s *Sprint) MarshalJSON() ([]byte, error) {
	type dayJSON struct {
		Date     string     `json:"date"`
		Hours    float64    `json:"hours"`
		Worklogs []*Worklog `json:"worklogs"`
	}

	days := make([]dayJSON, 0, len(s.days))
	for _, d := range s.days {
		worklogs := d.Worklogs
		if worklogs == nil {
			worklogs = []*Worklog{}
		}
		days = append(days, dayJSON{Date: d.Key(), Hours: Round2(d.Hours()), Worklogs: worklogs})
	}

	return json.Marshal(struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		State     string    `json:"state"`
		StartDate *string   `json:"start_date"`
		EndDate   *string   `json:"end_date"`
		Days      []dayJSON `json:"days"`
	}{
		ID:        s.ID,
		Name:      s.Name,
		State:     s.State,
		StartDate: optionalDayKey(s.StartDate),
		EndDate:   optionalDayKey(s.EndDate),
		Days:      days,
	})
}
