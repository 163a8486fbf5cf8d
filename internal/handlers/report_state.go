package handlers

import (
	"sync"
	"time"

	"jira-sprint-worklogs/internal/models"
)

// ReportState holds the outcome of the latest aggregation run for the HTTP handlers.
type ReportState struct {
	mu         sync.RWMutex
	report     *models.Report
	lastErr    error
	lastRun    time.Time
	runs       int
	errorCount int
}

func NewReportState() *ReportState {
	return &ReportState{}
}

// Record stores a run result. A failed run keeps the previous report.
func (s *ReportState) Record(report *models.Report, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs++
	s.lastRun = time.Now()
	s.lastErr = err
	if err != nil {
		s.errorCount++
		return
	}
	s.report = report
}

// Snapshot is a consistent copy of the state.
type Snapshot struct {
	Report     *models.Report
	LastErr    error
	LastRun    time.Time
	Runs       int
	ErrorCount int
}

func (s *ReportState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Report:     s.report,
		LastErr:    s.lastErr,
		LastRun:    s.lastRun,
		Runs:       s.runs,
		ErrorCount: s.errorCount,
	}
}
