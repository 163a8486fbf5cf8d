package worklogs

import (
	"context"
	"testing"
	"time"

	"jira-sprint-worklogs/internal/interfaces"
	"jira-sprint-worklogs/internal/models"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

type fakeTracker struct {
	tickets []*interfaces.TicketData
	sprints map[string]*interfaces.SprintData

	searchErr error
	sprintErr error

	fetches    map[string]int
	lastFilter interfaces.TicketFilter
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		sprints: make(map[string]*interfaces.SprintData),
		fetches: make(map[string]int),
	}
}

func (f *fakeTracker) SearchTickets(ctx context.Context, filter interfaces.TicketFilter) ([]*interfaces.TicketData, error) {
	f.lastFilter = filter
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.tickets, nil
}

func (f *fakeTracker) FetchSprint(ctx context.Context, sprintID string) (*interfaces.SprintData, error) {
	f.fetches[sprintID]++
	if f.sprintErr != nil {
		return nil, f.sprintErr
	}
	if s, ok := f.sprints[sprintID]; ok {
		return s, nil
	}
	return &interfaces.SprintData{ID: sprintID, StartDate: "None", EndDate: "None"}, nil
}

func (f *fakeTracker) addSprint(id, name, start, end string) {
	f.sprints[id] = &interfaces.SprintData{ID: id, Name: name, State: "closed", StartDate: start, EndDate: end}
}

func (f *fakeTracker) addTicket(key string, sprintIDs []string, worklogs ...interfaces.WorkLogEntry) {
	refs := make([]interfaces.SprintRef, 0, len(sprintIDs))
	for _, id := range sprintIDs {
		refs = append(refs, interfaces.SprintRef{ID: id})
	}
	f.tickets = append(f.tickets, &interfaces.TicketData{Key: key, Sprints: refs, Worklogs: worklogs})
}

func entry(id, author, started string, seconds int) interfaces.WorkLogEntry {
	return interfaces.WorkLogEntry{
		ID:               id,
		Author:           interfaces.WorkLogUser{Name: author},
		TimeSpentSeconds: seconds,
		Started:          started + "T09:00:00.000+0000",
	}
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(models.DayLayout, s)
	require.NoError(t, err)
	return d
}

func testLogger() arbor.ILogger {
	return arbor.NewLogger()
}

func aggregate(t *testing.T, tracker *fakeTracker, q Query) *models.Report {
	t.Helper()
	report, err := NewAggregator(tracker, testLogger()).Aggregate(context.Background(), q)
	require.NoError(t, err)
	return report
}

func dayKeys(s *models.Sprint) []string {
	keys := make([]string, 0, len(s.Days()))
	for _, d := range s.Days() {
		keys = append(keys, d.Key())
	}
	return keys
}

func sprintIDs(sprints []*models.Sprint) []string {
	ids := make([]string, 0, len(sprints))
	for _, s := range sprints {
		ids = append(ids, s.ID)
	}
	return ids
}
