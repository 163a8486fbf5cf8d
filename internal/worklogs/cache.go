package worklogs

import (
	"context"
	"strings"
	"sync"
	"time"

	"jira-sprint-worklogs/internal/interfaces"
	"jira-sprint-worklogs/internal/models"

	"github.com/ternarybob/arbor"
)

// SprintCache memoizes sprint detail by id for the lifetime of one aggregation run.
type SprintCache struct {
	tracker interfaces.TrackerClient
	logger  arbor.ILogger

	mu      sync.Mutex
	sprints map[string]*models.Sprint
}

func NewSprintCache(tracker interfaces.TrackerClient, logger arbor.ILogger) *SprintCache {
	return &SprintCache{
		tracker: tracker,
		logger:  logger,
		sprints: make(map[string]*models.Sprint),
	}
}

// Resolve returns the sprint for id, fetching it from the tracker on first use.
// The lock is held across the fetch so each id is requested at most once.
func (c *SprintCache) Resolve(ctx context.Context, sprintID string) (*models.Sprint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sprint, ok := c.sprints[sprintID]; ok {
		return sprint, nil
	}

	data, err := c.tracker.FetchSprint(ctx, sprintID)
	if err != nil {
		return nil, err
	}

	sprint := c.sprintFromData(sprintID, data)
	c.sprints[sprintID] = sprint

	c.logger.Debug().
		Str("sprint_id", sprintID).
		Str("name", sprint.Name).
		Str("state", sprint.State).
		Msg("Sprint resolved")

	return sprint, nil
}

// Get returns an already resolved sprint without touching the tracker.
func (c *SprintCache) Get(sprintID string) (*models.Sprint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sprint, ok := c.sprints[sprintID]
	return sprint, ok
}

// Sprints returns every resolved sprint ordered by start date.
func (c *SprintCache) Sprints() []*models.Sprint {
	c.mu.Lock()
	out := make([]*models.Sprint, 0, len(c.sprints))
	for _, s := range c.sprints {
		out = append(out, s)
	}
	c.mu.Unlock()

	SortSprints(out)
	return out
}

func (c *SprintCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sprints)
}

func (c *SprintCache) sprintFromData(sprintID string, data *interfaces.SprintData) *models.Sprint {
	sprint := &models.Sprint{ID: sprintID}
	if data == nil {
		return sprint
	}

	sprint.Name = data.Name
	sprint.State = data.State
	sprint.StartDate = c.parseWindowDate(sprintID, "start_date", data.StartDate)
	sprint.EndDate = c.parseWindowDate(sprintID, "end_date", data.EndDate)

	if data.ID != "" && data.ID != sprintID {
		c.logger.Warn().
			Str("requested", sprintID).
			Str("returned", data.ID).
			Msg("Tracker returned a different sprint id, keeping the requested one")
	}
	return sprint
}

// parseWindowDate degrades unparseable dates to an open window instead of failing the run.
func (c *SprintCache) parseWindowDate(sprintID, field, raw string) *time.Time {
	parsed := models.ParseOptionalDate(raw)
	if parsed == nil && strings.TrimSpace(raw) != "" && !strings.EqualFold(strings.TrimSpace(raw), "none") {
		c.logger.Debug().
			Str("sprint_id", sprintID).
			Str("field", field).
			Str("value", raw).
			Msg("Unparseable sprint date, treating window as open")
	}
	return parsed
}
