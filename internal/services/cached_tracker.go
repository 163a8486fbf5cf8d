package services

import (
	"context"
	"strings"

	. "jira-sprint-worklogs/internal/interfaces"

	"github.com/ternarybob/arbor"
)

// cachedTracker serves closed sprints from the store. Closed sprints no longer change,
// so their detail can be reused across runs; everything else goes to the tracker.
type cachedTracker struct {
	TrackerClient
	store  SprintStore
	logger arbor.ILogger
}

func NewCachedTracker(tracker TrackerClient, store SprintStore, logger arbor.ILogger) TrackerClient {
	return &cachedTracker{
		TrackerClient: tracker,
		store:         store,
		logger:        logger,
	}
}

func (c *cachedTracker) FetchSprint(ctx context.Context, sprintID string) (*SprintData, error) {
	cached, err := c.store.LoadSprint(sprintID)
	if err != nil {
		c.logger.Warn().Err(err).Str("sprint_id", sprintID).Msg("Sprint cache read failed, asking Jira")
	} else if cached != nil {
		c.logger.Debug().Str("sprint_id", sprintID).Msg("Sprint served from cache")
		return cached, nil
	}

	sprint, err := c.TrackerClient.FetchSprint(ctx, sprintID)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(sprint.State, "closed") {
		if err := c.store.SaveSprint(sprint); err != nil {
			c.logger.Warn().Err(err).Str("sprint_id", sprintID).Msg("Failed to cache closed sprint")
		}
	}
	return sprint, nil
}
