package worklogs

import (
	"context"
	"time"

	"jira-sprint-worklogs/internal/interfaces"
	"jira-sprint-worklogs/internal/models"

	"github.com/ternarybob/arbor"
)

// Query selects the worklogs of a report. Since takes precedence over DaysAgo; with
// neither set there is no lower bound.
type Query struct {
	Project string
	Author  string
	Since   *time.Time
	DaysAgo int
}

// LowerBound resolves the earliest worklog date of the query relative to now.
func (q Query) LowerBound(now time.Time) *time.Time {
	if q.Since != nil {
		since := models.DateOf(*q.Since)
		return &since
	}
	if q.DaysAgo > 0 {
		since := models.DateOf(now).AddDate(0, 0, -q.DaysAgo)
		return &since
	}
	return nil
}

// Aggregator turns tracker tickets into a sprint/day worklog report.
type Aggregator struct {
	tracker interfaces.TrackerClient
	logger  arbor.ILogger
	now     func() time.Time
}

func NewAggregator(tracker interfaces.TrackerClient, logger arbor.ILogger) *Aggregator {
	return &Aggregator{
		tracker: tracker,
		logger:  logger,
		now:     time.Now,
	}
}

// Aggregate runs one report. Any tracker error aborts the run and is returned as is.
func (a *Aggregator) Aggregate(ctx context.Context, q Query) (*models.Report, error) {
	start := a.now()

	filter := interfaces.TicketFilter{
		Project:       q.Project,
		WorklogAuthor: q.Author,
		WorklogSince:  q.LowerBound(start),
	}

	tickets, err := a.tracker.SearchTickets(ctx, filter)
	if err != nil {
		return nil, err
	}

	a.logger.Info().
		Int("tickets", len(tickets)).
		Str("project", q.Project).
		Str("author", q.Author).
		Msg("Tickets fetched")

	cache := NewSprintCache(a.tracker, a.logger)
	attr := newAttribution(cache, q.Author, a.logger)

	for _, ticket := range tickets {
		if err := attr.addTicket(ctx, ticket); err != nil {
			return nil, err
		}
	}

	sprints := cache.Sprints()
	attached := attr.fallback(sprints)

	sprintless, err := bucketWorklogs(cache, attr.worklogs)
	if err != nil {
		return nil, err
	}

	for _, sprint := range sprints {
		if days := WindowDays(sprint); days > MaxWindowDays {
			a.logger.Warn().
				Str("sprint_id", sprint.ID).
				Int("days", days).
				Msg("Sprint window too long, only days with worklogs are listed")
			continue
		}
		if err := FillDays(sprint); err != nil {
			return nil, err
		}
	}

	a.logger.Info().
		Int("sprints", len(sprints)).
		Int("worklogs", len(attr.worklogs)).
		Int("fallback_attached", attached).
		Int("sprintless", len(sprintless)).
		Int("skipped", attr.skipped).
		Dur("duration", a.now().Sub(start)).
		Msg("Worklogs aggregated")

	return &models.Report{
		Sprints:            sprints,
		SprintlessWorklogs: sprintless,
		GeneratedAt:        start,
	}, nil
}
