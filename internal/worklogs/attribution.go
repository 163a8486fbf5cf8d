package worklogs

import (
	"context"
	"fmt"
	"strings"

	"jira-sprint-worklogs/internal/interfaces"
	"jira-sprint-worklogs/internal/models"

	"github.com/ternarybob/arbor"
)

// attribution assigns worklogs to sprints. Tickets are added one by one through the
// issue-relationship pass; fallback then runs once over everything left unassigned.
type attribution struct {
	cache  *SprintCache
	author string
	logger arbor.ILogger

	worklogs []*models.Worklog
	seen     map[string]struct{}
	skipped  int
}

func newAttribution(cache *SprintCache, author string, logger arbor.ILogger) *attribution {
	return &attribution{
		cache:  cache,
		author: author,
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

// addTicket resolves the ticket's sprints and attaches each of its worklogs to the
// first of them, in tracker order, whose window contains the log date.
func (a *attribution) addTicket(ctx context.Context, ticket *interfaces.TicketData) error {
	ticketSprints := make([]*models.Sprint, 0, len(ticket.Sprints))
	for _, ref := range ticket.Sprints {
		if ref.ID == "" {
			continue
		}
		sprint, err := a.cache.Resolve(ctx, ref.ID)
		if err != nil {
			return err
		}
		ticketSprints = append(ticketSprints, sprint)
	}

	for _, entry := range ticket.Worklogs {
		if a.author != "" && !entry.Author.Matches(a.author) {
			continue
		}

		w, err := newWorklog(ticket.Key, entry)
		if err != nil {
			a.skipped++
			a.logger.Warn().
				Err(err).
				Str("issue", ticket.Key).
				Str("worklog_id", entry.ID).
				Msg("Skipping malformed worklog")
			continue
		}

		if _, dup := a.seen[w.ID]; dup {
			continue
		}
		a.seen[w.ID] = struct{}{}

		for _, sprint := range ticketSprints {
			if sprint.Contains(w) {
				w.Sprint = sprint
				break
			}
		}

		a.worklogs = append(a.worklogs, w)
	}

	return nil
}

// fallback attaches still unassigned worklogs to the first containing sprint among all
// sprints of the run, scanned in start date order.
func (a *attribution) fallback(sprints []*models.Sprint) int {
	attached := 0
	for _, w := range a.worklogs {
		if w.Sprint != nil {
			continue
		}
		for _, sprint := range sprints {
			if sprint.Contains(w) {
				w.Sprint = sprint
				attached++
				break
			}
		}
	}
	return attached
}

func newWorklog(issueKey string, entry interfaces.WorkLogEntry) (*models.Worklog, error) {
	if strings.TrimSpace(entry.ID) == "" {
		return nil, fmt.Errorf("missing worklog id")
	}
	if entry.TimeSpentSeconds < 0 {
		return nil, fmt.Errorf("negative time spent: %d", entry.TimeSpentSeconds)
	}
	logDate, ok := models.ParseDate(entry.Started)
	if !ok {
		return nil, fmt.Errorf("unparseable start timestamp %q", entry.Started)
	}

	return &models.Worklog{
		ID:               entry.ID,
		IssueKey:         issueKey,
		Author:           entry.Author.Identity(),
		TimeSpentSeconds: entry.TimeSpentSeconds,
		LogDate:          logDate,
	}, nil
}
