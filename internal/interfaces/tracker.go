package interfaces

import (
	"context"
	"time"
)

// TrackerClient is the issue tracker as seen by the aggregation.
type TrackerClient interface {
	// SearchTickets returns every ticket matching the filter, most recently updated first.
	SearchTickets(ctx context.Context, filter TicketFilter) ([]*TicketData, error)
	// FetchSprint returns the detail of a single sprint.
	FetchSprint(ctx context.Context, sprintID string) (*SprintData, error)
}

// TicketFilter narrows the ticket search. Zero values mean no restriction.
type TicketFilter struct {
	Project       string
	WorklogAuthor string
	WorklogSince  *time.Time
}

type TicketData struct {
	Key      string         `json:"key"`
	Sprints  []SprintRef    `json:"sprints"`
	Worklogs []WorkLogEntry `json:"worklogs"`
}

// SprintRef is a sprint tag on a ticket, in the order the tracker returned it.
type SprintRef struct {
	ID string `json:"id"`
}

type WorkLogEntry struct {
	ID               string      `json:"id"`
	Author           WorkLogUser `json:"author"`
	TimeSpentSeconds int         `json:"time_spent_seconds"`
	Started          string      `json:"started"`
}

// WorkLogUser holds every identity Jira may report for a worklog author.
type WorkLogUser struct {
	AccountID    string `json:"account_id,omitempty"`
	Name         string `json:"name,omitempty"`
	Key          string `json:"key,omitempty"`
	EmailAddress string `json:"email_address,omitempty"`
	DisplayName  string `json:"display_name,omitempty"`
}

// Identity returns the most stable identifier available.
func (u WorkLogUser) Identity() string {
	for _, v := range []string{u.AccountID, u.Name, u.Key, u.EmailAddress, u.DisplayName} {
		if v != "" {
			return v
		}
	}
	return ""
}

// Matches reports whether author equals any identity of the user.
func (u WorkLogUser) Matches(author string) bool {
	if author == "" {
		return false
	}
	for _, v := range []string{u.AccountID, u.Name, u.Key, u.EmailAddress, u.DisplayName} {
		if v == author {
			return true
		}
	}
	return false
}

// SprintData is raw sprint detail. Dates are passed through as the tracker sent them.
type SprintData struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}
