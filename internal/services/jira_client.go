package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	. "jira-sprint-worklogs/internal/common"
	. "jira-sprint-worklogs/internal/interfaces"

	"github.com/go-resty/resty/v2"
	"github.com/ternarybob/arbor"
)

const (
	searchPath  = "/rest/api/2/search"
	worklogPath = "/rest/api/2/issue/%s/worklog"
	sprintPath  = "/rest/agile/1.0/sprint/%s"
)

type jiraClient struct {
	client      *resty.Client
	sprintField string
	pageSize    int
	logger      arbor.ILogger
}

type searchResponse struct {
	StartAt    int           `json:"startAt"`
	MaxResults int           `json:"maxResults"`
	Total      int           `json:"total"`
	Issues     []searchIssue `json:"issues"`
}

type searchIssue struct {
	ID     string                     `json:"id"`
	Key    string                     `json:"key"`
	Fields map[string]json.RawMessage `json:"fields"`
}

type worklogPage struct {
	StartAt    int           `json:"startAt"`
	MaxResults int           `json:"maxResults"`
	Total      int           `json:"total"`
	Worklogs   []jiraWorklog `json:"worklogs"`
}

type jiraWorklog struct {
	ID               string    `json:"id"`
	Author           *jiraUser `json:"author"`
	Started          string    `json:"started"`
	TimeSpentSeconds int       `json:"timeSpentSeconds"`
}

type jiraUser struct {
	AccountID    string `json:"accountId"`
	Name         string `json:"name"`
	Key          string `json:"key"`
	EmailAddress string `json:"emailAddress"`
	DisplayName  string `json:"displayName"`
}

func NewJiraClient(config *JiraConfig, logger arbor.ILogger) TrackerClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(config.Server, "/")).
		SetBasicAuth(config.Username, config.APIKey).
		SetTimeout(time.Duration(config.TimeoutSeconds)*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	pageSize := config.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	return &jiraClient{
		client:      client,
		sprintField: config.SprintFieldName,
		pageSize:    pageSize,
		logger:      logger,
	}
}

// BuildJQL turns a ticket filter into a JQL query ordered by most recent update.
func BuildJQL(filter TicketFilter) string {
	var parts []string

	if filter.Project != "" {
		parts = append(parts, fmt.Sprintf("project = %s", jqlQuote(filter.Project)))
	}
	if filter.WorklogAuthor != "" {
		parts = append(parts, fmt.Sprintf("worklogAuthor = %s", jqlQuote(filter.WorklogAuthor)))
	}
	if filter.WorklogSince != nil {
		parts = append(parts, fmt.Sprintf("worklogDate >= %s", jqlQuote(filter.WorklogSince.Format("2006-01-02"))))
	}

	return strings.TrimSpace(strings.Join(parts, " AND ") + " ORDER BY updated DESC")
}

func jqlQuote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

func (jc *jiraClient) SearchTickets(ctx context.Context, filter TicketFilter) ([]*TicketData, error) {
	jql := BuildJQL(filter)
	fields := "worklog," + jc.sprintField

	var tickets []*TicketData
	startAt := 0

	for {
		var response searchResponse
		resp, err := jc.client.R().
			SetContext(ctx).
			SetQueryParam("jql", jql).
			SetQueryParam("startAt", strconv.Itoa(startAt)).
			SetQueryParam("maxResults", strconv.Itoa(jc.pageSize)).
			SetQueryParam("fields", fields).
			SetResult(&response).
			Get(searchPath)
		if err := checkResponse(resp, err, "search issues"); err != nil {
			return nil, err
		}

		jc.logger.Debug().
			Int("start_at", startAt).
			Int("issues", len(response.Issues)).
			Int("total", response.Total).
			Msg("Search page fetched")

		for _, issue := range response.Issues {
			ticket, err := jc.ticketFromIssue(ctx, issue)
			if err != nil {
				return nil, err
			}
			tickets = append(tickets, ticket)
		}

		if len(response.Issues) == 0 || startAt+len(response.Issues) >= response.Total {
			break
		}
		startAt += len(response.Issues)
	}

	return tickets, nil
}

func (jc *jiraClient) ticketFromIssue(ctx context.Context, issue searchIssue) (*TicketData, error) {
	ticket := &TicketData{Key: issue.Key}

	sprints, err := ParseSprintField(issue.Fields[jc.sprintField])
	if err != nil {
		jc.logger.Warn().Err(err).Str("issue", issue.Key).Msg("Ignoring unreadable sprint field")
	}
	for _, s := range sprints {
		ticket.Sprints = append(ticket.Sprints, SprintRef{ID: s.ID})
	}

	var embedded worklogPage
	if raw, ok := issue.Fields["worklog"]; ok && len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &embedded); err != nil {
			return nil, WrapError(err, ErrorTypeJira, "DECODE_WORKLOG", fmt.Sprintf("failed to decode worklogs of %s", issue.Key))
		}
	}

	worklogs := embedded.Worklogs
	// Search embeds only the first page of worklogs.
	if embedded.Total > len(embedded.Worklogs) {
		worklogs, err = jc.listWorklogs(ctx, issue.Key)
		if err != nil {
			return nil, err
		}
	}

	for _, wl := range worklogs {
		ticket.Worklogs = append(ticket.Worklogs, wl.toEntry())
	}
	return ticket, nil
}

func (jc *jiraClient) listWorklogs(ctx context.Context, issueKey string) ([]jiraWorklog, error) {
	var out []jiraWorklog
	startAt := 0

	for {
		var page worklogPage
		resp, err := jc.client.R().
			SetContext(ctx).
			SetQueryParam("startAt", strconv.Itoa(startAt)).
			SetQueryParam("maxResults", strconv.Itoa(jc.pageSize)).
			SetResult(&page).
			Get(fmt.Sprintf(worklogPath, url.PathEscape(issueKey)))
		if err := checkResponse(resp, err, "list worklogs of "+issueKey); err != nil {
			return nil, err
		}

		out = append(out, page.Worklogs...)

		if len(page.Worklogs) == 0 || startAt+len(page.Worklogs) >= page.Total {
			break
		}
		startAt += len(page.Worklogs)
	}

	jc.logger.Debug().Str("issue", issueKey).Int("worklogs", len(out)).Msg("Full worklog list fetched")
	return out, nil
}

func (jc *jiraClient) FetchSprint(ctx context.Context, sprintID string) (*SprintData, error) {
	var sprint jiraSprint
	resp, err := jc.client.R().
		SetContext(ctx).
		SetResult(&sprint).
		Get(fmt.Sprintf(sprintPath, url.PathEscape(sprintID)))
	if err := checkResponse(resp, err, "fetch sprint "+sprintID); err != nil {
		return nil, err
	}

	data := sprint.toSprintData()
	if data.ID == "" {
		data.ID = sprintID
	}
	return &data, nil
}

func (wl jiraWorklog) toEntry() WorkLogEntry {
	entry := WorkLogEntry{
		ID:               wl.ID,
		Started:          wl.Started,
		TimeSpentSeconds: wl.TimeSpentSeconds,
	}
	if wl.Author != nil {
		entry.Author = WorkLogUser{
			AccountID:    wl.Author.AccountID,
			Name:         wl.Author.Name,
			Key:          wl.Author.Key,
			EmailAddress: wl.Author.EmailAddress,
			DisplayName:  wl.Author.DisplayName,
		}
	}
	return entry
}

// checkResponse maps transport failures and non-200 statuses to typed errors.
func checkResponse(resp *resty.Response, err error, action string) error {
	if err != nil {
		return WrapError(err, ErrorTypeNetwork, "JIRA_REQUEST", fmt.Sprintf("failed to %s", action))
	}

	switch status := resp.StatusCode(); {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return NewAuthError("JIRA_AUTH", fmt.Sprintf("Jira rejected credentials while trying to %s", action)).
			WithContext("status", status)
	default:
		return NewJiraError("JIRA_STATUS", fmt.Sprintf("Jira API returned status %d while trying to %s", status, action)).
			WithDetails(strings.TrimSpace(resp.String())).
			WithContext("status", status)
	}
}
