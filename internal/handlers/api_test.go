package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jira-sprint-worklogs/internal/common"
	"jira-sprint-worklogs/internal/interfaces"
	"jira-sprint-worklogs/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func testHandlers(state *ReportState) *APIHandlers {
	cfg := common.DefaultConfig()
	cfg.Jira.Server = "https://example.atlassian.net"
	cfg.Jira.APIKey = "super-secret"
	return NewAPIHandlers(cfg, state, nil, arbor.NewLogger())
}

func sampleReport() *models.Report {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	sprint := &models.Sprint{ID: "55", Name: "Sprint 5", StartDate: &start, EndDate: &start}
	sprint.AddWorklog(&models.Worklog{ID: "1", IssueKey: "ABC-1", TimeSpentSeconds: 3600, LogDate: start, Sprint: sprint})
	return &models.Report{
		Sprints:            []*models.Sprint{sprint},
		SprintlessWorklogs: []*models.Worklog{{ID: "2", IssueKey: "ABC-2", TimeSpentSeconds: 60, LogDate: start.AddDate(0, 0, -30)}},
		GeneratedAt:        start,
	}
}

func TestReportStateKeepsLastGoodReport(t *testing.T) {
	state := NewReportState()
	report := sampleReport()

	state.Record(report, nil)
	state.Record(nil, errors.New("boom"))

	snapshot := state.Snapshot()
	assert.Same(t, report, snapshot.Report)
	assert.EqualError(t, snapshot.LastErr, "boom")
	assert.Equal(t, 2, snapshot.Runs)
	assert.Equal(t, 1, snapshot.ErrorCount)
	assert.False(t, snapshot.LastRun.IsZero())

	state.Record(report, nil)
	assert.NoError(t, state.Snapshot().LastErr)
}

func TestHealthHandler(t *testing.T) {
	state := NewReportState()
	h := testHandlers(state)

	rec := httptest.NewRecorder()
	h.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.True(t, health.Services.Jira)
	assert.False(t, health.Services.Cache)

	state.Record(nil, errors.New("jira down"))

	rec = httptest.NewRecorder()
	h.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "degraded", health.Status)
	assert.False(t, health.Services.Jira)
}

func TestReportHandler(t *testing.T) {
	state := NewReportState()
	h := testHandlers(state)

	rec := httptest.NewRecorder()
	h.ReportHandler(rec, httptest.NewRequest(http.MethodGet, "/report", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	state.Record(sampleReport(), nil)

	rec = httptest.NewRecorder()
	h.ReportHandler(rec, httptest.NewRequest(http.MethodPost, "/report", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ReportHandler(rec, httptest.NewRequest(http.MethodGet, "/report", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	sprints := body["sprints"].([]interface{})
	require.Len(t, sprints, 1)
	assert.Equal(t, "55", sprints[0].(map[string]interface{})["id"])
	assert.Len(t, body["sprintless_worklogs"], 1)
}

func TestStatusHandler(t *testing.T) {
	state := NewReportState()
	state.Record(sampleReport(), nil)
	h := testHandlers(state)

	rec := httptest.NewRecorder()
	h.StatusHandler(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 1, status.Runs)
	assert.Equal(t, 1, status.Sprints)
	assert.Equal(t, 2, status.Worklogs)
	assert.Equal(t, 1, status.Sprintless)
	assert.Empty(t, status.LastError)
}

type stubStore struct {
	count     int
	lastSaved time.Time
}

func (s *stubStore) LoadSprint(string) (*interfaces.SprintData, error) { return nil, nil }
func (s *stubStore) SaveSprint(*interfaces.SprintData) error          { return nil }
func (s *stubStore) ClearSprints() error                              { return nil }
func (s *stubStore) Count() (int, error)                              { return s.count, nil }
func (s *stubStore) LastSaved() (time.Time, error)                    { return s.lastSaved, nil }
func (s *stubStore) Close() error                                     { return nil }

func TestStatusHandlerReportsCache(t *testing.T) {
	saved := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	h := NewAPIHandlers(common.DefaultConfig(), NewReportState(), &stubStore{count: 3, lastSaved: saved}, arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.StatusHandler(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 3, status.CachedSprints)
	require.NotNil(t, status.CacheUpdated)
	assert.True(t, saved.Equal(*status.CacheUpdated))

	h = NewAPIHandlers(common.DefaultConfig(), NewReportState(), &stubStore{}, arbor.NewLogger())
	rec = httptest.NewRecorder()
	h.StatusHandler(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.NotContains(t, rec.Body.String(), "cache_updated")
}

func TestConfigHandlerOmitsAPIKey(t *testing.T) {
	h := testHandlers(NewReportState())

	rec := httptest.NewRecorder()
	h.ConfigHandler(rec, httptest.NewRequest(http.MethodGet, "/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "example.atlassian.net")
	assert.NotContains(t, rec.Body.String(), "super-secret")

	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "https://example.atlassian.net", body["jira"]["server"])
	assert.Equal(t, 8.0, body["jira"]["hours_per_day"])
	assert.Equal(t, "customfield_10020", body["jira"]["sprint_field_name"])
	assert.NotContains(t, body["jira"], "api_key")
	assert.NotContains(t, body["jira"], "Server")
	assert.Contains(t, body["logging"], "level")
	assert.Contains(t, body["cache"], "database_path")
}

func TestVersionHandler(t *testing.T) {
	h := testHandlers(NewReportState())

	rec := httptest.NewRecorder()
	h.VersionHandler(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var version VersionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &version))
	assert.Equal(t, common.GetVersion(), version.Version)
}
