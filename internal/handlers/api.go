package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"jira-sprint-worklogs/internal/common"
	"jira-sprint-worklogs/internal/interfaces"

	"github.com/ternarybob/arbor"
)

// APIHandlers contains all API endpoint handlers
type APIHandlers struct {
	config    *common.Config
	state     *ReportState
	store     interfaces.SprintStore
	logger    arbor.ILogger
	startTime time.Time
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Build     string    `json:"build"`
	Uptime    float64   `json:"uptime_seconds"`
	Services  struct {
		Cache bool `json:"cache"`
		Jira  bool `json:"jira"`
	} `json:"services"`
}

// VersionResponse represents version information
type VersionResponse struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// StatusResponse summarises the aggregation loop
type StatusResponse struct {
	Uptime        float64   `json:"uptime"`
	Runs          int       `json:"runs"`
	ErrorCount    int       `json:"error_count"`
	LastRun       time.Time `json:"last_run,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
	Sprints       int       `json:"sprints"`
	Worklogs      int       `json:"worklogs"`
	Sprintless    int       `json:"sprintless"`
	CachedSprints int       `json:"cached_sprints"`
	CacheUpdated  *time.Time `json:"cache_updated,omitempty"`
}

// ConfigResponse represents the configuration display response, credentials removed
type ConfigResponse struct {
	Jira    common.JiraConfig    `json:"jira"`
	Report  common.ReportConfig  `json:"report"`
	Cache   common.CacheConfig   `json:"cache"`
	Logging common.LoggingConfig `json:"logging"`
}

// NewAPIHandlers creates a new API handlers instance. store may be nil when the cache is disabled.
func NewAPIHandlers(config *common.Config, state *ReportState, store interfaces.SprintStore, logger arbor.ILogger) *APIHandlers {
	return &APIHandlers{
		config:    config,
		state:     state,
		store:     store,
		logger:    logger,
		startTime: time.Now(),
	}
}

// HealthHandler reports degraded when the last aggregation failed
func (h *APIHandlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	snapshot := h.state.Snapshot()

	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   common.GetVersion(),
		Build:     common.GetBuild(),
		Uptime:    time.Since(h.startTime).Seconds(),
	}
	health.Services.Jira = snapshot.LastErr == nil
	health.Services.Cache = h.store != nil

	if snapshot.LastErr != nil {
		health.Status = "degraded"
	}

	h.writeJSON(w, http.StatusOK, health)
}

func (h *APIHandlers) VersionHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, VersionResponse{
		Version: common.GetVersion(),
		Build:   common.GetBuild(),
		Commit:  common.GetGitCommit(),
	})
}

func (h *APIHandlers) StatusHandler(w http.ResponseWriter, r *http.Request) {
	snapshot := h.state.Snapshot()

	status := StatusResponse{
		Uptime:     time.Since(h.startTime).Seconds(),
		Runs:       snapshot.Runs,
		ErrorCount: snapshot.ErrorCount,
		LastRun:    snapshot.LastRun,
	}
	if snapshot.LastErr != nil {
		status.LastError = snapshot.LastErr.Error()
	}
	if snapshot.Report != nil {
		status.Sprints = len(snapshot.Report.Sprints)
		status.Worklogs = snapshot.Report.WorklogCount()
		status.Sprintless = len(snapshot.Report.SprintlessWorklogs)
	}
	if h.store != nil {
		count, err := h.store.Count()
		if err != nil {
			h.logger.Warn().Err(err).Msg("Failed to count cached sprints")
		}
		status.CachedSprints = count

		lastSaved, err := h.store.LastSaved()
		if err != nil {
			h.logger.Warn().Err(err).Msg("Failed to read sprint cache metadata")
		}
		if !lastSaved.IsZero() {
			status.CacheUpdated = &lastSaved
		}
	}

	h.writeJSON(w, http.StatusOK, status)
}

// ReportHandler returns the latest report, or 503 until the first run succeeds
func (h *APIHandlers) ReportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot := h.state.Snapshot()
	if snapshot.Report == nil {
		http.Error(w, "Report not available yet", http.StatusServiceUnavailable)
		return
	}

	h.writeJSON(w, http.StatusOK, snapshot.Report)
}

func (h *APIHandlers) ConfigHandler(w http.ResponseWriter, r *http.Request) {
	// JiraConfig never serialises the api key.
	resp := ConfigResponse{
		Jira:    h.config.Jira,
		Report:  h.config.Report,
		Cache:   h.config.Cache,
		Logging: h.config.Logging,
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}
