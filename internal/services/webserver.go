package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"jira-sprint-worklogs/internal/common"
	"jira-sprint-worklogs/internal/handlers"
	"jira-sprint-worklogs/internal/interfaces"
	"jira-sprint-worklogs/internal/middleware"
	"jira-sprint-worklogs/internal/models"

	"github.com/ternarybob/arbor"
)

// WebServer exposes the latest report over HTTP and pushes new ones over WebSocket
type WebServer struct {
	config *common.Config
	server *http.Server
	logger arbor.ILogger
	state  *handlers.ReportState
	wsHub  *handlers.WebSocketHub

	mu      sync.RWMutex
	running bool
}

var _ interfaces.WebService = (*WebServer)(nil)

// NewWebServer wires the routes. store may be nil when the sprint cache is disabled.
func NewWebServer(cfg *common.Config, state *handlers.ReportState, store interfaces.SprintStore, logger arbor.ILogger) *WebServer {
	mux := http.NewServeMux()

	wsHub := handlers.NewWebSocketHub(logger)
	apiHandlers := handlers.NewAPIHandlers(cfg, state, store, logger)

	logMiddleware := middleware.Logging(logger)
	corsMiddleware := middleware.CORS

	mux.HandleFunc("/health", logMiddleware(corsMiddleware(apiHandlers.HealthHandler)))
	mux.HandleFunc("/version", logMiddleware(corsMiddleware(apiHandlers.VersionHandler)))
	mux.HandleFunc("/status", logMiddleware(corsMiddleware(apiHandlers.StatusHandler)))
	mux.HandleFunc("/report", logMiddleware(corsMiddleware(apiHandlers.ReportHandler)))
	mux.HandleFunc("/config", logMiddleware(corsMiddleware(apiHandlers.ConfigHandler)))
	mux.HandleFunc("/ws", corsMiddleware(wsHub.WebSocketHandler))

	return &WebServer{
		config: cfg,
		logger: logger,
		state:  state,
		wsHub:  wsHub,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the routed handler, mainly for tests
func (ws *WebServer) Handler() http.Handler {
	return ws.server.Handler
}

// Publish records a run outcome and notifies WebSocket clients
func (ws *WebServer) Publish(report *models.Report, err error) {
	ws.state.Record(report, err)
	if err != nil {
		ws.wsHub.SendError(err)
		return
	}
	ws.wsHub.SendReport(report)
}

func (ws *WebServer) Start(ctx context.Context) error {
	ws.mu.Lock()
	ws.running = true
	ws.mu.Unlock()

	go func() {
		ws.logger.Info().Int("port", ws.config.Server.Port).Msg("Starting web server")
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ws.logger.Error().Err(err).Msg("Web server error")
			ws.mu.Lock()
			ws.running = false
			ws.mu.Unlock()
		}
	}()
	return nil
}

func (ws *WebServer) Stop() error {
	ws.mu.Lock()
	ws.running = false
	ws.mu.Unlock()

	ws.wsHub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws.logger.Info().Msg("Shutting down web server")
	return ws.server.Shutdown(ctx)
}

func (ws *WebServer) IsRunning() bool {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.running
}
