package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"jira-sprint-worklogs/internal/models"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
)

// WebSocketHub pushes report updates and heartbeats to connected clients
type WebSocketHub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mutex      sync.RWMutex
	logger     arbor.ILogger
	heartbeat  time.Duration
}

func NewWebSocketHub(logger arbor.ILogger) *WebSocketHub {
	hub := &WebSocketHub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		logger:     logger,
		heartbeat:  30 * time.Second,
	}
	go hub.run()
	return hub
}

func (h *WebSocketHub) run() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.logger.Debug().Msg("WebSocket client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			h.mutex.Unlock()
			h.logger.Debug().Msg("WebSocket client disconnected")

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Warn().Err(err).Msg("Failed to send WebSocket message")
					client.Close()
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()

		case <-ticker.C:
			h.SendStatus("online")
		}
	}
}

// Close disconnects every client and stops the hub
func (h *WebSocketHub) Close() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

func (h *WebSocketHub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *WebSocketHub) SendStatus(status string) {
	h.send(map[string]interface{}{
		"type":      "status",
		"status":    status,
		"timestamp": time.Now().Unix(),
	})
}

// SendReport broadcasts a freshly aggregated report
func (h *WebSocketHub) SendReport(report *models.Report) {
	h.send(map[string]interface{}{
		"type":      "report",
		"data":      report,
		"timestamp": time.Now().Unix(),
	})
}

// SendError broadcasts a failed aggregation run
func (h *WebSocketHub) SendError(err error) {
	h.send(map[string]interface{}{
		"type":      "error",
		"error":     err.Error(),
		"timestamp": time.Now().Unix(),
	})
}

// send drops the message when the buffer is full rather than blocking the caller.
func (h *WebSocketHub) send(msg map[string]interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode WebSocket message")
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn().Msg("WebSocket broadcast buffer full, dropping message")
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *WebSocketHub) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}

	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}
