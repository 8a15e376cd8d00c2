package internal

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// PipelineProgress is the frame broadcast to websocket clients after each
// completed download task.
type PipelineProgress struct {
	Type    string         `json:"type"`
	Done    int            `json:"done"`
	Total   int            `json:"total"`
	Current DownloadResult `json:"current"`
}

// ProgressHub fans pipeline progress out to connected websocket clients.
type ProgressHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{clients: make(map[*websocket.Conn]struct{})}
}

func getWebSocketUpgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
}

func (h *ProgressHub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *ProgressHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// Broadcast writes the frame to every client. Writes happen under the
// client-set mutex: a websocket connection allows only one concurrent
// writer. Clients whose write fails are dropped.
func (h *ProgressHub) Broadcast(progress PipelineProgress) {
	if progress.Type == "" {
		progress.Type = "pipeline_progress"
	}
	data, err := json.Marshal(progress)
	if err != nil {
		return
	}
	h.mu.Lock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
	h.mu.Unlock()
}
