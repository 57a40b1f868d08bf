// Package websocket fans job progress out to browser clients subscribed
// to a job id.
package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/lexsightllc/video-transcriber-app/internal/model"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 45 * time.Second
)

type subscription struct {
	jobID string
	conn  *websocket.Conn
}

type broadcast struct {
	jobID   string
	payload interface{}
}

// Hub routes per-job messages to every connection subscribed to that job.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*websocket.Conn]bool

	register   chan subscription
	unregister chan subscription
	messages   chan broadcast
}

// NewHub creates a hub; call Run in its own goroutine before use.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[*websocket.Conn]bool),
		register:    make(chan subscription),
		unregister:  make(chan subscription),
		messages:    make(chan broadcast, 64),
	}
}

// Run processes subscription changes and broadcasts until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			if h.subscribers[sub.jobID] == nil {
				h.subscribers[sub.jobID] = make(map[*websocket.Conn]bool)
			}
			h.subscribers[sub.jobID][sub.conn] = true
			h.mu.Unlock()

		case sub := <-h.unregister:
			h.mu.Lock()
			if conns := h.subscribers[sub.jobID]; conns != nil {
				delete(conns, sub.conn)
				if len(conns) == 0 {
					delete(h.subscribers, sub.jobID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.messages:
			h.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(h.subscribers[msg.jobID]))
			for conn := range h.subscribers[msg.jobID] {
				conns = append(conns, conn)
			}
			h.mu.RUnlock()

			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(msg.payload); err != nil {
					log.Printf("websocket write failed for job %s: %v", msg.jobID, err)
					h.drop(msg.jobID, conn)
					conn.Close()
				}
			}
		}
	}
}

// drop removes a dead connection without going through the unregister
// channel, which the Run goroutine itself cannot send on.
func (h *Hub) drop(jobID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns := h.subscribers[jobID]; conns != nil {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.subscribers, jobID)
		}
	}
}

// HandleConnection subscribes a connection to a job's updates and blocks
// until the client disconnects. Runs inside the Fiber websocket handler.
func (h *Hub) HandleConnection(conn *websocket.Conn, jobID string) {
	h.register <- subscription{jobID: jobID, conn: conn}
	defer func() {
		h.unregister <- subscription{jobID: jobID, conn: conn}
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			// Clients only send pings/close; discard everything else.
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			conn.SetReadDeadline(time.Now().Add(pongWait))
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// BroadcastProgress pushes a progress update to a job's subscribers.
func (h *Hub) BroadcastProgress(jobID string, progress int, status model.JobStatus, step string) {
	h.send(jobID, model.WSProgressMessage{
		Type:        model.WSMessageTypeProgress,
		JobID:       jobID,
		Progress:    progress,
		Status:      status,
		CurrentStep: step,
	})
}

// BroadcastComplete pushes the final result to a job's subscribers.
func (h *Hub) BroadcastComplete(jobID string, result interface{}) {
	h.send(jobID, model.WSCompleteMessage{
		Type:   model.WSMessageTypeComplete,
		JobID:  jobID,
		Result: result,
	})
}

// BroadcastError pushes a terminal failure to a job's subscribers.
func (h *Hub) BroadcastError(jobID string, jobErr model.JobError) {
	h.send(jobID, model.WSErrorMessage{
		Type:  model.WSMessageTypeError,
		JobID: jobID,
		Error: jobErr,
	})
}

// send never blocks the caller; updates are dropped if the hub is saturated.
func (h *Hub) send(jobID string, payload interface{}) {
	select {
	case h.messages <- broadcast{jobID: jobID, payload: payload}:
	default:
		log.Printf("websocket hub saturated, dropping update for job %s", jobID)
	}
}
