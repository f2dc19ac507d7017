package api

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"stringcalc/internal/updater"
)

// TableEvent is pushed to page viewers after the table changed
type TableEvent struct {
	EventType string         `json:"event_type"`
	Notice    updater.Notice `json:"notice"`
	Timestamp time.Time      `json:"timestamp"`
}

// SSEHub fans table events out to every connected viewer
type SSEHub struct {
	clients    map[chan TableEvent]bool
	clientsMu  sync.RWMutex
	register   chan chan TableEvent
	unregister chan chan TableEvent
	broadcast  chan TableEvent
	ping       time.Duration
}

// NewSSEHub creates a new SSE hub; call Run to start delivering events
func NewSSEHub() *SSEHub {
	return &SSEHub{
		clients:    make(map[chan TableEvent]bool),
		register:   make(chan chan TableEvent, 10),
		unregister: make(chan chan TableEvent, 10),
		broadcast:  make(chan TableEvent, 100),
		ping:       30 * time.Second,
	}
}

// Run processes SSE hub operations until ctx ends
func (h *SSEHub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.clientsMu.Lock()
			for client := range h.clients {
				close(client)
			}
			h.clients = make(map[chan TableEvent]bool)
			h.clientsMu.Unlock()
			return nil

		case client := <-h.register:
			h.clientsMu.Lock()
			h.clients[client] = true
			log.Printf("[SSE] Viewer registered (total viewers: %d)", len(h.clients))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if h.clients[client] {
				delete(h.clients, client)
				close(client)
				log.Printf("[SSE] Viewer unregistered (remaining viewers: %d)", len(h.clients))
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for client := range h.clients {
				select {
				case client <- event:
				default:
					log.Printf("[SSE] Viewer channel full, skipping %s event", event.EventType)
				}
			}
			h.clientsMu.RUnlock()
		}
	}
}

// Publish queues a reconcile notice for every viewer
func (h *SSEHub) Publish(n updater.Notice) {
	event := TableEvent{EventType: "table", Notice: n, Timestamp: time.Now()}
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[SSE] Broadcast channel full, dropping event: %s", event.EventType)
	}
}

// ClientCount returns the number of connected viewers
func (h *SSEHub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// HandleSSE streams table events to one viewer
func (h *SSEHub) HandleSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientChan := make(chan TableEvent, 10)

	select {
	case h.register <- clientChan:
	default:
		c.JSON(500, gin.H{"error": "SSE hub registration failed"})
		return
	}

	defer func() {
		select {
		case h.unregister <- clientChan:
		default:
			// Hub might be overloaded; the channel is closed on shutdown
		}
	}()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-clientChan:
			if !ok {
				return false
			}
			eventJSON, err := json.Marshal(event)
			if err != nil {
				log.Printf("[SSE] Failed to marshal event: %v", err)
				return true
			}
			c.SSEvent(event.EventType, string(eventJSON))
			return true

		case <-time.After(h.ping):
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}
