// Package live implements the live-update channel: a registry of connected
// websocket sessions and the sinks a "usage created" event is fanned out to.
package live

import (
	"context"
	"effisense-go/internal/model"
	"effisense-go/pkg/log"
	"effisense-go/pkg/metrics"
	"sync"
)

// Message types exchanged over the websocket.
const (
	MessageTypeUsageUpdate = "ReceiveUsageUpdate"
	MessageTypePing        = "ping"
	MessageTypePong        = "pong"
)

// Message is the websocket envelope.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Publisher accepts "usage created" events.
type Publisher interface {
	PublishUsageCreated(ctx context.Context, event model.UsageEvent) error
}

// Hub owns the set of active sessions. Every published event goes to every
// registered session; there is no per-user filtering.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Register adds c to the registry.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.LiveClients.Set(float64(total))
	log.Infow("live client connected", "client", c.id, "userId", c.userID, "total_clients", total)
}

// Unregister removes c and closes its send queue. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		c.markClosed()
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		metrics.LiveClients.Set(float64(total))
		log.Infow("live client disconnected", "client", c.id, "userId", c.userID, "total_clients", total)
	}
}

// ClientCount returns the number of registered sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg on every registered session and returns how many accepted it.
// Sessions that report a closed connection, or whose queue is full, are removed.
func (h *Hub) Broadcast(msg Message) int {
	var stale []*Client
	delivered := 0

	// Sends happen under the read lock so Unregister cannot close a queue mid-send.
	h.mu.RLock()
	for c := range h.clients {
		if c.isClosed() {
			stale = append(stale, c)
			continue
		}
		select {
		case c.send <- msg:
			delivered++
		default:
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.Unregister(c)
	}
	return delivered
}

// PublishUsageCreated implements Publisher by broadcasting to local sessions.
func (h *Hub) PublishUsageCreated(_ context.Context, event model.UsageEvent) error {
	n := h.Broadcast(Message{Type: MessageTypeUsageUpdate, Data: event})
	log.Debugf("live: usage %d delivered to %d sessions", event.UsageID, n)
	return nil
}

// Serve blocks until ctx is cancelled and then closes every session.
// It satisfies suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	<-ctx.Done()

	h.mu.Lock()
	count := len(h.clients)
	for c := range h.clients {
		delete(h.clients, c)
		c.markClosed()
		close(c.send)
	}
	h.mu.Unlock()

	metrics.LiveClients.Set(0)
	log.Infow("live hub stopped", "closed_clients", count)
	return ctx.Err()
}

func (h *Hub) String() string {
	return "live-hub"
}
