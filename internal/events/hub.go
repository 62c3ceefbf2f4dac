// Package events provides the live-update hub feeding SSE and WebSocket
// clients.
package events

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/tendo-app/backend/internal/logger"
	"github.com/tendo-app/backend/internal/metrics"
	"go.uber.org/zap"
)

// clientBuffer is the per-client send queue depth. A client that falls this
// far behind is dropped rather than blocking the hub.
const clientBuffer = 32

// Client is a single connected event consumer. Transports read from Send
// and call the hub's Unregister when the connection goes away.
type Client struct {
	Send chan *Event
}

// Hub fans events out to all connected clients
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Event

	mu      sync.RWMutex
	clients map[*Client]struct{}

	// Metrics
	totalConnections atomic.Int64
	dropped          atomic.Int64
	sent             atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a hub; call Run in a goroutine to start it
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		broadcast:  make(chan *Event, 64),
		clients:    make(map[*Client]struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run starts the hub's main event loop
func (h *Hub) Run() {
	logger.Log.Info("event hub starting")

	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			h.totalConnections.Add(1)
			logger.Log.Debug("event client connected",
				zap.Int("active", h.ClientCount()),
			)

		case client := <-h.unregister:
			h.removeClient(client)

		case event := <-h.broadcast:
			h.fanOut(event)
		}
	}
}

// Stop shuts the hub down and disconnects all clients
func (h *Hub) Stop() {
	h.cancel()
}

// Register adds a client and returns it
func (h *Hub) Register() *Client {
	client := &Client{Send: make(chan *Event, clientBuffer)}
	h.register <- client
	return client
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Broadcast queues an event for delivery to every connected client.
// Safe to call from any goroutine; drops the event if the hub is stopped.
func (h *Hub) Broadcast(event *Event) {
	select {
	case h.broadcast <- event:
	case <-h.ctx.Done():
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns lifetime hub counters
func (h *Hub) Stats() (total, sent, dropped int64) {
	return h.totalConnections.Load(), h.sent.Load(), h.dropped.Load()
}

func (h *Hub) fanOut(event *Event) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.Send <- event:
			h.sent.Add(1)
		default:
			// Slow client: drop it rather than stall everyone else
			h.dropped.Add(1)
			metrics.Get().EventsDroppedTotal.Inc()
			logger.Log.Warn("dropping slow event client",
				zap.String("event_type", event.Type),
			)
			h.removeClient(c)
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
	}
	h.mu.Unlock()
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	for c := range h.clients {
		close(c.Send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
	logger.Log.Info("event hub stopped")
}
