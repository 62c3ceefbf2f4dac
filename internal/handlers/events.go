package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/tendo-app/backend/internal/logger"
	"github.com/tendo-app/backend/internal/metrics"
)

// heartbeatInterval keeps idle SSE connections alive through proxies
const heartbeatInterval = 25 * time.Second

// StreamEvents streams live events to the browser over SSE
// GET /api/v1/events
func (h *Handlers) StreamEvents(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL_ERROR", "message": "streaming unsupported"})
		return
	}

	client := h.hub.Register()
	defer h.hub.Unregister(client)

	m := metrics.Get()
	m.EventClientsActive.Inc()
	defer m.EventClientsActive.Dec()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	fmt.Fprint(c.Writer, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return

		case ev, ok := <-client.Send:
			if !ok {
				return // hub shut down or dropped us
			}
			data, err := ev.Encode()
			if err != nil {
				logger.ErrorWithFields("failed to encode SSE event", err)
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()

		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

// HandleWebSocket streams the same live events over a WebSocket, for clients
// that prefer it to SSE.
// GET /api/v1/ws
func (h *Handlers) HandleWebSocket(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		logger.WarnWithFields("websocket accept failed", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	client := h.hub.Register()
	defer h.hub.Unregister(client)

	m := metrics.Get()
	m.EventClientsActive.Inc()
	defer m.EventClientsActive.Dec()

	// We never expect inbound messages; CloseRead gives us a context that
	// cancels when the peer goes away.
	ctx := conn.CloseRead(c.Request.Context())

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-client.Send:
			if !ok {
				return
			}
			data, err := ev.Encode()
			if err != nil {
				logger.ErrorWithFields("failed to encode websocket event", err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
