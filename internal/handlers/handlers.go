// Package handlers contains the HTTP handlers for the Tendo API.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendo-app/backend/internal/analytics"
	"github.com/tendo-app/backend/internal/events"
	"github.com/tendo-app/backend/internal/prompting"
	"github.com/tendo-app/backend/internal/store"
	"github.com/tendo-app/backend/internal/tasks"
)

// Version is stamped at build time via -ldflags
var Version = "dev"

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	store     *store.Store
	tasks     *tasks.Service
	prompting *prompting.Service
	analytics *analytics.Service
	hub       *events.Hub
	startedAt time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(st *store.Store, taskSvc *tasks.Service, promptSvc *prompting.Service, analyticsSvc *analytics.Service, hub *events.Hub) *Handlers {
	return &Handlers{
		store:     st,
		tasks:     taskSvc,
		prompting: promptSvc,
		analytics: analyticsSvc,
		hub:       hub,
		startedAt: time.Now(),
	}
}

// RegisterRoutes wires all API routes onto the router
func (h *Handlers) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		taskGroup := api.Group("/tasks")
		{
			taskGroup.POST("", h.CreateTask)
			taskGroup.GET("", h.ListTasks)
			taskGroup.GET("/:id", h.GetTask)
			taskGroup.PATCH("/:id", h.UpdateTask)
			taskGroup.POST("/:id/start", h.StartTask)
			taskGroup.POST("/:id/complete", h.CompleteTask)
			taskGroup.POST("/:id/reopen", h.ReopenTask)
			taskGroup.DELETE("/:id", h.DeleteTask)
		}

		promptGroup := api.Group("/prompt")
		{
			promptGroup.GET("", h.GetPrompt)
			promptGroup.POST("/respond", h.RespondPrompt)
			promptGroup.POST("/trigger", h.TriggerPrompt)
		}

		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.UpdateSettings)

		analyticsGroup := api.Group("/analytics")
		{
			analyticsGroup.GET("/summary", h.GetAnalyticsSummary)
			analyticsGroup.GET("/daily", h.GetAnalyticsDaily)
			analyticsGroup.GET("/prompts", h.GetAnalyticsPrompts)
		}

		api.GET("/events", h.StreamEvents)
		api.GET("/ws", h.HandleWebSocket)
	}
}

// Health reports service liveness
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "tendo-backend",
		"version":   Version,
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
	})
}
