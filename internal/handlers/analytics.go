package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tendo-app/backend/internal/util"
)

// GetAnalyticsSummary returns the headline stats
// GET /api/v1/analytics/summary
func (h *Handlers) GetAnalyticsSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.analytics.Summary())
}

// GetAnalyticsDaily returns per-day created/completed counts
// GET /api/v1/analytics/daily?days=N
func (h *Handlers) GetAnalyticsDaily(c *gin.Context) {
	days := util.ParseInt(c.DefaultQuery("days", "14"), 14)
	days = util.ClampInt(days, 1, 365)

	c.JSON(http.StatusOK, gin.H{
		"days":  days,
		"daily": h.analytics.Daily(days),
	})
}

// GetAnalyticsPrompts returns prompt response statistics
// GET /api/v1/analytics/prompts
func (h *Handlers) GetAnalyticsPrompts(c *gin.Context) {
	c.JSON(http.StatusOK, h.analytics.Prompts())
}
