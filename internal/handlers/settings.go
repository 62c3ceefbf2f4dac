package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tendo-app/backend/internal/models"
	"github.com/tendo-app/backend/internal/util"
)

// GetSettings returns the current nudge settings
// GET /api/v1/settings
func (h *Handlers) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"settings": h.store.GetSettings()})
}

// UpdateSettings replaces the nudge settings
// PUT /api/v1/settings
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var settings models.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		util.RespondBadRequest(c, "invalid JSON body")
		return
	}

	if field, msg := validateSettings(settings); field != "" {
		util.RespondValidationError(c, field, msg)
		return
	}

	if err := h.store.PutSettings(settings); err != nil {
		util.RespondInternalError(c, "failed to save settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func validateSettings(s models.Settings) (field, msg string) {
	switch {
	case s.WIPLimit < 1 || s.WIPLimit > 20:
		return "wip_limit", "wip_limit must be between 1 and 20"
	case s.PromptIntervalMin < 1 || s.PromptIntervalMin > 720:
		return "prompt_interval_min", "prompt_interval_min must be between 1 and 720"
	case s.PromptCooldownMin < 0:
		return "prompt_cooldown_min", "prompt_cooldown_min cannot be negative"
	case s.StaleAfterMin < 0:
		return "stale_after_min", "stale_after_min cannot be negative"
	case s.SnoozeMin < 1:
		return "snooze_min", "snooze_min must be at least 1"
	case s.QuietStartMin < 0 || s.QuietStartMin > 1439:
		return "quiet_start_min", "quiet_start_min must be a minute of day (0-1439)"
	case s.QuietEndMin < 0 || s.QuietEndMin > 1439:
		return "quiet_end_min", "quiet_end_min must be a minute of day (0-1439)"
	}
	return "", ""
}
