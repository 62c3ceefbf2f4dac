package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tendo-app/backend/internal/models"
	"github.com/tendo-app/backend/internal/util"
)

// GetPrompt returns the in-flight prompt, 404 when none is active
// GET /api/v1/prompt
func (h *Handlers) GetPrompt(c *gin.Context) {
	payload, err := h.prompting.Current()
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payload)
}

// RespondPromptRequest is the body for prompt responses
type RespondPromptRequest struct {
	Action models.PromptAction `json:"action"`
}

// RespondPrompt records the user's response to the current prompt
// POST /api/v1/prompt/respond
func (h *Handlers) RespondPrompt(c *gin.Context) {
	var req RespondPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid JSON body")
		return
	}

	result, err := h.prompting.Respond(req.Action)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// TriggerPrompt forces a scheduler pass. Debug/dev convenience so you don't
// have to wait out the interval.
// POST /api/v1/prompt/trigger
func (h *Handlers) TriggerPrompt(c *gin.Context) {
	prompt := h.prompting.Tick()
	if prompt == nil {
		c.JSON(http.StatusOK, gin.H{"prompted": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"prompted": true, "prompt": prompt})
}
