package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tendo-app/backend/internal/models"
	"github.com/tendo-app/backend/internal/tasks"
	"github.com/tendo-app/backend/internal/util"
)

// CreateTaskRequest is the body for task creation
type CreateTaskRequest struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
}

// CreateTask creates a new task
// POST /api/v1/tasks
func (h *Handlers) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid JSON body")
		return
	}

	task, err := h.tasks.Create(req.Title, req.Notes)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"task": task})
}

// ListTasks returns tasks, optionally filtered by ?status=
// GET /api/v1/tasks
func (h *Handlers) ListTasks(c *gin.Context) {
	status := models.TaskStatus(c.Query("status"))

	list, err := h.tasks.List(status)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": list,
		"count": len(list),
	})
}

// GetTask returns a single task
// GET /api/v1/tasks/:id
func (h *Handlers) GetTask(c *gin.Context) {
	task, err := h.tasks.Get(c.Param("id"))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

// UpdateTask patches a task's title and/or notes
// PATCH /api/v1/tasks/:id
func (h *Handlers) UpdateTask(c *gin.Context) {
	var patch tasks.UpdatePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		util.RespondBadRequest(c, "invalid JSON body")
		return
	}

	task, err := h.tasks.Update(c.Param("id"), patch)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

// StartTask moves a task into progress. ?override=true bypasses the WIP
// limit (recorded as an override event).
// POST /api/v1/tasks/:id/start
func (h *Handlers) StartTask(c *gin.Context) {
	override := util.ParseBool(c.Query("override"), false)

	task, err := h.tasks.Start(c.Param("id"), override)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

// CompleteTask marks a task done, returning the celebration when enabled
// POST /api/v1/tasks/:id/complete
func (h *Handlers) CompleteTask(c *gin.Context) {
	task, celebration, err := h.tasks.Complete(c.Param("id"))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	resp := gin.H{"task": task}
	if celebration != nil {
		resp["celebration"] = celebration
	}
	c.JSON(http.StatusOK, resp)
}

// ReopenTask moves a done task back to todo
// POST /api/v1/tasks/:id/reopen
func (h *Handlers) ReopenTask(c *gin.Context) {
	task, err := h.tasks.Reopen(c.Param("id"))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

// DeleteTask removes a task
// DELETE /api/v1/tasks/:id
func (h *Handlers) DeleteTask(c *gin.Context) {
	if err := h.tasks.Delete(c.Param("id")); err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
