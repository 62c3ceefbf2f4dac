package events

import (
	"encoding/json"
	"time"
)

// Event types pushed to connected browsers
const (
	TypeTaskCreated   = "task_created"
	TypeTaskUpdated   = "task_updated"
	TypeTaskStarted   = "task_started"
	TypeTaskCompleted = "task_completed"
	TypeTaskReopened  = "task_reopened"
	TypeTaskDeleted   = "task_deleted"
	TypeCelebration   = "celebration"
	TypePrompt        = "prompt"
	TypePromptCleared = "prompt_cleared"
	TypeDigest        = "digest"
)

// Event is a message pushed to live clients over SSE or WebSocket
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// New creates an event stamped with the current time
func New(eventType string, payload interface{}) *Event {
	return &Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// Encode serializes the event to JSON
func (e *Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}
