package models

import "time"

// EventType classifies entries in the append-only task event log
type EventType string

const (
	EventCreated         EventType = "created"
	EventStarted         EventType = "started"
	EventUpdated         EventType = "updated"
	EventCompleted       EventType = "completed"
	EventReopened        EventType = "reopened"
	EventDeleted         EventType = "deleted"
	EventWIPOverride     EventType = "wip_override"
	EventPromptSent      EventType = "prompt_sent"
	EventPromptDone      EventType = "prompt_done"
	EventPromptSnoozed   EventType = "prompt_snoozed"
	EventPromptDismissed EventType = "prompt_dismissed"
	EventDigestSent      EventType = "digest_sent"
)

// TaskEvent is an append-only record of something that happened to a task.
// Events survive task deletion so analytics keep their history.
type TaskEvent struct {
	ID     string            `json:"id"`
	TaskID string            `json:"task_id,omitempty"`
	Type   EventType         `json:"type"`
	At     time.Time         `json:"at"`
	Meta   map[string]string `json:"meta,omitempty"`
}
