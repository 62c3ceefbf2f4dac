package models

import "time"

// Prompt is the single in-flight nudge asking the user to revisit a task.
// At most one prompt is active at a time; the next scheduler tick supersedes
// an expired one.
type Prompt struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	SentAt    time.Time `json:"sent_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the prompt is past its expiry as of now
func (p *Prompt) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// PromptAction is a user response to a prompt
type PromptAction string

const (
	PromptActionDone    PromptAction = "done"
	PromptActionSnooze  PromptAction = "snooze"
	PromptActionDismiss PromptAction = "dismiss"
)

// ValidPromptAction reports whether a is a known prompt response
func ValidPromptAction(a PromptAction) bool {
	switch a {
	case PromptActionDone, PromptActionSnooze, PromptActionDismiss:
		return true
	}
	return false
}
