package models

import "time"

// TaskStatus is the lifecycle state of a task
type TaskStatus string

const (
	StatusTodo   TaskStatus = "todo"
	StatusActive TaskStatus = "active"
	StatusDone   TaskStatus = "done"
)

// ValidStatus reports whether s is a known task status
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusTodo, StatusActive, StatusDone:
		return true
	}
	return false
}

// Task is a single to-do item
type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Notes          string     `json:"notes,omitempty"`
	Status         TaskStatus `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	LastPromptedAt *time.Time `json:"last_prompted_at,omitempty"`
	PromptCount    int        `json:"prompt_count"`
}

// IsOpen reports whether the task still needs doing
func (t *Task) IsOpen() bool {
	return t.Status != StatusDone
}

// StaleSince returns how long the task has gone untouched as of now
func (t *Task) StaleSince(now time.Time) time.Duration {
	return now.Sub(t.UpdatedAt)
}
