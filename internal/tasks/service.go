// Package tasks implements the task lifecycle: CRUD, the work-in-progress
// limit, and completion celebrations.
package tasks

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/tendo-app/backend/internal/errors"
	"github.com/tendo-app/backend/internal/events"
	"github.com/tendo-app/backend/internal/logger"
	"github.com/tendo-app/backend/internal/metrics"
	"github.com/tendo-app/backend/internal/models"
	"github.com/tendo-app/backend/internal/store"
	"go.uber.org/zap"
)

// MaxTitleLength bounds task titles, counted in runes
const MaxTitleLength = 500

// Service coordinates task state changes, the event log, and live updates
type Service struct {
	store *store.Store
	hub   *events.Hub
	now   func() time.Time
}

// NewService creates a task service
func NewService(st *store.Store, hub *events.Hub) *Service {
	return &Service{
		store: st,
		hub:   hub,
		now:   time.Now,
	}
}

// SetClock overrides the service clock, for tests
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// UpdatePatch carries the mutable fields of a task. Nil means "leave as is".
type UpdatePatch struct {
	Title *string `json:"title"`
	Notes *string `json:"notes"`
}

// Create adds a new task in the todo status
func (s *Service) Create(title, notes string) (models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Task{}, errors.ValidationError("title", "title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return models.Task{}, errors.ValidationError("title", "title is too long")
	}

	now := s.now().UTC()
	task := models.Task{
		ID:        uuid.New().String(),
		Title:     title,
		Notes:     notes,
		Status:    models.StatusTodo,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.PutTask(task); err != nil {
		return models.Task{}, errors.InternalError("failed to save task")
	}
	s.appendEvent(task.ID, models.EventCreated, nil)

	metrics.Get().TasksCreatedTotal.Inc()
	s.hub.Broadcast(events.New(events.TypeTaskCreated, task))
	logger.Log.Info("task created", logger.WithTaskID(task.ID), zap.String("title", task.Title))

	return task, nil
}

// Get returns a task by ID
func (s *Service) Get(id string) (models.Task, error) {
	task, ok := s.store.GetTask(id)
	if !ok {
		return models.Task{}, errors.NotFound("task")
	}
	return task, nil
}

// List returns tasks, optionally filtered by status, most recently updated first
func (s *Service) List(status models.TaskStatus) ([]models.Task, error) {
	if status != "" && !models.ValidStatus(status) {
		return nil, errors.ValidationError("status", "unknown status")
	}

	all := s.store.ListTasks()
	if status == "" {
		return all, nil
	}
	filtered := make([]models.Task, 0, len(all))
	for _, t := range all {
		if t.Status == status {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// Update patches a task's title and/or notes
func (s *Service) Update(id string, patch UpdatePatch) (models.Task, error) {
	task, ok := s.store.GetTask(id)
	if !ok {
		return models.Task{}, errors.NotFound("task")
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return models.Task{}, errors.ValidationError("title", "title is required")
		}
		if utf8.RuneCountInString(title) > MaxTitleLength {
			return models.Task{}, errors.ValidationError("title", "title is too long")
		}
		task.Title = title
	}
	if patch.Notes != nil {
		task.Notes = *patch.Notes
	}
	task.UpdatedAt = s.now().UTC()

	if err := s.store.PutTask(task); err != nil {
		return models.Task{}, errors.InternalError("failed to save task")
	}
	s.appendEvent(task.ID, models.EventUpdated, nil)
	s.hub.Broadcast(events.New(events.TypeTaskUpdated, task))

	return task, nil
}

// Start moves a task from todo to active, enforcing the WIP limit. With
// override the limit is bypassed and a wip_override event is recorded so
// analytics can report how often the nudge gets ignored.
func (s *Service) Start(id string, override bool) (models.Task, error) {
	task, ok := s.store.GetTask(id)
	if !ok {
		return models.Task{}, errors.NotFound("task")
	}
	if task.Status == models.StatusActive {
		return task, nil // already in progress
	}
	if task.Status == models.StatusDone {
		return models.Task{}, errors.Conflict("task is already done; reopen it first")
	}

	limit := s.store.GetSettings().WIPLimit
	active := s.store.CountByStatus(models.StatusActive)
	if active >= limit {
		if !override {
			metrics.Get().WIPRejectionsTotal.Inc()
			logger.Log.Info("start rejected by WIP limit",
				logger.WithTaskID(task.ID),
				zap.Int("active", active),
				zap.Int("limit", limit),
			)
			return models.Task{}, errors.WIPLimitExceeded(limit)
		}
		metrics.Get().WIPOverridesTotal.Inc()
		s.appendEvent(task.ID, models.EventWIPOverride, map[string]string{
			"active_at_override": strconv.Itoa(active),
		})
	}

	now := s.now().UTC()
	task.Status = models.StatusActive
	task.StartedAt = &now
	task.UpdatedAt = now

	if err := s.store.PutTask(task); err != nil {
		return models.Task{}, errors.InternalError("failed to save task")
	}
	s.appendEvent(task.ID, models.EventStarted, nil)

	metrics.Get().TasksActive.Set(float64(s.store.CountByStatus(models.StatusActive)))
	s.hub.Broadcast(events.New(events.TypeTaskStarted, task))

	return task, nil
}

// Complete marks a task done and returns the task plus its celebration.
// The celebration is nil when celebrations are disabled in settings.
func (s *Service) Complete(id string) (models.Task, *Celebration, error) {
	task, ok := s.store.GetTask(id)
	if !ok {
		return models.Task{}, nil, errors.NotFound("task")
	}
	if task.Status == models.StatusDone {
		return models.Task{}, nil, errors.Conflict("task is already done")
	}

	now := s.now().UTC()
	task.Status = models.StatusDone
	task.CompletedAt = &now
	task.UpdatedAt = now

	if err := s.store.PutTask(task); err != nil {
		return models.Task{}, nil, errors.InternalError("failed to save task")
	}
	s.appendEvent(task.ID, models.EventCompleted, nil)

	metrics.Get().TasksCompletedTotal.Inc()
	metrics.Get().TasksActive.Set(float64(s.store.CountByStatus(models.StatusActive)))
	s.hub.Broadcast(events.New(events.TypeTaskCompleted, task))
	logger.Log.Info("task completed", logger.WithTaskID(task.ID), zap.String("title", task.Title))

	var celebration *Celebration
	if s.store.GetSettings().CelebrationsEnabled {
		c := s.buildCelebration(now)
		celebration = &c
		s.hub.Broadcast(events.New(events.TypeCelebration, celebration))
	}

	return task, celebration, nil
}

// Reopen moves a done task back to todo
func (s *Service) Reopen(id string) (models.Task, error) {
	task, ok := s.store.GetTask(id)
	if !ok {
		return models.Task{}, errors.NotFound("task")
	}
	if task.Status != models.StatusDone {
		return models.Task{}, errors.Conflict("only done tasks can be reopened")
	}

	task.Status = models.StatusTodo
	task.CompletedAt = nil
	task.StartedAt = nil
	task.UpdatedAt = s.now().UTC()

	if err := s.store.PutTask(task); err != nil {
		return models.Task{}, errors.InternalError("failed to save task")
	}
	s.appendEvent(task.ID, models.EventReopened, nil)
	s.hub.Broadcast(events.New(events.TypeTaskReopened, task))

	return task, nil
}

// Delete removes a task. Its events are kept so analytics retain history.
func (s *Service) Delete(id string) error {
	task, ok := s.store.GetTask(id)
	if !ok {
		return errors.NotFound("task")
	}

	if err := s.store.DeleteTask(id); err != nil {
		return errors.InternalError("failed to delete task")
	}
	s.appendEvent(task.ID, models.EventDeleted, nil)

	metrics.Get().TasksDeletedTotal.Inc()
	metrics.Get().TasksActive.Set(float64(s.store.CountByStatus(models.StatusActive)))
	s.hub.Broadcast(events.New(events.TypeTaskDeleted, task))
	logger.Log.Info("task deleted", logger.WithTaskID(task.ID))

	return nil
}

// appendEvent records a task event; persistence failures are logged, not
// fatal, since the task write itself already succeeded.
func (s *Service) appendEvent(taskID string, eventType models.EventType, meta map[string]string) {
	e := models.TaskEvent{
		ID:     uuid.New().String(),
		TaskID: taskID,
		Type:   eventType,
		At:     s.now().UTC(),
		Meta:   meta,
	}
	if err := s.store.AppendEvent(e); err != nil {
		logger.ErrorWithFields("failed to append task event", err)
	}
}
