// Package prompting implements the proactive nudge scheduler: it periodically
// picks a stale task and asks the user to revisit it, honoring snoozes and the
// configured quiet window.
package prompting

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/tendo-app/backend/internal/errors"
	"github.com/tendo-app/backend/internal/events"
	"github.com/tendo-app/backend/internal/logger"
	"github.com/tendo-app/backend/internal/metrics"
	"github.com/tendo-app/backend/internal/models"
	"github.com/tendo-app/backend/internal/store"
	"github.com/tendo-app/backend/internal/tasks"
	"go.uber.org/zap"
)

// Service runs the prompt scheduler. One prompt is in flight at most; a tick
// that finds an unexpired prompt does nothing.
type Service struct {
	store *store.Store
	tasks *tasks.Service
	hub   *events.Hub
	now   func() time.Time

	mu           sync.Mutex
	current      *models.Prompt
	snoozedUntil time.Time

	ctx    context.Context
	cancel context.CancelFunc
	cron   *cron.Cron
}

// NewService creates the prompting service
func NewService(st *store.Store, taskSvc *tasks.Service, hub *events.Hub) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		store:  st,
		tasks:  taskSvc,
		hub:    hub,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetClock overrides the service clock, for tests
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Start launches the scheduler loop and the daily digest cron.
// digestCron is a standard 5-field cron expression; empty disables the digest.
func (s *Service) Start(digestCron string) error {
	logger.Log.Info("starting prompting service",
		zap.Duration("interval", s.store.GetSettings().PromptInterval()),
		zap.String("digest_cron", digestCron),
	)

	if digestCron != "" {
		s.cron = cron.New()
		if _, err := s.cron.AddFunc(digestCron, s.BroadcastDigest); err != nil {
			return err
		}
		s.cron.Start()
	}

	go s.run()
	return nil
}

// Stop halts the scheduler and the digest cron
func (s *Service) Stop() {
	logger.Log.Info("stopping prompting service")
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
}

// run ticks at the configured prompt interval. The interval is re-read every
// loop so settings changes apply without a restart.
func (s *Service) run() {
	for {
		interval := s.store.GetSettings().PromptInterval()
		timer := time.NewTimer(interval)
		select {
		case <-timer.C:
			s.Tick()
		case <-s.ctx.Done():
			timer.Stop()
			return
		}
	}
}

// Tick runs one scheduler pass. Exported so the debug trigger endpoint can
// force a pass without waiting for the timer. Returns the prompt it sent,
// or nil if the pass was a no-op.
func (s *Service) Tick() *models.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	settings := s.store.GetSettings()

	if settings.InQuietWindow(now) {
		logger.Log.Debug("prompt tick skipped: quiet window")
		return nil
	}
	if now.Before(s.snoozedUntil) {
		logger.Log.Debug("prompt tick skipped: snoozed",
			zap.Time("until", s.snoozedUntil),
		)
		return nil
	}
	if s.current != nil {
		if !s.current.Expired(now) {
			return nil // a prompt is already waiting for a response
		}
		s.current = nil
	}

	task := s.selectCandidate(now, settings)
	if task == nil {
		logger.Log.Debug("prompt tick: no candidate task")
		return nil
	}

	prompt := &models.Prompt{
		ID:        uuid.New().String(),
		TaskID:    task.ID,
		SentAt:    now.UTC(),
		ExpiresAt: now.Add(settings.PromptInterval()).UTC(),
	}
	s.current = prompt

	// Stamp the task without touching UpdatedAt, which drives staleness
	task.LastPromptedAt = &prompt.SentAt
	task.PromptCount++
	if err := s.store.PutTask(*task); err != nil {
		logger.ErrorWithFields("failed to stamp prompted task", err)
	}
	s.appendEvent(task.ID, models.EventPromptSent, map[string]string{"prompt_id": prompt.ID})

	metrics.Get().PromptsSentTotal.Inc()
	s.hub.Broadcast(events.New(events.TypePrompt, PromptPayload{Prompt: *prompt, Task: *task}))
	logger.Log.Info("prompt sent",
		logger.WithTaskID(task.ID),
		zap.String("prompt_id", prompt.ID),
		zap.Duration("stale_for", task.StaleSince(now)),
	)

	return prompt
}

// PromptPayload pairs the prompt with its task for the live event stream
type PromptPayload struct {
	Prompt models.Prompt `json:"prompt"`
	Task   models.Task   `json:"task"`
}

// selectCandidate picks the most stale open task that is prompt-worthy:
// untouched for at least StaleAfter and outside the per-task cooldown.
func (s *Service) selectCandidate(now time.Time, settings models.Settings) *models.Task {
	var best *models.Task

	for _, t := range s.store.ListTasks() {
		if !t.IsOpen() {
			continue
		}
		if t.StaleSince(now) < settings.StaleAfter() {
			continue
		}
		if t.LastPromptedAt != nil && now.Sub(*t.LastPromptedAt) < settings.PromptCooldown() {
			continue
		}
		t := t
		if best == nil || t.UpdatedAt.Before(best.UpdatedAt) {
			best = &t
		}
	}
	return best
}

// Current returns the in-flight prompt and its task, or an error when no
// unexpired prompt exists.
func (s *Service) Current() (PromptPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.Expired(s.now()) {
		return PromptPayload{}, errors.NoActivePrompt()
	}
	task, ok := s.store.GetTask(s.current.TaskID)
	if !ok {
		// Task was deleted out from under the prompt
		s.current = nil
		return PromptPayload{}, errors.NoActivePrompt()
	}
	return PromptPayload{Prompt: *s.current, Task: task}, nil
}

// RespondResult is returned from Respond; Celebration is set only for done
type RespondResult struct {
	Action      models.PromptAction `json:"action"`
	Task        *models.Task        `json:"task,omitempty"`
	Celebration *tasks.Celebration  `json:"celebration,omitempty"`
	SnoozedTo   *time.Time          `json:"snoozed_until,omitempty"`
}

// Respond handles a user response to the in-flight prompt
func (s *Service) Respond(action models.PromptAction) (RespondResult, error) {
	if !models.ValidPromptAction(action) {
		return RespondResult{}, errors.ValidationError("action", "action must be done, snooze, or dismiss")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.current == nil || s.current.Expired(now) {
		return RespondResult{}, errors.NoActivePrompt()
	}
	prompt := s.current
	result := RespondResult{Action: action}

	switch action {
	case models.PromptActionDone:
		task, celebration, err := s.tasks.Complete(prompt.TaskID)
		if err != nil {
			if apiErr, ok := err.(*errors.APIError); ok && apiErr.Code == errors.ErrNotFound {
				// Task vanished; clear the prompt and report it gone
				s.current = nil
				return RespondResult{}, errors.NoActivePrompt()
			}
			return RespondResult{}, err
		}
		result.Task = &task
		result.Celebration = celebration
		s.appendEvent(prompt.TaskID, models.EventPromptDone, map[string]string{"prompt_id": prompt.ID})

	case models.PromptActionSnooze:
		s.snoozedUntil = now.Add(s.store.GetSettings().SnoozeDuration())
		until := s.snoozedUntil.UTC()
		result.SnoozedTo = &until
		s.appendEvent(prompt.TaskID, models.EventPromptSnoozed, map[string]string{"prompt_id": prompt.ID})

	case models.PromptActionDismiss:
		s.appendEvent(prompt.TaskID, models.EventPromptDismissed, map[string]string{"prompt_id": prompt.ID})
	}

	s.current = nil
	metrics.Get().PromptResponsesTotal.WithLabelValues(string(action)).Inc()
	s.hub.Broadcast(events.New(events.TypePromptCleared, map[string]string{
		"prompt_id": prompt.ID,
		"action":    string(action),
	}))

	return result, nil
}

// SnoozedUntil reports the end of the active snooze, zero if none
func (s *Service) SnoozedUntil() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snoozedUntil
}

// DigestPayload is the daily summary broadcast
type DigestPayload struct {
	OpenTasks   int `json:"open_tasks"`
	ActiveTasks int `json:"active_tasks"`
	StaleTasks  int `json:"stale_tasks"`
}

// BroadcastDigest emits the daily open/active/stale summary on the hub
func (s *Service) BroadcastDigest() {
	now := s.now()
	settings := s.store.GetSettings()

	var digest DigestPayload
	for _, t := range s.store.ListTasks() {
		if !t.IsOpen() {
			continue
		}
		digest.OpenTasks++
		if t.Status == models.StatusActive {
			digest.ActiveTasks++
		}
		if t.StaleSince(now) >= settings.StaleAfter() {
			digest.StaleTasks++
		}
	}

	s.appendEvent("", models.EventDigestSent, nil)
	metrics.Get().DigestsSentTotal.Inc()
	s.hub.Broadcast(events.New(events.TypeDigest, digest))
	logger.Log.Info("daily digest broadcast",
		zap.Int("open", digest.OpenTasks),
		zap.Int("stale", digest.StaleTasks),
	)
}

func (s *Service) appendEvent(taskID string, eventType models.EventType, meta map[string]string) {
	e := models.TaskEvent{
		ID:     uuid.New().String(),
		TaskID: taskID,
		Type:   eventType,
		At:     s.now().UTC(),
		Meta:   meta,
	}
	if err := s.store.AppendEvent(e); err != nil {
		logger.ErrorWithFields("failed to append prompt event", err)
	}
}
