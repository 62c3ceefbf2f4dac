// Package seed generates realistic development datasets.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/tendo-app/backend/internal/logger"
	"github.com/tendo-app/backend/internal/models"
	"github.com/tendo-app/backend/internal/store"
	"go.uber.org/zap"
)

// Seeder populates a data directory with fake tasks and history
type Seeder struct {
	store *store.Store
}

// NewSeeder creates a new seeder instance
func NewSeeder(st *store.Store) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{store: st}
}

// SeedDev fills the store with a few weeks of realistic task history:
// a mix of done, active, stale, and fresh tasks plus their events.
func (s *Seeder) SeedDev() error {
	logger.Log.Info("Seeding development data...")

	if err := s.seedTasks(40, 21); err != nil {
		return fmt.Errorf("failed to seed tasks: %w", err)
	}
	if err := s.store.PutSettings(models.DefaultSettings()); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	logger.Log.Info("Seed complete", zap.String("dir", s.store.Dir()))
	return nil
}

// SeedTest creates a minimal dataset for integration testing
func (s *Seeder) SeedTest() error {
	logger.Log.Info("Seeding test data...")
	if err := s.seedTasks(5, 3); err != nil {
		return fmt.Errorf("failed to seed tasks: %w", err)
	}
	return s.store.PutSettings(models.DefaultSettings())
}

// seedTasks creates count tasks with creation times spread over the trailing
// spreadDays, completing roughly 60% of them.
func (s *Seeder) seedTasks(count, spreadDays int) error {
	now := time.Now().UTC()

	for i := 0; i < count; i++ {
		createdAt := now.Add(-time.Duration(rand.Intn(spreadDays*24)) * time.Hour)
		task := models.Task{
			ID:        uuid.New().String(),
			Title:     fakeTaskTitle(),
			Notes:     maybeNotes(),
			Status:    models.StatusTodo,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		}

		s.appendEvent(task.ID, models.EventCreated, createdAt)

		roll := rand.Float64()
		switch {
		case roll < 0.6:
			// Completed some hours-to-days after creation
			startedAt := createdAt.Add(time.Duration(rand.Intn(12)+1) * time.Hour)
			completedAt := startedAt.Add(time.Duration(rand.Intn(48)+1) * time.Hour)
			if completedAt.After(now) {
				completedAt = now
			}
			task.Status = models.StatusDone
			task.StartedAt = &startedAt
			task.CompletedAt = &completedAt
			task.UpdatedAt = completedAt
			s.appendEvent(task.ID, models.EventStarted, startedAt)
			s.appendEvent(task.ID, models.EventCompleted, completedAt)
		case roll < 0.75:
			startedAt := createdAt.Add(time.Duration(rand.Intn(24)+1) * time.Hour)
			if startedAt.After(now) {
				startedAt = now
			}
			task.Status = models.StatusActive
			task.StartedAt = &startedAt
			task.UpdatedAt = startedAt
			s.appendEvent(task.ID, models.EventStarted, startedAt)
		}
		// The rest stay todo; the oldest of them end up stale, which gives
		// the prompting scheduler something to chew on.

		if err := s.store.PutTask(task); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) appendEvent(taskID string, eventType models.EventType, at time.Time) {
	e := models.TaskEvent{
		ID:     uuid.New().String(),
		TaskID: taskID,
		Type:   eventType,
		At:     at,
	}
	if err := s.store.AppendEvent(e); err != nil {
		logger.ErrorWithFields("failed to append seed event", err)
	}
}

var taskVerbs = []string{
	"Email", "Call", "Review", "Draft", "Fix", "Schedule", "Book", "Clean",
	"Organize", "Research", "Update", "Cancel", "Renew", "Plan", "Buy",
}

func fakeTaskTitle() string {
	return fmt.Sprintf("%s %s", taskVerbs[rand.Intn(len(taskVerbs))], gofakeit.ProductName())
}

func maybeNotes() string {
	if rand.Float64() < 0.3 {
		return gofakeit.Sentence(10)
	}
	return ""
}
