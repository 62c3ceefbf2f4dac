package tasks

import (
	"fmt"
	"time"

	"github.com/tendo-app/backend/internal/models"
)

// Milestone lifetime-completion counts that get a special callout
var milestones = map[int]bool{10: true, 25: true, 50: true, 100: true, 250: true, 500: true, 1000: true}

// Celebration is the payload broadcast when a task is completed
type Celebration struct {
	Streak              int    `json:"streak"`
	CompletionsToday    int    `json:"completions_today"`
	LifetimeCompletions int    `json:"lifetime_completions"`
	Milestone           bool   `json:"milestone"`
	Message             string `json:"message"`
}

// buildCelebration derives streak and milestone data from the event log.
// Called right after the completed event is appended, so the current
// completion is already counted.
func (s *Service) buildCelebration(now time.Time) Celebration {
	var (
		lifetime int
		today    int
		days     = map[string]bool{}
	)

	for _, e := range s.store.ListEvents() {
		if e.Type != models.EventCompleted {
			continue
		}
		lifetime++
		day := e.At.Local().Format("2006-01-02")
		days[day] = true
		if day == now.Local().Format("2006-01-02") {
			today++
		}
	}

	// Streak: consecutive calendar days ending today with >= 1 completion
	streak := 0
	for d := now.Local(); days[d.Format("2006-01-02")]; d = d.AddDate(0, 0, -1) {
		streak++
	}

	c := Celebration{
		Streak:              streak,
		CompletionsToday:    today,
		LifetimeCompletions: lifetime,
		Milestone:           milestones[lifetime],
	}
	c.Message = celebrationMessage(c)
	return c
}

func celebrationMessage(c Celebration) string {
	switch {
	case c.Milestone:
		return fmt.Sprintf("Milestone! That's %d tasks completed all time 🎉", c.LifetimeCompletions)
	case c.Streak >= 7:
		return fmt.Sprintf("%d-day streak, keep it rolling!", c.Streak)
	case c.Streak >= 2:
		return fmt.Sprintf("Nice, %d days in a row!", c.Streak)
	case c.CompletionsToday >= 3:
		return fmt.Sprintf("That's %d done today. On fire!", c.CompletionsToday)
	default:
		return "Done! One less thing on your plate."
	}
}
