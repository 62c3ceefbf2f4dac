// Package analytics computes statistics on demand from stored task and event
// records. Nothing is precomputed or cached; the dataset is a personal to-do
// list and a full pass is cheap.
package analytics

import (
	"time"

	"github.com/tendo-app/backend/internal/models"
	"github.com/tendo-app/backend/internal/store"
)

// Service derives statistics from the store
type Service struct {
	store *store.Store
	now   func() time.Time
}

// NewService creates an analytics service
func NewService(st *store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// SetClock overrides the service clock, for tests
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Summary is the headline stats block
type Summary struct {
	TotalTasks          int     `json:"total_tasks"`
	OpenTasks           int     `json:"open_tasks"`
	ActiveTasks         int     `json:"active_tasks"`
	DoneTasks           int     `json:"done_tasks"`
	StaleTasks          int     `json:"stale_tasks"`
	CompletionRate      float64 `json:"completion_rate"`
	AvgCompletionHours  float64 `json:"avg_completion_hours"`
	CurrentStreak       int     `json:"current_streak"`
	CompletionsToday    int     `json:"completions_today"`
	CompletionsThisWeek int     `json:"completions_this_week"`
}

// Summary computes the headline stats
func (s *Service) Summary() Summary {
	now := s.now()
	settings := s.store.GetSettings()

	var sum Summary
	var totalCompletionTime time.Duration
	var completedWithTimes int

	for _, t := range s.store.ListTasks() {
		sum.TotalTasks++
		switch t.Status {
		case models.StatusDone:
			sum.DoneTasks++
			if t.CompletedAt != nil {
				totalCompletionTime += t.CompletedAt.Sub(t.CreatedAt)
				completedWithTimes++
			}
		case models.StatusActive:
			sum.ActiveTasks++
			sum.OpenTasks++
		default:
			sum.OpenTasks++
		}
		if t.IsOpen() && t.StaleSince(now) >= settings.StaleAfter() {
			sum.StaleTasks++
		}
	}

	if sum.TotalTasks > 0 {
		sum.CompletionRate = float64(sum.DoneTasks) / float64(sum.TotalTasks)
	}
	if completedWithTimes > 0 {
		sum.AvgCompletionHours = totalCompletionTime.Hours() / float64(completedWithTimes)
	}

	sum.CurrentStreak, sum.CompletionsToday, sum.CompletionsThisWeek = s.completionHistory(now)
	return sum
}

// completionHistory walks the event log once for streak and recency counts
func (s *Service) completionHistory(now time.Time) (streak, today, thisWeek int) {
	days := map[string]bool{}
	todayKey := now.Local().Format("2006-01-02")
	weekAgo := now.AddDate(0, 0, -7)

	for _, e := range s.store.ListEvents() {
		if e.Type != models.EventCompleted {
			continue
		}
		day := e.At.Local().Format("2006-01-02")
		days[day] = true
		if day == todayKey {
			today++
		}
		if e.At.After(weekAgo) {
			thisWeek++
		}
	}

	for d := now.Local(); days[d.Format("2006-01-02")]; d = d.AddDate(0, 0, -1) {
		streak++
	}
	return streak, today, thisWeek
}

// DayStats is one calendar day's activity
type DayStats struct {
	Date      string `json:"date"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}

// Daily returns per-day created/completed counts for the trailing N days,
// oldest first, including days with no activity.
func (s *Service) Daily(days int) []DayStats {
	if days <= 0 {
		days = 14
	}

	now := s.now().Local()
	byDay := make(map[string]*DayStats, days)
	out := make([]DayStats, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		out = append(out, DayStats{Date: date})
		byDay[date] = &out[len(out)-1]
	}

	for _, e := range s.store.ListEvents() {
		day, ok := byDay[e.At.Local().Format("2006-01-02")]
		if !ok {
			continue
		}
		switch e.Type {
		case models.EventCreated:
			day.Created++
		case models.EventCompleted:
			day.Completed++
		}
	}

	return out
}

// PromptStats summarizes how the proactive prompting is landing
type PromptStats struct {
	PromptsSent  int     `json:"prompts_sent"`
	Responded    int     `json:"responded"`
	Done         int     `json:"done"`
	Snoozed      int     `json:"snoozed"`
	Dismissed    int     `json:"dismissed"`
	ResponseRate float64 `json:"response_rate"`
	DoneRate     float64 `json:"done_rate"`
	WIPOverrides int     `json:"wip_overrides"`
}

// Prompts computes prompt response statistics from the event log
func (s *Service) Prompts() PromptStats {
	var stats PromptStats

	for _, e := range s.store.ListEvents() {
		switch e.Type {
		case models.EventPromptSent:
			stats.PromptsSent++
		case models.EventPromptDone:
			stats.Done++
		case models.EventPromptSnoozed:
			stats.Snoozed++
		case models.EventPromptDismissed:
			stats.Dismissed++
		case models.EventWIPOverride:
			stats.WIPOverrides++
		}
	}

	stats.Responded = stats.Done + stats.Snoozed + stats.Dismissed
	if stats.PromptsSent > 0 {
		stats.ResponseRate = float64(stats.Responded) / float64(stats.PromptsSent)
		stats.DoneRate = float64(stats.Done) / float64(stats.PromptsSent)
	}
	return stats
}
