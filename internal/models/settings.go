package models

import "time"

// Settings holds the user-tunable nudge configuration. Durations are stored
// as whole minutes so the settings file stays hand-editable.
type Settings struct {
	WIPLimit            int  `json:"wip_limit"`
	PromptIntervalMin   int  `json:"prompt_interval_min"`
	PromptCooldownMin   int  `json:"prompt_cooldown_min"`
	StaleAfterMin       int  `json:"stale_after_min"`
	SnoozeMin           int  `json:"snooze_min"`
	QuietStartMin       int  `json:"quiet_start_min"`
	QuietEndMin         int  `json:"quiet_end_min"`
	CelebrationsEnabled bool `json:"celebrations_enabled"`
}

// DefaultSettings returns the out-of-the-box nudge configuration:
// WIP limit 3, prompt every 30m with a 4h per-task cooldown, tasks stale
// after 24h, 1h snooze, quiet from 22:00 to 07:00.
func DefaultSettings() Settings {
	return Settings{
		WIPLimit:            3,
		PromptIntervalMin:   30,
		PromptCooldownMin:   240,
		StaleAfterMin:       1440,
		SnoozeMin:           60,
		QuietStartMin:       22 * 60,
		QuietEndMin:         7 * 60,
		CelebrationsEnabled: true,
	}
}

// PromptInterval returns the scheduler tick interval
func (s Settings) PromptInterval() time.Duration {
	return time.Duration(s.PromptIntervalMin) * time.Minute
}

// PromptCooldown returns the minimum gap between prompts for one task
func (s Settings) PromptCooldown() time.Duration {
	return time.Duration(s.PromptCooldownMin) * time.Minute
}

// StaleAfter returns how long a task must go untouched to be prompt-worthy
func (s Settings) StaleAfter() time.Duration {
	return time.Duration(s.StaleAfterMin) * time.Minute
}

// SnoozeDuration returns how long a snooze silences prompting
func (s Settings) SnoozeDuration() time.Duration {
	return time.Duration(s.SnoozeMin) * time.Minute
}

// InQuietWindow reports whether t falls inside the quiet window. The window
// is minutes-of-day in local time and may wrap midnight (22:00-07:00).
func (s Settings) InQuietWindow(t time.Time) bool {
	if s.QuietStartMin == s.QuietEndMin {
		return false // zero-width window means quiet hours are off
	}
	m := t.Hour()*60 + t.Minute()
	if s.QuietStartMin < s.QuietEndMin {
		return m >= s.QuietStartMin && m < s.QuietEndMin
	}
	return m >= s.QuietStartMin || m < s.QuietEndMin
}
