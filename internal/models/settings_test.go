package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 15, hour, minute, 0, 0, time.Local)
}

func TestInQuietWindowWrapsMidnight(t *testing.T) {
	s := DefaultSettings() // 22:00 - 07:00

	assert.True(t, s.InQuietWindow(at(23, 0)))
	assert.True(t, s.InQuietWindow(at(2, 30)))
	assert.True(t, s.InQuietWindow(at(6, 59)))
	assert.False(t, s.InQuietWindow(at(7, 0)))
	assert.False(t, s.InQuietWindow(at(12, 0)))
	assert.False(t, s.InQuietWindow(at(21, 59)))
	assert.True(t, s.InQuietWindow(at(22, 0)))
}

func TestInQuietWindowSameDay(t *testing.T) {
	s := DefaultSettings()
	s.QuietStartMin = 13 * 60 // 13:00
	s.QuietEndMin = 14 * 60   // 14:00

	assert.True(t, s.InQuietWindow(at(13, 30)))
	assert.False(t, s.InQuietWindow(at(12, 59)))
	assert.False(t, s.InQuietWindow(at(14, 0)))
}

func TestInQuietWindowZeroWidthIsOff(t *testing.T) {
	s := DefaultSettings()
	s.QuietStartMin = 600
	s.QuietEndMin = 600

	assert.False(t, s.InQuietWindow(at(10, 0)))
	assert.False(t, s.InQuietWindow(at(0, 0)))
}

func TestSettingsDurations(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 30*time.Minute, s.PromptInterval())
	assert.Equal(t, 4*time.Hour, s.PromptCooldown())
	assert.Equal(t, 24*time.Hour, s.StaleAfter())
	assert.Equal(t, time.Hour, s.SnoozeDuration())
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusTodo))
	assert.True(t, ValidStatus(StatusActive))
	assert.True(t, ValidStatus(StatusDone))
	assert.False(t, ValidStatus("archived"))
}
