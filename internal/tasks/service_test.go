package tasks

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendo-app/backend/internal/errors"
	"github.com/tendo-app/backend/internal/events"
	"github.com/tendo-app/backend/internal/logger"
	"github.com/tendo-app/backend/internal/models"
	"github.com/tendo-app/backend/internal/store"
)

func TestMain(m *testing.M) {
	logger.InitializeForTests()
	os.Exit(m.Run())
}

type fixture struct {
	store   *store.Store
	hub     *events.Hub
	service *Service
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	hub := events.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	f := &fixture{
		store:   st,
		hub:     hub,
		service: NewService(st, hub),
		now:     time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
	f.service.SetClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func TestCreateTask(t *testing.T) {
	f := newFixture(t)

	task, err := f.service.Create("  Buy milk  ", "semi-skimmed")
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Buy milk", task.Title, "title is trimmed")
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Equal(t, "semi-skimmed", task.Notes)

	events := f.store.ListEvents()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventCreated, events[0].Type)
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create("   ", "")
	require.Error(t, err)
	apiErr, ok := err.(*errors.APIError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrValidation, apiErr.Code)

	_, err = f.service.Create(strings.Repeat("x", MaxTitleLength+1), "")
	assert.Error(t, err)
}

func TestCreateTaskTitleLengthCountsRunes(t *testing.T) {
	f := newFixture(t)

	// 500 multi-byte runes is well over 500 bytes but still a legal title
	task, err := f.service.Create(strings.Repeat("é", MaxTitleLength), "")
	require.NoError(t, err)
	assert.Equal(t, MaxTitleLength, len([]rune(task.Title)))

	_, err = f.service.Create(strings.Repeat("é", MaxTitleLength+1), "")
	assert.Error(t, err)
}

func TestStartEnforcesWIPLimit(t *testing.T) {
	f := newFixture(t)

	settings := f.store.GetSettings()
	settings.WIPLimit = 2
	require.NoError(t, f.store.PutSettings(settings))

	var ids []string
	for _, title := range []string{"one", "two", "three"} {
		task, err := f.service.Create(title, "")
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}

	_, err := f.service.Start(ids[0], false)
	require.NoError(t, err)
	_, err = f.service.Start(ids[1], false)
	require.NoError(t, err)

	// Third start hits the limit
	_, err = f.service.Start(ids[2], false)
	require.Error(t, err)
	apiErr, ok := err.(*errors.APIError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrWIPLimit, apiErr.Code)

	// Override proceeds and records the event
	_, err = f.service.Start(ids[2], true)
	require.NoError(t, err)

	var overrides int
	for _, e := range f.store.ListEvents() {
		if e.Type == models.EventWIPOverride {
			overrides++
		}
	}
	assert.Equal(t, 1, overrides)
}

func TestStartIsIdempotentForActiveTask(t *testing.T) {
	f := newFixture(t)

	task, err := f.service.Create("one", "")
	require.NoError(t, err)

	started, err := f.service.Start(task.ID, false)
	require.NoError(t, err)
	again, err := f.service.Start(task.ID, false)
	require.NoError(t, err)
	assert.Equal(t, started.StartedAt, again.StartedAt)
}

func TestCompleteAndCelebration(t *testing.T) {
	f := newFixture(t)

	task, err := f.service.Create("finish report", "")
	require.NoError(t, err)

	f.advance(2 * time.Hour)
	done, celebration, err := f.service.Complete(task.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusDone, done.Status)
	require.NotNil(t, done.CompletedAt)
	require.NotNil(t, celebration)
	assert.Equal(t, 1, celebration.LifetimeCompletions)
	assert.Equal(t, 1, celebration.CompletionsToday)
	assert.Equal(t, 1, celebration.Streak)
	assert.NotEmpty(t, celebration.Message)

	// Completing twice conflicts
	_, _, err = f.service.Complete(task.ID)
	require.Error(t, err)
	apiErr, ok := err.(*errors.APIError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrConflict, apiErr.Code)
}

func TestCelebrationStreakAcrossDays(t *testing.T) {
	f := newFixture(t)

	// Complete one task per day for three days
	var last *Celebration
	for day := 0; day < 3; day++ {
		task, err := f.service.Create("daily", "")
		require.NoError(t, err)
		_, c, err := f.service.Complete(task.ID)
		require.NoError(t, err)
		last = c
		f.advance(24 * time.Hour)
	}
	f.advance(-24 * time.Hour) // back to the last completion day

	require.NotNil(t, last)
	assert.Equal(t, 3, last.Streak)
	assert.Equal(t, 3, last.LifetimeCompletions)
}

func TestCelebrationDisabled(t *testing.T) {
	f := newFixture(t)

	settings := f.store.GetSettings()
	settings.CelebrationsEnabled = false
	require.NoError(t, f.store.PutSettings(settings))

	task, err := f.service.Create("quiet finish", "")
	require.NoError(t, err)

	_, celebration, err := f.service.Complete(task.ID)
	require.NoError(t, err)
	assert.Nil(t, celebration)
}

func TestReopen(t *testing.T) {
	f := newFixture(t)

	task, err := f.service.Create("again", "")
	require.NoError(t, err)

	// Only done tasks reopen
	_, err = f.service.Reopen(task.ID)
	assert.Error(t, err)

	_, _, err = f.service.Complete(task.ID)
	require.NoError(t, err)

	reopened, err := f.service.Reopen(task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusTodo, reopened.Status)
	assert.Nil(t, reopened.CompletedAt)
}

func TestDeleteKeepsEvents(t *testing.T) {
	f := newFixture(t)

	task, err := f.service.Create("ephemeral", "")
	require.NoError(t, err)
	require.NoError(t, f.service.Delete(task.ID))

	_, err = f.service.Get(task.ID)
	assert.Error(t, err)

	types := map[models.EventType]int{}
	for _, e := range f.store.ListEvents() {
		types[e.Type]++
	}
	assert.Equal(t, 1, types[models.EventCreated])
	assert.Equal(t, 1, types[models.EventDeleted])
}

func TestListFiltersByStatus(t *testing.T) {
	f := newFixture(t)

	a, err := f.service.Create("a", "")
	require.NoError(t, err)
	_, err = f.service.Create("b", "")
	require.NoError(t, err)
	_, err = f.service.Start(a.ID, false)
	require.NoError(t, err)

	active, err := f.service.List(models.StatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a.ID, active[0].ID)

	all, err := f.service.List("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.service.List("bogus")
	assert.Error(t, err)
}

func TestUpdatePatch(t *testing.T) {
	f := newFixture(t)

	task, err := f.service.Create("old title", "old notes")
	require.NoError(t, err)

	newTitle := "new title"
	updated, err := f.service.Update(task.ID, UpdatePatch{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, "old notes", updated.Notes, "unpatched fields keep their values")

	empty := "  "
	_, err = f.service.Update(task.ID, UpdatePatch{Title: &empty})
	assert.Error(t, err)
}
