package prompting

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendo-app/backend/internal/errors"
	"github.com/tendo-app/backend/internal/events"
	"github.com/tendo-app/backend/internal/logger"
	"github.com/tendo-app/backend/internal/models"
	"github.com/tendo-app/backend/internal/store"
	"github.com/tendo-app/backend/internal/tasks"
)

func TestMain(m *testing.M) {
	logger.InitializeForTests()
	os.Exit(m.Run())
}

type fixture struct {
	store   *store.Store
	tasks   *tasks.Service
	service *Service
	now     time.Time
}

// newFixture pins the clock to noon so ticks never land in the default
// quiet window by accident.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	hub := events.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	f := &fixture{
		store: st,
		now:   time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local),
	}
	clock := func() time.Time { return f.now }

	f.tasks = tasks.NewService(st, hub)
	f.tasks.SetClock(clock)
	f.service = NewService(st, f.tasks, hub)
	f.service.SetClock(clock)
	t.Cleanup(f.service.Stop)

	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// staleTask creates a task and ages it past the stale threshold
func (f *fixture) staleTask(t *testing.T, title string) models.Task {
	t.Helper()
	task, err := f.tasks.Create(title, "")
	require.NoError(t, err)
	f.advance(f.store.GetSettings().StaleAfter() + time.Hour)
	return task
}

func TestTickPromptsMostStaleTask(t *testing.T) {
	f := newFixture(t)

	older, err := f.tasks.Create("older", "")
	require.NoError(t, err)
	f.advance(2 * time.Hour)
	_, err = f.tasks.Create("newer", "")
	require.NoError(t, err)
	f.advance(f.store.GetSettings().StaleAfter())

	prompt := f.service.Tick()
	require.NotNil(t, prompt)
	assert.Equal(t, older.ID, prompt.TaskID, "most stale task wins")

	// Task is stamped without touching staleness
	stamped, ok := f.store.GetTask(older.ID)
	require.True(t, ok)
	require.NotNil(t, stamped.LastPromptedAt)
	assert.Equal(t, 1, stamped.PromptCount)
	assert.Equal(t, older.UpdatedAt, stamped.UpdatedAt)
}

func TestTickNoCandidateWhenNothingStale(t *testing.T) {
	f := newFixture(t)

	_, err := f.tasks.Create("fresh", "")
	require.NoError(t, err)

	assert.Nil(t, f.service.Tick())
}

func TestTickSkipsDoneTasks(t *testing.T) {
	f := newFixture(t)

	task := f.staleTask(t, "finished")
	_, _, err := f.tasks.Complete(task.ID)
	require.NoError(t, err)
	f.advance(f.store.GetSettings().StaleAfter() + time.Hour)

	assert.Nil(t, f.service.Tick())
}

func TestTickRespectsQuietWindow(t *testing.T) {
	f := newFixture(t)
	f.staleTask(t, "stale")

	// Move to 23:00, inside the default 22:00-07:00 window
	f.now = time.Date(2025, 6, 16, 23, 0, 0, 0, time.Local)
	assert.Nil(t, f.service.Tick())

	// Out of the window it fires
	f.now = time.Date(2025, 6, 17, 9, 0, 0, 0, time.Local)
	assert.NotNil(t, f.service.Tick())
}

func TestTickRespectsSnooze(t *testing.T) {
	f := newFixture(t)
	f.staleTask(t, "stale")

	require.NotNil(t, f.service.Tick())
	_, err := f.service.Respond(models.PromptActionSnooze)
	require.NoError(t, err)

	// Inside the snooze nothing fires, even past the prompt expiry
	f.advance(f.store.GetSettings().SnoozeDuration() / 2)
	assert.Nil(t, f.service.Tick())

	// After the snooze ends the cooldown still guards the same task
	f.advance(f.store.GetSettings().SnoozeDuration())
	assert.Nil(t, f.service.Tick(), "per-task cooldown applies")

	f.advance(f.store.GetSettings().PromptCooldown())
	assert.NotNil(t, f.service.Tick())
}

func TestTickOnePromptInFlight(t *testing.T) {
	f := newFixture(t)
	f.staleTask(t, "one")
	f.staleTask(t, "two")

	first := f.service.Tick()
	require.NotNil(t, first)
	assert.Nil(t, f.service.Tick(), "no second prompt while the first is live")

	// Once the first expires, the next tick may prompt the other task
	f.advance(f.store.GetSettings().PromptInterval() + time.Minute)
	second := f.service.Tick()
	require.NotNil(t, second)
	assert.NotEqual(t, first.TaskID, second.TaskID)
}

func TestCurrentReportsInFlightPrompt(t *testing.T) {
	f := newFixture(t)
	task := f.staleTask(t, "stale")

	_, err := f.service.Current()
	require.Error(t, err)

	require.NotNil(t, f.service.Tick())

	payload, err := f.service.Current()
	require.NoError(t, err)
	assert.Equal(t, task.ID, payload.Task.ID)

	// Expired prompts stop being current
	f.advance(f.store.GetSettings().PromptInterval() + time.Minute)
	_, err = f.service.Current()
	assert.Error(t, err)
}

func TestRespondDoneCompletesTask(t *testing.T) {
	f := newFixture(t)
	task := f.staleTask(t, "overdue")

	require.NotNil(t, f.service.Tick())

	result, err := f.service.Respond(models.PromptActionDone)
	require.NoError(t, err)
	require.NotNil(t, result.Task)
	assert.Equal(t, models.StatusDone, result.Task.Status)
	assert.NotNil(t, result.Celebration)

	got, ok := f.store.GetTask(task.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusDone, got.Status)

	var promptDone int
	for _, e := range f.store.ListEvents() {
		if e.Type == models.EventPromptDone {
			promptDone++
		}
	}
	assert.Equal(t, 1, promptDone)
}

func TestRespondDismiss(t *testing.T) {
	f := newFixture(t)
	f.staleTask(t, "meh")

	require.NotNil(t, f.service.Tick())

	result, err := f.service.Respond(models.PromptActionDismiss)
	require.NoError(t, err)
	assert.Equal(t, models.PromptActionDismiss, result.Action)

	_, err = f.service.Current()
	assert.Error(t, err, "dismiss clears the prompt")
}

func TestRespondWithoutPrompt(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Respond(models.PromptActionDismiss)
	require.Error(t, err)
	apiErr, ok := err.(*errors.APIError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrNoPrompt, apiErr.Code)
}

func TestRespondInvalidAction(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Respond("later")
	require.Error(t, err)
	apiErr, ok := err.(*errors.APIError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrValidation, apiErr.Code)
}

func TestRespondDoneWhenTaskDeleted(t *testing.T) {
	f := newFixture(t)
	task := f.staleTask(t, "vanishing")

	require.NotNil(t, f.service.Tick())
	require.NoError(t, f.tasks.Delete(task.ID))

	_, err := f.service.Respond(models.PromptActionDone)
	require.Error(t, err)
	apiErr, ok := err.(*errors.APIError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrNoPrompt, apiErr.Code)
}

func TestBroadcastDigestCountsAndRecords(t *testing.T) {
	f := newFixture(t)

	f.staleTask(t, "stale one") // open + stale
	fresh, err := f.tasks.Create("fresh", "")
	require.NoError(t, err)
	_, err = f.tasks.Start(fresh.ID, false)
	require.NoError(t, err)

	f.service.BroadcastDigest()

	var digests int
	for _, e := range f.store.ListEvents() {
		if e.Type == models.EventDigestSent {
			digests++
		}
	}
	assert.Equal(t, 1, digests)
}
