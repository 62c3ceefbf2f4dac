package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendo-app/backend/internal/logger"
	"github.com/tendo-app/backend/internal/models"
)

func TestMain(m *testing.M) {
	logger.InitializeForTests()
	os.Exit(m.Run())
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTask(id, title string) models.Task {
	now := time.Now().UTC()
	return models.Task{
		ID:        id,
		Title:     title,
		Status:    models.StatusTodo,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOpenCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPutGetDeleteTask(t *testing.T) {
	s := newTestStore(t)

	task := sampleTask("t1", "write tests")
	require.NoError(t, s.PutTask(task))

	got, ok := s.GetTask("t1")
	require.True(t, ok)
	assert.Equal(t, "write tests", got.Title)

	require.NoError(t, s.DeleteTask("t1"))
	_, ok = s.GetTask("t1")
	assert.False(t, ok)

	// Deleting a missing task is a no-op
	require.NoError(t, s.DeleteTask("t1"))
}

func TestTasksSurviveReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.PutTask(sampleTask("t1", "persisted")))
	require.NoError(t, s.AppendEvent(models.TaskEvent{ID: "e1", TaskID: "t1", Type: models.EventCreated, At: time.Now().UTC()}))
	require.NoError(t, s.Close())

	s2, err := Open(dir)
	require.NoError(t, err)
	defer s2.Close()

	got, ok := s2.GetTask("t1")
	require.True(t, ok)
	assert.Equal(t, "persisted", got.Title)

	events := s2.ListEvents()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventCreated, events[0].Type)
}

func TestListTasksOrdering(t *testing.T) {
	s := newTestStore(t)

	older := sampleTask("t1", "older")
	older.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	newer := sampleTask("t2", "newer")

	require.NoError(t, s.PutTask(older))
	require.NoError(t, s.PutTask(newer))

	list := s.ListTasks()
	require.Len(t, list, 2)
	assert.Equal(t, "t2", list[0].ID, "most recently updated first")
}

func TestCountByStatus(t *testing.T) {
	s := newTestStore(t)

	a := sampleTask("t1", "a")
	a.Status = models.StatusActive
	b := sampleTask("t2", "b")
	require.NoError(t, s.PutTask(a))
	require.NoError(t, s.PutTask(b))

	assert.Equal(t, 1, s.CountByStatus(models.StatusActive))
	assert.Equal(t, 1, s.CountByStatus(models.StatusTodo))
	assert.Equal(t, 0, s.CountByStatus(models.StatusDone))
}

func TestSettingsDefaultsAndRoundTrip(t *testing.T) {
	s := newTestStore(t)

	settings := s.GetSettings()
	assert.Equal(t, 3, settings.WIPLimit, "defaults apply when no settings file exists")

	settings.WIPLimit = 5
	require.NoError(t, s.PutSettings(settings))
	assert.Equal(t, 5, s.GetSettings().WIPLimit)
}

func TestTasksFileIsValidJSON(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.PutTask(sampleTask("t1", "on disk")))

	data, err := os.ReadFile(filepath.Join(s.Dir(), "tasks.json"))
	require.NoError(t, err)

	var tasks []models.Task
	require.NoError(t, json.Unmarshal(data, &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "t1", tasks[0].ID)
}

func TestCorruptFileFailsOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.json"), []byte("{not json"), 0o644))

	_, err := Open(dir)
	assert.Error(t, err)
}

func TestWatchReloadsExternalEdit(t *testing.T) {
	s := newTestStore(t)

	reloaded := make(chan string, 1)
	require.NoError(t, s.Watch(func(name string) {
		select {
		case reloaded <- name:
		default:
		}
	}))

	// Simulate a hand edit: write tasks.json directly, bypassing the store
	external := []models.Task{sampleTask("ext1", "edited by hand")}
	data, err := json.Marshal(external)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "tasks.json"), data, 0o644))

	select {
	case name := <-reloaded:
		assert.Equal(t, "tasks.json", name)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	_, ok := s.GetTask("ext1")
	assert.True(t, ok)
}
