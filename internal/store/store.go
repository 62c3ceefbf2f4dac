// Package store implements flat-file JSON persistence for tasks, events, and
// settings. One file per collection, full-snapshot writes, last write wins.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/tendo-app/backend/internal/models"
)

const (
	tasksFile    = "tasks.json"
	eventsFile   = "events.json"
	settingsFile = "settings.json"
)

// Store holds the in-memory state backed by JSON files in a data directory.
// A single RWMutex guards all access; this is a single-process store with no
// cross-process coordination.
type Store struct {
	dir string

	mu       sync.RWMutex
	tasks    map[string]models.Task
	events   []models.TaskEvent
	settings models.Settings

	// lastWrite tracks our own file writes so the fsnotify watcher can tell
	// external edits apart from them.
	writeMu   sync.Mutex
	lastWrite map[string]time.Time

	watcher *watcher
}

// Open loads (or creates) the data directory and reads all collections
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Store{
		dir:       dir,
		tasks:     make(map[string]models.Task),
		settings:  models.DefaultSettings(),
		lastWrite: make(map[string]time.Time),
	}

	if err := s.loadAll(); err != nil {
		return nil, err
	}

	return s, nil
}

// Close stops the file watcher if one is running
func (s *Store) Close() error {
	if s.watcher != nil {
		return s.watcher.stop()
	}
	return nil
}

// Dir returns the data directory path
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) loadAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range []string{tasksFile, eventsFile, settingsFile} {
		if err := s.loadLocked(name); err != nil {
			return err
		}
	}
	return nil
}

// loadLocked reads one collection file into memory. Missing files are fine;
// the collection starts empty.
func (s *Store) loadLocked(name string) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	switch name {
	case tasksFile:
		var tasks []models.Task
		if err := json.Unmarshal(data, &tasks); err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
		s.tasks = make(map[string]models.Task, len(tasks))
		for _, t := range tasks {
			s.tasks[t.ID] = t
		}
	case eventsFile:
		var events []models.TaskEvent
		if err := json.Unmarshal(data, &events); err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
		s.events = events
	case settingsFile:
		var settings models.Settings
		if err := json.Unmarshal(data, &settings); err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
		s.settings = settings
	}
	return nil
}

// persist serializes one collection to a temp file and renames it over the
// original. Rename is atomic on POSIX, so readers never see a torn file.
func (s *Store) persist(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file for %s: %w", name, err)
	}

	s.writeMu.Lock()
	s.lastWrite[name] = time.Now()
	s.writeMu.Unlock()

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

func (s *Store) persistTasksLocked() error {
	tasks := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) })
	return s.persist(tasksFile, tasks)
}

// GetTask returns a task by ID
func (s *Store) GetTask(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	return t, ok
}

// ListTasks returns all tasks, most recently updated first
func (s *Store) ListTasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].UpdatedAt.After(tasks[j].UpdatedAt) })
	return tasks
}

// CountByStatus returns how many tasks are in the given status
func (s *Store) CountByStatus(status models.TaskStatus) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, t := range s.tasks {
		if t.Status == status {
			n++
		}
	}
	return n
}

// PutTask inserts or replaces a task and persists the collection
func (s *Store) PutTask(t models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
	return s.persistTasksLocked()
}

// DeleteTask removes a task and persists the collection. Deleting a missing
// task is a no-op.
func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return nil
	}
	delete(s.tasks, id)
	return s.persistTasksLocked()
}

// AppendEvent appends to the event log and persists it
func (s *Store) AppendEvent(e models.TaskEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.persist(eventsFile, s.events)
}

// ListEvents returns a copy of the event log in append order
func (s *Store) ListEvents() []models.TaskEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TaskEvent, len(s.events))
	copy(out, s.events)
	return out
}

// GetSettings returns the current settings
func (s *Store) GetSettings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// PutSettings replaces the settings and persists them
func (s *Store) PutSettings(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return s.persist(settingsFile, s.settings)
}
