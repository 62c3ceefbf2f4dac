package store

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tendo-app/backend/internal/logger"
	"go.uber.org/zap"
)

// selfWriteGrace is how recently we must have written a file for a change
// notification on it to be treated as our own write rather than an external
// edit.
const selfWriteGrace = 2 * time.Second

type watcher struct {
	fs   *fsnotify.Watcher
	done chan struct{}
}

// Watch starts an fsnotify watcher on the data directory so externally
// edited collection files are reloaded without a restart. OnReload, when
// non-nil, runs after each successful reload.
func (s *Store) Watch(onReload func(name string)) error {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fs.Add(s.dir); err != nil {
		fs.Close()
		return err
	}

	w := &watcher{fs: fs, done: make(chan struct{})}
	s.watcher = w

	go s.watchLoop(w, onReload)
	return nil
}

func (w *watcher) stop() error {
	close(w.done)
	return w.fs.Close()
}

func (s *Store) watchLoop(w *watcher, onReload func(name string)) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Base(event.Name)
			if name != tasksFile && name != eventsFile && name != settingsFile {
				continue
			}
			if s.isSelfWrite(name) {
				continue
			}

			logger.Log.Info("data file changed externally, reloading",
				zap.String("file", name),
			)

			s.mu.Lock()
			err := s.loadLocked(name)
			s.mu.Unlock()
			if err != nil {
				logger.ErrorWithFields("failed to reload "+name, err)
				continue
			}
			if onReload != nil {
				onReload(name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.WarnWithFields("file watcher error", err)
		}
	}
}

func (s *Store) isSelfWrite(name string) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	last, ok := s.lastWrite[name]
	return ok && time.Since(last) < selfWriteGrace
}
