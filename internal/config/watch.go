package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/openai-cost-tui/internal/logger"
)

const debounceInterval = 100 * time.Millisecond

// Event carries a reloaded config or the error that prevented reloading.
type Event struct {
	Config *Config
	Error  error
}

// Watcher reloads the config file whenever it is written.
type Watcher struct {
	path          string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	mu            sync.Mutex
	closeOnce     sync.Once
}

// Watch starts watching path. The file does not have to exist yet; its
// directory must.
func Watch(path string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory (to catch editors that replace the file)
	dir := filepath.Dir(path)
	if err := ensureDir(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		path:      path,
		watcher:   watcher,
		eventChan: make(chan Event, 10),
		stopChan:  make(chan struct{}),
	}
	go w.watchLoop()
	return w, nil
}

// Events returns the reload channel.
func (w *Watcher) Events() <-chan Event {
	return w.eventChan
}

// watchLoop handles file system events with debouncing.
func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.mu.Lock()
				if w.debounceTimer != nil {
					w.debounceTimer.Stop()
				}
				w.debounceTimer = time.AfterFunc(debounceInterval, w.reload)
				w.mu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.send(Event{Error: err})

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		logger.Warn("config reload failed", "path", w.path, "error", err)
		w.send(Event{Error: err})
		return
	}
	logger.Info("config reloaded", "path", w.path)
	w.send(Event{Config: cfg})
}

func (w *Watcher) send(ev Event) {
	select {
	case <-w.stopChan:
	case w.eventChan <- ev:
	default:
		logger.Warn("config event dropped; receiver is not keeping up")
	}
}

// Close stops the file watcher and cleans up resources.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.stopChan)

		w.mu.Lock()
		if w.debounceTimer != nil {
			w.debounceTimer.Stop()
		}
		w.mu.Unlock()

		err = w.watcher.Close()
	})
	return err
}
