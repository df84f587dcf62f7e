package dev

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change describes a change to a watched file.
type Change struct {
	Path string
	Op   fsnotify.Op
}

// Removed reports whether the file is gone (deleted or renamed away).
func (c Change) Removed() bool {
	return c.Op.Has(fsnotify.Remove) || c.Op.Has(fsnotify.Rename)
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Files are the files to watch.
	Files []string

	// Debounce is the quiet period after the last event before the
	// change is reported.
	Debounce time.Duration
}

// Watcher reports changes to a set of files. Editors often replace files
// instead of writing them in place, so the parent directories are watched
// and events are filtered by name.
type Watcher struct {
	config   WatcherConfig
	files    map[string]bool
	onChange func(Change)
	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Debounce == 0 {
		config.Debounce = 100 * time.Millisecond
	}

	files := make(map[string]bool, len(config.Files))
	for _, f := range config.Files {
		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}
		files[filepath.Clean(f)] = true
	}

	return &Watcher{
		config: config,
		files:  files,
	}
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// IsRunning reports whether Start is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Start watches until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	defer fw.Close()

	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			w.mu.Unlock()
			return err
		}
	}

	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	var (
		pending Change
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.files[filepath.Clean(event.Name)] || event.Op == fsnotify.Chmod {
				continue
			}
			pending = Change{Path: event.Name, Op: pending.Op | event.Op}
			if timer == nil {
				timer = time.NewTimer(w.config.Debounce)
			} else {
				timer.Reset(w.config.Debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			change := pending
			pending = Change{}

			w.mu.Lock()
			callback := w.onChange
			w.mu.Unlock()
			if callback != nil {
				callback(change)
			}
		case _, ok := <-fw.Errors:
			if !ok {
				return nil
			}
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}
