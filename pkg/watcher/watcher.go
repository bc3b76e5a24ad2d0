// Package watcher watches the grid's data file and coalesces rapid change
// bursts into single reload notifications.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last write before
// notifying. Editors and exporters often touch a file several times in quick
// succession.
const DefaultDebounce = 200 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher watches a single file for writes. The directory is watched rather
// than the file itself because many editors replace the file on save, which
// would orphan a direct watch.
type Watcher struct {
	path     string
	debounce time.Duration

	fw      *fsnotify.Watcher
	changed chan struct{}
	done    chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
}

// New creates a watcher for path. Call Start to begin watching.
func New(path string, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		path:     filepath.Clean(path),
		debounce: DefaultDebounce,
		fw:       fw,
		changed:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Changed returns the notification channel. At most one notification is
// buffered; a reload consumer that is busy will still see the latest change.
func (w *Watcher) Changed() <-chan struct{} { return w.changed }

// Start begins watching. Idempotent.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	if err := w.fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.started = true
	go w.loop()
	return nil
}

// Stop shuts the watcher down. Idempotent.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	wasStarted := w.started
	w.mu.Unlock()

	w.fw.Close()
	if wasStarted {
		<-w.done
	}
}

func (w *Watcher) loop() {
	defer close(w.done)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			// Replace any pending debounce timer.
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			select {
			case w.changed <- struct{}{}:
			default:
				// Notification already pending.
			}

		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			// Watch errors are transient; keep going.
		}
	}
}
