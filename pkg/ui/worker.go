// Package ui implements the terminal interface for the tree grid viewer.
// This file runs the background reload worker that keeps the grid in sync
// with the data file.
package ui

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xiaoyu12139/treegrid/pkg/loader"
	"github.com/xiaoyu12139/treegrid/pkg/model"
	"github.com/xiaoyu12139/treegrid/pkg/watcher"
)

// WorkerState represents the current state of the reload worker.
type WorkerState int

const (
	WorkerIdle WorkerState = iota
	WorkerLoading
	WorkerStopped
)

// WorkerError wraps a reload failure with its phase.
type WorkerError struct {
	Phase string // "watch", "load"
	Cause error
	Time  time.Time
}

func (e WorkerError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Phase, e.Cause)
}

func (e WorkerError) Unwrap() error { return e.Cause }

// RowsReloadedMsg carries freshly loaded rows from the worker goroutine to
// the UI loop.
type RowsReloadedMsg struct {
	Rows []model.Row
	Err  error
}

// ReloadWorker owns the file watcher and reloads the data file off the UI
// goroutine whenever it changes, then hands the rows to the program.
type ReloadWorker struct {
	dataPath string

	mu        sync.RWMutex
	state     WorkerState
	dirty     bool
	started   bool
	lastError *WorkerError

	watcher *watcher.Watcher
	program *tea.Program

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewReloadWorker creates a worker for the given data file. With an empty
// path the worker is inert: Start and Stop are no-ops.
func NewReloadWorker(dataPath string, debounce time.Duration, program *tea.Program) (*ReloadWorker, error) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &ReloadWorker{
		dataPath: dataPath,
		program:  program,
		state:    WorkerIdle,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	if dataPath != "" {
		fw, err := watcher.New(dataPath, watcher.WithDebounce(debounce))
		if err != nil {
			cancel()
			return nil, err
		}
		w.watcher = fw
	}
	return w, nil
}

// Start begins watching for file changes. Idempotent.
func (w *ReloadWorker) Start() error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	w.started = true
	w.mu.Unlock()

	if w.watcher == nil {
		close(w.done)
		return nil
	}
	if err := w.watcher.Start(); err != nil {
		return err
	}
	go w.watchLoop()
	return nil
}

// Stop halts the worker. Idempotent.
func (w *ReloadWorker) Stop() {
	w.mu.Lock()
	if w.state == WorkerStopped {
		w.mu.Unlock()
		return
	}
	w.state = WorkerStopped
	wasStarted := w.started
	w.mu.Unlock()

	w.cancel()
	if w.watcher != nil {
		w.watcher.Stop()
	}
	if wasStarted {
		select {
		case <-w.done:
		case <-time.After(2 * time.Second):
		}
	}
}

// State returns the current worker state.
func (w *ReloadWorker) State() WorkerState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// LastError returns the most recent reload error, nil after a clean reload.
func (w *ReloadWorker) LastError() *WorkerError {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastError
}

func (w *ReloadWorker) watchLoop() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.watcher.Changed():
			w.reload()
		}
	}
}

func (w *ReloadWorker) reload() {
	w.mu.Lock()
	if w.state != WorkerIdle {
		if w.state == WorkerLoading {
			w.dirty = true
		}
		w.mu.Unlock()
		return
	}
	w.state = WorkerLoading
	w.dirty = false
	w.mu.Unlock()

	rows, err := w.safeLoad()

	w.mu.Lock()
	if w.state == WorkerStopped {
		w.mu.Unlock()
		return
	}
	if err != nil {
		w.lastError = &WorkerError{Phase: "load", Cause: err, Time: time.Now()}
	} else {
		w.lastError = nil
	}
	wasDirty := w.dirty
	w.state = WorkerIdle
	w.mu.Unlock()

	if w.program != nil {
		w.program.Send(RowsReloadedMsg{Rows: rows, Err: err})
	}
	if wasDirty {
		go w.reload()
	}
}

// safeLoad runs the loader with panic recovery; a malformed file must never
// take the viewer down.
func (w *ReloadWorker) safeLoad() (rows []model.Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return loader.LoadRows(w.dataPath)
}
