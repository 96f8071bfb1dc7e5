// Package watcher reports changes to the board directory so an open board
// can pick up edits made by other processes.
package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceDelay coalesces bursts of events (editors often write a file in
// several steps) into a single callback.
const DebounceDelay = 100 * time.Millisecond

const meaningfulOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

// Watcher calls a function after files under the watched paths change.
type Watcher struct {
	fsw      *fsnotify.Watcher
	callback func()
	filter   func(name string) bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithFilter limits the callback to events whose file name passes keep.
func WithFilter(keep func(name string) bool) Option {
	return func(w *Watcher) { w.filter = keep }
}

// New watches every path. It fails if any path cannot be watched.
func New(paths []string, callback func(), opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	for _, p := range paths {
		if err := fsw.Add(p); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", p, err)
		}
	}
	w := &Watcher{fsw: fsw, callback: callback}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run delivers debounced callbacks until ctx is done or the watcher is
// closed. errFn, when non-nil, receives watcher errors.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&meaningfulOps == 0 {
				continue
			}
			if w.filter != nil && !w.filter(ev.Name) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(DebounceDelay)
			} else {
				timer.Reset(DebounceDelay)
			}
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errFn != nil {
				errFn(err)
			}
		case <-fire:
			fire = nil
			w.callback()
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
