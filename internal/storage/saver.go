package storage

import (
	"log/slog"
	"sync"
	"time"
)

// Writer persists a board and returns it as saved.
type Writer interface {
	Save(b Board) (Board, error)
}

// SaveResult reports one write. RequestedID is the ID the snapshot was
// written under; Board.ID differs from it when the title moved the board.
type SaveResult struct {
	RequestedID string
	Board       Board
	Err         error
}

// DebouncedSaver coalesces board snapshots and writes only the latest one
// once no new snapshot arrived for the debounce interval.
type DebouncedSaver struct {
	repo     Writer
	debounce time.Duration
	onSaved  func(SaveResult)
	logger   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *Board
	closed  bool
	// renamed maps IDs the caller may still use to the ID a save moved
	// the board to.
	renamed map[string]string

	writeMu sync.Mutex
}

// NewDebouncedSaver returns a saver writing through repo. onSaved, when
// non-nil, runs after every write on the writing goroutine, which is the
// caller's goroutine for Flush and Close.
func NewDebouncedSaver(repo Writer, debounce time.Duration, onSaved func(SaveResult), logger *slog.Logger) *DebouncedSaver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if debounce < 0 {
		debounce = 0
	}
	return &DebouncedSaver{
		repo:     repo,
		debounce: debounce,
		onSaved:  onSaved,
		logger:   logger,
		renamed:  make(map[string]string),
	}
}

// Notify schedules b for writing, replacing any snapshot not yet written.
// The caller must not modify b.Cards afterwards.
func (d *DebouncedSaver) Notify(b Board) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.pending = &b
	if d.timer == nil {
		d.timer = time.AfterFunc(d.debounce, d.onTimer)
		return
	}
	d.timer.Reset(d.debounce)
}

// Pending reports whether a snapshot is waiting to be written.
func (d *DebouncedSaver) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Flush writes the pending snapshot now. The zero SaveResult means nothing
// was pending.
func (d *DebouncedSaver) Flush() SaveResult {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	return d.saveNext()
}

// Close flushes and stops accepting snapshots.
func (d *DebouncedSaver) Close() error {
	res := d.Flush()
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return res.Err
}

func (d *DebouncedSaver) onTimer() {
	d.saveNext()
}

// saveNext writes the pending snapshot. Taking and writing happen under
// writeMu so an older snapshot can never land after a newer one.
func (d *DebouncedSaver) saveNext() SaveResult {
	d.writeMu.Lock()
	d.mu.Lock()
	b := d.take()
	d.mu.Unlock()
	if b == nil {
		d.writeMu.Unlock()
		return SaveResult{}
	}

	saved, err := d.repo.Save(*b)
	if err != nil {
		d.logger.Error("saving board", slog.String("board", b.ID), slog.String("error", err.Error()))
	} else if b.ID != "" && saved.ID != b.ID {
		d.mu.Lock()
		d.renamed[b.ID] = saved.ID
		d.mu.Unlock()
	}
	d.writeMu.Unlock()

	res := SaveResult{RequestedID: b.ID, Board: saved, Err: err}
	if d.onSaved != nil {
		d.onSaved(res)
	}
	return res
}

// take returns and clears the pending snapshot. d.mu must be held.
func (d *DebouncedSaver) take() *Board {
	b := d.pending
	d.pending = nil
	if b == nil {
		return nil
	}
	for range len(d.renamed) {
		to, ok := d.renamed[b.ID]
		if !ok {
			break
		}
		b.ID = to
	}
	return b
}
