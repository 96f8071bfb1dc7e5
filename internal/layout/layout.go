// Package layout stores rendered card positions and tells waiters when a
// render pass has committed fresh ones.
package layout

import (
	"maps"

	"github.com/antopolskiy/kanban-kbd/internal/card"
)

// Tracker holds the positions reported by the renderer. It is owned by the
// UI goroutine.
type Tracker struct {
	positions map[string]card.Position
	settled   bool
	pending   []func()
}

// NewTracker returns an empty, settled tracker.
func NewTracker() *Tracker {
	return &Tracker{positions: make(map[string]card.Position), settled: true}
}

// Position returns the recorded position of id.
func (t *Tracker) Position(id string) (card.Position, bool) {
	p, ok := t.positions[id]
	return p, ok
}

// Positions returns a copy of every recorded position.
func (t *Tracker) Positions() map[string]card.Position {
	return maps.Clone(t.positions)
}

// Settled reports whether the last invalidation has been followed by a
// commit.
func (t *Tracker) Settled() bool {
	return t.settled
}

// Invalidate marks the positions stale. Call it whenever the visible card
// set changes.
func (t *Tracker) Invalidate() {
	t.settled = false
}

// Commit replaces all positions with a complete render pass, settles the
// layout and runs the callbacks queued by WhenSettled in order.
func (t *Tracker) Commit(positions map[string]card.Position) {
	t.positions = maps.Clone(positions)
	if t.positions == nil {
		t.positions = make(map[string]card.Position)
	}
	t.settled = true
	for len(t.pending) > 0 && t.settled {
		queued := t.pending
		t.pending = nil
		for _, fn := range queued {
			fn()
		}
	}
}

// WhenSettled runs fn now if the layout is settled, otherwise after the
// next Commit.
func (t *Tracker) WhenSettled(fn func()) {
	if t.settled {
		fn()
		return
	}
	t.pending = append(t.pending, fn)
}

// Pending returns the number of queued callbacks.
func (t *Tracker) Pending() int {
	return len(t.pending)
}

// Prune drops positions for which keep returns false.
func (t *Tracker) Prune(keep func(id string) bool) {
	maps.DeleteFunc(t.positions, func(id string, _ card.Position) bool {
		return !keep(id)
	})
}

// Reset forgets all positions and drops queued callbacks.
func (t *Tracker) Reset() {
	t.positions = make(map[string]card.Position)
	t.pending = nil
	t.settled = true
}
