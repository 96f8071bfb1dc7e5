package layout_test

import (
	"testing"

	"github.com/antopolskiy/kanban-kbd/internal/card"
	"github.com/antopolskiy/kanban-kbd/internal/layout"
)

func TestWhenSettled_RunsImmediatelyWhenSettled(t *testing.T) {
	tr := layout.NewTracker()
	ran := false
	tr.WhenSettled(func() { ran = true })
	if !ran {
		t.Error("callback did not run on a settled tracker")
	}
}

func TestWhenSettled_WaitsForCommit(t *testing.T) {
	tr := layout.NewTracker()
	tr.Commit(map[string]card.Position{"a": {Top: 0, Bottom: 3}})
	tr.Invalidate()

	var seen []card.Position
	tr.WhenSettled(func() {
		p, _ := tr.Position("a")
		seen = append(seen, p)
	})
	if len(seen) != 0 || tr.Pending() != 1 {
		t.Fatalf("callback ran before commit (pending %d)", tr.Pending())
	}

	fresh := card.Position{Top: 10, Bottom: 13}
	tr.Commit(map[string]card.Position{"a": fresh})

	if len(seen) != 1 || seen[0] != fresh {
		t.Errorf("callback saw %v, want fresh position", seen)
	}
	if tr.Pending() != 0 || !tr.Settled() {
		t.Error("tracker not drained")
	}
}

func TestCommit_CallbackThatInvalidatesWaitsForNextCommit(t *testing.T) {
	tr := layout.NewTracker()
	tr.Invalidate()
	second := false
	tr.WhenSettled(func() {
		tr.Invalidate()
		tr.WhenSettled(func() { second = true })
	})

	tr.Commit(nil)
	if second {
		t.Fatal("chained callback ran before its own commit")
	}
	tr.Commit(nil)
	if !second {
		t.Error("chained callback never ran")
	}
}

func TestPruneAndReset(t *testing.T) {
	tr := layout.NewTracker()
	tr.Commit(map[string]card.Position{"a": {}, "b": {}})
	tr.Prune(func(id string) bool { return id == "a" })

	if _, ok := tr.Position("b"); ok {
		t.Error("b not pruned")
	}
	if len(tr.Positions()) != 1 {
		t.Errorf("positions = %v", tr.Positions())
	}

	tr.Invalidate()
	tr.WhenSettled(func() { t.Error("dropped callback ran") })
	tr.Reset()
	tr.Commit(nil)
	if len(tr.Positions()) != 0 {
		t.Error("reset kept positions")
	}
}
