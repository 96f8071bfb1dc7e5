package board_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/antopolskiy/kanban-kbd/internal/board"
	"github.com/antopolskiy/kanban-kbd/internal/card"
	"github.com/antopolskiy/kanban-kbd/internal/event"
	"github.com/antopolskiy/kanban-kbd/internal/layout"
)

type fixture struct {
	bus       *event.Bus
	layout    *layout.Tracker
	store     *board.Store
	changes   int
	tags      [][]string
	completed []string
	edits     []string
}

func newFixture(t *testing.T, cards ...card.Card) *fixture {
	t.Helper()
	f := &fixture{bus: event.NewBus(), layout: layout.NewTracker()}
	n := 0
	f.store = board.New(f.bus, f.layout, nil, board.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("new%d", n)
	}))
	f.bus.BoardChanged.Subscribe(func(struct{}) { f.changes++ })
	f.bus.TagsUpdated.Subscribe(func(tags []string) { f.tags = append(f.tags, tags) })
	f.bus.CardCompleted.Subscribe(func(title string) { f.completed = append(f.completed, title) })
	f.bus.EditCard.Subscribe(func(id string) { f.edits = append(f.edits, id) })
	f.store.Initialize("Test", cards, "")
	return f
}

func c(id, column, content string) card.Card {
	return card.Card{ID: id, ColumnID: column, Content: content}
}

func ids(cards []card.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func assertIDs(t *testing.T, label string, got, want []string) {
	t.Helper()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("%s = %v, want %v", label, got, want)
	}
}

func TestInitialize_FocusAndFilters(t *testing.T) {
	f := newFixture(t,
		c("x", card.ColumnDelete, "gone"),
		c("d", card.ColumnDoing, "doing #b"),
		c("t", card.ColumnTodo, "todo #a"),
	)
	if got := f.store.FocusedCardID(); got != "t" {
		t.Errorf("focus = %q, want t (leftmost non-sink column)", got)
	}
	assertIDs(t, "tags", f.store.AllTags(), []string{"#a", "#b"})
	if len(f.tags) == 0 {
		t.Error("tags updated not published")
	}
	if f.changes != 0 {
		t.Errorf("initialize published %d board changes", f.changes)
	}

	f.bus.FilterTags.Publish([]string{"#a"})
	f.store.Initialize("Other", f.store.Cards(), "d")
	if f.store.FocusedCardID() != "d" {
		t.Errorf("saved focus not restored: %q", f.store.FocusedCardID())
	}
	if len(f.store.TagFilter()) != 0 || len(f.store.VisibleCards()) != 3 {
		t.Error("initialize did not reset filters")
	}
}

func TestFilterReset_Republishes(t *testing.T) {
	f := newFixture(t, c("a", card.ColumnTodo, "#x"))
	var tags [][]string
	var searches []string
	f.bus.FilterTags.Subscribe(func(v []string) { tags = append(tags, v) })
	f.bus.FilterSearch.Subscribe(func(v string) { searches = append(searches, v) })

	f.bus.FilterTags.Publish([]string{"#y"})
	f.bus.FilterSearch.Publish("zzz")
	if len(f.store.VisibleCards()) != 0 {
		t.Fatal("filters not applied")
	}

	f.bus.FilterReset.Publish(struct{}{})
	if len(f.store.VisibleCards()) != 1 {
		t.Error("reset did not restore visibility")
	}
	if len(tags) != 2 || len(tags[1]) != 0 || searches[len(searches)-1] != "" {
		t.Errorf("reset did not republish empty filters: %v %q", tags, searches)
	}
}

func TestVisibleCards_TagAndSearch(t *testing.T) {
	f := newFixture(t,
		c("1", card.ColumnTodo, "Fix login #bug #urgent"),
		c("2", card.ColumnTodo, "Fix signup #bug"),
		c("3", card.ColumnIdea, "Login audit #urgent"),
	)
	f.bus.FilterTags.Publish([]string{"#urgent"})
	f.bus.FilterSearch.Publish("LOGIN")
	assertIDs(t, "visible", ids(f.store.VisibleCards()), []string{"1", "3"})
	assertIDs(t, "todo", ids(f.store.ColumnCards(card.ColumnTodo)), []string{"1"})
}

func TestAddCard(t *testing.T) {
	f := newFixture(t, c("a", card.ColumnTodo, "A"), c("b", card.ColumnTodo, "B #bug"))
	f.bus.FilterTags.Publish([]string{"#bug"})

	id := f.store.AddCard(card.ColumnTodo, 1)

	assertIDs(t, "order", ids(f.store.Cards()), []string{"a", id, "b"})
	added, _ := f.store.Card(id)
	if added.Content != "\n#bug" || !added.IsNew {
		t.Errorf("new card = %+v", added)
	}
	if f.store.FocusedCardID() != id || !f.store.IsVisible(id) {
		t.Error("new card not focused and visible")
	}
	assertIDs(t, "edits", f.edits, []string{id})

	f.store.UpdateCard(id, "no tags here")
	if f.store.IsVisible(id) {
		t.Error("edited card still forced visible")
	}
	if updated, _ := f.store.Card(id); updated.IsNew {
		t.Error("IsNew not cleared")
	}
}

func TestAddCard_DefaultContentAndAppend(t *testing.T) {
	f := newFixture(t, c("a", card.ColumnTodo, "A"))
	id := f.store.AddCard(card.ColumnIdea, -1)
	added, _ := f.store.Card(id)
	if added.Content != board.NewCardContent {
		t.Errorf("content = %q", added.Content)
	}
	assertIDs(t, "order", ids(f.store.Cards()), []string{"a", id})
}

func TestMoveCard(t *testing.T) {
	tests := []struct {
		name     string
		id, col  string
		before   string
		want     []string
		wantMove bool
	}{
		{"before anchor", "t3", card.ColumnTodo, "t1", []string{"i1", "t3", "t1", "t2", "d1"}, true},
		{"append to column", "t1", card.ColumnDoing, "", []string{"i1", "t2", "t3", "d1", "t1"}, true},
		{"already last", "t3", card.ColumnTodo, "", []string{"i1", "t1", "t2", "t3", "d1"}, false},
		{"already before anchor", "t1", card.ColumnTodo, "t2", []string{"i1", "t1", "t2", "t3", "d1"}, false},
		{"empty column goes to front", "t2", card.ColumnDone, "", []string{"t2", "i1", "t1", "t3", "d1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t,
				c("i1", card.ColumnIdea, ""),
				c("t1", card.ColumnTodo, ""),
				c("t2", card.ColumnTodo, ""),
				c("t3", card.ColumnTodo, ""),
				c("d1", card.ColumnDoing, ""),
			)
			if got := f.store.WouldMoveCard(tt.id, tt.col, tt.before); got != tt.wantMove {
				t.Errorf("WouldMoveCard = %v, want %v", got, tt.wantMove)
			}
			f.store.MoveCard(tt.id, tt.col, tt.before)
			assertIDs(t, "order", ids(f.store.Cards()), tt.want)
			moved, _ := f.store.Card(tt.id)
			if moved.ColumnID != tt.col {
				t.Errorf("column = %q, want %q", moved.ColumnID, tt.col)
			}
			if !tt.wantMove && f.changes != 0 {
				t.Error("no-op move published a change")
			}
		})
	}
}

func TestMoveCardToIndex(t *testing.T) {
	f := newFixture(t, c("a", card.ColumnTodo, ""), c("b", card.ColumnTodo, ""), c("c", card.ColumnTodo, ""))
	f.store.MoveCardToIndex("c", 0)
	assertIDs(t, "to front", ids(f.store.Cards()), []string{"c", "a", "b"})
	f.store.MoveCardToIndex("c", 99)
	assertIDs(t, "clamped", ids(f.store.Cards()), []string{"a", "b", "c"})

	before := f.changes
	f.store.MoveCardToIndex("c", 2)
	if f.changes != before {
		t.Error("same-index move published a change")
	}
}

func TestCompleteCard_FocusesNextSibling(t *testing.T) {
	f := newFixture(t,
		c("t1", card.ColumnTodo, ""),
		c("t2", card.ColumnTodo, ""),
		c("d1", card.ColumnDoing, ""),
	)
	f.store.FocusCard("t1")
	f.store.CompleteCard("t1")

	if f.store.FocusedCardID() != "t2" {
		t.Errorf("focus = %q, want t2", f.store.FocusedCardID())
	}
	assertIDs(t, "doing", ids(f.store.ColumnCards(card.ColumnDoing)), []string{"d1", "t1"})
	assertIDs(t, "completed", f.completed, []string{"doing"})
}

func TestCompleteCard_FocusRules(t *testing.T) {
	tests := []struct {
		name  string
		cards []card.Card
		id    string
		want  string
	}{
		{
			name:  "last sibling falls back to previous",
			cards: []card.Card{c("t1", card.ColumnTodo, ""), c("t2", card.ColumnTodo, "")},
			id:    "t2", want: "t1",
		},
		{
			name:  "middle sibling picks next",
			cards: []card.Card{c("t1", card.ColumnTodo, ""), c("t2", card.ColumnTodo, ""), c("t3", card.ColumnTodo, "")},
			id:    "t2", want: "t3",
		},
		{
			name:  "nearest column to the left",
			cards: []card.Card{c("i1", card.ColumnIdea, ""), c("d1", card.ColumnDoing, ""), c("n1", card.ColumnDone, "")},
			id:    "d1", want: "i1",
		},
		{
			name:  "empty destination keeps the moved card",
			cards: []card.Card{c("t1", card.ColumnTodo, ""), c("n1", card.ColumnDone, "")},
			id:    "t1", want: "t1",
		},
		{
			name:  "first non-empty column to the right",
			cards: []card.Card{c("i1", card.ColumnIdea, ""), c("t1", card.ColumnTodo, "")},
			id:    "i1", want: "t1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.cards...)
			f.store.FocusCard(tt.id)
			f.store.CompleteCard(tt.id)
			if got := f.store.FocusedCardID(); got != tt.want {
				t.Errorf("focus = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompleteCard_DoneStays(t *testing.T) {
	f := newFixture(t, c("n1", card.ColumnDone, ""))
	f.store.CompleteCard("n1")
	got, _ := f.store.Card("n1")
	if got.ColumnID != card.ColumnDone || len(f.completed) != 0 {
		t.Errorf("done card moved to %q", got.ColumnID)
	}
}

func TestDeleteCard(t *testing.T) {
	f := newFixture(t, c("a", card.ColumnTodo, "#x"), c("b", card.ColumnTodo, ""))
	f.store.FocusCard("a")
	f.store.ToggleCardSelection("a", false)
	f.layout.Commit(map[string]card.Position{"a": {Top: 1, Bottom: 2}})

	f.store.DeleteCard("a")

	if f.store.FocusedCardID() != "b" {
		t.Errorf("focus = %q, want b", f.store.FocusedCardID())
	}
	if len(f.store.SelectedCardIDs()) != 0 {
		t.Error("deleted card still selected")
	}
	if _, ok := f.layout.Position("a"); ok {
		t.Error("position not pruned")
	}
	if len(f.store.AllTags()) != 0 {
		t.Errorf("tags = %v", f.store.AllTags())
	}
}

func TestClearColumn(t *testing.T) {
	f := newFixture(t, c("a", card.ColumnTodo, ""), c("x", card.ColumnDelete, ""), c("y", card.ColumnDelete, ""))
	f.store.FocusCard("x")
	f.store.ClearColumn(card.ColumnDelete)
	assertIDs(t, "cards", ids(f.store.Cards()), []string{"a"})
	if f.store.FocusedCardID() != "a" {
		t.Errorf("focus = %q, want a", f.store.FocusedCardID())
	}
}

func TestSelection(t *testing.T) {
	f := newFixture(t, c("a", card.ColumnTodo, ""), c("b", card.ColumnTodo, ""))

	f.store.ToggleCardSelection("a", true)
	f.store.ToggleCardSelection("a", true)
	assertIDs(t, "additive", f.store.SelectedCardIDs(), []string{"a"})
	f.store.ToggleCardSelection("a", false)
	assertIDs(t, "toggle off", f.store.SelectedCardIDs(), nil)

	f.store.ClickCard("a", true)
	f.store.ClickCard("b", true)
	f.store.ClickCard("b", false)
	assertIDs(t, "narrow", f.store.SelectedCardIDs(), []string{"b"})
	f.store.ClickCard("b", false)
	assertIDs(t, "deselect", f.store.SelectedCardIDs(), nil)
	f.store.ClickCard("a", false)
	assertIDs(t, "replace", f.store.SelectedCardIDs(), []string{"a"})
	if f.store.FocusedCardID() != "a" {
		t.Errorf("click did not focus: %q", f.store.FocusedCardID())
	}

	f.store.ClearSelection()
	assertIDs(t, "cleared", f.store.SelectedCardIDs(), nil)
}

func TestSmartFocus(t *testing.T) {
	f := newFixture(t, c("a", card.ColumnTodo, "#x"), c("b", card.ColumnDoing, "#y"))
	f.store.FocusCard("a")
	f.bus.FilterTags.Publish([]string{"#y"})

	f.store.SmartFocus()
	if f.store.FocusedCardID() != "b" {
		t.Errorf("focus = %q, want b", f.store.FocusedCardID())
	}
}

func TestFilterChangeInvalidatesLayout(t *testing.T) {
	f := newFixture(t, c("a", card.ColumnTodo, "#x"), c("b", card.ColumnTodo, "#y"))
	f.layout.Commit(nil)

	f.bus.FilterTags.Publish([]string{"#x"})
	if f.layout.Settled() {
		t.Error("layout still settled after the visible set changed")
	}
}

func TestSetTitleAndSnapshot(t *testing.T) {
	f := newFixture(t, c("a", card.ColumnTodo, ""))
	f.store.SetTitle("Renamed")
	snap := f.store.Snapshot()
	if snap.Title != "Renamed" || len(snap.Cards) != 1 || snap.FocusedCardID != "a" {
		t.Errorf("snapshot = %+v", snap)
	}
	if f.changes != 1 {
		t.Errorf("changes = %d, want 1", f.changes)
	}
}

func TestCountByColumn(t *testing.T) {
	counts := board.CountByColumn([]card.Card{
		c("a", card.ColumnTodo, ""), c("b", card.ColumnTodo, ""), c("c", card.ColumnDone, ""),
	})
	if counts[card.ColumnTodo] != 2 || counts[card.ColumnDone] != 1 {
		t.Errorf("counts = %v", counts)
	}
}
