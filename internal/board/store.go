// Package board holds the card collection of the open board: ordered
// cards, focus, multi-selection and the filtered visible subset.
package board

import (
	"log/slog"
	"slices"

	"github.com/antopolskiy/kanban-kbd/internal/card"
	"github.com/antopolskiy/kanban-kbd/internal/event"
)

// PositionCache is the part of the layout provider the store keeps in
// step with the visible set.
type PositionCache interface {
	Invalidate()
	Prune(keep func(id string) bool)
	Reset()
}

// Store is the card collection. Every mutation runs mutate, recompute,
// emit in that order, so subscribers always observe the new state. It is
// owned by the UI goroutine.
type Store struct {
	bus       *event.Bus
	positions PositionCache
	logger    *slog.Logger
	newID     func() string

	columns     []card.Column
	title       string
	cards       []card.Card
	focused     string
	selected    []string
	tempVisible string
	tagFilter   []string
	search      string

	visible []card.Card
	tags    []string
}

// New creates an empty store subscribed to the filter topics of bus.
func New(bus *event.Bus, positions PositionCache, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Store{
		bus:       bus,
		positions: positions,
		logger:    logger,
		newID:     NewCardID,
		columns:   card.Columns(),
		title:     DefaultTitle,
	}
	for _, opt := range opts {
		opt(s)
	}
	bus.FilterTags.Subscribe(func(tags []string) {
		s.tagFilter = slices.Clone(tags)
		s.recompute()
	})
	bus.FilterSearch.Subscribe(func(text string) {
		s.search = text
		s.recompute()
	})
	bus.FilterReset.Subscribe(func(struct{}) {
		s.tagFilter = nil
		s.search = ""
		s.recompute()
		bus.FilterTags.Publish([]string{})
		bus.FilterSearch.Publish("")
	})
	return s
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the card ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// Columns returns the column schema.
func (s *Store) Columns() []card.Column { return slices.Clone(s.columns) }

// Title returns the board title.
func (s *Store) Title() string { return s.title }

// Cards returns every card in board order.
func (s *Store) Cards() []card.Card { return slices.Clone(s.cards) }

// VisibleCards returns the cards that pass the filters, in board order.
func (s *Store) VisibleCards() []card.Card { return slices.Clone(s.visible) }

// ColumnCards returns the visible cards of one column.
func (s *Store) ColumnCards(columnID string) []card.Card {
	return card.InColumn(s.visible, columnID)
}

// AllTags returns the sorted tag universe of the board.
func (s *Store) AllTags() []string { return slices.Clone(s.tags) }

// FocusedCardID returns the focused card, or "".
func (s *Store) FocusedCardID() string { return s.focused }

// SelectedCardIDs returns the multi-selection in selection order.
func (s *Store) SelectedCardIDs() []string { return slices.Clone(s.selected) }

// IsSelected reports whether id is in the multi-selection.
func (s *Store) IsSelected(id string) bool { return slices.Contains(s.selected, id) }

// TagFilter returns the active tag filter.
func (s *Store) TagFilter() []string { return slices.Clone(s.tagFilter) }

// SearchText returns the active free-text filter.
func (s *Store) SearchText() string { return s.search }

// Card returns the card with the given ID.
func (s *Store) Card(id string) (card.Card, bool) { return card.Find(s.cards, id) }

// IndexOf returns the board-order index of id, or -1.
func (s *Store) IndexOf(id string) int { return card.IndexOf(s.cards, id) }

// IsVisible reports whether id passes the filters.
func (s *Store) IsVisible(id string) bool { return card.IndexOf(s.visible, id) >= 0 }

// Snapshot copies the persistent part of the board.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Title:         s.title,
		Cards:         slices.Clone(s.cards),
		FocusedCardID: s.focused,
	}
}

// recompute derives the visible set and the tag universe and emits the
// updates that changed.
func (s *Store) recompute() {
	filter := card.Filter{Tags: s.tagFilter, Search: s.search}
	visible := make([]card.Card, 0, len(s.cards))
	for _, c := range s.cards {
		if c.ID == s.tempVisible || filter.Matches(c) {
			visible = append(visible, c)
		}
	}
	// Any change in membership, order or column moves rendered cards.
	if !sameLayout(visible, s.visible) && s.positions != nil {
		keep := make(map[string]bool, len(visible))
		for _, c := range visible {
			keep[c.ID] = true
		}
		s.positions.Invalidate()
		s.positions.Prune(func(id string) bool { return keep[id] })
	}
	s.visible = visible

	tags := card.AllTags(s.cards)
	if !slices.Equal(tags, s.tags) {
		s.tags = tags
		s.bus.TagsUpdated.Publish(slices.Clone(tags))
	}
}

// changed finishes a mutation of persistent state.
func (s *Store) changed() {
	s.recompute()
	s.bus.BoardChanged.Publish(struct{}{})
}

func sameLayout(a, b []card.Card) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].ColumnID != b[i].ColumnID {
			return false
		}
	}
	return true
}
