package board

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/antopolskiy/kanban-kbd/internal/card"
	"github.com/antopolskiy/kanban-kbd/internal/spatial"
)

// NewCardContent is the content of a card added without a tag filter.
const NewCardContent = "New task"

// Initialize replaces the board. Filters are reset; focus goes to
// savedFocus when it exists, otherwise to the top card of the leftmost
// non-empty column other than the sink.
func (s *Store) Initialize(title string, cards []card.Card, savedFocus string) {
	if title == "" {
		title = DefaultTitle
	}
	s.title = title
	s.cards = slices.Clone(cards)
	s.tempVisible = ""
	s.selected = nil
	if s.positions != nil {
		s.positions.Reset()
	}
	s.bus.FilterReset.Publish(struct{}{})

	s.focused = ""
	if savedFocus != "" && card.IndexOf(s.cards, savedFocus) >= 0 {
		s.focused = savedFocus
	} else {
		for i, col := range s.columns {
			if card.IsSink(s.columns, i) {
				continue
			}
			if cs := card.InColumn(s.cards, col.ID); len(cs) > 0 {
				s.focused = cs[0].ID
				break
			}
		}
	}
	s.recompute()
	s.logger.Debug("board initialized",
		slog.String("title", title),
		slog.Int("cards", len(s.cards)),
		slog.String("focused", s.focused))
}

// SetTitle renames the board.
func (s *Store) SetTitle(title string) {
	if title == "" || title == s.title {
		return
	}
	s.title = title
	s.changed()
}

// AddCard inserts a new card into columnID at board index beforeIndex, or
// at the end when beforeIndex is out of range. The card carries the active
// tag filter, stays visible until edited, gets focus and is opened for
// editing. It returns the new card's ID.
func (s *Store) AddCard(columnID string, beforeIndex int) string {
	content := NewCardContent
	if len(s.tagFilter) > 0 {
		content = "\n" + strings.Join(s.tagFilter, " ")
	}
	c := card.Card{ID: s.newID(), Content: content, ColumnID: columnID, IsNew: true}
	if beforeIndex < 0 || beforeIndex > len(s.cards) {
		beforeIndex = len(s.cards)
	}
	s.cards = slices.Insert(s.cards, beforeIndex, c)
	s.tempVisible = c.ID
	s.focused = c.ID
	s.changed()
	s.bus.EditCard.Publish(c.ID)
	return c.ID
}

// UpdateCard sets the content of id and marks it as no longer new.
func (s *Store) UpdateCard(id, content string) {
	i := card.IndexOf(s.cards, id)
	if i < 0 {
		return
	}
	s.cards[i].Content = content
	s.cards[i].IsNew = false
	if s.tempVisible == id {
		s.tempVisible = ""
	}
	s.changed()
}

// DeleteCard removes id and refocuses.
func (s *Store) DeleteCard(id string) {
	i := card.IndexOf(s.cards, id)
	if i < 0 {
		return
	}
	s.cards = slices.Delete(s.cards, i, i+1)
	if s.tempVisible == id {
		s.tempVisible = ""
	}
	s.selected = slices.DeleteFunc(s.selected, func(sel string) bool { return sel == id })
	s.recompute()
	s.focused = spatial.FindBestCardToFocus(s.visible, s.columns, s.focused)
	s.changed()
}

// ClearColumn removes every card of columnID. When the focused card was
// among them, focus moves to the first remaining visible card.
func (s *Store) ClearColumn(columnID string) {
	n := len(s.cards)
	s.cards = slices.DeleteFunc(s.cards, func(c card.Card) bool { return c.ColumnID == columnID })
	if len(s.cards) == n {
		return
	}
	s.selected = slices.DeleteFunc(s.selected, func(id string) bool {
		return card.IndexOf(s.cards, id) < 0
	})
	if card.IndexOf(s.cards, s.tempVisible) < 0 {
		s.tempVisible = ""
	}
	s.recompute()
	if s.focused != "" && card.IndexOf(s.cards, s.focused) < 0 {
		s.focused = ""
		if len(s.visible) > 0 {
			s.focused = s.visible[0].ID
		}
	}
	s.changed()
}

// WouldMoveCard reports whether MoveCard(id, columnID, beforeID) would
// change anything.
func (s *Store) WouldMoveCard(id, columnID, beforeID string) bool {
	i := card.IndexOf(s.cards, id)
	if i < 0 {
		return false
	}
	if s.cards[i].ColumnID != columnID {
		return true
	}
	if beforeID != "" {
		return id != beforeID && i+1 != card.IndexOf(s.cards, beforeID)
	}
	inColumn := card.InColumn(s.cards, columnID)
	return len(inColumn) == 0 || inColumn[len(inColumn)-1].ID != id
}

// MoveCard moves id into columnID, before beforeID, or to the end of the
// column when beforeID is "". A card moved into a column that has no cards
// goes to the front of the board order.
func (s *Store) MoveCard(id, columnID, beforeID string) {
	if !s.WouldMoveCard(id, columnID, beforeID) {
		return
	}
	i := card.IndexOf(s.cards, id)
	moved := s.cards[i]
	moved.ColumnID = columnID
	s.cards = slices.Delete(s.cards, i, i+1)

	at := -1
	if beforeID != "" {
		at = card.IndexOf(s.cards, beforeID)
	}
	if at < 0 {
		at = 0
		for j := len(s.cards) - 1; j >= 0; j-- {
			if s.cards[j].ColumnID == columnID {
				at = j + 1
				break
			}
		}
	}
	s.cards = slices.Insert(s.cards, at, moved)
	s.changed()
}

// MoveCardToIndex removes id and reinserts it at index of the remaining
// cards, clamped to the list bounds. The column is unchanged.
func (s *Store) MoveCardToIndex(id string, index int) {
	i := card.IndexOf(s.cards, id)
	if i < 0 {
		return
	}
	c := s.cards[i]
	rest := slices.Delete(slices.Clone(s.cards), i, i+1)
	index = max(0, min(index, len(rest)))
	if index == i {
		return
	}
	s.cards = slices.Insert(rest, index, c)
	s.changed()
}

// CompleteCard advances id one column to the right, never past the
// column before the sink, and picks the next focus: a remaining sibling
// (next, else previous), else the top card of the nearest non-empty
// column to the left, else to the right. When the destination column is
// empty the moved card keeps focus there.
func (s *Store) CompleteCard(id string) {
	c, ok := card.Find(s.cards, id)
	if !ok {
		return
	}
	cur := card.ColumnIndex(s.columns, c.ColumnID)
	target := min(cur+1, len(s.columns)-2)
	if cur < 0 || target <= cur {
		return
	}

	next := s.completionFocus(id, cur, target)
	dest := s.columns[target]
	s.MoveCard(id, dest.ID, "")
	s.bus.CardCompleted.Publish(dest.Title)
	s.FocusCard(next)
}

func (s *Store) completionFocus(id string, cur, target int) string {
	siblings := card.InColumn(s.visible, s.columns[cur].ID)
	idx := card.IndexOf(siblings, id)
	if len(siblings) > 1 && idx >= 0 {
		if idx < len(siblings)-1 {
			return siblings[idx+1].ID
		}
		return siblings[idx-1].ID
	}
	for i := cur - 1; i >= 0; i-- {
		if cs := card.InColumn(s.visible, s.columns[i].ID); len(cs) > 0 {
			return cs[0].ID
		}
	}
	for i := cur + 1; i < len(s.columns)-1; i++ {
		cs := card.InColumn(s.visible, s.columns[i].ID)
		if i == target && len(cs) == 0 {
			return id
		}
		if len(cs) > 0 {
			return cs[0].ID
		}
	}
	return ""
}

// FocusCard moves focus to id; "" clears it.
func (s *Store) FocusCard(id string) {
	if id == s.focused {
		return
	}
	if id == "" {
		s.logger.Debug("focus cleared")
	}
	s.focused = id
	s.changed()
}

// ToggleCardSelection adds id to the selection when additive is set,
// otherwise flips its membership.
func (s *Store) ToggleCardSelection(id string, additive bool) {
	if card.IndexOf(s.cards, id) < 0 {
		return
	}
	i := slices.Index(s.selected, id)
	switch {
	case i >= 0 && additive:
		return
	case i >= 0:
		s.selected = slices.Delete(s.selected, i, i+1)
	default:
		s.selected = append(s.selected, id)
	}
}

// ClickCard focuses id and updates the selection: shift toggles the card,
// a plain click smart-toggles it.
func (s *Store) ClickCard(id string, shift bool) {
	if card.IndexOf(s.cards, id) < 0 {
		return
	}
	if shift {
		s.ToggleCardSelection(id, false)
	} else {
		s.selected = card.SmartToggle(s.selected, id)
	}
	s.FocusCard(id)
}

// ClearSelection empties the multi-selection.
func (s *Store) ClearSelection() {
	s.selected = nil
}

// EditCard asks the editor to open id.
func (s *Store) EditCard(id string) {
	if card.IndexOf(s.cards, id) < 0 {
		return
	}
	s.bus.EditCard.Publish(id)
}

// SmartFocus keeps the focused card when it is visible, otherwise focuses
// the top card of the first non-empty column.
func (s *Store) SmartFocus() {
	if best := spatial.FindBestCardToFocus(s.visible, s.columns, s.focused); best != "" {
		s.FocusCard(best)
	}
}
