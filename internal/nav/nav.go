// Package nav implements the keyboard surface of navigation mode: focus
// movement, multi-selection, card moves between and within columns, and
// the card actions.
package nav

import (
	"log/slog"
	"sort"

	"github.com/antopolskiy/kanban-kbd/internal/card"
	"github.com/antopolskiy/kanban-kbd/internal/keys"
	"github.com/antopolskiy/kanban-kbd/internal/mode"
	"github.com/antopolskiy/kanban-kbd/internal/spatial"
)

// Collection is the card store navigation mode drives. Mutations must be
// visible to reads made right after them.
type Collection interface {
	Columns() []card.Column
	Cards() []card.Card
	VisibleCards() []card.Card
	FocusedCardID() string
	SelectedCardIDs() []string
	IndexOf(id string) int

	AddCard(columnID string, beforeIndex int) string
	MoveCard(id, columnID, beforeID string)
	MoveCardToIndex(id string, index int)
	FocusCard(id string)
	ToggleCardSelection(id string, additive bool)
	ClearSelection()
	EditCard(id string)
	DeleteCard(id string)
	CompleteCard(id string)
}

// Layout supplies rendered card positions.
type Layout interface {
	Position(id string) (card.Position, bool)
	Positions() map[string]card.Position
	// WhenSettled runs fn once positions reflect the current visible set.
	WhenSettled(fn func())
}

// Confirmer asks the user a yes/no question. onYes runs only on yes; a
// negative answer aborts the action.
type Confirmer interface {
	Confirm(prompt string, onYes func())
}

// ModeRequester switches modes.
type ModeRequester interface {
	RequestEnter(m mode.Mode) error
}

// DeletePrompt is the confirmation shown before deleting a card.
const DeletePrompt = "Delete this card?"

// Handler handles keys in navigation mode.
type Handler struct {
	cards   Collection
	layout  Layout
	confirm Confirmer
	modes   ModeRequester
	logger  *slog.Logger
}

// NewHandler creates a navigation handler.
func NewHandler(cards Collection, layout Layout, confirm Confirmer, modes ModeRequester, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{cards: cards, layout: layout, confirm: confirm, modes: modes, logger: logger}
}

// focusContext is the focused card and where it sits among the visible
// cards.
type focusContext struct {
	card     card.Card
	columns  []card.Column
	visible  []card.Card
	colIndex int
	column   []card.Card // visible cards of the focused card's column
	index    int         // index of the focused card within column
}

// HandleKey implements keys.Handler.
func (h *Handler) HandleKey(ev keys.Event) bool {
	switch ev.Key {
	case "/":
		h.enter(mode.Search)
		return true
	case "#":
		h.enter(mode.TagSelection)
		return true
	case keys.Insert:
		h.insert()
		return true
	case keys.Esc:
		if !ev.Plain() || len(h.cards.SelectedCardIDs()) == 0 {
			return false
		}
		h.cards.ClearSelection()
		return true
	}

	focused := h.cards.FocusedCardID()
	if focused == "" {
		return false
	}
	fc, ok := h.focusContext(focused)
	if !ok {
		h.logger.Warn("focused card is not visible", slog.String("card", focused))
		return false
	}

	noMods := ev.Plain()
	shiftOnly := ev.Shift && !ev.Ctrl && !ev.Alt
	ctrl := ev.Ctrl && !ev.Alt

	switch {
	case (ev.Key == keys.Left || ev.Key == keys.Right) && noMods:
		h.focusAcross(fc, step(ev.Key), false)
	case (ev.Key == keys.Left || ev.Key == keys.Right) && shiftOnly:
		h.focusAcross(fc, step(ev.Key), true)
	case (ev.Key == keys.Left || ev.Key == keys.Right) && ctrl:
		h.moveAcross(fc, step(ev.Key))

	case ev.Key == keys.Up && noMods:
		if fc.index > 0 {
			h.cards.FocusCard(fc.column[fc.index-1].ID)
		}
	case ev.Key == keys.Down && noMods:
		if fc.index < len(fc.column)-1 {
			h.cards.FocusCard(fc.column[fc.index+1].ID)
		}
	case ev.Key == keys.Up && shiftOnly:
		if fc.index > 0 {
			h.extendTo(fc, fc.column[fc.index-1].ID)
		}
	case ev.Key == keys.Down && shiftOnly:
		if fc.index < len(fc.column)-1 {
			h.extendTo(fc, fc.column[fc.index+1].ID)
		}
	case ev.Key == keys.Up && ctrl:
		h.moveUp(fc)
	case ev.Key == keys.Down && ctrl:
		h.moveDown(fc)

	case ev.Key == keys.Home && !ev.Ctrl && !ev.Alt:
		h.cards.FocusCard(fc.column[0].ID)
	case ev.Key == keys.End && !ev.Ctrl && !ev.Alt:
		h.cards.FocusCard(fc.column[len(fc.column)-1].ID)
	case ev.Key == keys.Home && ctrl:
		h.moveToTop(fc)
	case ev.Key == keys.End && ctrl:
		h.moveToBottom(fc)

	case (ev.Key == keys.Enter || ev.Key == keys.Space || ev.Key == keys.F2) && noMods:
		h.cards.EditCard(fc.card.ID)
	case ev.Key == keys.Space && ev.Ctrl && !ev.Alt && !ev.Shift:
		h.cards.ToggleCardSelection(fc.card.ID, false)
	case ev.Key == keys.Delete:
		id := fc.card.ID
		h.confirm.Confirm(DeletePrompt, func() { h.cards.DeleteCard(id) })
	case ev.Key == keys.Enter && ev.Ctrl && !ev.Alt && !ev.Shift:
		h.cards.CompleteCard(fc.card.ID)
	default:
		return false
	}
	return true
}

func (h *Handler) enter(m mode.Mode) {
	if err := h.modes.RequestEnter(m); err != nil {
		h.logger.Warn("mode switch refused", slog.String("mode", string(m)), slog.Any("error", err))
	}
}

// insert adds a card before the focused one, or to the first column when
// nothing is focused.
func (h *Handler) insert() {
	focused := h.cards.FocusedCardID()
	if focused == "" {
		h.cards.AddCard(h.cards.Columns()[0].ID, -1)
		return
	}
	c, ok := card.Find(h.cards.VisibleCards(), focused)
	if !ok {
		h.logger.Warn("focused card not found", slog.String("card", focused))
		return
	}
	h.cards.AddCard(c.ColumnID, h.cards.IndexOf(focused))
}

func (h *Handler) focusContext(id string) (focusContext, bool) {
	visible := h.cards.VisibleCards()
	c, ok := card.Find(visible, id)
	if !ok {
		return focusContext{}, false
	}
	columns := h.cards.Columns()
	column := card.InColumn(visible, c.ColumnID)
	return focusContext{
		card:     c,
		columns:  columns,
		visible:  visible,
		colIndex: card.ColumnIndex(columns, c.ColumnID),
		column:   column,
		index:    card.IndexOf(column, id),
	}, true
}

// focusAcross moves focus to the best matching card of the nearest
// non-empty column in direction dir, optionally extending the selection.
func (h *Handler) focusAcross(fc focusContext, dir int, extend bool) {
	_, target, ok := spatial.AdjacentColumn(fc.visible, fc.columns, fc.colIndex, dir)
	if !ok {
		return
	}
	id := target[min(fc.index, len(target)-1)].ID
	if pos, known := h.layout.Position(fc.card.ID); known {
		if m, found := spatial.FindCardInColumnAtY(target, h.layout.Positions(), pos.Top, pos.Bottom); found {
			id = m.ID
		}
	}
	if extend {
		h.extendTo(fc, id)
		return
	}
	h.cards.FocusCard(id)
}

// extendTo focuses id and adds it to the selection. The card the
// extension starts from joins the selection first when nothing is
// selected yet.
func (h *Handler) extendTo(fc focusContext, id string) {
	if len(h.cards.SelectedCardIDs()) == 0 {
		h.cards.ToggleCardSelection(fc.card.ID, true)
	}
	h.cards.FocusCard(id)
	h.cards.ToggleCardSelection(id, true)
}

// moveAcross moves the focused card, or the whole selection, into the
// adjacent column. With a known source position and a non-empty target
// column the insertion point is resolved once the layout has settled;
// otherwise the cards are appended.
func (h *Handler) moveAcross(fc focusContext, dir int) {
	targetIdx := fc.colIndex + dir
	if targetIdx < 0 || targetIdx >= len(fc.columns)-1 {
		return
	}
	targetCol := fc.columns[targetIdx].ID
	moving := h.sortByBoardOrder(h.cardsToMove(fc, false))

	pos, known := h.layout.Position(fc.card.ID)
	if !known || len(card.InColumn(fc.visible, targetCol)) == 0 {
		for _, id := range moving {
			h.cards.MoveCard(id, targetCol, "")
		}
		return
	}

	h.layout.WhenSettled(func() {
		target := card.InColumn(h.cards.VisibleCards(), targetCol)
		anchor := ""
		if m, ok := spatial.FindCardInColumnAtY(target, h.layout.Positions(), pos.Top, pos.Bottom); ok {
			anchor = spatial.InsertionAnchor(pos, m)
		}
		h.logger.Debug("moving cards across columns",
			slog.String("column", targetCol),
			slog.String("before", anchor),
			slog.Int("count", len(moving)))
		for _, id := range moving {
			h.cards.MoveCard(id, targetCol, anchor)
		}
	})
}

// cardsToMove returns the selection, or the focused card alone. With
// sameColumn set, selected cards outside the focused card's column are
// left out.
func (h *Handler) cardsToMove(fc focusContext, sameColumn bool) []string {
	selected := h.cards.SelectedCardIDs()
	if len(selected) == 0 {
		return []string{fc.card.ID}
	}
	if !sameColumn {
		return selected
	}
	all := h.cards.Cards()
	var out []string
	for _, id := range selected {
		if c, ok := card.Find(all, id); ok && c.ColumnID == fc.card.ColumnID {
			out = append(out, id)
		}
	}
	return out
}

func (h *Handler) sortByBoardOrder(ids []string) []string {
	sort.SliceStable(ids, func(i, j int) bool {
		return h.cards.IndexOf(ids[i]) < h.cards.IndexOf(ids[j])
	})
	return ids
}

// moveUp moves the cards above the visible card preceding the focused
// one, top-down, so their relative order holds.
func (h *Handler) moveUp(fc focusContext) {
	if fc.index == 0 {
		return
	}
	ids := h.sortByBoardOrder(h.cardsToMove(fc, true))
	at := h.cards.IndexOf(fc.column[fc.index-1].ID)
	for _, id := range ids {
		if idx := h.cards.IndexOf(id); idx > at {
			h.cards.MoveCardToIndex(id, at)
			at++
		}
	}
}

// moveDown moves the cards below the visible card following the focused
// one, bottom-up, each landing above the previously moved card.
func (h *Handler) moveDown(fc focusContext) {
	if fc.index >= len(fc.column)-1 {
		return
	}
	ids := h.sortByBoardOrder(h.cardsToMove(fc, true))
	at := h.cards.IndexOf(fc.column[fc.index+1].ID)
	for i := len(ids) - 1; i >= 0; i-- {
		if idx := h.cards.IndexOf(ids[i]); idx >= 0 && idx < at {
			h.cards.MoveCardToIndex(ids[i], at)
			at--
		}
	}
}

// moveToTop moves the cards to the start of their column.
func (h *Handler) moveToTop(fc focusContext) {
	if len(fc.column) <= 1 {
		return
	}
	at := 0
	if first := card.InColumn(h.cards.Cards(), fc.card.ColumnID); len(first) > 0 {
		at = h.cards.IndexOf(first[0].ID)
	}
	h.relocate(h.sortByBoardOrder(h.cardsToMove(fc, true)), at)
}

// moveToBottom moves the cards to the end of their column.
func (h *Handler) moveToBottom(fc focusContext) {
	if len(fc.column) <= 1 {
		return
	}
	all := h.cards.Cards()
	at := len(all)
	if inColumn := card.InColumn(all, fc.card.ColumnID); len(inColumn) > 0 {
		at = h.cards.IndexOf(inColumn[len(inColumn)-1].ID) + 1
	}
	h.relocate(h.sortByBoardOrder(h.cardsToMove(fc, true)), at)
}

// relocate places ids, in order, as a contiguous run starting at board
// index at.
func (h *Handler) relocate(ids []string, at int) {
	for _, id := range ids {
		idx := h.cards.IndexOf(id)
		if idx < 0 {
			continue
		}
		if idx < at {
			at--
		}
		h.cards.MoveCardToIndex(id, at)
		at++
	}
}

func step(key string) int {
	if key == keys.Right {
		return 1
	}
	return -1
}
