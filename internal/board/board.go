package board

import (
	"github.com/google/uuid"

	"github.com/antopolskiy/kanban-kbd/internal/card"
)

// DefaultTitle is the title of a board that was never named.
const DefaultTitle = "Kanban Board"

// Snapshot is the persistent state of a board.
type Snapshot struct {
	Title         string
	Cards         []card.Card
	FocusedCardID string
}

// NewCardID returns a fresh card ID.
func NewCardID() string {
	return uuid.NewString()
}

// CountByColumn returns the number of cards in each column.
func CountByColumn(cards []card.Card) map[string]int {
	counts := make(map[string]int)
	for _, c := range cards {
		counts[c.ColumnID]++
	}
	return counts
}
