// Package card defines the card, column and position model shared by the
// interaction engine, the store and the renderer.
package card

// Card is a single note on the board.
type Card struct {
	ID       string `yaml:"id" json:"id"`
	Content  string `yaml:"content" json:"content"`
	ColumnID string `yaml:"column_id" json:"column_id"`
	IsNew    bool   `yaml:"is_new,omitempty" json:"is_new,omitempty"`
}

// Column is one lane of the board.
type Column struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
}

// Position is the vertical extent of a rendered card, in the renderer's
// coordinate space. All columns share the same origin.
type Position struct {
	Top      float64
	Bottom   float64
	ColumnID string
}

// Height returns Bottom - Top.
func (p Position) Height() float64 {
	return p.Bottom - p.Top
}

// Center returns the vertical midpoint.
func (p Position) Center() float64 {
	return (p.Top + p.Bottom) / 2 //nolint:mnd // midpoint
}

// Column IDs of the fixed board schema.
const (
	ColumnIdea   = "idea"
	ColumnTodo   = "todo"
	ColumnDoing  = "doing"
	ColumnDone   = "done"
	ColumnDelete = "delete"
)

// DefaultColumns is the fixed column schema. The last column is the sink.
var DefaultColumns = []Column{
	{ID: ColumnIdea, Title: "idea"},
	{ID: ColumnTodo, Title: "todo"},
	{ID: ColumnDoing, Title: "doing"},
	{ID: ColumnDone, Title: "done"},
	{ID: ColumnDelete, Title: "delete"},
}

// Columns returns a fresh copy of DefaultColumns.
func Columns() []Column {
	return append([]Column{}, DefaultColumns...)
}

// ColumnIndex returns the index of columnID in columns, or -1.
func ColumnIndex(columns []Column, columnID string) int {
	for i, c := range columns {
		if c.ID == columnID {
			return i
		}
	}
	return -1
}

// IsSink reports whether idx is the terminal column that ordinary left/right
// traversal never enters.
func IsSink(columns []Column, idx int) bool {
	return idx == len(columns)-1
}

// IndexOf returns the index of the card with the given ID, or -1.
func IndexOf(cards []Card, id string) int {
	for i := range cards {
		if cards[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns the card with the given ID.
func Find(cards []Card, id string) (Card, bool) {
	if i := IndexOf(cards, id); i >= 0 {
		return cards[i], true
	}
	return Card{}, false
}
