package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/antopolskiy/kanban-kbd/internal/board"
	"github.com/antopolskiy/kanban-kbd/internal/card"
	"github.com/antopolskiy/kanban-kbd/internal/storage"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const (
	pad      = 2
	maxTitle = 40
	timeFmt  = "2006-01-02 15:04"
)

// DisableColor strips all styling from table output.
func DisableColor() {
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
}

// BoardSummary is the JSON form of one board in a listing.
type BoardSummary struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Cards        int            `json:"cards"`
	ByColumn     map[string]int `json:"by_column"`
	LastModified string         `json:"last_modified"`
}

// Summarize converts boards to their listing form.
func Summarize(boards []storage.Board) []BoardSummary {
	out := make([]BoardSummary, 0, len(boards))
	for _, b := range boards {
		out = append(out, BoardSummary{
			ID:           b.ID,
			Title:        b.Title,
			Cards:        len(b.Cards),
			ByColumn:     board.CountByColumn(b.Cards),
			LastModified: b.LastModified.Format(timeFmt),
		})
	}
	return out
}

// BoardTable renders boards with one count column per board column. The
// sink column is left out.
func BoardTable(w io.Writer, boards []storage.Board) {
	if len(boards) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No boards found."))
		return
	}

	columns := card.Columns()
	columns = columns[:len(columns)-1]

	idW, titleW := 4, 7
	for _, b := range boards {
		idW = max(idW, runewidth.StringWidth(b.ID)+pad)
		titleW = max(titleW, min(runewidth.StringWidth(b.Title)+pad, maxTitle+pad))
	}

	var header strings.Builder
	header.WriteString(cell("ID", idW))
	header.WriteString(cell("TITLE", titleW))
	for _, c := range columns {
		header.WriteString(cell(strings.ToUpper(c.Title), len(c.Title)+pad))
	}
	header.WriteString("UPDATED")
	fmt.Fprintln(w, headerStyle.Render(header.String()))

	for _, b := range boards {
		counts := board.CountByColumn(b.Cards)
		var row strings.Builder
		row.WriteString(cell(b.ID, idW))
		row.WriteString(cell(runewidth.Truncate(b.Title, maxTitle, "..."), titleW))
		for _, c := range columns {
			n := counts[c.ID]
			v := strconv.Itoa(n)
			if n == 0 {
				v = dimStyle.Render("-")
			}
			row.WriteString(cell(v, len(c.Title)+pad))
		}
		row.WriteString(b.LastModified.Format(timeFmt))
		fmt.Fprintln(w, row.String())
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}

// cell left-aligns s in a field width cells wide, measuring styled text by
// its visible width.
func cell(s string, width int) string {
	gap := width - lipgloss.Width(s)
	if gap < 1 {
		gap = 1
	}
	return s + strings.Repeat(" ", gap)
}
