package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/antopolskiy/kanban-kbd/internal/card"
	"github.com/antopolskiy/kanban-kbd/internal/mode"
	"github.com/antopolskiy/kanban-kbd/internal/tagsel"
)

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230"))

	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("236")).
				Padding(0, 1)

	activeColumnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	focusedCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(0, 1)

	selectedCardStyle = lipgloss.NewStyle().
				Border(lipgloss.DoubleBorder()).
				BorderForeground(lipgloss.Color("44")).
				Padding(0, 1)

	focusedSelectedCardStyle = lipgloss.NewStyle().
					Border(lipgloss.DoubleBorder()).
					BorderForeground(lipgloss.Color("62")).
					Padding(0, 1)

	cardTagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("109"))

	tagStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("109"))
	selectedTagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62"))
	darkTagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	glowTagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)

	modeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	dialogPadY = 1
	dialogPadX = 2

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(dialogPadY, dialogPadX)
)

// --- View rendering ---

func (b *Board) viewBoard() string {
	rows := make([]string, 0, b.height)
	rows = append(rows, b.viewTitleBar(), b.viewTagBar(), b.viewHeaders())
	rows = append(rows, b.viewArea()...)
	rows = append(rows, b.viewStatusBar())

	fit := lipgloss.NewStyle().MaxWidth(b.width)
	for i, r := range rows {
		rows[i] = fit.Render(r)
	}
	return strings.Join(rows, "\n")
}

func (b *Board) viewTitleBar() string {
	var title string
	if b.editingTitle {
		title = b.title.View()
	} else {
		title = titleStyle.Render(b.store.Title())
	}
	if b.modes.Is(mode.Search) || b.store.SearchText() != "" {
		title += "   " + b.search.View()
	}
	return title
}

// tagLabel is the plain text of a tag chip. Its width drives mouse hit
// testing, so styling is applied separately.
func tagLabel(st tagsel.TagState) string {
	if st.Selected {
		return "[" + st.Tag + "]"
	}
	return st.Tag
}

func tagChipStyle(st tagsel.TagState) lipgloss.Style {
	var s lipgloss.Style
	switch {
	case st.Selected:
		s = selectedTagStyle
	case st.Darkened:
		s = darkTagStyle
	case st.Glowing:
		s = glowTagStyle
	default:
		s = tagStyle
	}
	if st.Focused {
		s = s.Underline(true).Bold(true)
	}
	return s
}

func (b *Board) viewTagBar() string {
	states := b.tags.States()
	if len(states) == 0 {
		return dimStyle.Render(tagBarPrefix + "none")
	}

	chips := make([]string, len(states))
	for i, st := range states {
		chips[i] = tagChipStyle(st).Render(tagLabel(st))
	}
	bar := dimStyle.Render(tagBarPrefix) + strings.Join(chips, " ")
	if b.tags.Active() {
		bar += "  " + glowTagStyle.Render(b.tags.Prefix()+"_")
		if b.tags.HasNoMatches() {
			bar += " " + dimStyle.Render("no matching tags")
		}
	}
	return bar
}

func (b *Board) viewHeaders() string {
	w := b.frame.colWidth
	var focusedColumn string
	if c, ok := b.store.Card(b.store.FocusedCardID()); ok {
		focusedColumn = c.ColumnID
	}

	headers := make([]string, len(b.frame.columns))
	for i, cf := range b.frame.columns {
		// Truncate to fit within padding (1 left + 1 right).
		const headerPad = 2
		text := runewidth.Truncate(fmt.Sprintf("%s (%d)", cf.column.Title, len(cf.cards)), w-headerPad, "…")
		style := columnHeaderStyle
		if cf.column.ID == focusedColumn {
			style = activeColumnHeaderStyle
		}
		headers[i] = style.Width(w).Render(text)
	}
	return strings.Join(headers, "")
}

func (b *Board) viewArea() []string {
	w := b.frame.colWidth
	areaH := b.areaHeight()
	rows := make([]string, areaH)
	var sb strings.Builder
	for r := range areaH {
		sb.Reset()
		idx := b.scroll + r
		for _, cf := range b.frame.columns {
			line := ""
			if idx < len(cf.lines) {
				line = cf.lines[idx]
			}
			sb.WriteString(padLine(line, w))
		}
		rows[r] = sb.String()
	}
	return rows
}

func (b *Board) viewStatusBar() string {
	label := "NAV"
	switch b.modes.Current() {
	case mode.Search:
		label = "SEARCH"
	case mode.TagSelection:
		label = "TAGS"
	}

	visible := len(b.store.VisibleCards())
	total := len(b.store.Cards())
	counts := fmt.Sprintf("%d cards", total)
	if visible != total {
		counts = fmt.Sprintf("%d/%d cards", visible, total)
	}
	if n := len(b.store.SelectedCardIDs()); n > 0 {
		counts += fmt.Sprintf(", %d selected", n)
	}

	parts := []string{counts}
	if b.scroll > 0 {
		parts = append(parts, "↑")
	}
	if b.scroll+b.areaHeight() < b.frame.height {
		parts = append(parts, "↓")
	}
	if b.status != "" {
		parts = append(parts, b.status)
	}
	parts = append(parts, "ctrl+h:help")

	bar := modeStyle.Render(label) + " " + statusBarStyle.Render(strings.Join(parts, " | "))
	if b.err != nil {
		bar += " " + errorStyle.Render("Error: "+b.err.Error())
	}
	return bar
}

// renderCard draws one card at the given outer width.
func (b *Board) renderCard(c card.Card, focused, selected bool, width int) string {
	inner := max(width-cardChrome, 1)
	lines := cardLines(c.Content, inner, b.opts.MaxCardLines)
	if len(lines) == 0 && len(card.ExtractTags(c.Content)) == 0 {
		lines = []string{dimStyle.Render("(empty)")}
	}
	if tags := card.ExtractTags(c.Content); len(tags) > 0 {
		lines = append(lines, cardTagStyle.Render(runewidth.Truncate(strings.Join(tags, " "), inner, "…")))
	}

	style := cardStyle
	switch {
	case focused && selected:
		style = focusedSelectedCardStyle
	case focused:
		style = focusedCardStyle
	case selected:
		style = selectedCardStyle
	}
	return style.Width(width - 2).Render(strings.Join(lines, "\n")) //nolint:mnd // border width
}
