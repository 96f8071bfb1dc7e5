package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/antopolskiy/kanban-kbd/internal/card"
)

// Screen rows above the column area: title bar, tag bar, column headers.
const (
	titleRow     = 0
	tagRow       = 1
	headerRow    = 2
	areaTop      = 3
	boardChrome  = areaTop + 1 // rows above the area plus the status bar
	minColWidth  = 12
	cardChrome   = 4 // border (2) + padding (2)
	tagBarPrefix = "tags: "
)

// frame is one render pass: every visible card rendered once, with its
// rows in the unscrolled column area. All columns share the origin.
type frame struct {
	colWidth int
	columns  []columnFrame
	tags     []tagSpan
	height   int // tallest column, in rows
}

type columnFrame struct {
	column card.Column
	cards  []cardFrame
	lines  []string
}

type cardFrame struct {
	id     string
	top    int
	bottom int // exclusive
}

// tagSpan is the horizontal extent of a tag in the tag bar.
type tagSpan struct {
	tag        string
	start, end int // cells, end exclusive
}

// columnWidth fits the configured width into the terminal.
func (b *Board) columnWidth() int {
	n := len(b.store.Columns())
	w := b.opts.ColumnWidth
	if b.width > 0 && n > 0 && b.width/n < w {
		w = b.width / n
	}
	return max(w, minColWidth)
}

// areaHeight is the number of rows available to the column area.
func (b *Board) areaHeight() int {
	return max(b.height-boardChrome, 1)
}

// relayout renders every visible card, commits the resulting positions to
// the layout tracker and keeps the focused card scrolled into view.
// Callbacks waiting for the layout may change the board, so it repeats
// until the tracker stays settled.
func (b *Board) relayout() {
	const maxPasses = 4
	for range maxPasses {
		b.frame = b.buildFrame()
		b.layout.Commit(b.framePositions())
		if b.layout.Settled() {
			break
		}
	}
	b.ensureFocusVisible()
}

func (b *Board) buildFrame() frame {
	f := frame{colWidth: b.columnWidth()}
	visible := b.store.VisibleCards()
	focused := b.store.FocusedCardID()

	for _, col := range b.store.Columns() {
		cf := columnFrame{column: col}
		row := 0
		for _, c := range card.InColumn(visible, col.ID) {
			rendered := b.renderCard(c, c.ID == focused, b.store.IsSelected(c.ID), f.colWidth)
			lines := strings.Split(rendered, "\n")
			cf.cards = append(cf.cards, cardFrame{id: c.ID, top: row, bottom: row + len(lines)})
			cf.lines = append(cf.lines, lines...)
			row += len(lines)
		}
		f.height = max(f.height, row)
		f.columns = append(f.columns, cf)
	}
	f.tags = b.tagSpans()
	return f
}

func (b *Board) framePositions() map[string]card.Position {
	positions := make(map[string]card.Position)
	for _, cf := range b.frame.columns {
		for _, c := range cf.cards {
			positions[c.id] = card.Position{
				Top:      float64(c.top),
				Bottom:   float64(c.bottom),
				ColumnID: cf.column.ID,
			}
		}
	}
	return positions
}

func (b *Board) ensureFocusVisible() {
	areaH := b.areaHeight()
	if p, ok := b.layout.Position(b.store.FocusedCardID()); ok {
		top, bottom := int(p.Top), int(p.Bottom)
		if top < b.scroll {
			b.scroll = top
		}
		if bottom > b.scroll+areaH {
			b.scroll = bottom - areaH
		}
	}
	b.scroll = min(b.scroll, max(b.frame.height-areaH, 0))
	b.scroll = max(b.scroll, 0)
}

// tagSpans lays out the tag bar.
func (b *Board) tagSpans() []tagSpan {
	x := runewidth.StringWidth(tagBarPrefix)
	var spans []tagSpan
	for _, st := range b.tags.States() {
		w := runewidth.StringWidth(tagLabel(st))
		spans = append(spans, tagSpan{tag: st.Tag, start: x, end: x + w})
		x += w + 1
	}
	return spans
}

// hit is what a mouse press landed on.
type hit struct {
	cardID   string
	tag      string
	columnID string // header press
}

func (b *Board) hitTest(x, y int) hit {
	switch {
	case y == tagRow:
		for _, s := range b.frame.tags {
			if x >= s.start && x < s.end {
				return hit{tag: s.tag}
			}
		}
	case y == headerRow:
		if cf, ok := b.columnAt(x); ok {
			return hit{columnID: cf.column.ID}
		}
	case y >= areaTop && y < areaTop+b.areaHeight():
		cf, ok := b.columnAt(x)
		if !ok {
			return hit{}
		}
		row := y - areaTop + b.scroll
		for _, c := range cf.cards {
			if row >= c.top && row < c.bottom {
				return hit{cardID: c.id}
			}
		}
	}
	return hit{}
}

func (b *Board) columnAt(x int) (columnFrame, bool) {
	if b.frame.colWidth == 0 || x < 0 {
		return columnFrame{}, false
	}
	i := x / b.frame.colWidth
	if i >= len(b.frame.columns) {
		return columnFrame{}, false
	}
	return b.frame.columns[i], true
}

// cardLines turns card content into at most maxLines display lines that
// fit width cells. Lines made only of tags are dropped; the tags are shown
// on their own line.
func cardLines(content string, width, maxLines int) []string {
	maxLines = max(maxLines, 1)
	var lines []string
	for _, l := range card.DisplayLines(content) {
		lines = append(lines, wrapLine(l, width)...)
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		last := lines[maxLines-1]
		if runewidth.StringWidth(last) >= width {
			last = runewidth.Truncate(last, width-1, "")
		}
		lines[maxLines-1] = last + "…"
	}
	return lines
}

// wrapLine word-wraps s to width cells, breaking words that do not fit.
func wrapLine(s string, width int) []string {
	if width < 1 {
		width = 1
	}
	if runewidth.StringWidth(s) <= width {
		return []string{s}
	}
	var lines []string
	var cur strings.Builder
	curW := 0
	flush := func() {
		lines = append(lines, cur.String())
		cur.Reset()
		curW = 0
	}
	for _, word := range strings.Fields(s) {
		ww := runewidth.StringWidth(word)
		for ww > width {
			if curW > 0 {
				flush()
			}
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				_, size := utf8.DecodeRuneInString(word)
				head = word[:size]
			}
			lines = append(lines, head)
			word = word[len(head):]
			ww = runewidth.StringWidth(word)
		}
		if word == "" {
			continue
		}
		switch {
		case curW == 0:
		case curW+1+ww <= width:
			cur.WriteByte(' ')
			curW++
		default:
			flush()
		}
		cur.WriteString(word)
		curW += ww
	}
	if curW > 0 {
		flush()
	}
	return lines
}

// padLine right-pads s to width visible cells.
func padLine(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
