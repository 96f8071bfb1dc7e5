// Package spatial maps rendered card extents to navigation and insertion
// targets. Every function is pure.
package spatial

import (
	"math"
	"sort"

	"github.com/antopolskiy/kanban-kbd/internal/card"
)

// Match is a candidate card together with its position.
type Match struct {
	ID string
	card.Position
}

// FindCardInColumnAtY returns the card of cards whose extent best matches
// [top, bottom]: the largest positive overlap, else the nearest center.
// Candidates are ordered by top first so ties go to the upper card. Cards
// without a position are skipped; ok is false when none is positioned.
func FindCardInColumnAtY(cards []card.Card, positions map[string]card.Position, top, bottom float64) (Match, bool) {
	candidates := make([]Match, 0, len(cards))
	for _, c := range cards {
		if pos, ok := positions[c.ID]; ok {
			candidates = append(candidates, Match{ID: c.ID, Position: pos})
		}
	}
	if len(candidates) == 0 {
		return Match{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Top < candidates[j].Top
	})

	best, bestOverlap := -1, 0.0
	for i, m := range candidates {
		overlap := math.Max(0, math.Min(bottom, m.Bottom)-math.Max(top, m.Top))
		if overlap > bestOverlap {
			best, bestOverlap = i, overlap
		}
	}
	if best >= 0 {
		return candidates[best], true
	}

	center := (top + bottom) / 2 //nolint:mnd // midpoint
	best, bestDist := 0, math.Inf(1)
	for i, m := range candidates {
		if d := math.Abs(m.Center() - center); d < bestDist {
			best, bestDist = i, d
		}
	}
	return candidates[best], true
}

// FindBestCardToFocus keeps focused when it is still visible, otherwise
// returns the first card of the first non-empty column. It returns "" when
// nothing is visible.
func FindBestCardToFocus(visible []card.Card, columns []card.Column, focused string) string {
	if focused != "" && card.IndexOf(visible, focused) >= 0 {
		return focused
	}
	for _, col := range columns {
		if cards := card.InColumn(visible, col.ID); len(cards) > 0 {
			return cards[0].ID
		}
	}
	return ""
}

// InsertionAnchor decides where a card with extent source lands relative
// to target: before target (returns its ID) unless the source bottom lies
// more than half a target height below the target, in which case it
// returns "" to append at the end of the column.
func InsertionAnchor(source card.Position, target Match) string {
	threshold := target.Height() * 0.5 //nolint:mnd // half the target height
	if source.Bottom > target.Bottom+threshold {
		return ""
	}
	return target.ID
}

// AdjacentColumn walks from column index from in direction step (+1 or -1)
// and returns the index and visible cards of the first non-empty column,
// never entering the sink. ok is false when none exists.
func AdjacentColumn(visible []card.Card, columns []card.Column, from, step int) (idx int, cards []card.Card, ok bool) {
	for i := from + step; i >= 0 && i < len(columns)-1; i += step {
		if cs := card.InColumn(visible, columns[i].ID); len(cs) > 0 {
			return i, cs, true
		}
	}
	return -1, nil, false
}
