// Package tagsel implements prefix-typed tag selection: a state machine
// over a tag universe and a selection, plus the controller that binds it to
// the mode state and the filter topics.
package tagsel

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/antopolskiy/kanban-kbd/internal/card"
)

// ManualPrefix is the prefix of manual mode, where every tag matches.
const ManualPrefix = "#"

// Direction of a focus move.
type Direction int

// Focus directions.
const (
	Left Direction = iota
	Right
)

// Engine is the tag selection state machine. The zero value is not usable;
// call New.
type Engine struct {
	allTags        []string
	prefix         string
	focusedTag     string
	selection      []string
	savedSelection []string
	lastFocusedTag string
}

// New returns an engine over allTags with the given initial selection.
func New(allTags, initialSelection []string) *Engine {
	return &Engine{
		allTags:        slices.Clone(allTags),
		prefix:         ManualPrefix,
		selection:      dedupe(initialSelection),
		savedSelection: dedupe(initialSelection),
	}
}

// Prefix returns the typed prefix, always starting with "#".
func (e *Engine) Prefix() string { return e.prefix }

// FocusedTag returns the focused tag, or "" when nothing is focused.
func (e *Engine) FocusedTag() string { return e.focusedTag }

// Selection returns the current selection in insertion order.
func (e *Engine) Selection() []string { return slices.Clone(e.selection) }

// LastFocusedTag returns the tag last reached by explicit navigation.
func (e *Engine) LastFocusedTag() string { return e.lastFocusedTag }

// SetLastFocusedTag overrides the focus restoration hint.
func (e *Engine) SetLastFocusedTag(tag string) { e.lastFocusedTag = tag }

// AllTags returns the tag universe.
func (e *Engine) AllTags() []string { return slices.Clone(e.allTags) }

// IsManual reports whether the prefix is exactly "#".
func (e *Engine) IsManual() bool { return e.prefix == ManualPrefix }

// IsPreview reports whether characters follow the "#".
func (e *Engine) IsPreview() bool { return len(e.prefix) > len(ManualPrefix) }

// MatchingTags returns the tags matching the prefix, case-insensitively.
func (e *Engine) MatchingTags() []string {
	if e.IsManual() {
		return slices.Clone(e.allTags)
	}
	p := strings.ToLower(e.prefix)
	var out []string
	for _, tag := range e.allTags {
		if strings.HasPrefix(strings.ToLower(tag), p) {
			out = append(out, tag)
		}
	}
	return out
}

// IsTagMatching reports whether tag is in MatchingTags.
func (e *Engine) IsTagMatching(tag string) bool {
	if !slices.Contains(e.allTags, tag) {
		return false
	}
	return e.IsManual() || strings.HasPrefix(strings.ToLower(tag), strings.ToLower(e.prefix))
}

// ActiveFilterTags returns the tags the card filter should apply now:
// the selection in manual mode, the focused tag alone in preview mode.
func (e *Engine) ActiveFilterTags() []string {
	if e.IsManual() {
		return e.Selection()
	}
	if e.focusedTag != "" {
		return []string{e.focusedTag}
	}
	return []string{}
}

// InitializeFocus focuses lastFocusedTag if it still matches, else the
// first selected tag that matches, else the first match.
func (e *Engine) InitializeFocus() {
	matching := e.MatchingTags()
	if len(matching) == 0 {
		e.focusedTag = ""
		return
	}
	if e.lastFocusedTag != "" && slices.Contains(matching, e.lastFocusedTag) {
		e.focusedTag = e.lastFocusedTag
		return
	}
	for _, tag := range e.selection {
		if slices.Contains(matching, tag) {
			e.focusedTag = tag
			return
		}
	}
	e.focusedTag = matching[0]
}

// MoveFocus moves to the adjacent match, clamped at both ends.
func (e *Engine) MoveFocus(dir Direction) {
	matching := e.MatchingTags()
	if len(matching) == 0 {
		return
	}
	idx := slices.Index(matching, e.focusedTag)
	if e.focusedTag == "" || idx < 0 {
		e.focusedTag = matching[0]
		return
	}
	switch dir {
	case Right:
		idx = min(idx+1, len(matching)-1)
	case Left:
		idx = max(idx-1, 0)
	}
	e.focusedTag = matching[idx]
	e.lastFocusedTag = e.focusedTag
}

// AddCharacter appends s to the prefix.
func (e *Engine) AddCharacter(s string) {
	e.prefix += s
	e.refocus()
}

// RemoveLastCharacter drops the last prefix character. It returns false,
// without changing anything, when the prefix is already "#": the caller
// should leave the mode.
func (e *Engine) RemoveLastCharacter() bool {
	if e.IsManual() {
		return false
	}
	_, size := utf8.DecodeLastRuneInString(e.prefix)
	e.prefix = e.prefix[:len(e.prefix)-size]
	e.refocus()
	return true
}

// ResetPrefix returns to manual mode.
func (e *Engine) ResetPrefix() {
	e.prefix = ManualPrefix
	e.refocus()
}

func (e *Engine) refocus() {
	matching := e.MatchingTags()
	switch {
	case len(matching) == 0:
		e.focusedTag = ""
	case e.focusedTag == "" || !slices.Contains(matching, e.focusedTag):
		e.focusedTag = matching[0]
	}
}

// HandleSpace applies Space or Shift+Space to the focused tag.
func (e *Engine) HandleSpace(shift bool) {
	tag := e.focusedTag
	if tag == "" {
		return
	}
	switch {
	case e.IsManual() && shift:
		e.selection = card.Toggle(e.selection, tag)
	case e.IsManual():
		if len(e.selection) == 1 && e.selection[0] == tag {
			e.selection = nil
		} else {
			e.selection = []string{tag}
		}
	case shift:
		e.selection = union(e.savedSelection, tag)
	default:
		e.selection = []string{tag}
		e.ResetPrefix()
	}
}

// HandleEnter commits the focused tag and reports whether the mode should
// be left. Shift adds to the selection instead of replacing it.
func (e *Engine) HandleEnter(shift bool) (exit bool) {
	tag := e.focusedTag
	if tag == "" {
		return false
	}
	switch {
	case e.IsManual() && shift:
		e.selection = union(e.selection, tag)
	case shift:
		e.selection = union(e.savedSelection, tag)
	default:
		e.selection = []string{tag}
	}
	return true
}

// HandleClick focuses tag and updates the selection: shift toggles the
// tag, otherwise the selection is smart-toggled.
func (e *Engine) HandleClick(tag string, shift bool) {
	e.focusedTag = tag
	e.lastFocusedTag = tag
	if shift {
		e.selection = card.Toggle(e.selection, tag)
		return
	}
	e.selection = card.SmartToggle(e.selection, tag)
}

// HandleEscape leaves preview mode first. From manual mode it restores the
// saved selection and reports that the mode should be left.
func (e *Engine) HandleEscape() (exit bool) {
	if e.IsPreview() {
		e.ResetPrefix()
		return false
	}
	e.selection = slices.Clone(e.savedSelection)
	return true
}

// EnterMode seeds both selections from current and initializes focus.
func (e *Engine) EnterMode(current []string) {
	e.selection = dedupe(current)
	e.savedSelection = dedupe(current)
	e.prefix = ManualPrefix
	e.InitializeFocus()
}

// ExitMode clears the per-entry state. lastFocusedTag survives.
func (e *Engine) ExitMode() {
	e.prefix = ManualPrefix
	e.focusedTag = ""
}

// UpdateTags replaces the tag universe, drops selected tags that no longer
// exist and re-derives focus.
func (e *Engine) UpdateTags(tags []string) {
	e.allTags = slices.Clone(tags)
	kept := e.selection[:0:0]
	for _, tag := range e.selection {
		if slices.Contains(tags, tag) {
			kept = append(kept, tag)
		}
	}
	e.selection = kept
	e.refocus()
}

func union(base []string, tag string) []string {
	out := slices.Clone(base)
	if !slices.Contains(out, tag) {
		out = append(out, tag)
	}
	return out
}

func dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}
