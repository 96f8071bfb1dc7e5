// Package keys routes key events to global shortcuts or to the handler of
// the active mode.
package keys

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Canonical key names. Printable keys use their literal text.
const (
	Left      = "left"
	Right     = "right"
	Up        = "up"
	Down      = "down"
	Home      = "home"
	End       = "end"
	Enter     = "enter"
	Esc       = "esc"
	Space     = " "
	Backspace = "backspace"
	Delete    = "delete"
	Insert    = "insert"
	F2        = "f2"
)

// Event is a key press with its modifiers.
type Event struct {
	Key   string
	Ctrl  bool
	Alt   bool
	Shift bool

	// InTextInput is set when a text field has focus.
	InTextInput bool
}

// Chord returns the normalized chord string, e.g. "ctrl+shift+e".
func (e Event) Chord() string {
	var b strings.Builder
	if e.Ctrl {
		b.WriteString("ctrl+")
	}
	if e.Alt {
		b.WriteString("alt+")
	}
	if e.Shift {
		b.WriteString("shift+")
	}
	b.WriteString(strings.ToLower(e.Key))
	return b.String()
}

// Plain reports whether no modifier is held.
func (e Event) Plain() bool {
	return !e.Ctrl && !e.Alt && !e.Shift
}

// Char returns the printable rune of a single-character key.
func (e Event) Char() (rune, bool) {
	if utf8.RuneCountInString(e.Key) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(e.Key)
	if !unicode.IsPrint(r) {
		return 0, false
	}
	return r, true
}

// ParseChord turns a chord string such as "ctrl+shift+left" into an Event.
// Modifier prefixes are only consumed while a key remains after them, so
// "ctrl++" is ctrl with the "+" key. A single upper-case letter implies
// shift.
func ParseChord(s string) Event {
	var ev Event
	for {
		lower := strings.ToLower(s)
		switch {
		case strings.HasPrefix(lower, "ctrl+") && len(s) > len("ctrl+"):
			ev.Ctrl = true
			s = s[len("ctrl+"):]
		case strings.HasPrefix(lower, "alt+") && len(s) > len("alt+"):
			ev.Alt = true
			s = s[len("alt+"):]
		case strings.HasPrefix(lower, "shift+") && len(s) > len("shift+"):
			ev.Shift = true
			s = s[len("shift+"):]
		default:
			ev.Key = s
			if r, ok := ev.Char(); ok && unicode.IsUpper(r) {
				ev.Shift = true
			}
			return ev
		}
	}
}
