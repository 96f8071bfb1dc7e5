package keys

import tea "github.com/charmbracelet/bubbletea"

// DefaultAliases rewrites terminal key names into the chords the
// dispatcher and mode handlers expect. Terminals cannot report several
// modified keys (ctrl+enter, shift+enter, ctrl+[ and others), so they get
// reachable stand-ins.
var DefaultAliases = map[string]string{
	"ctrl+@":     "ctrl+ ",
	"alt+ ":      "shift+ ",
	"alt+enter":  "shift+enter",
	"ctrl+d":     "ctrl+enter",
	"ctrl+p":     "ctrl+[",
	"ctrl+n":     "ctrl+]",
	"tab":        "ctrl+i",
	"alt+e":      "ctrl+shift+e",
	"alt+i":      "ctrl+shift+i",
	"alt+left":   "ctrl+left",
	"alt+right":  "ctrl+right",
	"alt+up":     "ctrl+up",
	"alt+down":   "ctrl+down",
	"shift+home": "ctrl+home",
	"shift+end":  "ctrl+end",
}

// Translator converts bubbletea key messages into Events.
type Translator struct {
	aliases map[string]string
}

// NewTranslator merges overrides on top of DefaultAliases. An override with
// an empty target removes the default alias.
func NewTranslator(overrides map[string]string) *Translator {
	aliases := make(map[string]string, len(DefaultAliases)+len(overrides))
	for k, v := range DefaultAliases {
		aliases[k] = v
	}
	for k, v := range overrides {
		if v == "" {
			delete(aliases, k)
			continue
		}
		aliases[k] = v
	}
	return &Translator{aliases: aliases}
}

// Translate converts msg. inTextInput is copied onto the event.
func (t *Translator) Translate(msg tea.KeyMsg, inTextInput bool) Event {
	name := msg.String()
	if alias, ok := t.aliases[name]; ok {
		name = alias
	}
	var ev Event
	if msg.Type == tea.KeyRunes && !msg.Alt && name == string(msg.Runes) {
		// Literal text, never a chord.
		ev = Event{Key: name}
		if r, ok := ev.Char(); ok && r >= 'A' && r <= 'Z' {
			ev.Shift = true
		}
	} else {
		ev = ParseChord(name)
	}
	ev.InTextInput = inTextInput
	return ev
}
