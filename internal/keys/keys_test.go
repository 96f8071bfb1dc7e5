package keys_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/antopolskiy/kanban-kbd/internal/event"
	"github.com/antopolskiy/kanban-kbd/internal/keys"
	"github.com/antopolskiy/kanban-kbd/internal/mode"
)

func TestChord(t *testing.T) {
	tests := []struct {
		ev   keys.Event
		want string
	}{
		{keys.Event{Key: "K", Ctrl: true}, "ctrl+k"},
		{keys.Event{Key: "E", Ctrl: true, Shift: true}, "ctrl+shift+e"},
		{keys.Event{Key: "t", Alt: true}, "alt+t"},
		{keys.Event{Key: "left", Ctrl: true, Alt: true, Shift: true}, "ctrl+alt+shift+left"},
		{keys.Event{Key: "/"}, "/"},
	}
	for _, tt := range tests {
		if got := tt.ev.Chord(); got != tt.want {
			t.Errorf("Chord(%+v) = %q, want %q", tt.ev, got, tt.want)
		}
	}
}

func TestParseChord(t *testing.T) {
	tests := []struct {
		in   string
		want keys.Event
	}{
		{"ctrl+shift+left", keys.Event{Key: "left", Ctrl: true, Shift: true}},
		{"ctrl++", keys.Event{Key: "+", Ctrl: true}},
		{"ctrl+ ", keys.Event{Key: " ", Ctrl: true}},
		{"alt+t", keys.Event{Key: "t", Alt: true}},
		{"A", keys.Event{Key: "A", Shift: true}},
		{"#", keys.Event{Key: "#"}},
		{"ctrl+", keys.Event{Key: "ctrl+"}},
	}
	for _, tt := range tests {
		if got := keys.ParseChord(tt.in); got != tt.want {
			t.Errorf("ParseChord(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

type fakeModes struct{ m mode.Mode }

func (f *fakeModes) Current() mode.Mode { return f.m }

func TestDispatcher_Order(t *testing.T) {
	modes := &fakeModes{m: mode.Navigation}
	d := keys.NewDispatcher(modes, nil)

	globals := 0
	d.RegisterGlobal("ctrl+k", func() { globals++ })
	var handled []string
	d.RegisterModeHandler(mode.Navigation, keys.HandlerFunc(func(ev keys.Event) bool {
		handled = append(handled, ev.Key)
		return ev.Key == "up"
	}))

	if got := d.OnKeyDown(keys.Event{Key: "k", Ctrl: true, InTextInput: true}); got != keys.ResultGlobal {
		t.Errorf("global in text input = %v, want global", got)
	}
	if got := d.OnKeyDown(keys.Event{Key: "up", InTextInput: true}); got != keys.ResultPassthrough {
		t.Errorf("text input = %v, want passthrough", got)
	}
	if got := d.OnKeyDown(keys.Event{Key: "up"}); got != keys.ResultHandled {
		t.Errorf("handled = %v, want handled", got)
	}
	if got := d.OnKeyDown(keys.Event{Key: "x"}); got != keys.ResultIgnored {
		t.Errorf("declined = %v, want ignored", got)
	}

	if globals != 1 {
		t.Errorf("globals = %d, want 1", globals)
	}
	if len(handled) != 2 {
		t.Errorf("mode handler calls = %v, want [up x]", handled)
	}

	modes.m = mode.Search
	if got := d.OnKeyDown(keys.Event{Key: "up"}); got != keys.ResultIgnored {
		t.Errorf("no handler for mode = %v, want ignored", got)
	}
}

func TestDispatcher_ReRegistrationOverwrites(t *testing.T) {
	d := keys.NewDispatcher(&fakeModes{m: mode.Search}, nil)
	first, second := 0, 0
	d.RegisterModeHandler(mode.Search, keys.HandlerFunc(func(keys.Event) bool { first++; return true }))
	d.RegisterModeHandler(mode.Search, keys.HandlerFunc(func(keys.Event) bool { second++; return true }))

	d.OnKeyDown(keys.Event{Key: "a"})
	if first != 0 || second != 1 {
		t.Errorf("first=%d second=%d, want 0 and 1", first, second)
	}
}

func TestRegisterDefaultGlobals(t *testing.T) {
	bus := event.NewBus()
	d := keys.NewDispatcher(&fakeModes{m: mode.Navigation}, nil)
	keys.RegisterDefaultGlobals(d, bus)

	var signals []event.Signal
	bus.Global.Subscribe(func(s event.Signal) { signals = append(signals, s) })
	resets := 0
	bus.FilterReset.Subscribe(func(struct{}) { resets++ })

	d.OnKeyDown(keys.Event{Key: "h", Ctrl: true})
	d.OnKeyDown(keys.Event{Key: "E", Ctrl: true, Shift: true})
	d.OnKeyDown(keys.Event{Key: "k", Ctrl: true})
	d.OnKeyDown(keys.Event{Key: "[", Ctrl: true})

	want := []event.Signal{event.SignalHelp, event.SignalExportAll, event.SignalPrevBoard}
	if len(signals) != len(want) {
		t.Fatalf("signals = %v, want %v", signals, want)
	}
	for i := range want {
		if signals[i] != want[i] {
			t.Errorf("signals[%d] = %q, want %q", i, signals[i], want[i])
		}
	}
	if resets != 1 {
		t.Errorf("resets = %d, want 1", resets)
	}
	if !d.IsGlobal("alt+t") {
		t.Error("alt+t should be global")
	}
}

func TestTranslator(t *testing.T) {
	tr := keys.NewTranslator(map[string]string{"ctrl+d": "", "ctrl+o": "ctrl+enter"})

	tests := []struct {
		name string
		msg  tea.KeyMsg
		want keys.Event
	}{
		{"rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("#")}, keys.Event{Key: "#"}},
		{"upper rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("B")}, keys.Event{Key: "B", Shift: true}},
		{"plus rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")}, keys.Event{Key: "+"}},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}, keys.Event{Key: " "}},
		{"ctrl+space alias", tea.KeyMsg{Type: tea.KeyCtrlAt}, keys.Event{Key: " ", Ctrl: true}},
		{"shift+left", tea.KeyMsg{Type: tea.KeyShiftLeft}, keys.Event{Key: "left", Shift: true}},
		{"ctrl+shift+up", tea.KeyMsg{Type: tea.KeyCtrlShiftUp}, keys.Event{Key: "up", Ctrl: true, Shift: true}},
		{"override", tea.KeyMsg{Type: tea.KeyCtrlO}, keys.Event{Key: "enter", Ctrl: true}},
		{"removed default", tea.KeyMsg{Type: tea.KeyCtrlD}, keys.Event{Key: "d", Ctrl: true}},
		{"alt rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t"), Alt: true}, keys.Event{Key: "t", Alt: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.Translate(tt.msg, false); got != tt.want {
				t.Errorf("Translate = %+v, want %+v", got, tt.want)
			}
		})
	}

	if ev := tr.Translate(tea.KeyMsg{Type: tea.KeyLeft}, true); !ev.InTextInput {
		t.Error("InTextInput not propagated")
	}
}
