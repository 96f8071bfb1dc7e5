package keys

import (
	"log/slog"

	"github.com/antopolskiy/kanban-kbd/internal/mode"
)

// Result reports what the dispatcher did with an event.
type Result int

// Dispatch results.
const (
	// ResultIgnored means no global chord matched and the mode handler
	// declined the event (or none is registered).
	ResultIgnored Result = iota
	// ResultGlobal means a global chord ran.
	ResultGlobal
	// ResultHandled means the mode handler consumed the event.
	ResultHandled
	// ResultPassthrough means a text field has focus and should receive
	// the key untouched.
	ResultPassthrough
)

func (r Result) String() string {
	switch r {
	case ResultGlobal:
		return "global"
	case ResultHandled:
		return "handled"
	case ResultPassthrough:
		return "passthrough"
	default:
		return "ignored"
	}
}

// Consumed reports whether the host should stop processing the key.
func (r Result) Consumed() bool {
	return r == ResultGlobal || r == ResultHandled
}

// Handler handles keys for one mode. It returns true when it acted on the
// event.
type Handler interface {
	HandleKey(ev Event) bool
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ev Event) bool

// HandleKey calls f(ev).
func (f HandlerFunc) HandleKey(ev Event) bool { return f(ev) }

// ModeSource reports the active mode.
type ModeSource interface {
	Current() mode.Mode
}

// Dispatcher resolves key events against global chords, then against the
// handler registered for the active mode.
type Dispatcher struct {
	modes    ModeSource
	globals  map[string]func()
	handlers map[mode.Mode]Handler
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher reading the active mode from modes.
func NewDispatcher(modes ModeSource, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		modes:    modes,
		globals:  make(map[string]func()),
		handlers: make(map[mode.Mode]Handler),
		logger:   logger,
	}
}

// RegisterGlobal binds chord (in Event.Chord form) to action.
func (d *Dispatcher) RegisterGlobal(chord string, action func()) {
	d.globals[ParseChord(chord).Chord()] = action
}

// RegisterModeHandler sets the handler for m, replacing any previous one.
func (d *Dispatcher) RegisterModeHandler(m mode.Mode, h Handler) {
	d.handlers[m] = h
}

// IsGlobal reports whether chord is reserved.
func (d *Dispatcher) IsGlobal(chord string) bool {
	_, ok := d.globals[ParseChord(chord).Chord()]
	return ok
}

// OnKeyDown dispatches ev.
func (d *Dispatcher) OnKeyDown(ev Event) Result {
	chord := ev.Chord()
	if action, ok := d.globals[chord]; ok {
		d.logger.Debug("global shortcut", slog.String("chord", chord))
		action()
		return ResultGlobal
	}
	if ev.InTextInput {
		return ResultPassthrough
	}
	h, ok := d.handlers[d.modes.Current()]
	if !ok {
		return ResultIgnored
	}
	if h.HandleKey(ev) {
		return ResultHandled
	}
	return ResultIgnored
}
