package keys

import "github.com/antopolskiy/kanban-kbd/internal/event"

// GlobalChords maps the reserved chords to the signal each one raises.
var GlobalChords = map[string]event.Signal{
	"ctrl+h":       event.SignalHelp,
	"ctrl+e":       event.SignalExport,
	"ctrl+shift+e": event.SignalExportAll,
	"ctrl+i":       event.SignalImport,
	"ctrl+shift+i": event.SignalImportAll,
	"ctrl+b":       event.SignalNewBoard,
	"alt+t":        event.SignalFocusTitle,
	"ctrl+[":       event.SignalPrevBoard,
	"ctrl+]":       event.SignalNextBoard,
	"ctrl+c":       event.SignalQuit,
	"ctrl+q":       event.SignalQuit,
}

// ResetFiltersChord clears the tag and search filters.
const ResetFiltersChord = "ctrl+k"

// RegisterDefaultGlobals installs the global shortcut surface on d. Every
// chord publishes on bus; none of them returns a value.
func RegisterDefaultGlobals(d *Dispatcher, bus *event.Bus) {
	for chord, sig := range GlobalChords {
		d.RegisterGlobal(chord, func() { bus.Global.Publish(sig) })
	}
	d.RegisterGlobal(ResetFiltersChord, func() { bus.FilterReset.Publish(struct{}{}) })
}
