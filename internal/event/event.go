// Package event provides typed publish/subscribe topics used to connect the
// interaction components without shared mutable globals.
package event

// Topic is a synchronous, typed broadcast channel. Subscribers run in
// subscription order on the publisher's goroutine. A Topic is not safe for
// concurrent use; it belongs to the goroutine that owns the UI state.
type Topic[T any] struct {
	next int
	subs []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it.
func (t *Topic[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	t.next++
	id := t.next
	t.subs = append(t.subs, subscriber[T]{id: id, fn: fn})
	return func() {
		for i, s := range t.subs {
			if s.id == id {
				t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers v to every current subscriber. Subscribers added or
// removed during delivery take effect from the next Publish.
func (t *Topic[T]) Publish(v T) {
	subs := t.subs
	for _, s := range subs {
		s.fn(v)
	}
}

// Signal is a fire-and-forget global command.
type Signal string

// Global signals raised by the keyboard dispatcher's reserved chords.
const (
	SignalHelp       Signal = "help"
	SignalExport     Signal = "export"
	SignalExportAll  Signal = "export-all"
	SignalImport     Signal = "import"
	SignalImportAll  Signal = "import-all"
	SignalNewBoard   Signal = "new-board"
	SignalFocusTitle Signal = "focus-title"
	SignalPrevBoard  Signal = "prev-board"
	SignalNextBoard  Signal = "next-board"
	SignalQuit       Signal = "quit"
)

// Bus groups the application's topics.
type Bus struct {
	FilterTags    Topic[[]string] // active tag filter
	FilterSearch  Topic[string]   // free-text filter
	FilterReset   Topic[struct{}] // clear both filters
	TagsUpdated   Topic[[]string] // tag universe, sorted
	CardCompleted Topic[string]   // title of the destination column
	EditCard      Topic[string]   // card ID to open in the editor
	BoardChanged  Topic[struct{}] // card list, title or focus changed
	Global        Topic[Signal]
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}
