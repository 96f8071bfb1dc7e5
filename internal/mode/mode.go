// Package mode tracks the single active interaction mode of the board.
package mode

import (
	"errors"
	"fmt"
)

// Mode is an interaction mode.
type Mode string

// Interaction modes. Navigation is the resting mode every other mode exits to.
const (
	Navigation   Mode = "navigation"
	Search       Mode = "search"
	TagSelection Mode = "tag-selection"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case Navigation, Search, TagSelection:
		return true
	}
	return false
}

// ErrModeConflict is returned when entering a mode while a different
// non-navigation mode is active. Callers must exit first.
var ErrModeConflict = errors.New("another mode is active")

// Transition describes a mode change.
type Transition struct {
	From Mode
	To   Mode
}

// State holds the current mode. It is created once per application and is
// owned by the UI goroutine.
type State struct {
	current   Mode
	nextID    int
	observers []observer
	queue     []Transition
	notifying bool
}

type observer struct {
	id int
	fn func(Transition)
}

// New returns a State in navigation mode.
func New() *State {
	return &State{current: Navigation}
}

// Current returns the active mode.
func (s *State) Current() Mode {
	return s.current
}

// Is reports whether m is the active mode.
func (s *State) Is(m Mode) bool {
	return s.current == m
}

// RequestEnter switches to m. Entering the active mode is a no-op and
// entering navigation is the same as RequestExit.
func (s *State) RequestEnter(m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("unknown mode %q", m)
	}
	if m == s.current {
		return nil
	}
	if m == Navigation {
		s.RequestExit()
		return nil
	}
	if s.current != Navigation {
		return fmt.Errorf("entering %s from %s: %w", m, s.current, ErrModeConflict)
	}
	s.transition(m)
	return nil
}

// RequestExit returns to navigation. Observers always see an explicit
// transition into navigation so that navigation setup runs uniformly.
func (s *State) RequestExit() {
	if s.current == Navigation {
		return
	}
	s.transition(Navigation)
}

// Observe registers fn for every transition and returns a cancel function.
func (s *State) Observe(fn func(Transition)) (cancel func()) {
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// transition applies the change immediately and queues the notification.
// Requests issued by observers are applied at once, but their
// notifications are delivered after the current one completes.
func (s *State) transition(to Mode) {
	t := Transition{From: s.current, To: to}
	s.current = to
	s.queue = append(s.queue, t)
	if s.notifying {
		return
	}
	s.notifying = true
	defer func() { s.notifying = false }()
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		for _, o := range s.observers {
			o.fn(next)
		}
	}
}
