package tagsel

import (
	"log/slog"
	"slices"

	"github.com/antopolskiy/kanban-kbd/internal/card"
	"github.com/antopolskiy/kanban-kbd/internal/event"
	"github.com/antopolskiy/kanban-kbd/internal/keys"
	"github.com/antopolskiy/kanban-kbd/internal/mode"
)

// TagState is the visual state of one tag chip.
type TagState struct {
	Tag      string
	Selected bool
	Focused  bool
	Darkened bool // does not match the typed prefix
	Glowing  bool // matches the typed prefix in preview mode
}

// Controller connects an Engine to the mode state and the filter topics.
// It keeps one engine for the application lifetime so the last focused tag
// is remembered between entries.
type Controller struct {
	engine    *Engine
	modes     *mode.State
	bus       *event.Bus
	logger    *slog.Logger
	active    bool
	tags      []string
	committed []string
}

// NewController subscribes to modes and bus and returns the controller.
func NewController(modes *mode.State, bus *event.Bus, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Controller{
		engine: New(nil, nil),
		modes:  modes,
		bus:    bus,
		logger: logger,
	}
	modes.Observe(c.onTransition)
	bus.TagsUpdated.Subscribe(c.onTagsUpdated)
	bus.FilterTags.Subscribe(func(tags []string) {
		if !c.active {
			c.committed = slices.Clone(tags)
		}
	})
	return c
}

// Active reports whether tag-selection mode is running.
func (c *Controller) Active() bool { return c.active }

// Prefix returns the typed prefix.
func (c *Controller) Prefix() string { return c.engine.Prefix() }

// FocusedTag returns the focused tag while active.
func (c *Controller) FocusedTag() string {
	if !c.active {
		return ""
	}
	return c.engine.FocusedTag()
}

// Selection returns the working selection while active, the committed one
// otherwise.
func (c *Controller) Selection() []string {
	if c.active {
		return c.engine.Selection()
	}
	return slices.Clone(c.committed)
}

// HasNoMatches reports whether a typed prefix matches nothing.
func (c *Controller) HasNoMatches() bool {
	return c.active && c.engine.IsPreview() && len(c.engine.MatchingTags()) == 0
}

// States returns one entry per tag in universe order.
func (c *Controller) States() []TagState {
	states := make([]TagState, 0, len(c.tags))
	if !c.active {
		for _, tag := range c.tags {
			states = append(states, TagState{Tag: tag, Selected: slices.Contains(c.committed, tag)})
		}
		return states
	}
	selection := c.engine.Selection()
	focused := c.engine.FocusedTag()
	preview := c.engine.IsPreview()
	for _, tag := range c.tags {
		matching := c.engine.IsTagMatching(tag)
		states = append(states, TagState{
			Tag:      tag,
			Selected: slices.Contains(selection, tag),
			Focused:  tag == focused,
			Darkened: !matching,
			Glowing:  preview && matching,
		})
	}
	return states
}

// HandleKey is the key handler for tag-selection mode.
func (c *Controller) HandleKey(ev keys.Event) bool {
	if !c.active {
		return false
	}
	switch ev.Key {
	case keys.Left:
		c.engine.MoveFocus(Left)
		c.publish()
	case keys.Right:
		c.engine.MoveFocus(Right)
		c.publish()
	case keys.Enter:
		exit := c.engine.HandleEnter(ev.Shift)
		c.publish()
		if exit {
			c.leave(true)
		}
	case keys.Space:
		c.engine.HandleSpace(ev.Shift)
		c.publish()
	case keys.Esc:
		exit := c.engine.HandleEscape()
		c.publish()
		if exit {
			c.leave(true)
		}
	case keys.Backspace:
		if !c.engine.RemoveLastCharacter() {
			c.leave(true)
			return true
		}
		c.publish()
	default:
		if _, ok := ev.Char(); !ok || ev.Ctrl || ev.Alt {
			return false
		}
		c.engine.AddCharacter(ev.Key)
		c.publish()
	}
	return true
}

// Click handles a click on a tag chip. Inside the mode it updates the
// engine and leaves; outside it edits the committed selection directly.
func (c *Controller) Click(tag string, shift bool) {
	if c.active {
		c.engine.HandleClick(tag, shift)
		c.publish()
		c.leave(true)
		return
	}
	var next []string
	if shift {
		next = card.Toggle(c.committed, tag)
	} else {
		next = card.SmartToggle(c.committed, tag)
	}
	if next == nil {
		next = []string{}
	}
	c.committed = next
	c.engine.SetLastFocusedTag(tag)
	c.bus.FilterTags.Publish(slices.Clone(next))
}

func (c *Controller) onTransition(t mode.Transition) {
	switch {
	case t.To == mode.TagSelection && !c.active:
		if len(c.tags) == 0 {
			c.logger.Debug("no tags to select, leaving tag-selection")
			c.modes.RequestExit()
			return
		}
		c.engine.UpdateTags(c.tags)
		c.engine.EnterMode(c.committed)
		c.active = true
		c.publish()
	case t.From == mode.TagSelection && c.active:
		c.leave(false)
	}
}

func (c *Controller) onTagsUpdated(tags []string) {
	c.tags = slices.Clone(tags)
	if !c.active {
		return
	}
	c.engine.UpdateTags(tags)
	c.publish()
}

func (c *Controller) publish() {
	c.bus.FilterTags.Publish(c.engine.ActiveFilterTags())
}

// leave commits the engine's selection and publishes it. When exitMode is
// set the mode state is asked to return to navigation.
func (c *Controller) leave(exitMode bool) {
	c.engine.ExitMode()
	final := c.engine.Selection()
	c.active = false
	c.committed = final
	c.bus.FilterTags.Publish(slices.Clone(final))
	c.logger.Debug("tag selection committed", slog.Any("tags", final))
	if exitMode {
		c.modes.RequestExit()
	}
}
