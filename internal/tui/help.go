package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// keyMap documents the shortcuts for the help overlay. Dispatch itself goes
// through the keyboard dispatcher; these bindings only describe it. Chords
// terminals cannot send are listed with their stand-in.
type keyMap struct {
	ForceQuit key.Binding

	Focus      key.Binding
	Extend     key.Binding
	Move       key.Binding
	HomeEnd    key.Binding
	MoveEdge   key.Binding
	Edit       key.Binding
	Select     key.Binding
	Complete   key.Binding
	Delete     key.Binding
	Insert     key.Binding
	Unselect   key.Binding
	Search     key.Binding
	TagMode    key.Binding
	TagFocus   key.Binding
	TagType    key.Binding
	TagPick    key.Binding
	TagAdd     key.Binding
	TagApply   key.Binding
	TagApplyTo key.Binding
	TagBack    key.Binding
	TagEscape  key.Binding

	Help       key.Binding
	Reset      key.Binding
	NewBoard   key.Binding
	Title      key.Binding
	PrevBoard  key.Binding
	NextBoard  key.Binding
	ImportExpt key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),

		Focus:      key.NewBinding(key.WithKeys("left", "right", "up", "down"), key.WithHelp("←↑↓→", "focus card")),
		Extend:     key.NewBinding(key.WithKeys("shift+left", "shift+right", "shift+up", "shift+down"), key.WithHelp("shift+arrows", "extend selection")),
		Move:       key.NewBinding(key.WithKeys("ctrl+left", "ctrl+right", "ctrl+up", "ctrl+down", "alt+left", "alt+right", "alt+up", "alt+down"), key.WithHelp("ctrl/alt+arrows", "move cards")),
		HomeEnd:    key.NewBinding(key.WithKeys("home", "end"), key.WithHelp("home/end", "first/last card")),
		MoveEdge:   key.NewBinding(key.WithKeys("ctrl+home", "ctrl+end", "shift+home", "shift+end"), key.WithHelp("shift+home/end", "move to top/bottom")),
		Edit:       key.NewBinding(key.WithKeys("enter", " ", "f2"), key.WithHelp("enter/space", "edit card")),
		Select:     key.NewBinding(key.WithKeys("ctrl+@"), key.WithHelp("ctrl+space", "toggle selection")),
		Complete:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "complete card")),
		Delete:     key.NewBinding(key.WithKeys("delete"), key.WithHelp("delete", "delete card")),
		Insert:     key.NewBinding(key.WithKeys("insert"), key.WithHelp("insert", "new card")),
		Unselect:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		TagMode:    key.NewBinding(key.WithKeys("#"), key.WithHelp("#", "select tags")),
		TagFocus:   key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "focus tag")),
		TagType:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a-z", "narrow by prefix")),
		TagPick:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pick tag")),
		TagAdd:     key.NewBinding(key.WithKeys("alt+ "), key.WithHelp("alt+space", "add tag")),
		TagApply:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "filter by tag")),
		TagApplyTo: key.NewBinding(key.WithKeys("alt+enter"), key.WithHelp("alt+enter", "add tag and close")),
		TagBack:    key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "edit prefix")),
		TagEscape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back/close")),

		Help:       key.NewBinding(key.WithKeys("ctrl+h"), key.WithHelp("ctrl+h", "help")),
		Reset:      key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "reset filters")),
		NewBoard:   key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "new board")),
		Title:      key.NewBinding(key.WithKeys("alt+t"), key.WithHelp("alt+t", "rename board")),
		PrevBoard:  key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "previous board")),
		NextBoard:  key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "next board")),
		ImportExpt: key.NewBinding(key.WithKeys("ctrl+e", "tab"), key.WithHelp("ctrl+e/tab", "export/import")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+q", "ctrl+c"), key.WithHelp("ctrl+q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Search, k.TagMode, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Focus, k.Extend, k.Move, k.HomeEnd, k.MoveEdge, k.Edit, k.Select, k.Complete, k.Delete, k.Insert, k.Unselect},
		{k.Search, k.TagMode, k.TagFocus, k.TagType, k.TagPick, k.TagAdd, k.TagApply, k.TagApplyTo, k.TagBack, k.TagEscape},
		{k.Help, k.Reset, k.NewBoard, k.Title, k.PrevBoard, k.NextBoard, k.ImportExpt, k.Quit},
	}
}

func (b *Board) viewHelp() string {
	h := help.New()
	h.ShowAll = true
	h.Width = b.width

	content := lipgloss.NewStyle().Bold(true).Render("Keyboard Shortcuts") + "\n\n" +
		h.View(b.keyMap) + "\n\n" +
		dimStyle.Render("Press any key to close")
	return dialogStyle.Render(content)
}
