package tui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/antopolskiy/kanban-kbd/internal/board"
)

const (
	editorMaxWidth = 60
	editorHeight   = 8
	dialogChrome   = 6 // border (2) + padding (4)
)

// cardEditor edits the content of one card.
type cardEditor struct {
	id   string
	area textarea.Model
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search"
	ti.CharLimit = 100
	return ti
}

func newTitleInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = board.DefaultTitle
	ti.CharLimit = 80
	return ti
}

// openEditor opens the editor on id. A fresh card starts empty with its
// placeholder text shown as a hint.
func (b *Board) openEditor(id string) {
	c, ok := b.store.Card(id)
	if !ok {
		b.logger.Warn("edit requested for unknown card", slog.String("card", id))
		return
	}
	if b.editor != nil {
		b.commitEditor()
	}

	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.Placeholder = board.NewCardContent
	if !c.IsNew || c.Content != board.NewCardContent {
		ta.SetValue(c.Content)
	}
	b.editor = &cardEditor{id: id, area: ta}
	b.resizeEditor()
	b.cmds = append(b.cmds, b.editor.area.Focus())
}

func (b *Board) resizeEditor() {
	if b.editor == nil {
		return
	}
	w := editorMaxWidth
	if b.width > 0 {
		w = min(w, b.width-dialogChrome)
	}
	b.editor.area.SetWidth(max(w, minColWidth))
	b.editor.area.SetHeight(editorHeight)
}

func (b *Board) handleEditorKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "esc", "ctrl+s":
		b.commitEditor()
		return
	}
	if b.dispatchGlobal(b.trans.Translate(msg, true), b.commitEditor) {
		return
	}

	var cmd tea.Cmd
	b.editor.area, cmd = b.editor.area.Update(msg)
	b.cmds = append(b.cmds, cmd)
}

// commitEditor writes the edited content back. Clearing a card that was
// just added abandons it; clearing an existing card leaves it unchanged.
func (b *Board) commitEditor() {
	ed := b.editor
	b.editor = nil
	c, ok := b.store.Card(ed.id)
	if !ok {
		return
	}

	content := strings.TrimRight(ed.area.Value(), " \n")
	switch {
	case strings.TrimSpace(content) == "":
		if c.IsNew {
			b.store.DeleteCard(c.ID)
		}
	case content != c.Content || c.IsNew:
		b.store.UpdateCard(c.ID, content)
	}
}

func (b *Board) viewEditor() string {
	title := "Edit card"
	if c, ok := b.store.Card(b.editor.id); ok && c.IsNew {
		title = "New card"
	}
	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n" +
		b.editor.area.View() + "\n\n" +
		dimStyle.Render("esc/ctrl+s:save  #tag:add tag")
	return dialogStyle.Render(content)
}
