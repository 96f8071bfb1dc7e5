package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
)

// confirmation is a question waiting for a yes/no answer.
type confirmation struct {
	prompt string
	onYes  func()
}

// Confirm implements nav.Confirmer with a modal dialog. onYes runs only
// when the user answers yes.
func (b *Board) Confirm(prompt string, onYes func()) {
	b.confirm = &confirmation{prompt: prompt, onYes: onYes}
}

func (b *Board) handleConfirmKey(msg tea.KeyMsg) {
	c := b.confirm
	switch msg.String() {
	case "y", "Y", "enter":
		b.confirm = nil
		c.onYes()
	case "n", "N", "esc":
		b.confirm = nil
		b.logger.Debug("confirmation declined", slog.String("prompt", c.prompt))
	}
}

func (b *Board) viewConfirm() string {
	content := errorStyle.Render(b.confirm.prompt) + "\n\n" +
		dimStyle.Render("y:yes  n:no")
	return dialogStyle.Render(content)
}
