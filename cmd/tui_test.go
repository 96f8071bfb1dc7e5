package cmd

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/antopolskiy/kanban-kbd/internal/clierr"
	"github.com/antopolskiy/kanban-kbd/internal/config"
	"github.com/antopolskiy/kanban-kbd/internal/storage"
	"github.com/antopolskiy/kanban-kbd/internal/tui"
)

var discardLogger = slog.New(slog.DiscardHandler)

func setTerminal(t *testing.T, tty bool) {
	t.Helper()
	old := isTerminalFn
	isTerminalFn = func() bool { return tty }
	t.Cleanup(func() { isTerminalFn = old })
}

// --- offerInitTUI tests ---

func TestOfferInitTUI_AcceptDefault(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	var out bytes.Buffer
	cfg, err := offerInitTUI(strings.NewReader("\n\n"), &out)
	if err != nil {
		t.Fatalf("offerInitTUI() error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}

	kanbanDir := filepath.Join(dir, config.DefaultDir)
	if _, err := os.Stat(filepath.Join(kanbanDir, config.ConfigFileName)); err != nil {
		t.Errorf("expected %s in %s", config.ConfigFileName, kanbanDir)
	}
	if !strings.Contains(out.String(), "created in") {
		t.Errorf("output = %q", out.String())
	}
}

func TestOfferInitTUI_AddsKanbanToGitignore(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	var out bytes.Buffer
	if _, err := offerInitTUI(strings.NewReader("y\nyes\n"), &out); err != nil {
		t.Fatalf("offerInitTUI() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		t.Fatalf("reading .gitignore: %v", err)
	}
	if !strings.Contains(string(data), config.DefaultDir+"/") {
		t.Errorf(".gitignore = %q, want %s/ entry", data, config.DefaultDir)
	}
}

func TestOfferInitTUI_SkipsGitignoreIfNo(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	var out bytes.Buffer
	if _, err := offerInitTUI(strings.NewReader("y\nn\n"), &out); err != nil {
		t.Fatalf("offerInitTUI() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".gitignore")); !os.IsNotExist(err) {
		t.Error("expected no project .gitignore after declining")
	}
}

func TestOfferInitTUI_Decline(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	var out bytes.Buffer
	cfg, err := offerInitTUI(strings.NewReader("nope\n"), &out)
	if err == nil {
		t.Fatal("expected error after declining")
	}
	if cfg != nil {
		t.Error("expected nil config after declining")
	}
	if _, statErr := os.Stat(filepath.Join(dir, config.DefaultDir)); !os.IsNotExist(statErr) {
		t.Error("kanban directory should not be created after declining")
	}
}

// --- runTUI tests ---

func TestRunTUI_NeedsTerminal(t *testing.T) {
	setTerminal(t, false)

	err := runTUI(tuiCmd, nil)
	var cliErr *clierr.Error
	if !errors.As(err, &cliErr) || cliErr.Code != clierr.NoTerminal {
		t.Fatalf("runTUI() error = %v, want NO_TERMINAL", err)
	}
}

func TestRunTUI_ExplicitDirNotFound(t *testing.T) {
	setTerminal(t, true)
	setDir(t, filepath.Join(t.TempDir(), "missing"))

	err := runTUI(tuiCmd, nil)
	if !isBoardNotFound(err) {
		t.Fatalf("runTUI() error = %v, want BOARD_NOT_FOUND without an init prompt", err)
	}
}

func TestRunTUI_InvalidConfig(t *testing.T) {
	setTerminal(t, true)
	kanbanDir := setupBoard(t)
	setDir(t, kanbanDir)
	if err := os.WriteFile(filepath.Join(kanbanDir, config.ConfigFileName), []byte("watch: [\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	err := runTUI(tuiCmd, nil)
	var cliErr *clierr.Error
	if !errors.As(err, &cliErr) || cliErr.Code != clierr.InvalidConfig {
		t.Fatalf("runTUI() error = %v, want INVALID_CONFIG", err)
	}
}

// --- startTUIWatcher tests ---

func TestStartTUIWatcher_CancelledContext(t *testing.T) {
	kanbanDir := setupBoard(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		startTUIWatcher(ctx, []string{filepath.Join(kanbanDir, config.DefaultBoardsDir)},
			func(tea.Msg) { t.Error("unexpected send") }, discardLogger)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("startTUIWatcher did not return after context cancellation")
	}
}

func TestStartTUIWatcher_InvalidPath(t *testing.T) {
	done := make(chan struct{})
	go func() {
		startTUIWatcher(context.Background(), []string{filepath.Join(t.TempDir(), "nonexistent")},
			func(tea.Msg) {}, discardLogger)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("startTUIWatcher did not return after watcher creation error")
	}
}

func TestStartTUIWatcher_SendsReloadOnBoardChange(t *testing.T) {
	kanbanDir := setupBoard(t)
	boardsDir := filepath.Join(kanbanDir, config.DefaultBoardsDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan tea.Msg, 1)
	go startTUIWatcher(ctx, []string{boardsDir}, func(msg tea.Msg) {
		select {
		case got <- msg:
		default:
		}
	}, discardLogger)

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	repo, err := storage.Open(boardsDir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Create("Another"); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-got:
		if _, ok := msg.(tui.ReloadMsg); !ok {
			t.Errorf("sent %T, want tui.ReloadMsg", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload sent after a board file changed")
	}
}
