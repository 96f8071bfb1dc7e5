package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/antopolskiy/kanban-kbd/internal/board"
	"github.com/antopolskiy/kanban-kbd/internal/clierr"
	"github.com/antopolskiy/kanban-kbd/internal/config"
	"github.com/antopolskiy/kanban-kbd/internal/logging"
	"github.com/antopolskiy/kanban-kbd/internal/storage"
	"github.com/antopolskiy/kanban-kbd/internal/tui"
	"github.com/antopolskiy/kanban-kbd/internal/watcher"
)

// TUI flags, shared by the root command and tui.
var (
	flagNoWatch bool
	flagBoard   string
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive board UI",
	Long: `Launches the interactive board. Changes are saved shortly after each
edit, and the board reloads when its file changes on disk.

Press ctrl+h for the key reference and ctrl+q to quit.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	addTUIFlags(tuiCmd)
	rootCmd.AddCommand(tuiCmd)
}

func addTUIFlags(c *cobra.Command) {
	c.Flags().BoolVar(&flagNoWatch, "no-watch", false, "do not reload boards changed on disk")
	c.Flags().StringVarP(&flagBoard, "board", "b", "", "ID of the board to open")
}

func runTUI(_ *cobra.Command, _ []string) error {
	if !isTerminalFn() {
		return clierr.New(clierr.NoTerminal, "the board UI needs an interactive terminal")
	}

	cfg, err := loadConfig()
	if err != nil {
		if !isBoardNotFound(err) || flagDir != "" {
			return err
		}
		cfg, err = offerInitTUI(os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
	}

	logger, closeLog, err := logging.New(cfg.LogPath(), cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	repo, err := storage.Open(cfg.BoardsPath(), logger)
	if err != nil {
		return err
	}
	model, err := tui.New(tui.Options{
		Repo:         repo,
		BoardID:      flagBoard,
		SaveDebounce: cfg.SaveDebounce,
		MaxCardLines: cfg.TUI.MaxCardLines,
		ColumnWidth:  cfg.TUI.ColumnWidth,
		Aliases:      cfg.Aliases(),
		Logger:       logger,
	})
	if err != nil {
		return boardError(err, flagBoard)
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	model.SetSender(p.Send)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.Watch && !flagNoWatch {
		g.Go(func() error {
			startTUIWatcher(gctx, model.WatchPaths(), p.Send, logger)
			return nil
		})
	}
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		return err
	})

	err = g.Wait()
	if cerr := model.Close(); cerr != nil {
		logger.Error("final save failed", slog.String("error", cerr.Error()))
		if err == nil {
			err = cerr
		}
	}
	logger.Info("board closed", slog.String("board", model.BoardID()))
	return err
}

// offerInitTUI asks to create a kanban directory in the working directory
// and creates it on a yes (an empty answer counts as yes).
func offerInitTUI(in io.Reader, out io.Writer) (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	kanbanDir := filepath.Join(cwd, config.DefaultDir)

	fmt.Fprintf(out, "No kanban directory found. Create one in %s? [Y/n] ", kanbanDir)
	reader := bufio.NewReader(in)
	if !readYes(reader) {
		return nil, errors.New("no kanban directory found; run 'kanban-kbd init' to create one")
	}

	cfg, created, err := initDir(kanbanDir, board.DefaultTitle)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Board %q created in %s\n", created.Title, kanbanDir)

	if err := offerGitignore(reader, out, kanbanDir); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readYes reads one answer line. Empty, "y" and "yes" accept.
func readYes(r *bufio.Reader) bool {
	answer, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "" || answer == "y" || answer == "yes"
}

// startTUIWatcher sends a reload to the UI whenever a board file changes.
// It returns when ctx is done. A watcher that cannot start is logged and
// the UI runs without live reload.
func startTUIWatcher(ctx context.Context, paths []string, send func(tea.Msg), logger *slog.Logger) {
	w, err := watcher.New(paths, func() {
		send(tui.ReloadMsg{})
	}, watcher.WithFilter(storage.IsBoardFile))
	if err != nil {
		logger.Warn("live reload disabled", slog.String("error", err.Error()))
		return
	}
	defer func() { _ = w.Close() }()

	logger.Debug("watching boards", slog.Any("paths", paths))
	w.Run(ctx, func(err error) {
		logger.Warn("watch error", slog.String("error", err.Error()))
	})
}
