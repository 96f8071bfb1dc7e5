// Package cmd implements the kanban-kbd CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/antopolskiy/kanban-kbd/internal/clierr"
	"github.com/antopolskiy/kanban-kbd/internal/config"
	"github.com/antopolskiy/kanban-kbd/internal/output"
	"github.com/antopolskiy/kanban-kbd/internal/storage"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagDir     string
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "kanban-kbd",
	Short: "A keyboard-driven kanban board for the terminal",
	Long: `kanban-kbd is a kanban board you drive from the keyboard. Cards live in
five columns (idea, todo, doing, done, delete), carry #tags in their text and
are filtered by tag or free-text search. Boards are stored as YAML files in a
.kanban directory and reload live when edited elsewhere.

Run without a subcommand to open the board UI; press ctrl+h inside for help.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	Args:          cobra.NoArgs,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || os.Getenv("NO_COLOR") != "" {
			output.DisableColor()
		}
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to kanban directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
	addTUIFlags(rootCmd)
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	// Handle SilentError: exit with code, no output.
	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	if outputFormat() == output.FormatJSON {
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			os.Exit(cliErr.ExitCode())
		}
		// Unknown error: wrap as INTERNAL_ERROR.
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		os.Exit(cliErr.ExitCode())
	}
	os.Exit(1)
}

// loadConfig finds and loads the kanban config.
func loadConfig() (*config.Config, error) {
	dir := flagDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		dir, err = config.FindDir(cwd)
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(dir)
	switch {
	case errors.Is(err, config.ErrNotFound):
		return nil, clierr.New(clierr.BoardNotFound, err.Error()).WithDetails(map[string]any{"dir": dir})
	case errors.Is(err, config.ErrInvalid):
		return nil, clierr.New(clierr.InvalidConfig, err.Error())
	case err != nil:
		return nil, err
	}
	return cfg, nil
}

// openRepo loads the config and opens its boards directory.
func openRepo() (*config.Config, *storage.Repo, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	repo, err := storage.Open(cfg.BoardsPath(), nil)
	if err != nil {
		return nil, nil, err
	}
	return cfg, repo, nil
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable)
}

func isBoardNotFound(err error) bool {
	var cliErr *clierr.Error
	return errors.As(err, &cliErr) && cliErr.Code == clierr.BoardNotFound
}

// boardError turns repository errors into CLI errors.
func boardError(err error, id string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return clierr.Newf(clierr.BoardNotFound, "board %q not found", id).
			WithDetails(map[string]any{"board": id})
	}
	return clierr.New(clierr.InvalidBoardFile, err.Error())
}

// isTerminalFn reports whether the UI can take over the terminal.
// Replaceable in tests.
var isTerminalFn = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
