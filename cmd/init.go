package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/antopolskiy/kanban-kbd/internal/board"
	"github.com/antopolskiy/kanban-kbd/internal/clierr"
	"github.com/antopolskiy/kanban-kbd/internal/config"
	"github.com/antopolskiy/kanban-kbd/internal/filelock"
	"github.com/antopolskiy/kanban-kbd/internal/output"
	"github.com/antopolskiy/kanban-kbd/internal/storage"
)

const gitignoreFileMode = 0o600

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a kanban directory",
	Long: `Creates a .kanban directory in the current directory (or --dir) holding
the config file and a first board.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("title", board.DefaultTitle, "title of the first board")
	initCmd.Flags().Bool("gitignore", false, "add the kanban directory to .gitignore without asking")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	title, _ := cmd.Flags().GetString("title")
	addIgnore, _ := cmd.Flags().GetBool("gitignore")
	title = strings.TrimSpace(title)
	if title == "" {
		return clierr.New(clierr.InvalidInput, "board title must not be empty")
	}

	dir := flagDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		dir = filepath.Join(cwd, config.DefaultDir)
	}

	cfg, created, err := initDir(dir, title)
	if err != nil {
		return err
	}

	if addIgnore {
		gitignorePath, entry, err := gitignorePromptData(cfg.Dir())
		if err != nil {
			return err
		}
		if err := ensureGitignoreEntry(gitignorePath, entry); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if outputFormat() == output.FormatJSON {
		return output.JSON(out, map[string]any{
			"status": "initialized",
			"dir":    cfg.Dir(),
			"board":  created.ID,
			"title":  created.Title,
		})
	}
	output.Messagef(out, "Initialized %s with board %q", cfg.Dir(), created.Title)
	return nil
}

// initDir writes a default config into dir and creates the first board.
// The kanban directory's own .gitignore keeps the lock, log and temp files
// out of version control.
func initDir(dir, title string) (*config.Config, storage.Board, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, storage.Board{}, fmt.Errorf("resolving path: %w", err)
	}

	cfg := config.NewDefault()
	cfg.SetDir(absDir)
	if _, err := os.Stat(cfg.ConfigPath()); err == nil {
		return nil, storage.Board{}, clierr.Newf(clierr.BoardAlreadyExists,
			"kanban directory already initialized at %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}
	if err := cfg.Save(); err != nil {
		return nil, storage.Board{}, err
	}

	ignored := []string{filelock.LockFileName, ".board-*.tmp"}
	if cfg.Log.File != "" {
		ignored = append(ignored, filepath.ToSlash(cfg.Log.File))
	}
	for _, entry := range ignored {
		if err := ensureGitignoreLine(filepath.Join(absDir, ".gitignore"), entry); err != nil {
			return nil, storage.Board{}, err
		}
	}

	repo, err := storage.Open(cfg.BoardsPath(), nil)
	if err != nil {
		return nil, storage.Board{}, err
	}
	created, err := repo.Create(title)
	if err != nil {
		return nil, storage.Board{}, fmt.Errorf("creating board: %w", err)
	}
	return cfg, created, nil
}

// offerGitignore asks whether the kanban directory should be ignored by the
// repository it lives in.
func offerGitignore(r *bufio.Reader, out io.Writer, kanbanDir string) error {
	gitignorePath, entry, err := gitignorePromptData(kanbanDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Add %q to .gitignore? [Y/n] ", entry)
	if !readYes(r) {
		return nil
	}
	return ensureGitignoreEntry(gitignorePath, entry)
}

func gitignorePromptData(kanbanDir string) (string, string, error) {
	absDir, err := filepath.Abs(kanbanDir)
	if err != nil {
		return "", "", fmt.Errorf("resolving path: %w", err)
	}

	entry := filepath.Base(absDir)
	if entry == "" || entry == "." || entry == string(filepath.Separator) {
		return "", "", fmt.Errorf("invalid kanban directory %q", kanbanDir)
	}
	return filepath.Join(filepath.Dir(absDir), ".gitignore"), entry + "/", nil
}

// ensureGitignoreEntry adds a directory entry, always written with a
// trailing slash.
func ensureGitignoreEntry(gitignorePath, entry string) error {
	clean := strings.TrimSuffix(strings.TrimSpace(filepath.ToSlash(entry)), "/")
	return ensureGitignoreLine(gitignorePath, clean+"/")
}

// ensureGitignoreLine appends line unless the file already has it.
func ensureGitignoreLine(gitignorePath, line string) error {
	contents, err := os.ReadFile(gitignorePath) //nolint:gosec // path is built from the kanban directory
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading .gitignore: %w", err)
	}
	if err == nil && hasGitignoreLine(contents, line) {
		return nil
	}
	if os.IsNotExist(err) {
		return os.WriteFile(gitignorePath, []byte(line+"\n"), gitignoreFileMode)
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_WRONLY, gitignoreFileMode) //nolint:gosec // path is built from the kanban directory
	if err != nil {
		return fmt.Errorf("opening .gitignore: %w", err)
	}
	defer func() { _ = f.Close() }()

	if len(contents) > 0 && contents[len(contents)-1] != '\n' {
		line = "\n" + line
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("updating .gitignore: %w", err)
	}
	return nil
}

func hasGitignoreLine(contents []byte, line string) bool {
	for l := range strings.SplitSeq(string(contents), "\n") {
		if strings.TrimSpace(l) == line {
			return true
		}
	}
	return false
}
