package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/antopolskiy/kanban-kbd/internal/clierr"
	"github.com/antopolskiy/kanban-kbd/internal/output"
	"github.com/antopolskiy/kanban-kbd/internal/storage"
)

var boardsCmd = &cobra.Command{
	Use:     "boards",
	Aliases: []string{"ls"},
	Short:   "List boards",
	Long:    `Lists every board with its card count per column.`,
	Args:    cobra.NoArgs,
	RunE:    runBoards,
}

var newCmd = &cobra.Command{
	Use:   "new TITLE",
	Short: "Create a board",
	Long: `Creates an empty board. A title already in use gets a number appended
("Sprint 2"). The board ID is derived from the title.`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

var rmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a board",
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

func init() {
	rootCmd.AddCommand(boardsCmd, newCmd, rmCmd)
}

func runBoards(cmd *cobra.Command, _ []string) error {
	_, repo, err := openRepo()
	if err != nil {
		return err
	}
	boards, err := repo.List()
	if err != nil {
		return clierr.New(clierr.InvalidBoardFile, err.Error())
	}

	out := cmd.OutOrStdout()
	if outputFormat() == output.FormatJSON {
		return output.JSON(out, output.Summarize(boards))
	}
	output.BoardTable(out, boards)
	return nil
}

func runNew(cmd *cobra.Command, args []string) error {
	title := strings.TrimSpace(args[0])
	if title == "" {
		return clierr.New(clierr.InvalidInput, "board title must not be empty")
	}
	_, repo, err := openRepo()
	if err != nil {
		return err
	}
	created, err := repo.Create(title)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputFormat() == output.FormatJSON {
		return output.JSON(out, output.Summarize([]storage.Board{created})[0])
	}
	output.Messagef(out, "Created board %q (%s)", created.Title, created.ID)
	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	_, repo, err := openRepo()
	if err != nil {
		return err
	}
	id := args[0]
	if err := repo.Delete(id); err != nil {
		return boardError(err, id)
	}

	out := cmd.OutOrStdout()
	if outputFormat() == output.FormatJSON {
		return output.JSON(out, map[string]any{"status": "deleted", "board": id})
	}
	output.Messagef(out, "Deleted board %s", id)
	return nil
}
