// kanban-kbd is a keyboard-driven kanban board for the terminal.
package main

import (
	// Load a .env file from the working directory, if present, so
	// KANBAN_OUTPUT and NO_COLOR can be set per project.
	_ "github.com/joho/godotenv/autoload"

	"github.com/antopolskiy/kanban-kbd/cmd"
)

func main() {
	cmd.Execute()
}
