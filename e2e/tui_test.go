//go:build !windows

package e2e_test

import "testing"

func TestE2E_TUI_QuitKey(t *testing.T) {
	kanbanDir := initBoard(t)
	session := startTUIProcess(t, kanbanDir)
	session.waitForOutput("ctrl+h:help")
	session.waitForOutput("Kanban Board")

	session.pressKeys("ctrl+q")
	session.waitForExit()
}

func TestE2E_TUI_InsertEditComplete(t *testing.T) {
	kanbanDir := initBoard(t)
	session := startTUIProcess(t, kanbanDir)
	session.waitForOutput("0 cards")

	session.pressKeys("insert")
	session.waitForOutput("New card")
	session.typeText("Write e2e tests #qa")
	session.pressKeys("ctrl+s")
	session.waitForOutput("1 cards")

	session.pressKeys("ctrl+d")
	session.waitForOutput("Moved to todo")

	session.pressKeys("ctrl+q")
	session.waitForExit()

	waitForBoard(t, kanbanDir, "kanban-board", func(b boardJSON) bool {
		return b.Cards == 1 && b.ByColumn["todo"] == 1
	})
}

func TestE2E_TUI_SearchFilters(t *testing.T) {
	kanbanDir := initBoard(t)
	session := startTUIProcess(t, kanbanDir)
	session.waitForOutput("0 cards")

	session.pressKeys("insert")
	session.waitForOutput("New card")
	session.typeText("Buy milk")
	session.pressKeys("ctrl+s")
	session.waitForOutput("1 cards")

	session.pressKeys("/")
	session.waitForOutput("SEARCH")
	session.typeText("zzz")
	session.waitForOutput("0/1 cards")

	session.pressKeys("enter", "ctrl+k")
	session.waitForOutput("NAV")
}

func TestE2E_TUI_NewBoardPersists(t *testing.T) {
	kanbanDir := initBoard(t)
	session := startTUIProcess(t, kanbanDir)
	session.waitForOutput("ctrl+h:help")

	session.pressKeys("ctrl+b")
	session.waitForOutput("Opened New Board")
	session.pressKeys("ctrl+n")
	session.waitForOutput("Opened Kanban Board")

	session.pressKeys("ctrl+q")
	session.waitForExit()

	waitForBoard(t, kanbanDir, "new-board", func(b boardJSON) bool {
		return b.Title == "New Board"
	})
}

func TestE2E_TUI_OpensRequestedBoard(t *testing.T) {
	kanbanDir := initBoard(t)
	var created boardJSON
	if r := runKanbanJSON(t, kanbanDir, &created, "new", "Side Project"); r.exitCode != 0 {
		t.Fatalf("new failed: %s", r.stderr)
	}

	session := startTUIProcess(t, kanbanDir, "--board", created.ID)
	session.waitForOutput("Side Project")
}
