// Package tui hosts a board in a bubbletea program. It renders the cards,
// reports where they landed to the layout tracker and routes keys and mouse
// presses to the interaction components.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/antopolskiy/kanban-kbd/internal/board"
	"github.com/antopolskiy/kanban-kbd/internal/card"
	"github.com/antopolskiy/kanban-kbd/internal/event"
	"github.com/antopolskiy/kanban-kbd/internal/keys"
	"github.com/antopolskiy/kanban-kbd/internal/layout"
	"github.com/antopolskiy/kanban-kbd/internal/mode"
	"github.com/antopolskiy/kanban-kbd/internal/nav"
	"github.com/antopolskiy/kanban-kbd/internal/storage"
	"github.com/antopolskiy/kanban-kbd/internal/tagsel"
)

// NewBoardTitle is the title given to boards created from the UI.
const NewBoardTitle = "New Board"

const (
	defaultMaxCardLines = 6
	defaultColumnWidth  = 28
	clearPrompt         = "Delete every card in this column?"
)

// Options configures a Board.
type Options struct {
	Repo         *storage.Repo
	BoardID      string // board to open; empty opens the first board
	SaveDebounce time.Duration
	MaxCardLines int
	ColumnWidth  int
	Aliases      map[string]string // key aliases on top of keys.DefaultAliases
	Logger       *slog.Logger
}

// ReloadMsg is sent by the file watcher when board files changed on disk.
type ReloadMsg struct{}

// savedMsg reports a write finished by the saver's timer.
type savedMsg struct{ res storage.SaveResult }

// Board is the top-level bubbletea model.
type Board struct {
	opts   Options
	logger *slog.Logger

	bus      *event.Bus
	modes    *mode.State
	store    *board.Store
	layout   *layout.Tracker
	dispatch *keys.Dispatcher
	trans    *keys.Translator
	tags     *tagsel.Controller

	repo    *storage.Repo
	saver   *storage.DebouncedSaver
	boardID string
	send    func(tea.Msg)
	stale   bool // the board file changed on disk and waits for a reload

	width  int
	height int
	scroll int
	frame  frame
	keyMap keyMap

	showHelp     bool
	confirm      *confirmation
	editor       *cardEditor
	search       textinput.Model
	title        textinput.Model
	editingTitle bool

	status   string
	err      error
	cmds     []tea.Cmd
	quitting bool
}

// New wires the interaction components around a store and opens a board,
// creating one when the repository is empty.
func New(opts Options) (*Board, error) {
	if opts.Repo == nil {
		return nil, errors.New("tui: repository is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.MaxCardLines <= 0 {
		opts.MaxCardLines = defaultMaxCardLines
	}
	if opts.ColumnWidth <= 0 {
		opts.ColumnWidth = defaultColumnWidth
	}

	logger := opts.Logger
	b := &Board{
		opts:   opts,
		logger: logger.With(slog.String("component", "tui")),
		bus:    event.NewBus(),
		modes:  mode.New(),
		layout: layout.NewTracker(),
		repo:   opts.Repo,
		keyMap: newKeyMap(),
		search: newSearchInput(),
		title:  newTitleInput(),
	}
	b.store = board.New(b.bus, b.layout, logger.With(slog.String("component", "board")))
	b.tags = tagsel.NewController(b.modes, b.bus, logger.With(slog.String("component", "tags")))
	b.trans = keys.NewTranslator(opts.Aliases)
	b.dispatch = keys.NewDispatcher(b.modes, logger.With(slog.String("component", "keys")))
	keys.RegisterDefaultGlobals(b.dispatch, b.bus)
	b.dispatch.RegisterModeHandler(mode.Navigation,
		nav.NewHandler(b.store, b.layout, b, b.modes, logger.With(slog.String("component", "nav"))))
	b.dispatch.RegisterModeHandler(mode.TagSelection, b.tags)
	b.saver = storage.NewDebouncedSaver(opts.Repo, opts.SaveDebounce, b.onSaved, logger)

	b.modes.Observe(b.onModeChange)
	b.bus.Global.Subscribe(b.onSignal)
	b.bus.EditCard.Subscribe(b.openEditor)
	b.bus.BoardChanged.Subscribe(func(struct{}) {
		b.saver.Notify(storage.FromSnapshot(b.boardID, b.store.Snapshot()))
	})
	b.bus.CardCompleted.Subscribe(func(column string) {
		b.status = "Moved to " + column
	})
	b.bus.FilterSearch.Subscribe(func(text string) {
		if b.search.Value() != text {
			b.search.SetValue(text)
		}
	})

	id, err := b.initialBoard(opts.BoardID)
	if err != nil {
		return nil, err
	}
	if err := b.openBoard(id); err != nil {
		return nil, err
	}
	b.relayout()
	return b, nil
}

// SetSender sets the function used to deliver background results to the
// running program, normally tea.Program.Send.
func (b *Board) SetSender(send func(tea.Msg)) {
	b.send = send
}

// BoardID returns the ID of the open board.
func (b *Board) BoardID() string { return b.boardID }

// Mode returns the active interaction mode.
func (b *Board) Mode() mode.Mode { return b.modes.Current() }

// FocusedCardID returns the focused card.
func (b *Board) FocusedCardID() string { return b.store.FocusedCardID() }

// Cards returns the open board's cards in board order.
func (b *Board) Cards() []card.Card { return b.store.Cards() }

// WatchPaths returns the paths that should be watched for file changes.
func (b *Board) WatchPaths() []string {
	return []string{b.repo.Dir()}
}

// Close writes any pending snapshot and stops the saver.
func (b *Board) Close() error {
	return b.saver.Close()
}

// Init implements tea.Model.
func (b *Board) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (b *Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		b.handleKey(msg)
	case tea.MouseMsg:
		b.handleMouse(msg)
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.layout.Invalidate()
		b.resizeEditor()
	case ReloadMsg:
		b.stale = true
	case savedMsg:
		b.applySave(msg.res)
	}

	b.reloadIfStale()
	b.relayout()

	cmds := b.cmds
	b.cmds = nil
	return b, tea.Batch(cmds...)
}

// View implements tea.Model.
func (b *Board) View() string {
	if b.quitting {
		return ""
	}
	if b.width == 0 {
		return "Loading..."
	}

	switch {
	case b.showHelp:
		return b.viewHelp()
	case b.confirm != nil:
		return b.viewConfirm()
	case b.editor != nil:
		return b.viewEditor()
	default:
		return b.viewBoard()
	}
}

func (b *Board) handleKey(msg tea.KeyMsg) {
	if key.Matches(msg, b.keyMap.ForceQuit) {
		b.quit()
		return
	}

	switch {
	case b.confirm != nil:
		b.handleConfirmKey(msg)
	case b.showHelp:
		b.showHelp = false
	case b.editor != nil:
		b.handleEditorKey(msg)
	case b.editingTitle:
		b.handleTitleKey(msg)
	case b.modes.Is(mode.Search):
		b.handleSearchKey(msg)
	default:
		ev := b.trans.Translate(msg, false)
		res := b.dispatch.OnKeyDown(ev)
		b.logger.Debug("key", slog.String("chord", ev.Chord()), slog.String("result", res.String()))
	}
}

// dispatchGlobal runs ev when it is a global chord. finish runs first so
// an open input is settled before the shortcut acts.
func (b *Board) dispatchGlobal(ev keys.Event, finish func()) bool {
	if !b.dispatch.IsGlobal(ev.Chord()) {
		return false
	}
	finish()
	b.dispatch.OnKeyDown(ev)
	return true
}

func (b *Board) handleSearchKey(msg tea.KeyMsg) {
	ev := b.trans.Translate(msg, true)
	if b.dispatch.OnKeyDown(ev).Consumed() {
		return
	}

	switch msg.Type {
	case tea.KeyEnter:
		b.modes.RequestExit()
		return
	case tea.KeyEsc:
		b.bus.FilterSearch.Publish("")
		b.modes.RequestExit()
		return
	}

	before := b.search.Value()
	var cmd tea.Cmd
	b.search, cmd = b.search.Update(msg)
	b.cmds = append(b.cmds, cmd)
	if v := b.search.Value(); v != before {
		b.bus.FilterSearch.Publish(v)
	}
}

func (b *Board) handleTitleKey(msg tea.KeyMsg) {
	if b.dispatchGlobal(b.trans.Translate(msg, true), b.commitTitle) {
		return
	}

	switch msg.Type {
	case tea.KeyEnter:
		b.commitTitle()
		return
	case tea.KeyEsc:
		b.editingTitle = false
		b.title.Blur()
		return
	}

	var cmd tea.Cmd
	b.title, cmd = b.title.Update(msg)
	b.cmds = append(b.cmds, cmd)
}

func (b *Board) startTitleEdit() {
	b.modes.RequestExit()
	b.editingTitle = true
	b.title.SetValue(b.store.Title())
	b.title.CursorEnd()
	b.cmds = append(b.cmds, b.title.Focus())
}

// commitTitle renames the board and saves at once so the board file moves
// with the title.
func (b *Board) commitTitle() {
	b.editingTitle = false
	b.title.Blur()
	title := strings.TrimSpace(b.title.Value())
	if title == "" || title == b.store.Title() {
		return
	}
	b.store.SetTitle(title)
	b.flush()
}

func (b *Board) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}
	if b.confirm != nil || b.showHelp || b.editor != nil || b.editingTitle {
		return
	}

	h := b.hitTest(msg.X, msg.Y)
	switch {
	case h.cardID != "":
		b.modes.RequestExit()
		b.store.ClickCard(h.cardID, msg.Shift)
	case h.tag != "":
		wasActive := b.tags.Active()
		b.tags.Click(h.tag, msg.Shift)
		if !wasActive {
			b.store.SmartFocus()
		}
	case h.columnID != "":
		b.clickHeader(h.columnID)
	}
}

// clickHeader offers to empty the sink column.
func (b *Board) clickHeader(columnID string) {
	cols := b.store.Columns()
	if !card.IsSink(cols, card.ColumnIndex(cols, columnID)) {
		return
	}
	if len(card.InColumn(b.store.Cards(), columnID)) == 0 {
		return
	}
	b.Confirm(clearPrompt, func() { b.store.ClearColumn(columnID) })
}

func (b *Board) onModeChange(t mode.Transition) {
	switch t.To {
	case mode.Navigation:
		b.search.Blur()
		b.store.SmartFocus()
	case mode.Search:
		b.cmds = append(b.cmds, b.search.Focus())
	}
	b.logger.Debug("mode changed", slog.String("from", string(t.From)), slog.String("to", string(t.To)))
}

func (b *Board) onSignal(sig event.Signal) {
	switch sig {
	case event.SignalHelp:
		b.showHelp = !b.showHelp
	case event.SignalExport, event.SignalExportAll, event.SignalImport, event.SignalImportAll:
		b.status = fmt.Sprintf("%s is not available", sig)
	case event.SignalNewBoard:
		b.newBoard()
	case event.SignalFocusTitle:
		b.startTitleEdit()
	case event.SignalPrevBoard:
		b.cycleBoard(-1)
	case event.SignalNextBoard:
		b.cycleBoard(1)
	case event.SignalQuit:
		b.quit()
	}
}

func (b *Board) quit() {
	b.closeInputs()
	if err := b.saver.Close(); err != nil {
		b.logger.Error("saving on quit", slog.String("error", err.Error()))
	}
	b.quitting = true
	b.cmds = append(b.cmds, tea.Quit)
}

// closeInputs commits the editor and the title input.
func (b *Board) closeInputs() {
	if b.editor != nil {
		b.commitEditor()
	}
	if b.editingTitle {
		b.commitTitle()
	}
	b.confirm = nil
	b.showHelp = false
}

func (b *Board) initialBoard(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	boards, err := b.repo.List()
	if err != nil {
		return "", err
	}
	if len(boards) > 0 {
		return boards[0].ID, nil
	}
	created, err := b.repo.Create(board.DefaultTitle)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

// openBoard loads id into the store. Pending changes to the current board
// are written first.
func (b *Board) openBoard(id string) error {
	b.flush()
	sb, err := b.repo.Get(id)
	if err != nil {
		return err
	}
	b.closeInputs()
	b.modes.RequestExit()
	b.boardID = sb.ID
	b.repo.Remember(sb.ID)
	b.stale = false
	b.scroll = 0
	b.store.Initialize(sb.Title, sb.Cards, sb.FocusedCardID)
	b.logger.Info("board opened", slog.String("board", sb.ID), slog.Int("cards", len(sb.Cards)))
	return nil
}

func (b *Board) switchTo(id string) {
	if err := b.openBoard(id); err != nil {
		b.err = err
		return
	}
	b.status = "Opened " + b.store.Title()
}

func (b *Board) newBoard() {
	b.flush()
	created, err := b.repo.Create(NewBoardTitle)
	if err != nil {
		b.err = err
		return
	}
	b.switchTo(created.ID)
}

// cycleBoard opens the board step places away in title order, wrapping
// around.
func (b *Board) cycleBoard(step int) {
	b.flush()
	boards, err := b.repo.List()
	if err != nil {
		b.err = err
		return
	}
	if len(boards) < 2 {
		b.status = "No other boards"
		return
	}
	i := max(slices.IndexFunc(boards, func(sb storage.Board) bool { return sb.ID == b.boardID }), 0)
	n := len(boards)
	b.switchTo(boards[((i+step)%n+n)%n].ID)
}

// reloadIfStale reloads the open board when its file was changed by
// another process. It waits while local edits are unsaved or an input is
// open, keeping filters and focus.
func (b *Board) reloadIfStale() {
	if !b.stale || b.quitting {
		return
	}
	if b.saver.Pending() || b.editor != nil || b.editingTitle || b.confirm != nil || !b.modes.Is(mode.Navigation) {
		return
	}
	b.stale = false

	changed, err := b.repo.ChangedExternally(b.boardID)
	if err != nil {
		b.err = err
		return
	}
	if !changed {
		return
	}
	sb, err := b.repo.Get(b.boardID)
	if err != nil {
		b.logger.Warn("reloading board", slog.String("board", b.boardID), slog.String("error", err.Error()))
		b.err = err
		return
	}

	tagFilter, search := b.store.TagFilter(), b.store.SearchText()
	b.repo.Remember(sb.ID)
	b.store.Initialize(sb.Title, sb.Cards, b.store.FocusedCardID())
	if len(tagFilter) > 0 {
		b.bus.FilterTags.Publish(tagFilter)
	}
	if search != "" {
		b.bus.FilterSearch.Publish(search)
	}
	b.status = "Reloaded from disk"
	b.logger.Info("board reloaded", slog.String("board", sb.ID))
}

// flush writes the pending snapshot now.
func (b *Board) flush() {
	b.applySave(b.saver.Flush())
}

// onSaved runs on the saver's goroutine. Program.Send blocks until the
// event loop reads the message, so it must not be called inline: Flush
// runs inside Update.
func (b *Board) onSaved(res storage.SaveResult) {
	if send := b.send; send != nil {
		go send(savedMsg{res: res})
	}
}

// applySave records the outcome of a write. A save that moved the board to
// a new file switches the open board's ID, and a numbered title is taken
// over.
func (b *Board) applySave(res storage.SaveResult) {
	if res.Err != nil {
		b.err = res.Err
		return
	}
	if res.RequestedID == "" {
		return
	}
	b.err = nil
	if res.RequestedID != b.boardID || res.Board.ID == b.boardID {
		return
	}
	b.boardID = res.Board.ID
	if res.Board.Title != b.store.Title() {
		b.store.SetTitle(res.Board.Title)
	}
}
