// Package storage keeps boards as YAML files, one per board, in a single
// directory.
package storage

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/antopolskiy/kanban-kbd/internal/board"
	"github.com/antopolskiy/kanban-kbd/internal/card"
	"github.com/antopolskiy/kanban-kbd/internal/filelock"
)

// FileExt is the extension of board files.
const FileExt = ".yml"

const (
	fileMode = 0o600
	dirMode  = 0o750
)

// ErrNotFound indicates a board file does not exist.
var ErrNotFound = errors.New("board not found")

// Board is the persisted form of a board. ID is the file name without its
// extension and is not stored inside the file.
type Board struct {
	ID            string      `yaml:"-" json:"id"`
	Title         string      `yaml:"title" json:"title"`
	Cards         []card.Card `yaml:"cards" json:"cards"`
	LastModified  time.Time   `yaml:"last_modified" json:"last_modified"`
	FocusedCardID string      `yaml:"focused_card_id,omitempty" json:"focused_card_id,omitempty"`
}

// FromSnapshot builds a board with the given ID from a store snapshot.
func FromSnapshot(id string, s board.Snapshot) Board {
	return Board{
		ID:            id,
		Title:         s.Title,
		Cards:         append([]card.Card(nil), s.Cards...),
		FocusedCardID: s.FocusedCardID,
	}
}

// Repo reads and writes board files. Writes hold the directory lock and
// replace files atomically.
type Repo struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	written map[string][sha256.Size]byte
}

// Open returns a repository rooted at dir, creating the directory.
func Open(dir string, logger *slog.Logger) (*Repo, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("creating boards directory: %w", err)
	}
	return &Repo{
		dir:     dir,
		logger:  logger,
		now:     time.Now,
		written: make(map[string][sha256.Size]byte),
	}, nil
}

// Dir returns the boards directory.
func (r *Repo) Dir() string {
	return r.dir
}

// Path returns the file path of the board with the given ID.
func (r *Repo) Path(id string) string {
	return filepath.Join(r.dir, id+FileExt)
}

// IsBoardFile reports whether name is a board file rather than a lock or
// temporary file.
func IsBoardFile(name string) bool {
	base := filepath.Base(name)
	return filepath.Ext(base) == FileExt && !strings.HasPrefix(base, ".")
}

// List returns every board sorted by title.
func (r *Repo) List() ([]Board, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading boards directory: %w", err)
	}

	var boards []Board
	for _, entry := range entries {
		if entry.IsDir() || !IsBoardFile(entry.Name()) {
			continue
		}
		b, err := r.Get(strings.TrimSuffix(entry.Name(), FileExt))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		boards = append(boards, b)
	}

	sort.SliceStable(boards, func(i, j int) bool {
		ti, tj := strings.ToLower(boards[i].Title), strings.ToLower(boards[j].Title)
		if ti != tj {
			return ti < tj
		}
		return boards[i].ID < boards[j].ID
	})
	return boards, nil
}

// Get reads one board.
func (r *Repo) Get(id string) (Board, error) {
	data, err := os.ReadFile(r.Path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Board{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Board{}, fmt.Errorf("reading board: %w", err)
	}
	var b Board
	if err := yaml.Unmarshal(data, &b); err != nil {
		return Board{}, fmt.Errorf("parsing board %s: %w", id, err)
	}
	b.ID = id
	if b.Title == "" {
		b.Title = board.DefaultTitle
	}
	return b, nil
}

// Create writes a new, empty board and returns it.
func (r *Repo) Create(title string) (Board, error) {
	return r.Save(Board{Title: title})
}

// Save writes b. The ID follows the title: a board whose title slug is
// taken by another board gets a numbered title, and a renamed board moves
// to its new file. The returned board carries the final ID and title.
func (r *Repo) Save(b Board) (Board, error) {
	if b.Title == "" {
		b.Title = board.DefaultTitle
	}

	unlock, err := filelock.LockDir(r.dir)
	if err != nil {
		return Board{}, err
	}
	defer func() {
		if uerr := unlock(); uerr != nil {
			r.logger.Warn("releasing board lock", slog.String("error", uerr.Error()))
		}
	}()

	oldID := b.ID
	b.Title, b.ID = r.uniqueName(b.Title, oldID)
	b.LastModified = r.now()

	data, err := yaml.Marshal(b)
	if err != nil {
		return Board{}, fmt.Errorf("marshaling board: %w", err)
	}
	if err := writeAtomic(r.dir, r.Path(b.ID), data); err != nil {
		return Board{}, err
	}

	r.mu.Lock()
	r.written[b.ID] = sha256.Sum256(data)
	r.mu.Unlock()

	if oldID != "" && oldID != b.ID {
		if err := os.Remove(r.Path(oldID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Board{}, fmt.Errorf("removing renamed board: %w", err)
		}
		r.forget(oldID)
		r.logger.Info("board renamed", slog.String("from", oldID), slog.String("to", b.ID))
	}
	r.logger.Debug("board saved", slog.String("board", b.ID), slog.Int("cards", len(b.Cards)))
	return b, nil
}

// Delete removes a board file.
func (r *Repo) Delete(id string) error {
	unlock, err := filelock.LockDir(r.dir)
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	if err := os.Remove(r.Path(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("removing board: %w", err)
	}
	r.forget(id)
	return nil
}

// ChangedExternally reports whether the file for id differs from what this
// repository last wrote. A board this repository never wrote counts as
// changed; a missing file does not.
func (r *Repo) ChangedExternally(id string) (bool, error) {
	data, err := os.ReadFile(r.Path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("reading board: %w", err)
	}
	r.mu.Lock()
	sum, ok := r.written[id]
	r.mu.Unlock()
	return !ok || sum != sha256.Sum256(data), nil
}

// Remember records the current file contents of id as already seen, so a
// board loaded from disk is not reported as externally changed.
func (r *Repo) Remember(id string) {
	data, err := os.ReadFile(r.Path(id))
	if err != nil {
		return
	}
	r.mu.Lock()
	r.written[id] = sha256.Sum256(data)
	r.mu.Unlock()
}

func (r *Repo) forget(id string) {
	r.mu.Lock()
	delete(r.written, id)
	r.mu.Unlock()
}

// uniqueName returns the title and ID to save under. currentID keeps its
// slug when the title still maps to it.
func (r *Repo) uniqueName(title, currentID string) (string, string) {
	id := Slug(title)
	if id == currentID || !r.exists(id) {
		return title, id
	}
	for n := 2; ; n++ {
		candidate := title + " " + strconv.Itoa(n)
		id = Slug(candidate)
		if id == currentID || !r.exists(id) {
			return candidate, id
		}
	}
}

func (r *Repo) exists(id string) bool {
	_, err := os.Stat(r.Path(id))
	return err == nil
}

var (
	slugStrip = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpace = regexp.MustCompile(`\s+`)
	slugDash  = regexp.MustCompile(`-+`)
)

// Slug derives a file-safe board ID from a title.
func Slug(title string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(title), "")
	s = slugSpace.ReplaceAllString(s, "-")
	s = slugDash.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "untitled"
	}
	return s
}

func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".board-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing board: %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("setting board permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing board: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing board: %w", err)
	}
	return nil
}
