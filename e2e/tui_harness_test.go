//go:build !windows

package e2e_test

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

const (
	tuiRows           = 40
	tuiCols           = 120
	tuiStartupTimeout = 3 * time.Second
	tuiExitTimeout    = 3 * time.Second
	tuiKeyDelay       = 12 * time.Millisecond
	tuiSaveTimeout    = 2 * time.Second
)

var (
	ansiCSIRe = regexp.MustCompile(`\x1b\[[0-9;?<]*[ -/]*[@-~]`)
	ansiOSCRe = regexp.MustCompile(`\x1b\][^\x07]*\x07`)
)

type tuiOutputBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *tuiOutputBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *tuiOutputBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type tuiSession struct {
	t       *testing.T
	cmd     *exec.Cmd
	ptmx    *os.File
	out     tuiOutputBuffer
	done    chan struct{}
	doneErr chan error
	cleanup sync.Once
}

func startTUIProcess(t *testing.T, dir string, args ...string) *tuiSession {
	t.Helper()

	fullArgs := append([]string{"--dir", dir, "tui"}, args...)
	cmd := exec.Command(binPath, fullArgs...) //nolint:gosec,noctx // command uses test-built binary path
	cmd.Env = append(os.Environ(), "NO_COLOR=1", "TERM=dumb")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: tuiCols, Rows: tuiRows})
	if err != nil {
		t.Fatalf("starting TUI process: %v", err)
	}

	session := &tuiSession{
		t:       t,
		cmd:     cmd,
		ptmx:    ptmx,
		done:    make(chan struct{}),
		doneErr: make(chan error, 1),
	}

	go func() {
		_, _ = io.Copy(&session.out, ptmx)
		session.doneErr <- cmd.Wait()
		close(session.done)
	}()

	t.Cleanup(session.close)
	return session
}

func (s *tuiSession) close() {
	s.cleanup.Do(func() {
		_ = s.pressKey("ctrl+q")
		select {
		case <-s.done:
		case <-time.After(tuiExitTimeout):
			if s.cmd.Process != nil {
				_ = s.cmd.Process.Kill()
			}
			<-s.done
		}
		_ = s.ptmx.Close()
	})
}

func (s *tuiSession) output() string {
	return sanitizeTTYOutput(s.out.String())
}

func (s *tuiSession) pressKey(name string) error {
	_, err := s.ptmx.Write([]byte(encodeKey(name)))
	if err != nil {
		return err
	}
	time.Sleep(tuiKeyDelay)
	return nil
}

func (s *tuiSession) pressKeys(names ...string) {
	s.t.Helper()
	for _, name := range names {
		if err := s.pressKey(name); err != nil {
			s.t.Fatalf("pressing key %q: %v", name, err)
		}
	}
}

func (s *tuiSession) typeText(text string) {
	s.t.Helper()
	for _, r := range text {
		if err := s.pressKey(string(r)); err != nil {
			s.t.Fatalf("typing text %q: %v", text, err)
		}
	}
}

// waitForOutput waits until needle appears anywhere in the output so far.
func (s *tuiSession) waitForOutput(needle string) {
	s.t.Helper()
	deadline := time.Now().Add(tuiStartupTimeout)
	for time.Now().Before(deadline) {
		if strings.Contains(s.output(), needle) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	s.t.Fatalf("timed out waiting for output containing %q; got %q", needle, s.output())
}

func (s *tuiSession) waitForExit() {
	s.t.Helper()
	select {
	case <-s.done:
		if err := <-s.doneErr; err != nil {
			s.t.Errorf("TUI exited with error: %v", err)
		}
	case <-time.After(tuiExitTimeout):
		s.t.Fatalf("timed out waiting for TUI process to exit")
	}
}

func encodeKey(name string) string {
	switch name {
	case "enter":
		return "\r"
	case "esc":
		return "\x1b"
	case "up":
		return "\x1b[A"
	case "down":
		return "\x1b[B"
	case "left":
		return "\x1b[D"
	case "right":
		return "\x1b[C"
	case "ctrl+right":
		return "\x1b[1;5C"
	case "insert":
		return "\x1b[2~"
	case "ctrl+b":
		return "\x02"
	case "ctrl+d":
		return "\x04"
	case "ctrl+k":
		return "\x0b"
	case "ctrl+n":
		return "\x0e"
	case "ctrl+q":
		return "\x11"
	case "ctrl+s":
		return "\x13"
	default:
		return name
	}
}

func sanitizeTTYOutput(raw string) string {
	raw = strings.ReplaceAll(raw, "\r", "")
	raw = ansiCSIRe.ReplaceAllString(raw, "")
	raw = ansiOSCRe.ReplaceAllString(raw, "")
	return raw
}

// waitForBoard polls the boards listing until check accepts the board with
// the given ID.
func waitForBoard(t *testing.T, kanbanDir, id string, check func(boardJSON) bool) {
	t.Helper()

	deadline := time.Now().Add(tuiSaveTimeout)
	var last boardJSON
	for {
		for _, b := range listBoards(t, kanbanDir) {
			if b.ID == id {
				last = b
				if check(b) {
					return
				}
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for board %q, last seen: %#v", id, last)
		}
		time.Sleep(20 * time.Millisecond)
	}
}
