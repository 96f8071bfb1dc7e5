// Package output formats CLI results as a table for people or JSON for
// scripts.
package output

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Format is the rendering of a command's result.
type Format string

// Formats accepted by --json/--table and KANBAN_OUTPUT.
const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// EnvVar overrides auto-detection with "json" or "table".
const EnvVar = "KANBAN_OUTPUT"

// ParseFormat reads a format name, ignoring case and surrounding space.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatTable:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want json or table)", s)
}

// Detector chooses a format when neither flag is given. Zero fields fall
// back to the process environment and stdout.
type Detector struct {
	Getenv     func(string) string
	IsTerminal func() bool
}

// Detect picks the format from flags first, then KANBAN_OUTPUT, then the
// terminal. An unparsable KANBAN_OUTPUT is ignored.
func (d Detector) Detect(jsonFlag, tableFlag bool) Format {
	switch {
	case jsonFlag:
		return FormatJSON
	case tableFlag:
		return FormatTable
	}

	getenv := d.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if f, err := ParseFormat(getenv(EnvVar)); err == nil {
		return f
	}

	isTerminal := d.IsTerminal
	if isTerminal == nil {
		isTerminal = stdoutIsTerminal
	}
	if isTerminal() {
		return FormatTable
	}
	return FormatJSON
}

// Detect uses the process environment and stdout.
func Detect(jsonFlag, tableFlag bool) Format {
	return Detector{}.Detect(jsonFlag, tableFlag)
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
