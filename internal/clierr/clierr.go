// Package clierr defines structured CLI errors with machine-readable codes
// and process exit codes.
package clierr

import "fmt"

// Error codes.
const (
	BoardNotFound      = "BOARD_NOT_FOUND"
	BoardAlreadyExists = "BOARD_ALREADY_EXISTS"
	InvalidInput       = "INVALID_INPUT"
	InvalidConfig      = "INVALID_CONFIG"
	InvalidBoardFile   = "INVALID_BOARD_FILE"
	NoTerminal         = "NO_TERMINAL"
	InternalError      = "INTERNAL_ERROR"
)

const (
	exitUser     = 1
	exitInternal = 2
)

// Error is a CLI error with a code, a human message and optional details
// for the JSON envelope.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

// New creates an Error.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.Message
}

// WithDetails attaches details and returns e.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// ExitCode maps the error code to a process exit code: 2 for internal
// failures, 1 for everything the user can fix.
func (e *Error) ExitCode() int {
	if e.Code == InternalError {
		return exitInternal
	}
	return exitUser
}

// SilentError ends the process with Code without printing anything.
type SilentError struct {
	Code int
}

func (e *SilentError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}
