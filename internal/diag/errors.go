package diag

import (
	"errors"
	"fmt"
)

// Error kinds. Callers wrap them with context and test with errors.Is.
var (
	// ErrIO marks a file that could not be read or written.
	ErrIO = errors.New("i/o failure")
	// ErrFormat marks a structured document that failed to parse.
	ErrFormat = errors.New("invalid document")
	// ErrUsage marks a request rejected before any parsing.
	ErrUsage = errors.New("invalid usage")
	// ErrNoFilesMatched is returned when input patterns expand to nothing.
	ErrNoFilesMatched = errors.New("no files matched")
	// ErrLintFailed is returned when Error diagnostics were produced.
	ErrLintFailed = errors.New("lint failed")
)

// IOError wraps err as an ErrIO fault for path
func IOError(op, path string, err error) error {
	return fmt.Errorf("failed to %s %s: %w", op, path, errors.Join(ErrIO, err))
}

// FormatError wraps err as an ErrFormat fault for path
func FormatError(path string, err error) error {
	return fmt.Errorf("failed to parse %s: %w", path, errors.Join(ErrFormat, err))
}

type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }
func (e *usageError) Unwrap() error { return ErrUsage }

// UsageError builds an ErrUsage fault with a formatted message
func UsageError(format string, args ...interface{}) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// ExitCode maps an error returned by a command to a process exit status.
// nil maps to 0, ErrLintFailed to 1 and every other fault to 2.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrLintFailed):
		return 1
	default:
		return 2
	}
}
