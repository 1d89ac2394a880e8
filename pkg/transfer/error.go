package transfer

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying why a run failed. Stages wrap their failures
// with these so callers can use errors.Is.
var (
	// ErrUsage means the command line was malformed
	ErrUsage = errors.New("invalid usage")
	// ErrInput means an input dataset was missing, unreadable or malformed
	ErrInput = errors.New("input error")
	// ErrOutput means the store could not be opened or written
	ErrOutput = errors.New("output error")
)

// Process exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
	ExitInput   = 3
	ExitOutput  = 4
)

// ErrorCategory defines categories of errors during a run
type ErrorCategory int

const (
	ErrorCategoryNone ErrorCategory = iota
	ErrorCategoryUsage
	ErrorCategoryInput
	ErrorCategoryOutput
	ErrorCategoryUnknown
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryUsage:
		return "Usage"
	case ErrorCategoryInput:
		return "Input"
	case ErrorCategoryOutput:
		return "Output"
	case ErrorCategoryUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Unknown(%d)", int(ec))
	}
}

// CategorizeError maps an error onto its category using the sentinel errors
func CategorizeError(err error) ErrorCategory {
	switch {
	case err == nil:
		return ErrorCategoryNone
	case errors.Is(err, ErrUsage):
		return ErrorCategoryUsage
	case errors.Is(err, ErrInput):
		return ErrorCategoryInput
	case errors.Is(err, ErrOutput):
		return ErrorCategoryOutput
	default:
		return ErrorCategoryUnknown
	}
}

// ExitCodeForError returns the process exit code for err
func ExitCodeForError(err error) int {
	switch CategorizeError(err) {
	case ErrorCategoryNone:
		return ExitSuccess
	case ErrorCategoryUsage:
		return ExitUsage
	case ErrorCategoryInput:
		return ExitInput
	case ErrorCategoryOutput:
		return ExitOutput
	default:
		return ExitError
	}
}

// WrapError tags err with a sentinel and adds context
func WrapError(sentinel, err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", sentinel, message, err)
}
