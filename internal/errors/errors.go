package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/tally/internal/logger"
)

var (
	// ErrStorage is returned when the underlying store could not read or write.
	// Callers may retry.
	ErrStorage = errors.New("storage failure")
	// ErrInvalidInput is returned when a caller passes a value that can never be
	// valid, such as negative progress. Callers must fix the input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a habit or other addressed record does not exist.
	// A missing completion entry is not an error.
	ErrNotFound = errors.New("not found")
)

// Storage wraps err as an ErrStorage describing op
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

// Invalid returns an ErrInvalidInput with the formatted reason
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFound returns an ErrNotFound naming what was missing
func NotFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

// Kind returns the stable error kind of err, or nil if it has none
func Kind(err error) error {
	for _, kind := range []error{ErrInvalidInput, ErrNotFound, ErrStorage} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
