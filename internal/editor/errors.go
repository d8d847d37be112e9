// Package editor runs one editing session per resume: it owns the document and preferences,
// recalculates pagination on change and renders pages and exports from the current state.
package editor

import (
	"errors"
	"fmt"
)

// ErrSessionClosed is returned by operations on a closed session.
var ErrSessionClosed = errors.New("editor: session closed")

// ErrNotFound is returned when a resume does not exist.
var ErrNotFound = errors.New("editor: resume not found")

// ValidationError represents invalid input to a session operation
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
