// Package prefs persists layout preferences, the only layout data that outlives a session.
package prefs

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-builder/internal/types"
)

// Store persists layout preferences per resume.
type Store interface {
	// Get returns the stored preferences, or nil when none are stored.
	Get(ctx context.Context, resumeID string) (*types.LayoutPreferences, error)
	Put(ctx context.Context, resumeID string, p types.LayoutPreferences) error
	Delete(ctx context.Context, resumeID string) error
}

// Key returns the key preferences are stored under.
func Key(resumeID string) string {
	return "resume:" + resumeID + ":layout"
}

// StoreError represents a preference store failure
type StoreError struct {
	Backend string
	Op      string
	Cause   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s preference store: %s failed: %v", e.Backend, e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}
