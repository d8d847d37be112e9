// Package measure reads rendered section heights from a resume view.
package measure

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
)

// ErrNotReady is returned when there is no rendered view to read yet. Callers skip the pass silently.
var ErrNotReady = errors.New("measure: view not ready")

// Measurer reads the header height and every section's height from a rendered view, in document order.
// Sections with zero height are omitted. Implementations never modify the view.
type Measurer interface {
	Measure(ctx context.Context, view *rendering.View) (*types.Measurement, error)
}

// MeasureError represents a failure reading layout from a view
type MeasureError struct {
	Measurer string
	Message  string
	Cause    error
}

func (e *MeasureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s measure error: %s: %v", e.Measurer, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s measure error: %s", e.Measurer, e.Message)
}

func (e *MeasureError) Unwrap() error {
	return e.Cause
}

// ready reports whether view can be measured at all.
func ready(view *rendering.View) bool {
	return view != nil && view.HTML != ""
}

// dropEmpty removes zero-height sections, keeping order.
func dropEmpty(sections []types.SectionMeasurement) []types.SectionMeasurement {
	out := make([]types.SectionMeasurement, 0, len(sections))
	for _, s := range sections {
		if s.HeightPx > 0 {
			out = append(out, s)
		}
	}
	return out
}
