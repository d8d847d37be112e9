// Package types provides type definitions for structured data used throughout the resume-builder system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Violation types reported by pagination checks.
const (
	ViolationOrder    = "page_order"
	ViolationCoverage = "coverage"
	ViolationUnknown  = "unknown_section"
	ViolationOverflow = "page_overflow"
	ViolationPages    = "page_count"
)

// Severity levels
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Violation represents a single layout check failure
type Violation struct {
	Type             string   `json:"type"`
	Severity         string   `json:"severity"`
	Details          string   `json:"details"`
	AffectedSections []string `json:"affected_sections,omitempty"`
	Page             *int     `json:"page,omitempty"`
	OverflowPx       *float64 `json:"overflow_px,omitempty"`
}

// Violations represents a collection of layout check failures
type Violations struct {
	Violations []Violation `json:"violations"`
}

// HasErrors reports whether any violation has error severity.
func (v *Violations) HasErrors() bool {
	for _, violation := range v.Violations {
		if violation.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Add appends a violation.
func (v *Violations) Add(violation Violation) {
	v.Violations = append(v.Violations, violation)
}
