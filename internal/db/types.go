package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/types"
)

// Resume represents a stored resume document
type Resume struct {
	ID        uuid.UUID             `json:"id"`
	Name      string                `json:"name"`
	Document  *types.ResumeDocument `json:"document"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// ResumeSummary is a resume listing entry without the document body
type ResumeSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Export status values
const (
	ExportSucceeded = "succeeded"
	ExportFailed    = "failed"
)

// ExportRecord is one entry of the export log
type ExportRecord struct {
	ID         uuid.UUID `json:"id"`
	ResumeID   uuid.UUID `json:"resume_id"`
	Strategy   string    `json:"strategy"`
	Filename   string    `json:"filename"`
	Status     string    `json:"status"`
	Pages      int       `json:"pages"`
	SizeBytes  int       `json:"size_bytes"`
	DurationMs int64     `json:"duration_ms"`
	Error      *string   `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Failed reports whether the export failed
func (r *ExportRecord) Failed() bool {
	return r.Status == ExportFailed
}
