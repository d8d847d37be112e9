package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Export Log Methods
// -----------------------------------------------------------------------------

// RecordExport appends an entry to the export log and returns its ID
func (db *DB) RecordExport(ctx context.Context, rec *ExportRecord) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO resume_exports (resume_id, strategy, filename, status, pages, size_bytes, duration_ms, error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		rec.ResumeID, rec.Strategy, rec.Filename, rec.Status, rec.Pages, rec.SizeBytes, rec.DurationMs, rec.Error,
	).Scan(&id, &rec.CreatedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to record export: %w", err)
	}
	rec.ID = id
	return id, nil
}

// ListExports returns the export log of a resume, newest first
func (db *DB) ListExports(ctx context.Context, resumeID uuid.UUID, limit int) ([]ExportRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, resume_id, strategy, filename, status, pages, size_bytes, duration_ms, error, created_at
		 FROM resume_exports WHERE resume_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		resumeID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	var out []ExportRecord
	for rows.Next() {
		var r ExportRecord
		if err := rows.Scan(&r.ID, &r.ResumeID, &r.Strategy, &r.Filename, &r.Status, &r.Pages, &r.SizeBytes, &r.DurationMs, &r.Error, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
