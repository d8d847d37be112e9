package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-builder/internal/types"
)

// -----------------------------------------------------------------------------
// Resume Methods
// -----------------------------------------------------------------------------

// CreateResume stores a new resume document and returns it with its generated ID
func (db *DB) CreateResume(ctx context.Context, doc *types.ResumeDocument) (*Resume, error) {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resume: %w", err)
	}

	r := Resume{Document: doc}
	err = db.pool.QueryRow(ctx,
		`INSERT INTO resumes (name, document)
		 VALUES ($1, $2)
		 RETURNING id, name, created_at, updated_at`,
		doc.Name, docJSON,
	).Scan(&r.ID, &r.Name, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create resume: %w", err)
	}
	return &r, nil
}

// GetResume retrieves a resume by ID. It returns nil when the resume does not exist.
func (db *DB) GetResume(ctx context.Context, id uuid.UUID) (*Resume, error) {
	var r Resume
	var docJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, document, created_at, updated_at
		 FROM resumes WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.Name, &docJSON, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}

	var doc types.ResumeDocument
	if err := json.Unmarshal(docJSON, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resume %s: %w", id, err)
	}
	r.Document = &doc
	return &r, nil
}

// ListResumes returns resume summaries, most recently updated first
func (db *DB) ListResumes(ctx context.Context, limit int) ([]ResumeSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, updated_at FROM resumes
		 ORDER BY updated_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	var out []ResumeSummary
	for rows.Next() {
		var s ResumeSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateResume replaces a resume document. It returns false when the resume does not exist.
func (db *DB) UpdateResume(ctx context.Context, id uuid.UUID, doc *types.ResumeDocument) (bool, error) {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("failed to marshal resume: %w", err)
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE resumes SET name = $1, document = $2, updated_at = NOW() WHERE id = $3`,
		doc.Name, docJSON, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update resume: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteResume removes a resume along with its preferences and export log.
// It returns false when the resume does not exist.
func (db *DB) DeleteResume(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete resume: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
