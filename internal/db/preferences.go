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
// Layout Preference Methods
// -----------------------------------------------------------------------------

// GetLayoutPreferences returns the stored preferences of a resume, or nil when none are stored
func (db *DB) GetLayoutPreferences(ctx context.Context, resumeID uuid.UUID) (*types.LayoutPreferences, error) {
	var raw []byte
	err := db.pool.QueryRow(ctx,
		`SELECT preferences FROM layout_preferences WHERE resume_id = $1`,
		resumeID,
	).Scan(&raw)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get layout preferences: %w", err)
	}

	var p types.LayoutPreferences
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal layout preferences: %w", err)
	}
	return &p, nil
}

// SaveLayoutPreferences upserts the preferences of a resume
func (db *DB) SaveLayoutPreferences(ctx context.Context, resumeID uuid.UUID, p types.LayoutPreferences) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal layout preferences: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO layout_preferences (resume_id, preferences)
		 VALUES ($1, $2)
		 ON CONFLICT (resume_id) DO UPDATE SET preferences = $2, updated_at = NOW()`,
		resumeID, raw,
	)
	if err != nil {
		return fmt.Errorf("failed to save layout preferences: %w", err)
	}
	return nil
}

// DeleteLayoutPreferences removes the preferences of a resume
func (db *DB) DeleteLayoutPreferences(ctx context.Context, resumeID uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM layout_preferences WHERE resume_id = $1`, resumeID)
	if err != nil {
		return fmt.Errorf("failed to delete layout preferences: %w", err)
	}
	return nil
}
