package prefs

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/types"
)

// PostgresStore keeps preferences in the layout_preferences table.
type PostgresStore struct {
	db *db.DB
}

// NewPostgresStore creates a store backed by database.
func NewPostgresStore(database *db.DB) *PostgresStore {
	return &PostgresStore{db: database}
}

func (s *PostgresStore) Get(ctx context.Context, resumeID string) (*types.LayoutPreferences, error) {
	id, err := uuid.Parse(resumeID)
	if err != nil {
		return nil, &StoreError{Backend: "postgres", Op: "get", Cause: err}
	}
	p, err := s.db.GetLayoutPreferences(ctx, id)
	if err != nil {
		return nil, &StoreError{Backend: "postgres", Op: "get", Cause: err}
	}
	return p, nil
}

func (s *PostgresStore) Put(ctx context.Context, resumeID string, p types.LayoutPreferences) error {
	id, err := uuid.Parse(resumeID)
	if err != nil {
		return &StoreError{Backend: "postgres", Op: "put", Cause: err}
	}
	if err := s.db.SaveLayoutPreferences(ctx, id, p); err != nil {
		return &StoreError{Backend: "postgres", Op: "put", Cause: err}
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, resumeID string) error {
	id, err := uuid.Parse(resumeID)
	if err != nil {
		return &StoreError{Backend: "postgres", Op: "delete", Cause: err}
	}
	if err := s.db.DeleteLayoutPreferences(ctx, id); err != nil {
		return &StoreError{Backend: "postgres", Op: "delete", Cause: err}
	}
	return nil
}
