package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/types"
)

// ResumeStore is the persistence the API needs. *db.DB implements it.
type ResumeStore interface {
	CreateResume(ctx context.Context, doc *types.ResumeDocument) (*db.Resume, error)
	GetResume(ctx context.Context, id uuid.UUID) (*db.Resume, error)
	ListResumes(ctx context.Context, limit int) ([]db.ResumeSummary, error)
	UpdateResume(ctx context.Context, id uuid.UUID, doc *types.ResumeDocument) (bool, error)
	DeleteResume(ctx context.Context, id uuid.UUID) (bool, error)
	RecordExport(ctx context.Context, rec *db.ExportRecord) (uuid.UUID, error)
	ListExports(ctx context.Context, resumeID uuid.UUID, limit int) ([]db.ExportRecord, error)
}

// ResumeSource adapts a ResumeStore to the editor's document source.
func ResumeSource(store ResumeStore) editor.Source {
	return editor.SourceFunc(func(ctx context.Context, id string) (*types.ResumeDocument, error) {
		uid, err := uuid.Parse(id)
		if err != nil {
			return nil, &ErrValidation{Field: "id", Message: "invalid resume ID format"}
		}
		r, err := store.GetResume(ctx, uid)
		if err != nil || r == nil {
			return nil, err
		}
		return r.Document, nil
	})
}

// MemoryStore is a ResumeStore kept in process memory, used when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	resumes map[uuid.UUID]*db.Resume
	exports map[uuid.UUID][]db.ExportRecord
}

// NewMemoryStore creates an empty in-memory resume store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		resumes: make(map[uuid.UUID]*db.Resume),
		exports: make(map[uuid.UUID][]db.ExportRecord),
	}
}

func (m *MemoryStore) CreateResume(_ context.Context, doc *types.ResumeDocument) (*db.Resume, error) {
	now := time.Now().UTC()
	r := &db.Resume{
		ID:        uuid.New(),
		Name:      doc.Name,
		Document:  doc.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	m.resumes[r.ID] = r
	m.mu.Unlock()

	out := *r
	out.Document = r.Document.Clone()
	return &out, nil
}

func (m *MemoryStore) GetResume(_ context.Context, id uuid.UUID) (*db.Resume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.resumes[id]
	if !ok {
		return nil, nil
	}
	out := *r
	out.Document = r.Document.Clone()
	return &out, nil
}

func (m *MemoryStore) ListResumes(_ context.Context, limit int) ([]db.ResumeSummary, error) {
	m.mu.RLock()
	summaries := make([]db.ResumeSummary, 0, len(m.resumes))
	for _, r := range m.resumes {
		summaries = append(summaries, db.ResumeSummary{ID: r.ID, Name: r.Name, UpdatedAt: r.UpdatedAt})
	}
	m.mu.RUnlock()

	// Most recently updated first, matching the database ordering
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

func (m *MemoryStore) UpdateResume(_ context.Context, id uuid.UUID, doc *types.ResumeDocument) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.resumes[id]
	if !ok {
		return false, nil
	}
	r.Name = doc.Name
	r.Document = doc.Clone()
	r.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (m *MemoryStore) DeleteResume(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.resumes[id]; !ok {
		return false, nil
	}
	delete(m.resumes, id)
	delete(m.exports, id)
	return true, nil
}

func (m *MemoryStore) RecordExport(_ context.Context, rec *db.ExportRecord) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.ID = uuid.New()
	rec.CreatedAt = time.Now().UTC()
	m.exports[rec.ResumeID] = append(m.exports[rec.ResumeID], *rec)
	return rec.ID, nil
}

func (m *MemoryStore) ListExports(_ context.Context, resumeID uuid.UUID, limit int) ([]db.ExportRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.exports[resumeID]
	out := make([]db.ExportRecord, 0, len(records))
	// Newest first
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
