package prefs

import (
	"context"
	"sync"

	"github.com/jonathan/resume-builder/internal/types"
)

// MemoryStore keeps preferences in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]types.LayoutPreferences
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]types.LayoutPreferences)}
}

func (s *MemoryStore) Get(_ context.Context, resumeID string) (*types.LayoutPreferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.items[Key(resumeID)]
	if !ok {
		return nil, nil
	}
	p.ActiveSections = append([]string(nil), p.ActiveSections...)
	return &p, nil
}

func (s *MemoryStore) Put(_ context.Context, resumeID string, p types.LayoutPreferences) error {
	p.ActiveSections = append([]string(nil), p.ActiveSections...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[Key(resumeID)] = p
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, resumeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, Key(resumeID))
	return nil
}
