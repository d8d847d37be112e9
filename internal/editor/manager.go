package editor

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/jonathan/resume-builder/internal/types"
)

// DefaultIdleTTL is how long an unused session stays open.
const DefaultIdleTTL = 30 * time.Minute

// DefaultSweepInterval is how often idle sessions are looked for.
const DefaultSweepInterval = time.Minute

// Source loads resume documents. It returns nil, nil when the resume does not exist.
type Source interface {
	LoadResume(ctx context.Context, id string) (*types.ResumeDocument, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, id string) (*types.ResumeDocument, error)

func (f SourceFunc) LoadResume(ctx context.Context, id string) (*types.ResumeDocument, error) {
	return f(ctx, id)
}

type managedSession struct {
	session  *Session
	lastUsed time.Time
}

// Manager keeps one session per resume and opens sessions lazily. Sessions unused for the idle TTL
// are closed by a background sweep; the next Get reopens them from the source.
type Manager struct {
	source          Source
	opts            Options
	defaultTemplate string
	now             func() time.Time

	mu       sync.Mutex
	sessions map[string]*managedSession

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewManager creates a manager that loads documents from source and preferences from opts.Store.
func NewManager(source Source, defaultTemplate string, opts Options) *Manager {
	if opts.IdleTTL == 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	m := &Manager{
		source:          source,
		opts:            opts,
		defaultTemplate: defaultTemplate,
		now:             time.Now,
		sessions:        make(map[string]*managedSession),
	}
	if opts.IdleTTL > 0 {
		m.stop = make(chan struct{})
		m.done = make(chan struct{})
		go m.sweepLoop()
	}
	return m
}

// Get returns the session for id, opening it on first use.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	if ms, ok := m.sessions[id]; ok {
		ms.lastUsed = m.now()
		m.mu.Unlock()
		return ms.session, nil
	}
	m.mu.Unlock()

	doc, err := m.source.LoadResume(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}

	p := types.DefaultLayoutPreferences(m.defaultTemplate)
	if m.opts.Store != nil {
		stored, err := m.opts.Store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if stored != nil {
			p = *stored
		}
	}

	return m.Open(id, doc, p)
}

// Open starts a session for a document the caller already has. An existing session for id wins.
func (m *Manager) Open(id string, doc *types.ResumeDocument, p types.LayoutPreferences) (*Session, error) {
	s, err := NewSession(id, doc, p, m.opts)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if existing, ok := m.sessions[id]; ok {
		existing.lastUsed = m.now()
		m.mu.Unlock()
		s.Close()
		return existing.session, nil
	}
	m.sessions[id] = &managedSession{session: s, lastUsed: m.now()}
	m.mu.Unlock()

	if m.opts.Verbose {
		log.Printf("[EDITOR] opened session %s", id)
	}
	return s, nil
}

// Evict closes and forgets the session for id, if any.
func (m *Manager) Evict(id string) {
	m.mu.Lock()
	ms, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		ms.session.Close()
	}
}

// IDs returns the ids of open sessions, sorted.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// sweep closes sessions not used since before cutoff. Sessions with subscribers count as in use.
func (m *Manager) sweep(cutoff time.Time) int {
	var idle []*managedSession

	m.mu.Lock()
	for id, ms := range m.sessions {
		if !ms.lastUsed.Before(cutoff) {
			continue
		}
		if ms.session.subscribed() {
			ms.lastUsed = m.now()
			continue
		}
		idle = append(idle, ms)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, ms := range idle {
		ms.session.Close()
		if m.opts.Verbose {
			log.Printf("[EDITOR] closed idle session %s", ms.session.ID())
		}
	}
	return len(idle)
}

func (m *Manager) sweepLoop() {
	defer close(m.done)
	ticker := time.NewTicker(m.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweep(m.now().Add(-m.opts.IdleTTL))
		case <-m.stop:
			return
		}
	}
}

// Close stops the sweep and closes every session.
func (m *Manager) Close() {
	m.stopOnce.Do(func() {
		if m.stop != nil {
			close(m.stop)
			<-m.done
		}
	})

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*managedSession)
	m.mu.Unlock()

	for _, ms := range sessions {
		ms.session.Close()
	}
}
