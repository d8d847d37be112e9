package editor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/measure"
	"github.com/jonathan/resume-builder/internal/prefs"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/scheduler"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/jonathan/resume-builder/internal/validation"
)

// Options configures a session.
type Options struct {
	Renderer *rendering.Renderer
	Measurer measure.Measurer
	// Estimator backs the scheduler's fast path. Nil disables it.
	Estimator *measure.TextMetrics
	// Store persists preference changes. Nil keeps them in memory only.
	Store    prefs.Store
	Debounce time.Duration
	FooterPx float64
	MarginPx float64
	// CheckInvariants verifies every pass's distribution and logs violations.
	CheckInvariants bool
	Verbose         bool

	// IdleTTL is how long a Manager keeps a session nobody uses. Zero means DefaultIdleTTL and a
	// negative value keeps sessions until they are evicted.
	IdleTTL time.Duration
	// SweepInterval is how often the Manager looks for idle sessions. Zero means DefaultSweepInterval.
	SweepInterval time.Duration
}

// Session is one resume being edited. All methods are safe for concurrent use.
type Session struct {
	id   string
	opts Options

	mu     sync.RWMutex
	doc    *types.ResumeDocument
	prefs  types.LayoutPreferences
	state  types.PaginationState
	plan   *layout.Plan
	closed bool
	// rev counts document and preference changes. passRev and passGen record the revision the
	// last published pass rendered and the generation of that render.
	rev     uint64
	passRev uint64
	passGen uint64

	renderGen atomic.Uint64
	sched     *scheduler.Scheduler

	subsMu sync.Mutex
	subs   map[int]chan types.PaginationState
	nextID int
}

// NewSession starts a session for doc with the given preferences. No pass runs until the first
// change or Settle.
func NewSession(id string, doc *types.ResumeDocument, p types.LayoutPreferences, opts Options) (*Session, error) {
	if doc == nil {
		return nil, &ValidationError{Field: "document", Message: "is required"}
	}
	if opts.Renderer == nil || opts.Measurer == nil {
		return nil, fmt.Errorf("editor: renderer and measurer are required")
	}
	if opts.FooterPx == 0 {
		opts.FooterPx = layout.DefaultFooterPx
	}
	if opts.MarginPx == 0 {
		opts.MarginPx = layout.DefaultMarginPx
	}
	if p.Template == "" {
		p.Template = layout.DefaultTemplateID
	}
	if _, err := layout.LookupTemplate(p.Template); err != nil {
		return nil, &ValidationError{Field: "template", Message: "unknown template", Cause: err}
	}

	doc = doc.Clone()
	if len(p.ActiveSections) > 0 {
		doc.ActiveSections = append([]string(nil), p.ActiveSections...)
	}

	s := &Session{
		id:    id,
		opts:  opts,
		doc:   doc,
		prefs: p,
		state: types.PaginationState{PageCount: 1, SectionPageMap: types.SectionPageMap{}},
		subs:  make(map[int]chan types.PaginationState),
	}

	schedOpts := scheduler.Options{
		Debounce: opts.Debounce,
		Name:     id,
		Verbose:  opts.Verbose,
		OnPass: func(res scheduler.Result) {
			// The pass's own render is announced like any other; the scheduler ignores it.
			s.sched.NotifyRender(res.Generation)
		},
	}
	if opts.Estimator != nil {
		schedOpts.Estimator = s.estimate
	}
	s.sched = scheduler.New(s.pass, schedOpts)
	return s, nil
}

// ID returns the resume id of the session.
func (s *Session) ID() string {
	return s.id
}

// Document returns a copy of the current document.
func (s *Session) Document() *types.ResumeDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Preferences returns the current layout preferences.
func (s *Session) Preferences() types.LayoutPreferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.prefs
	p.ActiveSections = append([]string(nil), s.doc.ActiveSections...)
	return p
}

// State returns the current pagination state.
func (s *Session) State() types.PaginationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.state)
}

// Plan returns the per-page bookkeeping of the last pass, or nil before the first pass.
func (s *Session) Plan() *layout.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan
}

// UpdateContent applies fn to a copy of the document, validates it and swaps it in.
func (s *Session) UpdateContent(fn func(doc *types.ResumeDocument)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	next := s.doc.Clone()
	fn(next)
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return &ValidationError{Field: "document", Message: "failed validation", Cause: err}
	}
	s.doc = next
	s.rev++
	s.mu.Unlock()

	s.sched.Notify(scheduler.TriggerContent)
	return nil
}

// ReplaceDocument swaps in a whole new document.
func (s *Session) ReplaceDocument(doc *types.ResumeDocument) error {
	if doc == nil {
		return &ValidationError{Field: "document", Message: "is required"}
	}
	return s.UpdateContent(func(d *types.ResumeDocument) {
		*d = *doc.Clone()
	})
}

// SetActiveSections changes which sections render and in what order.
func (s *Session) SetActiveSections(ctx context.Context, ids []string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			s.mu.Unlock()
			return &ValidationError{Field: "active_sections", Message: fmt.Sprintf("duplicate section %q", id)}
		}
		seen[id] = true
		if id != types.SectionPersonal && !s.doc.IsKnownSection(id) {
			s.mu.Unlock()
			return &ValidationError{Field: "active_sections", Message: fmt.Sprintf("unknown section %q", id)}
		}
	}
	s.doc.ActiveSections = append([]string(nil), ids...)
	s.prefs.ActiveSections = append([]string(nil), ids...)
	s.rev++
	p := s.prefs
	s.mu.Unlock()

	if err := s.persist(ctx, p); err != nil {
		return err
	}
	s.sched.Notify(scheduler.TriggerSections)
	return nil
}

// SetTemplate switches the template.
func (s *Session) SetTemplate(ctx context.Context, templateID string) error {
	if _, err := layout.LookupTemplate(templateID); err != nil {
		return &ValidationError{Field: "template", Message: "unknown template", Cause: err}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.prefs.Template = templateID
	s.rev++
	p := s.prefs
	s.mu.Unlock()

	if err := s.persist(ctx, p); err != nil {
		return err
	}
	s.sched.Notify(scheduler.TriggerTemplate)
	return nil
}

// SetPreferences replaces the layout preferences. A non-empty ActiveSections also reorders the document.
func (s *Session) SetPreferences(ctx context.Context, p types.LayoutPreferences) error {
	if err := p.Validate(); err != nil {
		return &ValidationError{Field: "preferences", Message: "failed validation", Cause: err}
	}
	if _, err := layout.LookupTemplate(p.Template); err != nil {
		return &ValidationError{Field: "template", Message: "unknown template", Cause: err}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	for _, id := range p.ActiveSections {
		if id != types.SectionPersonal && !s.doc.IsKnownSection(id) {
			s.mu.Unlock()
			return &ValidationError{Field: "active_sections", Message: fmt.Sprintf("unknown section %q", id)}
		}
	}
	p.ActiveSections = append([]string(nil), p.ActiveSections...)
	if len(p.ActiveSections) > 0 {
		s.doc.ActiveSections = append([]string(nil), p.ActiveSections...)
	}
	s.prefs = p
	s.rev++
	s.mu.Unlock()

	if err := s.persist(ctx, p); err != nil {
		return err
	}
	s.sched.Notify(scheduler.TriggerTemplate)
	return nil
}

// Settle runs any pending recalculation now and returns when it is done.
func (s *Session) Settle(ctx context.Context) error {
	if err := s.sched.Flush(ctx); err != nil {
		if errors.Is(err, scheduler.ErrClosed) {
			return ErrSessionClosed
		}
		return err
	}
	return nil
}

// Subscribe returns a channel that receives every new pagination state and a function that
// unsubscribes. Slow subscribers only see the newest state.
func (s *Session) Subscribe() (<-chan types.PaginationState, func()) {
	ch := make(chan types.PaginationState, 1)

	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			if _, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(ch)
			}
		})
	}
}

// subscribed reports whether anyone is listening for states.
func (s *Session) subscribed() bool {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	return len(s.subs) > 0
}

// Pages renders the current state and returns it with the state it was rendered from. Pages beyond
// one of view render as placeholders unless forceAll.
func (s *Session) Pages(view int, forceAll bool) ([]rendering.Page, types.PaginationState, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, types.PaginationState{}, ErrSessionClosed
	}
	doc := s.doc.Clone()
	p := s.prefs
	state := copyState(s.state)
	unchanged := s.passGen > 0 && s.rev == s.passRev
	passGen := s.passGen
	s.mu.RUnlock()

	pages, err := s.opts.Renderer.RenderPages(doc, p, state, rendering.PageOptions{CurrentPage: view, ForceAll: forceAll})
	if err != nil {
		return nil, types.PaginationState{}, err
	}

	// Re-rendering what the last pass measured is that pass's own output.
	gen := passGen
	if !unchanged {
		gen = s.renderGen.Add(1)
	}
	s.sched.NotifyRender(gen)
	return pages, state, nil
}

// Preview renders the whole current state as one printable HTML document.
func (s *Session) Preview() (string, error) {
	pages, _, err := s.Pages(1, true)
	if err != nil {
		return "", err
	}
	s.mu.RLock()
	doc := s.doc.Clone()
	p := s.prefs
	s.mu.RUnlock()
	return s.opts.Renderer.RenderDocument(doc, p, pages)
}

// Export settles pending changes, renders every page and hands the document to exporter.
// Export failures leave the pagination state untouched.
func (s *Session) Export(ctx context.Context, exporter export.Exporter, filename string) (*export.Result, error) {
	if err := s.Settle(ctx); err != nil {
		return nil, err
	}

	pages, _, err := s.Pages(1, true)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	doc := s.doc.Clone()
	p := s.prefs
	s.mu.RUnlock()

	html, err := s.opts.Renderer.RenderDocument(doc, p, pages)
	if err != nil {
		return nil, err
	}
	if filename == "" {
		filename = doc.Name
	}

	return exporter.Export(ctx, export.Job{
		HTML:     html,
		PageIDs:  rendering.PageIDs(pages),
		Filename: filename,
		Format:   "pdf",
	})
}

// Close stops the scheduler and closes every subscription.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.sched.Close()

	s.subsMu.Lock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.subsMu.Unlock()
}

// pass renders the flow view, measures it, distributes sections and publishes the new state.
func (s *Session) pass(ctx context.Context) (scheduler.Result, error) {
	s.mu.RLock()
	doc := s.doc.Clone()
	p := s.prefs
	rev := s.rev
	s.mu.RUnlock()

	tmpl, err := layout.LookupTemplate(p.Template)
	if err != nil {
		return scheduler.Result{}, err
	}

	view, err := s.opts.Renderer.RenderView(doc, p)
	if err != nil {
		return scheduler.Result{}, err
	}
	gen := s.renderGen.Add(1)

	m, err := s.opts.Measurer.Measure(ctx, view)
	if err != nil {
		return scheduler.Result{}, err
	}

	budget, err := layout.NewBudget(layout.A4HeightPx, m.HeaderHeightPx, s.opts.FooterPx, s.opts.MarginPx)
	if err != nil {
		return scheduler.Result{}, err
	}
	plan := layout.PlanPages(m.Sections, budget, tmpl)

	// The fast path compares later estimates against this one, so both come from the estimator
	// even when the measurer is a real browser.
	est := 0
	if s.opts.Estimator != nil {
		if est, err = s.estimateView(ctx, view); err != nil {
			log.Printf("[EDITOR] %s: estimate failed: %v", s.id, err)
			est = 0
		}
	}

	if s.opts.CheckInvariants {
		if v := validation.CheckPagination(m.Sections, plan); len(v.Violations) > 0 {
			for _, violation := range v.Violations {
				log.Printf("[EDITOR] %s: %s %s: %s", s.id, violation.Severity, violation.Type, violation.Details)
			}
		}
	}

	s.mu.Lock()
	plan.State.Version = s.state.Version + 1
	s.state = plan.State
	s.plan = plan
	s.passRev = rev
	s.passGen = gen
	state := copyState(s.state)
	s.mu.Unlock()

	s.broadcast(state)
	return scheduler.Result{PageCount: state.PageCount, Generation: gen, Estimate: est}, nil
}

// estimate is the scheduler's fast path: the page count implied by the flow view's scroll height.
func (s *Session) estimate(ctx context.Context) (int, error) {
	s.mu.RLock()
	doc := s.doc.Clone()
	p := s.prefs
	s.mu.RUnlock()

	view, err := s.opts.Renderer.RenderView(doc, p)
	if err != nil {
		return 0, err
	}
	return s.estimateView(ctx, view)
}

func (s *Session) estimateView(ctx context.Context, view *rendering.View) (int, error) {
	scroll, err := s.opts.Estimator.ScrollHeight(ctx, view)
	if err != nil {
		return 0, err
	}
	return layout.EstimatePageCount(scroll, layout.A4HeightPx), nil
}

func (s *Session) broadcast(state types.PaginationState) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		// Drop a stale undelivered state so the newest one always fits.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- copyState(state):
		default:
		}
	}
}

func (s *Session) persist(ctx context.Context, p types.LayoutPreferences) error {
	if s.opts.Store == nil {
		return nil
	}
	if err := s.opts.Store.Put(ctx, s.id, p); err != nil {
		return fmt.Errorf("failed to persist preferences: %w", err)
	}
	return nil
}

func copyState(st types.PaginationState) types.PaginationState {
	out := st
	out.SectionPageMap = maps.Clone(st.SectionPageMap)
	if out.SectionPageMap == nil {
		out.SectionPageMap = types.SectionPageMap{}
	}
	return out
}
