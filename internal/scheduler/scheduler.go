// Package scheduler coalesces layout change notifications into debounced recalculation passes.
package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonathan/resume-builder/internal/measure"
)

// DefaultDebounce is the quiet period after the last trigger before a pass runs.
const DefaultDebounce = 275 * time.Millisecond

// DefaultPassTimeout bounds a single pass.
const DefaultPassTimeout = 30 * time.Second

// ErrClosed is returned by Flush after Close.
var ErrClosed = errors.New("scheduler: closed")

// Result is what a pass reports back to the scheduler.
type Result struct {
	PageCount int
	// Generation identifies the render the pass produced. Render notifications carrying a
	// generation at or below it came from the scheduler's own passes.
	Generation uint64
	// Estimate is the cheap estimate for the document the pass measured, taken with the same
	// estimator the fast path uses. Zero means unknown and the page count stands in for it.
	Estimate int
}

// Pass runs one measure-and-distribute recalculation.
type Pass func(ctx context.Context) (Result, error)

// Estimator returns a cheap page count estimate, ceil(scroll height / page height).
type Estimator func(ctx context.Context) (int, error)

// Options configures a Scheduler.
type Options struct {
	Debounce    time.Duration
	PassTimeout time.Duration
	// Estimator enables the fast path; nil disables it.
	Estimator Estimator
	// OnPass is called after each successful pass, once the pass's generation is recorded.
	OnPass  func(Result)
	Verbose bool
	// Name tags log lines, typically the resume id.
	Name string
}

// Scheduler debounces triggers into recalculation passes. Passes never overlap.
type Scheduler struct {
	pass Pass
	opts Options

	mu         sync.Mutex
	timer      *time.Timer
	seq        uint64
	knownPages int
	baseline   int
	ownGen     uint64
	promoting  bool
	closed     bool

	runMu  sync.Mutex
	passes atomic.Uint64
}

// New creates a scheduler that runs pass after triggers settle.
func New(pass Pass, opts Options) *Scheduler {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.PassTimeout <= 0 {
		opts.PassTimeout = DefaultPassTimeout
	}
	return &Scheduler{
		pass:       pass,
		opts:       opts,
		knownPages: 1,
		baseline:   1,
	}
}

// Notify records a change. A pass runs once no trigger has arrived for the debounce interval; each
// trigger replaces the pending timer. A content change whose cheap estimate grew past the estimate
// of the last pass runs the pass immediately instead, unless a promoted pass is already in flight.
func (s *Scheduler) Notify(t Trigger) {
	if s.isClosed() {
		return
	}

	if t == TriggerContent && s.opts.Estimator != nil {
		if est, ok := s.estimate(); ok && est > s.Baseline() {
			if s.promote() {
				if s.opts.Verbose {
					log.Printf("[SCHEDULER] %s: estimate %d pages grew past %d, running now", s.opts.Name, est, s.Baseline())
				}
				return
			}
		}
	}

	s.schedule(t)
}

// NotifyRender handles a change notification from the rendering layer. Notifications for renders the
// scheduler's own passes produced are ignored. Others schedule a pass only when the estimate grew past
// the estimate of the last pass.
func (s *Scheduler) NotifyRender(generation uint64) {
	s.mu.Lock()
	if s.closed || generation <= s.ownGen {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if s.opts.Estimator != nil {
		est, ok := s.estimate()
		if !ok || est <= s.Baseline() {
			return
		}
	}
	s.schedule(TriggerRender)
}

// Flush cancels any pending pass and runs one now, returning when it is done.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.cancelPendingLocked()
	s.mu.Unlock()

	return s.run(ctx)
}

// Close stops pending timers and waits for a running pass. Later triggers are ignored.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancelPendingLocked()
	s.mu.Unlock()

	s.runMu.Lock()
	defer s.runMu.Unlock()
}

// PageCount returns the page count of the last successful pass.
func (s *Scheduler) PageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.knownPages
}

// Baseline returns the estimate recorded by the last successful pass, or its page count when the
// pass reported no estimate.
func (s *Scheduler) Baseline() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseline
}

// Passes returns how many passes have completed, successfully or not.
func (s *Scheduler) Passes() uint64 {
	return s.passes.Load()
}

// Pending reports whether a debounced pass is waiting to run.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Scheduler) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Scheduler) schedule(t Trigger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.cancelPendingLocked()
	seq := s.seq
	s.timer = time.AfterFunc(s.opts.Debounce, func() {
		s.fire(seq)
	})
	if s.opts.Verbose {
		log.Printf("[SCHEDULER] %s: %s change, pass in %s", s.opts.Name, t, s.opts.Debounce)
	}
}

// promote drops the pending timer and runs a pass in the background. It reports false when the
// scheduler is closed or a promoted pass is already queued or running.
func (s *Scheduler) promote() bool {
	s.mu.Lock()
	if s.closed || s.promoting {
		s.mu.Unlock()
		return false
	}
	s.promoting = true
	s.cancelPendingLocked()
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.promoting = false
			s.mu.Unlock()
		}()
		_ = s.run(context.Background())
	}()
	return true
}

// cancelPendingLocked stops the timer and invalidates a timer callback that already fired
// but has not taken the lock yet.
func (s *Scheduler) cancelPendingLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
}

func (s *Scheduler) fire(seq uint64) {
	s.mu.Lock()
	if s.closed || seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	_ = s.run(context.Background())
}

// run executes one pass. Not-ready measurements are skipped silently; other errors are logged and
// left for the next trigger to retry.
func (s *Scheduler) run(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.isClosed() {
		return ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.PassTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.pass(ctx)
	s.passes.Add(1)

	if err != nil {
		if errors.Is(err, measure.ErrNotReady) {
			return nil
		}
		log.Printf("[SCHEDULER] %s: pass failed: %v", s.opts.Name, err)
		return err
	}

	s.mu.Lock()
	s.knownPages = max(1, res.PageCount)
	s.baseline = s.knownPages
	if res.Estimate > 0 {
		s.baseline = res.Estimate
	}
	if res.Generation > s.ownGen {
		s.ownGen = res.Generation
	}
	s.mu.Unlock()

	if s.opts.OnPass != nil {
		s.opts.OnPass(res)
	}

	if s.opts.Verbose {
		log.Printf("[SCHEDULER] %s: pass done in %s, %d page(s), estimate %d, generation %d", s.opts.Name, time.Since(start).Round(time.Millisecond), res.PageCount, res.Estimate, res.Generation)
	}
	return nil
}

func (s *Scheduler) estimate() (int, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.PassTimeout)
	defer cancel()
	est, err := s.opts.Estimator(ctx)
	if err != nil {
		if !errors.Is(err, measure.ErrNotReady) {
			log.Printf("[SCHEDULER] %s: estimate failed: %v", s.opts.Name, err)
		}
		return 0, false
	}
	return est, true
}
