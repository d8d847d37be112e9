package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonathan/resume-builder/internal/measure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 40 * time.Millisecond

// recorder is a fake pass that records what state each pass observed.
type recorder struct {
	mu       sync.Mutex
	pages    int
	estimate int
	gen      uint64
	err      error
	value    atomic.Int64
	observed []int64
}

func (r *recorder) pass(ctx context.Context) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observed = append(r.observed, r.value.Load())
	if r.err != nil {
		return Result{}, r.err
	}
	r.gen++
	return Result{PageCount: r.pages, Generation: r.gen, Estimate: r.estimate}, nil
}

func (r *recorder) seen() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.observed...)
}

func TestTrigger_String(t *testing.T) {
	assert.Equal(t, "content", TriggerContent.String())
	assert.Equal(t, "sections", TriggerSections.String())
	assert.Equal(t, "template", TriggerTemplate.String())
	assert.Equal(t, "render", TriggerRender.String())
	assert.Equal(t, "unknown", Trigger(42).String())
}

func TestScheduler_DebounceCoalesces(t *testing.T) {
	rec := &recorder{pages: 1}
	s := New(rec.pass, Options{Debounce: testDebounce})
	defer s.Close()

	for i := 1; i <= 5; i++ {
		rec.value.Store(int64(i))
		s.Notify(TriggerSections)
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return s.Passes() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(3 * testDebounce)
	assert.Equal(t, uint64(1), s.Passes())
	assert.Equal(t, []int64{5}, rec.seen(), "pass must see the state as of the last trigger")
}

func TestScheduler_DefaultDebounce(t *testing.T) {
	s := New(func(context.Context) (Result, error) { return Result{}, nil }, Options{})
	defer s.Close()
	assert.Equal(t, DefaultDebounce, s.opts.Debounce)
	assert.Equal(t, DefaultPassTimeout, s.opts.PassTimeout)
	assert.Equal(t, 1, s.PageCount())
}

func TestScheduler_SeparateBurstsRunSeparatePasses(t *testing.T) {
	rec := &recorder{pages: 1}
	s := New(rec.pass, Options{Debounce: testDebounce})
	defer s.Close()

	s.Notify(TriggerTemplate)
	require.Eventually(t, func() bool { return s.Passes() == 1 }, time.Second, 5*time.Millisecond)

	s.Notify(TriggerTemplate)
	require.Eventually(t, func() bool { return s.Passes() == 2 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_FastPathPromotesPass(t *testing.T) {
	rec := &recorder{pages: 3}
	s := New(rec.pass, Options{
		Debounce:  time.Hour,
		Estimator: func(context.Context) (int, error) { return 3, nil },
	})
	defer s.Close()

	s.Notify(TriggerContent)
	require.Eventually(t, func() bool { return s.Passes() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 3, s.PageCount())
	assert.False(t, s.Pending())
}

func TestScheduler_FastPathOnlyForContent(t *testing.T) {
	rec := &recorder{pages: 3}
	s := New(rec.pass, Options{
		Debounce:  time.Hour,
		Estimator: func(context.Context) (int, error) { return 3, nil },
	})
	defer s.Close()

	s.Notify(TriggerSections)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, uint64(0), s.Passes())
	assert.True(t, s.Pending())
}

func TestScheduler_FastPathEstimateNotHigherIsDebounced(t *testing.T) {
	rec := &recorder{pages: 1}
	s := New(rec.pass, Options{
		Debounce:  testDebounce,
		Estimator: func(context.Context) (int, error) { return 1, nil },
	})
	defer s.Close()

	s.Notify(TriggerContent)
	assert.True(t, s.Pending())
	require.Eventually(t, func() bool { return s.Passes() == 1 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_EstimateAbovePageCountStillDebounces(t *testing.T) {
	// One oversized section: the estimate stays above the distributed page count.
	rec := &recorder{pages: 1, estimate: 4}
	s := New(rec.pass, Options{
		Debounce:  testDebounce,
		Estimator: func(context.Context) (int, error) { return 4, nil },
	})
	defer s.Close()

	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, 1, s.PageCount())
	assert.Equal(t, 4, s.Baseline())

	for i := 1; i <= 5; i++ {
		rec.value.Store(int64(i))
		s.Notify(TriggerContent)
		time.Sleep(5 * time.Millisecond)
	}
	assert.True(t, s.Pending())

	require.Eventually(t, func() bool { return s.Passes() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(3 * testDebounce)
	assert.Equal(t, uint64(2), s.Passes())
	assert.Equal(t, []int64{0, 5}, rec.seen())
}

func TestScheduler_SteadyRenderNotificationsRunNothing(t *testing.T) {
	rec := &recorder{pages: 1, estimate: 4}
	var calls atomic.Int32
	s := New(rec.pass, Options{
		Debounce: testDebounce,
		Estimator: func(context.Context) (int, error) {
			calls.Add(1)
			return 4, nil
		},
	})
	defer s.Close()

	require.NoError(t, s.Flush(context.Background()))
	for gen := uint64(2); gen < 20; gen++ {
		s.NotifyRender(gen)
		assert.False(t, s.Pending())
	}
	time.Sleep(3 * testDebounce)
	assert.Equal(t, uint64(1), s.Passes())
	assert.Equal(t, int32(18), calls.Load())
}

func TestScheduler_BaselineFallsBackToPageCount(t *testing.T) {
	rec := &recorder{pages: 3}
	s := New(rec.pass, Options{Debounce: testDebounce})
	defer s.Close()

	assert.Equal(t, 1, s.Baseline())
	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, 3, s.Baseline())
}

func TestScheduler_OnePromotedPassAtATime(t *testing.T) {
	release := make(chan struct{})
	var passes atomic.Int32
	var est atomic.Int64
	s := New(func(context.Context) (Result, error) {
		<-release
		passes.Add(1)
		return Result{PageCount: 1, Estimate: 1}, nil
	}, Options{
		Debounce: testDebounce,
		// Every edit grows the document past the last pass.
		Estimator: func(context.Context) (int, error) { return int(est.Add(1)) + 1, nil },
	})
	defer s.Close()

	for i := 0; i < 5; i++ {
		s.Notify(TriggerContent)
	}
	assert.True(t, s.Pending(), "edits behind a running promotion fall back to the debounce")

	close(release)
	require.Eventually(t, func() bool { return s.Passes() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(3 * testDebounce)
	assert.Equal(t, uint64(2), s.Passes())
	assert.Equal(t, int32(2), passes.Load())
}

func TestScheduler_FeedbackGuard(t *testing.T) {
	rec := &recorder{pages: 2}
	estimate := atomic.Int64{}
	estimate.Store(2)

	s := New(rec.pass, Options{
		Debounce:  testDebounce,
		Estimator: func(context.Context) (int, error) { return int(estimate.Load()), nil },
	})
	defer s.Close()

	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, uint64(1), s.Passes())

	// The render this pass produced carries generation 1.
	s.NotifyRender(1)
	assert.False(t, s.Pending())

	// A foreign render whose estimate does not exceed the known count is ignored.
	s.NotifyRender(2)
	assert.False(t, s.Pending())

	// A foreign render that grows the document schedules a pass.
	estimate.Store(3)
	s.NotifyRender(2)
	assert.True(t, s.Pending())
	require.Eventually(t, func() bool { return s.Passes() == 2 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_NotifyRenderWithoutEstimator(t *testing.T) {
	rec := &recorder{pages: 1}
	s := New(rec.pass, Options{Debounce: testDebounce})
	defer s.Close()

	require.NoError(t, s.Flush(context.Background()))
	s.NotifyRender(1)
	assert.False(t, s.Pending())

	s.NotifyRender(5)
	assert.True(t, s.Pending())
}

func TestScheduler_OnPassSeesGeneration(t *testing.T) {
	rec := &recorder{pages: 2}
	var got []Result
	var s *Scheduler
	s = New(rec.pass, Options{
		Debounce: testDebounce,
		OnPass: func(r Result) {
			got = append(got, r)
			// Re-entrant render notification from the pass's own output is guarded.
			s.NotifyRender(r.Generation)
		},
	})
	defer s.Close()

	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, []Result{{PageCount: 2, Generation: 1}}, got)
	assert.False(t, s.Pending())
}

func TestScheduler_FlushCancelsPending(t *testing.T) {
	rec := &recorder{pages: 1}
	s := New(rec.pass, Options{Debounce: testDebounce})
	defer s.Close()

	s.Notify(TriggerContent)
	assert.True(t, s.Pending())

	require.NoError(t, s.Flush(context.Background()))
	assert.False(t, s.Pending())
	assert.Equal(t, uint64(1), s.Passes())

	time.Sleep(3 * testDebounce)
	assert.Equal(t, uint64(1), s.Passes())
}

func TestScheduler_NotReadyIsSilent(t *testing.T) {
	s := New(func(context.Context) (Result, error) {
		return Result{}, measure.ErrNotReady
	}, Options{Debounce: testDebounce})
	defer s.Close()

	assert.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, 1, s.PageCount())
}

func TestScheduler_PassErrorKeepsState(t *testing.T) {
	rec := &recorder{pages: 2}
	s := New(rec.pass, Options{Debounce: testDebounce})
	defer s.Close()

	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, 2, s.PageCount())

	boom := errors.New("boom")
	rec.mu.Lock()
	rec.err = boom
	rec.pages = 5
	rec.mu.Unlock()

	err := s.Flush(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, s.PageCount())
}

func TestScheduler_PassesNeverOverlap(t *testing.T) {
	var running, maxRunning atomic.Int32
	s := New(func(context.Context) (Result, error) {
		n := running.Add(1)
		for {
			m := maxRunning.Load()
			if n <= m || maxRunning.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return Result{PageCount: 1}, nil
	}, Options{Debounce: testDebounce})
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Flush(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxRunning.Load())
	assert.Equal(t, uint64(8), s.Passes())
}

func TestScheduler_Close(t *testing.T) {
	rec := &recorder{pages: 1}
	s := New(rec.pass, Options{Debounce: testDebounce})

	s.Notify(TriggerContent)
	s.Close()
	s.Close()

	time.Sleep(3 * testDebounce)
	assert.Equal(t, uint64(0), s.Passes())

	s.Notify(TriggerContent)
	s.NotifyRender(99)
	assert.False(t, s.Pending())
	assert.ErrorIs(t, s.Flush(context.Background()), ErrClosed)
}
