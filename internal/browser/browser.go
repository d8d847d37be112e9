// Package browser manages the long-lived headless Chrome instance used for measuring and exporting resumes.
package browser

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"golang.org/x/sync/semaphore"

	"github.com/jonathan/resume-builder/internal/layout"
)

// DefaultTabTimeout bounds a single measure or export run in one tab.
const DefaultTabTimeout = 30 * time.Second

// DefaultMaxTabs is the number of tabs that may run concurrently.
const DefaultMaxTabs = 4

// Options configures the headless browser.
type Options struct {
	// ExecPath overrides the Chrome binary; empty lets chromedp search the usual locations.
	ExecPath   string
	TabTimeout time.Duration
	MaxTabs    int
	Verbose    bool
}

// DefaultOptions returns sensible defaults for the browser.
func DefaultOptions() Options {
	return Options{
		ExecPath:   os.Getenv("CHROME_PATH"),
		TabTimeout: DefaultTabTimeout,
		MaxTabs:    DefaultMaxTabs,
	}
}

// Error represents a browser startup or tab failure.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("browser error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("browser error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Browser is a shared headless Chrome process. Each measure or export run gets its own tab.
type Browser struct {
	opts Options

	allocCtx      context.Context
	cancelAlloc   context.CancelFunc
	browserCtx    context.Context
	cancelBrowser context.CancelFunc

	tabs *semaphore.Weighted

	mu     sync.Mutex
	closed bool
}

// New starts a headless Chrome process. The process lives until Close.
func New(opts Options) (*Browser, error) {
	if opts.TabTimeout <= 0 {
		opts.TabTimeout = DefaultTabTimeout
	}
	if opts.MaxTabs <= 0 {
		opts.MaxTabs = DefaultMaxTabs
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.WindowSize(int(layout.A4WidthPx), int(layout.A4HeightPx)),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// The first Run on a fresh context launches the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, &Error{Message: "failed to start headless chrome", Cause: err}
	}

	if opts.Verbose {
		log.Printf("[BROWSER] Headless chrome started (max tabs: %d)", opts.MaxTabs)
	}

	return &Browser{
		opts:          opts,
		allocCtx:      allocCtx,
		cancelAlloc:   cancelAlloc,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		tabs:          semaphore.NewWeighted(int64(opts.MaxTabs)),
	}, nil
}

// NewTab opens a tab bound to ctx and the tab timeout. The returned cancel closes the tab and
// must always be called.
func (b *Browser) NewTab(ctx context.Context) (context.Context, context.CancelFunc, error) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return nil, nil, &Error{Message: "browser is closed"}
	}

	if err := b.tabs.Acquire(ctx, 1); err != nil {
		return nil, nil, &Error{Message: "waiting for a free tab", Cause: err}
	}

	tabCtx, cancelTab := chromedp.NewContext(b.browserCtx)
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.opts.TabTimeout)
	stop := context.AfterFunc(ctx, cancelTimeout)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			stop()
			cancelTimeout()
			cancelTab()
			b.tabs.Release(1)
		})
	}
	return tabCtx, cancel, nil
}

// Close shuts the browser down. It is safe to call more than once.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.cancelBrowser()
	b.cancelAlloc()
	if b.opts.Verbose {
		log.Printf("[BROWSER] Headless chrome stopped")
	}
	return nil
}

// LoadHTML replaces the tab's document with html, then waits for the body and for web fonts,
// so layout reads see final geometry.
func LoadHTML(html string) chromedp.Action {
	var fontsReady bool
	return chromedp.Tasks{
		chromedp.EmulateViewport(int64(layout.A4WidthPx), int64(layout.A4HeightPx)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(`document.fonts.ready.then(() => true)`, &fontsReady, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
	}
}

// candidates are the binary names chromedp looks for on PATH.
var candidates = []string{
	"headless_shell",
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
}

// Available reports whether a Chrome binary can be found, either via CHROME_PATH or on PATH.
func Available() bool {
	if p := os.Getenv("CHROME_PATH"); p != "" {
		_, err := os.Stat(p)
		return err == nil
	}
	for _, name := range candidates {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}
