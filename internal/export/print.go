package export

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/resume-builder/internal/browser"
)

// A4 paper size in inches, as Chrome's print API expects.
const (
	a4WidthIn  = 8.27
	a4HeightIn = 11.69
)

// PrintExporter renders the document with Chrome's print-to-PDF. Text stays selectable.
type PrintExporter struct {
	browser *browser.Browser
	verbose bool
}

func (e *PrintExporter) Name() string { return StrategyPrint }

// Export prints the document; each fixed-size page block breaks onto its own PDF page.
func (e *PrintExporter) Export(ctx context.Context, job Job) (*Result, error) {
	if err := checkJob(StrategyPrint, job); err != nil {
		return nil, err
	}
	start := time.Now()

	tab, cancel, err := e.browser.NewTab(ctx)
	if err != nil {
		return nil, &ExportError{Strategy: StrategyPrint, Message: "failed to open tab", Cause: err}
	}
	defer cancel()

	var data []byte
	err = chromedp.Run(tab,
		browser.LoadHTML(job.HTML),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				WithPaperWidth(a4WidthIn).
				WithPaperHeight(a4HeightIn).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			if err != nil {
				return err
			}
			data = buf
			return nil
		}),
	)
	if err != nil {
		return nil, &ExportError{Strategy: StrategyPrint, Message: "print to PDF failed", Cause: err}
	}

	return finish(StrategyPrint, job, data, start, e.verbose)
}
