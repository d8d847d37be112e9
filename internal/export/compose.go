package export

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jonathan/resume-builder/internal/browser"
)

// ComposeExporter captures each page block as an image and places one image per PDF page.
type ComposeExporter struct {
	browser *browser.Browser
	verbose bool
}

func (e *ComposeExporter) Name() string { return StrategyCompose }

// Export screenshots every page node in order and composes the images into a PDF.
func (e *ComposeExporter) Export(ctx context.Context, job Job) (*Result, error) {
	if err := checkJob(StrategyCompose, job); err != nil {
		return nil, err
	}
	start := time.Now()

	tab, cancel, err := e.browser.NewTab(ctx)
	if err != nil {
		return nil, &ExportError{Strategy: StrategyCompose, Message: "failed to open tab", Cause: err}
	}
	defer cancel()

	shots := make([][]byte, len(job.PageIDs))
	actions := []chromedp.Action{browser.LoadHTML(job.HTML)}
	for i, id := range job.PageIDs {
		actions = append(actions, chromedp.Screenshot("#"+id, &shots[i], chromedp.ByQuery, chromedp.NodeVisible))
	}
	if err := chromedp.Run(tab, actions...); err != nil {
		return nil, &ExportError{Strategy: StrategyCompose, Message: "page capture failed", Cause: err}
	}

	images, err := DecodePages(ctx, shots)
	if err != nil {
		return nil, &ExportError{Strategy: StrategyCompose, Message: "failed to decode page images", Cause: err}
	}

	data, err := ComposePDF(ctx, images)
	if err != nil {
		return nil, &ExportError{Strategy: StrategyCompose, Message: "failed to compose PDF", Cause: err}
	}

	return finish(StrategyCompose, job, data, start, e.verbose)
}
