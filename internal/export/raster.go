package export

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jonathan/resume-builder/internal/browser"
)

// fullScreenshotQuality 100 makes Chrome return a lossless PNG.
const fullScreenshotQuality = 100

// RasterExporter captures the whole document as one image and slices it into pages.
type RasterExporter struct {
	browser *browser.Browser
	verbose bool
}

func (e *RasterExporter) Name() string { return StrategyRaster }

// Export takes one full-height screenshot, cuts it at page boundaries and composes the slices.
func (e *RasterExporter) Export(ctx context.Context, job Job) (*Result, error) {
	if err := checkJob(StrategyRaster, job); err != nil {
		return nil, err
	}
	start := time.Now()

	tab, cancel, err := e.browser.NewTab(ctx)
	if err != nil {
		return nil, &ExportError{Strategy: StrategyRaster, Message: "failed to open tab", Cause: err}
	}
	defer cancel()

	var shot []byte
	if err := chromedp.Run(tab,
		browser.LoadHTML(job.HTML),
		chromedp.FullScreenshot(&shot, fullScreenshotQuality),
	); err != nil {
		return nil, &ExportError{Strategy: StrategyRaster, Message: "document capture failed", Cause: err}
	}

	decoded, err := DecodePages(ctx, [][]byte{shot})
	if err != nil {
		return nil, &ExportError{Strategy: StrategyRaster, Message: "failed to decode document image", Cause: err}
	}

	slices := SlicePages(decoded[0], len(job.PageIDs))
	data, err := ComposePDF(ctx, slices)
	if err != nil {
		return nil, &ExportError{Strategy: StrategyRaster, Message: "failed to compose PDF", Cause: err}
	}

	return finish(StrategyRaster, job, data, start, e.verbose)
}
