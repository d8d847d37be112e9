package measure

import (
	"context"
	"log"

	"github.com/chromedp/chromedp"

	"github.com/jonathan/resume-builder/internal/browser"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
)

// probeJS reads the layout of the flow view in one round trip.
const probeJS = `(() => {
  const flow = document.querySelector('#resume-flow');
  const header = document.querySelector('[data-role="resume-header"]');
  const sections = Array.from(document.querySelectorAll('[data-section-id]')).map(el => ({
    id: el.getAttribute('data-section-id'),
    height: el.offsetHeight,
  }));
  return {
    ready: flow !== null,
    header: header ? header.offsetHeight : 0,
    scroll: flow ? flow.scrollHeight : 0,
    sections: sections,
  };
})()`

type probeResult struct {
	Ready    bool    `json:"ready"`
	Header   float64 `json:"header"`
	Scroll   float64 `json:"scroll"`
	Sections []struct {
		ID     string  `json:"id"`
		Height float64 `json:"height"`
	} `json:"sections"`
}

// ChromeMeasurer measures views in a headless Chrome tab.
type ChromeMeasurer struct {
	browser *browser.Browser
	verbose bool
}

// NewChromeMeasurer creates a measurer backed by b.
func NewChromeMeasurer(b *browser.Browser, verbose bool) *ChromeMeasurer {
	return &ChromeMeasurer{browser: b, verbose: verbose}
}

// Measure loads the view into a fresh tab and reads header and section heights.
func (m *ChromeMeasurer) Measure(ctx context.Context, view *rendering.View) (*types.Measurement, error) {
	if !ready(view) {
		return nil, ErrNotReady
	}

	tab, cancel, err := m.browser.NewTab(ctx)
	if err != nil {
		return nil, &MeasureError{Measurer: "chrome", Message: "failed to open tab", Cause: err}
	}
	defer cancel()

	var res probeResult
	if err := chromedp.Run(tab,
		browser.LoadHTML(view.HTML),
		chromedp.Evaluate(probeJS, &res),
	); err != nil {
		return nil, &MeasureError{Measurer: "chrome", Message: "layout probe failed", Cause: err}
	}
	if !res.Ready {
		return nil, ErrNotReady
	}

	sections := make([]types.SectionMeasurement, 0, len(res.Sections))
	for _, s := range res.Sections {
		sections = append(sections, types.SectionMeasurement{SectionID: s.ID, HeightPx: s.Height})
	}

	if m.verbose {
		log.Printf("[MEASURE] chrome: header=%.0fpx scroll=%.0fpx sections=%d", res.Header, res.Scroll, len(sections))
	}

	return &types.Measurement{
		HeaderHeightPx: res.Header,
		ScrollHeightPx: res.Scroll,
		Sections:       dropEmpty(sections),
	}, nil
}
