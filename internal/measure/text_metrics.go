package measure

import (
	"context"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
)

// Text metrics constants. Page geometry is in CSS px at 72 DPI, so 1pt renders as 1px.
const (
	// AvgCharWidthEm is the average glyph advance of a proportional sans font, in ems.
	AvgCharWidthEm = 0.5

	headingSizePt   = 12.0
	headingMargin   = 4.0
	nameSizePt      = 20.0
	reducedSizePt   = 9.0
	fullHeaderPad   = 10.0
	reducedHeadPad  = 5.0
	entryMargin     = 6.0
	listIndentPx    = 16.0
	defaultFontSize = 10.5
)

// TextMetrics estimates layout from text length without a browser. It is deterministic, which makes it
// the measurer for tests and for hosts without Chrome.
type TextMetrics struct {
	// ContentWidthPx is the width of the text column.
	ContentWidthPx float64
}

// NewTextMetrics returns an estimator for the default A4 text column.
func NewTextMetrics() *TextMetrics {
	return &TextMetrics{ContentWidthPx: layout.A4WidthPx - 2*layout.DefaultMarginPx}
}

type fontMetrics struct {
	sizePx     float64
	lineHeight float64
	sectionGap float64
}

func (f fontMetrics) lines(text string, sizePx, widthPx float64) float64 {
	chars := utf8.RuneCountInString(strings.Join(strings.Fields(text), " "))
	if chars == 0 {
		return 0
	}
	perLine := math.Max(1, math.Floor(widthPx/(sizePx*AvgCharWidthEm)))
	return math.Ceil(float64(chars) / perLine)
}

func (f fontMetrics) block(text string, sizePx, widthPx float64) float64 {
	return f.lines(text, sizePx, widthPx) * sizePx * f.lineHeight
}

// Measure estimates header and section heights of the view.
func (m *TextMetrics) Measure(ctx context.Context, view *rendering.View) (*types.Measurement, error) {
	if !ready(view) {
		return nil, ErrNotReady
	}
	if err := ctx.Err(); err != nil {
		return nil, &MeasureError{Measurer: "text", Message: "measure cancelled", Cause: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(view.HTML))
	if err != nil {
		return nil, &MeasureError{Measurer: "text", Message: "failed to parse view", Cause: err}
	}
	if doc.Find(rendering.FlowSelector).Length() == 0 {
		return nil, ErrNotReady
	}

	f := m.fontMetrics(doc, view)

	header := 0.0
	doc.Find(rendering.HeaderSelector).First().Each(func(_ int, s *goquery.Selection) {
		header = m.headerHeight(s, f)
	})

	var sections []types.SectionMeasurement
	total := 0.0
	doc.Find(rendering.SectionSelector).Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("data-section-id")
		h := m.sectionHeight(s, f)
		total += h
		sections = append(sections, types.SectionMeasurement{SectionID: id, HeightPx: h})
	})

	return &types.Measurement{
		HeaderHeightPx: header,
		ScrollHeightPx: header + total,
		Sections:       dropEmpty(sections),
	}, nil
}

// ScrollHeight returns the estimated height of the whole flow view.
func (m *TextMetrics) ScrollHeight(ctx context.Context, view *rendering.View) (float64, error) {
	res, err := m.Measure(ctx, view)
	if err != nil {
		return 0, err
	}
	return res.ScrollHeightPx, nil
}

func (m *TextMetrics) fontMetrics(doc *goquery.Document, view *rendering.View) fontMetrics {
	body := doc.Find("body")

	size := view.FontSizePt
	if v, ok := body.Attr("data-font-size"); ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			size = parsed
		}
	}
	if size <= 0 {
		size = defaultFontSize
	}

	spacing := view.Spacing
	if v, ok := body.Attr("data-spacing"); ok && v != "" {
		spacing = v
	}
	lh, gap := rendering.SpacingPreset(spacing)

	return fontMetrics{sizePx: size, lineHeight: lh, sectionGap: gap}
}

func (m *TextMetrics) headerHeight(s *goquery.Selection, f fontMetrics) float64 {
	if s.HasClass("header-reduced") {
		return reducedSizePt*f.lineHeight + reducedHeadPad
	}
	h := fullHeaderPad
	h += f.block(s.Find(".name").Text(), nameSizePt, m.ContentWidthPx)
	h += f.block(s.Find(".headline").Text(), f.sizePx, m.ContentWidthPx)
	h += f.block(s.Find(".contact").Text(), f.sizePx, m.ContentWidthPx)
	return h
}

func (m *TextMetrics) sectionHeight(s *goquery.Selection, f fontMetrics) float64 {
	h := f.sectionGap
	h += f.block(s.Find("h2").Text(), headingSizePt, m.ContentWidthPx) + headingMargin

	s.Find(".entry-head, p, ul.skills, ul:not(.skills) > li").Each(func(_ int, b *goquery.Selection) {
		width := m.ContentWidthPx
		if goquery.NodeName(b) == "li" {
			width -= listIndentPx
		}
		h += f.block(b.Text(), f.sizePx, width)
	})
	h += float64(s.Find(".entry").Length()) * entryMargin

	return math.Round(h*100) / 100
}
