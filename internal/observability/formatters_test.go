package observability

import (
	"bytes"
	"testing"
	"time"

	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintMeasurement(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintMeasurement(&types.Measurement{
		HeaderHeightPx: 80,
		ScrollHeightPx: 1200,
		Sections: []types.SectionMeasurement{
			{SectionID: "summary", HeightPx: 60},
			{SectionID: "employment", HeightPx: 700},
			{SectionID: "education", HeightPx: 90},
			{SectionID: "skills", HeightPx: 40},
			{SectionID: "links", HeightPx: 30},
			{SectionID: "custom:Talks", HeightPx: 50},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "SECTION MEASUREMENT")
	assert.Contains(t, output, "80.0px")
	assert.Contains(t, output, "Sections: 6 (970.0px total)")
	assert.Contains(t, output, "employment")
	assert.Contains(t, output, "... and 1 more")
	assert.NotContains(t, output, "custom:Talks")
}

func TestPrintMeasurement_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintMeasurement(nil)
	assert.Empty(t, buf.String())
}

func TestPrintPlan(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	plan := &layout.Plan{
		State: types.PaginationState{PageCount: 2},
		Pages: []layout.PageFill{
			{Page: 1, HeaderPx: 100, AvailablePx: 667, UsedPx: 600, Sections: []string{"summary", "employment"}},
			{Page: 2, HeaderPx: 100, AvailablePx: 667, UsedPx: 900, Sections: []string{"education"}},
		},
	}
	p.PrintPlan(plan)
	output := buf.String()

	assert.Contains(t, output, "PAGINATION PLAN")
	assert.Contains(t, output, "Pages: 2")
	assert.Contains(t, output, "Page 1: 600/667px")
	assert.Contains(t, output, "• education")
	assert.Contains(t, output, "overflows by 233.0px")
}

func TestPrintViolations(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintViolations(&types.Violations{})
	assert.Empty(t, buf.String())

	p.PrintViolations(&types.Violations{Violations: []types.Violation{{
		Type:             types.ViolationOrder,
		Severity:         types.SeverityError,
		Details:          "skills placed before education",
		AffectedSections: []string{"skills", "education"},
	}}})
	output := buf.String()

	assert.Contains(t, output, "PAGINATION VIOLATIONS")
	assert.Contains(t, output, "[error] page_order")
	assert.Contains(t, output, "skills, education")
}

func TestPrintExport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintExport(&export.Result{
		Strategy: export.StrategyRaster,
		Data:     make([]byte, 2048),
		Pages:    3,
		Duration: 1500 * time.Millisecond,
	}, "out/resume.pdf")
	output := buf.String()

	assert.Contains(t, output, "PDF EXPORT")
	assert.Contains(t, output, "raster")
	assert.Contains(t, output, "2.0 KB")
	assert.Contains(t, output, "1.5s")
	assert.Contains(t, output, "out/resume.pdf")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", "this line is deliberately much longer than the width of the box it is printed in")
	assert.Contains(t, buf.String(), "...")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2<<20))
}
