// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintMeasurement outputs the header height and the tallest measured sections.
func (p *Printer) PrintMeasurement(m *types.Measurement) {
	if m == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Header:   %.1fpx\n", m.HeaderHeightPx))
	sb.WriteString(fmt.Sprintf("Scroll:   %.1fpx\n", m.ScrollHeightPx))
	sb.WriteString(fmt.Sprintf("Sections: %d (%.1fpx total)\n", len(m.Sections), m.TotalSectionHeight()))
	sb.WriteString("\n")

	count := min(len(m.Sections), maxItemsToShow)
	for i := 0; i < count; i++ {
		s := m.Sections[i]
		sb.WriteString(fmt.Sprintf("  • %-24s %8.1fpx\n", s.SectionID, s.HeightPx))
	}
	if len(m.Sections) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(m.Sections)-maxItemsToShow))
	}

	p.printBox("SECTION MEASUREMENT", sb.String())
}

// PrintPlan outputs the per-page fill of a pagination plan.
func (p *Printer) PrintPlan(plan *layout.Plan) {
	if plan == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Pages: %d\n", plan.State.PageCount))
	sb.WriteString("\n")

	for _, page := range plan.Pages {
		sb.WriteString(fmt.Sprintf("Page %d: %.0f/%.0fpx (header %.0fpx)\n",
			page.Page, page.UsedPx, page.AvailablePx, page.HeaderPx))
		if over := page.Overflow(); over > 0 {
			sb.WriteString(fmt.Sprintf("  ! overflows by %.1fpx\n", over))
		}
		for _, id := range page.Sections {
			sb.WriteString(fmt.Sprintf("  • %s\n", id))
		}
	}

	p.printBox("PAGINATION PLAN", sb.String())
}

// PrintViolations outputs pagination check failures. Nothing is printed when there are none.
func (p *Printer) PrintViolations(v *types.Violations) {
	if v == nil || len(v.Violations) == 0 {
		return
	}

	var sb strings.Builder
	for _, violation := range v.Violations {
		sb.WriteString(fmt.Sprintf("[%s] %s\n", violation.Severity, violation.Type))
		sb.WriteString(fmt.Sprintf("  %s\n", violation.Details))
		if len(violation.AffectedSections) > 0 {
			sb.WriteString(fmt.Sprintf("  Sections: %s\n", strings.Join(violation.AffectedSections, ", ")))
		}
	}

	p.printBox("PAGINATION VIOLATIONS", sb.String())
}

// PrintExport outputs a summary of an exported PDF.
func (p *Printer) PrintExport(res *export.Result, path string) {
	if res == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Strategy: %s\n", res.Strategy))
	sb.WriteString(fmt.Sprintf("Pages:    %d\n", res.Pages))
	sb.WriteString(fmt.Sprintf("Size:     %s\n", formatBytes(len(res.Data))))
	sb.WriteString(fmt.Sprintf("Duration: %s\n", res.Duration.Round(time.Millisecond)))
	if path != "" {
		sb.WriteString(fmt.Sprintf("Output:   %s\n", path))
	}

	p.printBox("PDF EXPORT", sb.String())
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
