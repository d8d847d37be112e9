package layout

import (
	"math"

	"github.com/jonathan/resume-builder/internal/types"
)

// A4 page geometry in CSS pixels at the renderer's DPI.
const (
	A4WidthPx  = 595.0
	A4HeightPx = 842.0

	// DefaultFooterPx is the height reserved for the "Page N of M" footer.
	DefaultFooterPx = 40.0
	// DefaultMarginPx is the vertical margin reserved on every page.
	DefaultMarginPx = 35.0
)

// DefaultBudget returns an A4 budget with the default footer and margin for the given header height.
func DefaultBudget(headerHeightPx float64) types.PageBudget {
	return types.PageBudget{
		PageHeightPx:   A4HeightPx,
		HeaderHeightPx: headerHeightPx,
		FooterHeightPx: DefaultFooterPx,
		MarginPx:       DefaultMarginPx,
	}
}

// NewBudget builds a budget and rejects impossible geometry.
func NewBudget(pageHeightPx, headerHeightPx, footerHeightPx, marginPx float64) (types.PageBudget, error) {
	b := types.PageBudget{
		PageHeightPx:   pageHeightPx,
		HeaderHeightPx: headerHeightPx,
		FooterHeightPx: footerHeightPx,
		MarginPx:       marginPx,
	}
	if err := b.Validate(); err != nil {
		return types.PageBudget{}, &BudgetError{Message: "invalid page geometry", Cause: err}
	}
	return b, nil
}

// AvailableHeight is the space left for sections on a page whose header is headerPx tall.
func AvailableHeight(b types.PageBudget, headerPx float64) float64 {
	return b.Available(headerPx)
}

// FirstPageAvailable is the space left for sections on page 1, which always carries the full header.
func FirstPageAvailable(b types.PageBudget) float64 {
	return AvailableHeight(b, b.HeaderHeightPx)
}

// FitsOnePage reports whether all section content fits on the first page.
func FitsOnePage(totalSectionHeight float64, b types.PageBudget) bool {
	return totalSectionHeight <= FirstPageAvailable(b)
}

// ComputePageCount returns 1 when the content fits the first page, otherwise the exact count
// produced by the distributor, since later pages may have a different header height.
func ComputePageCount(sections []types.SectionMeasurement, b types.PageBudget, tmpl Template) int {
	total := 0.0
	for _, s := range sections {
		total += s.HeightPx
	}
	if FitsOnePage(total, b) {
		return 1
	}
	return Distribute(sections, b, tmpl).PageCount
}

// EstimatePageCount is the cheap scroll-height estimate used by the scheduler's fast path.
func EstimatePageCount(scrollHeightPx, pageHeightPx float64) int {
	if pageHeightPx <= 0 || scrollHeightPx <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(scrollHeightPx/pageHeightPx)))
}
