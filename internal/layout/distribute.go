package layout

import (
	"time"

	"github.com/jonathan/resume-builder/internal/types"
)

// PageFill records how much of a page's budget the distributor used.
type PageFill struct {
	Page        int      `json:"page"`
	HeaderPx    float64  `json:"header_px"`
	AvailablePx float64  `json:"available_px"`
	UsedPx      float64  `json:"used_px"`
	Sections    []string `json:"sections"`
}

// Overflow returns how far the page content exceeds its budget, or 0.
func (f PageFill) Overflow() float64 {
	return max(0, f.UsedPx-f.AvailablePx)
}

// Plan is a distribution result with per-page bookkeeping.
type Plan struct {
	State types.PaginationState
	Pages []PageFill
}

// PlanPages walks sections in document order and assigns each to the current page until the next one
// would overflow, then opens a new page. Sections are never reordered and never split, so page
// numbers are non-decreasing in document order. A section that exactly fills the remaining height
// stays on the current page. A section on an otherwise empty page stays there even when it is taller
// than the page budget.
func PlanPages(sections []types.SectionMeasurement, budget types.PageBudget, tmpl Template) *Plan {
	measured := make([]types.SectionMeasurement, 0, len(sections))
	total := 0.0
	for _, s := range sections {
		if s.HeightPx <= 0 {
			continue
		}
		measured = append(measured, s)
		total += s.HeightPx
	}

	first := PageFill{
		Page:        1,
		HeaderPx:    budget.HeaderHeightPx,
		AvailablePx: FirstPageAvailable(budget),
	}

	// Everything fits: page 1 renders all sections without consulting a map.
	if FitsOnePage(total, budget) {
		for _, s := range measured {
			first.Sections = append(first.Sections, s.SectionID)
		}
		first.UsedPx = total
		return &Plan{
			State: types.PaginationState{
				PageCount:      1,
				SectionPageMap: types.SectionPageMap{},
				ComputedAt:     time.Now(),
			},
			Pages: []PageFill{first},
		}
	}

	pageMap := make(types.SectionPageMap, len(measured))
	pages := []PageFill{first}
	current := &pages[0]

	for _, s := range measured {
		if current.UsedPx > 0 && current.UsedPx+s.HeightPx > current.AvailablePx {
			next := current.Page + 1
			header := tmpl.HeaderHeight(next, budget.HeaderHeightPx)
			pages = append(pages, PageFill{
				Page:        next,
				HeaderPx:    header,
				AvailablePx: AvailableHeight(budget, header),
			})
			current = &pages[len(pages)-1]
		}
		current.UsedPx += s.HeightPx
		current.Sections = append(current.Sections, s.SectionID)
		pageMap[s.SectionID] = current.Page
	}

	return &Plan{
		State: types.PaginationState{
			PageCount:      len(pages),
			SectionPageMap: pageMap,
			ComputedAt:     time.Now(),
		},
		Pages: pages,
	}
}

// Distribute assigns measured sections to pages and returns the resulting pagination state.
func Distribute(sections []types.SectionMeasurement, budget types.PageBudget, tmpl Template) types.PaginationState {
	return PlanPages(sections, budget, tmpl).State
}
