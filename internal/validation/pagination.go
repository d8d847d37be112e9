package validation

import (
	"fmt"

	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/types"
)

// CheckPagination verifies a distribution against the measured sections it came from:
// every section has a page, page numbers never decrease in document order, no page is empty,
// and no page holding more than one section exceeds its budget. A lone oversized section is
// reported as a warning since it cannot be split.
func CheckPagination(measured []types.SectionMeasurement, plan *layout.Plan) *types.Violations {
	violations := &types.Violations{}
	if plan == nil {
		violations.Add(types.Violation{
			Type:     types.ViolationPages,
			Severity: types.SeverityError,
			Details:  "no pagination plan",
		})
		return violations
	}

	state := plan.State
	if state.PageCount < 1 {
		violations.Add(types.Violation{
			Type:     types.ViolationPages,
			Severity: types.SeverityError,
			Details:  fmt.Sprintf("page count %d is below 1", state.PageCount),
		})
		return violations
	}

	if state.PageCount == 1 {
		if len(state.SectionPageMap) > 0 {
			violations.Add(types.Violation{
				Type:     types.ViolationPages,
				Severity: types.SeverityWarning,
				Details:  "single-page state carries a section page map",
			})
		}
		checkOverflow(plan.Pages, violations)
		return violations
	}

	measuredIDs := make(map[string]bool, len(measured))
	lastPage := 0
	lastID := ""
	used := make(map[int]bool, state.PageCount)

	for _, s := range measured {
		if s.HeightPx <= 0 {
			continue
		}
		measuredIDs[s.SectionID] = true

		page, ok := state.SectionPageMap[s.SectionID]
		if !ok {
			violations.Add(types.Violation{
				Type:             types.ViolationCoverage,
				Severity:         types.SeverityError,
				Details:          fmt.Sprintf("section %q has no page", s.SectionID),
				AffectedSections: []string{s.SectionID},
			})
			continue
		}

		if page < 1 || page > state.PageCount {
			p := page
			violations.Add(types.Violation{
				Type:             types.ViolationPages,
				Severity:         types.SeverityError,
				Details:          fmt.Sprintf("section %q is on page %d of %d", s.SectionID, page, state.PageCount),
				AffectedSections: []string{s.SectionID},
				Page:             &p,
			})
			continue
		}

		if page < lastPage {
			p := page
			violations.Add(types.Violation{
				Type:             types.ViolationOrder,
				Severity:         types.SeverityError,
				Details:          fmt.Sprintf("section %q on page %d follows %q on page %d", s.SectionID, page, lastID, lastPage),
				AffectedSections: []string{lastID, s.SectionID},
				Page:             &p,
			})
		}
		lastPage = page
		lastID = s.SectionID
		used[page] = true
	}

	for id := range state.SectionPageMap {
		if !measuredIDs[id] {
			violations.Add(types.Violation{
				Type:             types.ViolationUnknown,
				Severity:         types.SeverityWarning,
				Details:          fmt.Sprintf("section %q is mapped but was not measured", id),
				AffectedSections: []string{id},
			})
		}
	}

	for p := 1; p <= state.PageCount; p++ {
		if !used[p] {
			page := p
			violations.Add(types.Violation{
				Type:     types.ViolationPages,
				Severity: types.SeverityError,
				Details:  fmt.Sprintf("page %d has no sections", p),
				Page:     &page,
			})
		}
	}

	checkOverflow(plan.Pages, violations)
	return violations
}

func checkOverflow(pages []layout.PageFill, violations *types.Violations) {
	for _, fill := range pages {
		over := fill.Overflow()
		if over <= 0 {
			continue
		}
		page := fill.Page
		severity := types.SeverityError
		details := fmt.Sprintf("page %d overflows by %.1fpx", fill.Page, over)
		if len(fill.Sections) == 1 {
			severity = types.SeverityWarning
			details = fmt.Sprintf("section %q is taller than page %d by %.1fpx", fill.Sections[0], fill.Page, over)
		}
		violations.Add(types.Violation{
			Type:             types.ViolationOverflow,
			Severity:         severity,
			Details:          details,
			AffectedSections: append([]string(nil), fill.Sections...),
			Page:             &page,
			OverflowPx:       &over,
		})
	}
}
