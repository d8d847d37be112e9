package validation

import (
	"testing"

	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func violationTypes(v *types.Violations) []string {
	var out []string
	for _, x := range v.Violations {
		out = append(out, x.Type)
	}
	return out
}

func TestCheckPagination_CleanPlan(t *testing.T) {
	tmpl, err := layout.LookupTemplate("classic")
	require.NoError(t, err)

	measured := []types.SectionMeasurement{
		{SectionID: "summary", HeightPx: 200},
		{SectionID: "employment", HeightPx: 400},
		{SectionID: "education", HeightPx: 300},
	}
	plan := layout.PlanPages(measured, layout.DefaultBudget(100), tmpl)

	v := CheckPagination(measured, plan)
	assert.Empty(t, v.Violations)
	assert.False(t, v.HasErrors())
}

func TestCheckPagination_SinglePage(t *testing.T) {
	tmpl, err := layout.LookupTemplate("classic")
	require.NoError(t, err)

	measured := []types.SectionMeasurement{{SectionID: "skills", HeightPx: 600}}
	plan := layout.PlanPages(measured, layout.DefaultBudget(100), tmpl)

	v := CheckPagination(measured, plan)
	assert.Empty(t, v.Violations)
}

func TestCheckPagination_OversizedSectionIsWarning(t *testing.T) {
	tmpl, err := layout.LookupTemplate("classic")
	require.NoError(t, err)

	measured := []types.SectionMeasurement{
		{SectionID: "summary", HeightPx: 100},
		{SectionID: "employment", HeightPx: 2000},
	}
	plan := layout.PlanPages(measured, layout.DefaultBudget(100), tmpl)

	v := CheckPagination(measured, plan)
	require.Len(t, v.Violations, 1)
	assert.Equal(t, types.ViolationOverflow, v.Violations[0].Type)
	assert.Equal(t, types.SeverityWarning, v.Violations[0].Severity)
	assert.Equal(t, []string{"employment"}, v.Violations[0].AffectedSections)
	require.NotNil(t, v.Violations[0].Page)
	assert.Equal(t, 2, *v.Violations[0].Page)
	assert.False(t, v.HasErrors())
}

func TestCheckPagination_DetectsBrokenState(t *testing.T) {
	measured := []types.SectionMeasurement{
		{SectionID: "summary", HeightPx: 100},
		{SectionID: "employment", HeightPx: 100},
		{SectionID: "education", HeightPx: 100},
		{SectionID: "skills", HeightPx: 100},
	}
	plan := &layout.Plan{
		State: types.PaginationState{
			PageCount: 3,
			SectionPageMap: types.SectionPageMap{
				"summary":    2,
				"employment": 1,
				"skills":     7,
				"ghost":      1,
			},
		},
	}

	v := CheckPagination(measured, plan)
	assert.True(t, v.HasErrors())
	got := violationTypes(v)
	assert.Contains(t, got, types.ViolationOrder)
	assert.Contains(t, got, types.ViolationCoverage)
	assert.Contains(t, got, types.ViolationPages)
	assert.Contains(t, got, types.ViolationUnknown)
}

func TestCheckPagination_MultiSectionOverflowIsError(t *testing.T) {
	plan := &layout.Plan{
		State: types.PaginationState{
			PageCount:      1,
			SectionPageMap: types.SectionPageMap{},
		},
		Pages: []layout.PageFill{
			{Page: 1, AvailablePx: 500, UsedPx: 600, Sections: []string{"summary", "skills"}},
		},
	}

	v := CheckPagination(nil, plan)
	require.Len(t, v.Violations, 1)
	assert.Equal(t, types.SeverityError, v.Violations[0].Severity)
	require.NotNil(t, v.Violations[0].OverflowPx)
	assert.InDelta(t, 100.0, *v.Violations[0].OverflowPx, 0.001)
}

func TestCheckPagination_NilPlan(t *testing.T) {
	v := CheckPagination(nil, nil)
	assert.True(t, v.HasErrors())
}
