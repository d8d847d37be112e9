package layout

import (
	"math/rand"
	"testing"

	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBudget() types.PageBudget {
	return types.PageBudget{PageHeightPx: 842, HeaderHeightPx: 100, FooterHeightPx: 40, MarginPx: 35}
}

func mustTemplate(t *testing.T, id string) Template {
	t.Helper()
	tmpl, err := LookupTemplate(id)
	require.NoError(t, err)
	return tmpl
}

func sections(pairs ...any) []types.SectionMeasurement {
	out := make([]types.SectionMeasurement, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, types.SectionMeasurement{
			SectionID: pairs[i].(string),
			HeightPx:  float64(pairs[i+1].(int)),
		})
	}
	return out
}

func TestDistribute_TwoPageScenario(t *testing.T) {
	state := Distribute(sections("summary", 200, "employment", 300, "education", 250), testBudget(), mustTemplate(t, "classic"))

	assert.Equal(t, 2, state.PageCount)
	assert.Equal(t, types.SectionPageMap{"summary": 1, "employment": 1, "education": 2}, state.SectionPageMap)
}

func TestDistribute_SingleSectionFits(t *testing.T) {
	state := Distribute(sections("skills", 600), testBudget(), mustTemplate(t, "classic"))

	assert.Equal(t, 1, state.PageCount)
	assert.Empty(t, state.SectionPageMap)
	assert.NotNil(t, state.SectionPageMap)
}

func TestDistribute_ExactFitStaysOnPage(t *testing.T) {
	// 667 available on page 1: 400 + 267 fills it exactly.
	state := Distribute(sections("summary", 400, "employment", 267, "education", 10), testBudget(), mustTemplate(t, "classic"))

	require.Equal(t, 2, state.PageCount)
	assert.Equal(t, 1, state.SectionPageMap["employment"])
	assert.Equal(t, 2, state.SectionPageMap["education"])
}

func TestDistribute_OneOverExactFitMovesToNextPage(t *testing.T) {
	state := Distribute(sections("summary", 400, "employment", 268), testBudget(), mustTemplate(t, "classic"))

	require.Equal(t, 2, state.PageCount)
	assert.Equal(t, 2, state.SectionPageMap["employment"])
}

func TestDistribute_OversizedFirstSectionStaysOnPageOne(t *testing.T) {
	state := Distribute(sections("employment", 900, "education", 100), testBudget(), mustTemplate(t, "classic"))

	assert.Equal(t, 2, state.PageCount)
	assert.Equal(t, 1, state.SectionPageMap["employment"])
	assert.Equal(t, 2, state.SectionPageMap["education"])
}

func TestDistribute_OversizedMiddleSectionGetsOwnPage(t *testing.T) {
	plan := PlanPages(sections("summary", 100, "employment", 1200, "education", 100), testBudget(), mustTemplate(t, "classic"))

	assert.Equal(t, 3, plan.State.PageCount)
	assert.Equal(t, []string{"employment"}, plan.Pages[1].Sections)
	assert.Greater(t, plan.Pages[1].Overflow(), 0.0)
	assert.Equal(t, 3, plan.State.SectionPageMap["education"])
}

func TestDistribute_SkipsZeroHeightSections(t *testing.T) {
	state := Distribute(sections("summary", 500, "links", 0, "employment", 400), testBudget(), mustTemplate(t, "classic"))

	assert.Equal(t, 2, state.PageCount)
	_, ok := state.SectionPageMap["links"]
	assert.False(t, ok)
}

func TestDistribute_EmptyInput(t *testing.T) {
	state := Distribute(nil, testBudget(), mustTemplate(t, "classic"))
	assert.Equal(t, 1, state.PageCount)
	assert.Empty(t, state.SectionPageMap)
}

func TestPlanPages_HeaderPolicyChangesLaterPageBudget(t *testing.T) {
	input := sections("a", 600, "b", 600, "c", 100)

	// classic: page 2 has no header, 767 available -> b and c share page 2.
	classic := PlanPages(input, testBudget(), mustTemplate(t, "classic"))
	assert.Equal(t, 2, classic.State.PageCount)
	assert.InDelta(t, 767.0, classic.Pages[1].AvailablePx, 0.001)

	// executive: full header repeats, 667 available -> c spills to page 3.
	executive := PlanPages(input, testBudget(), mustTemplate(t, "executive"))
	assert.Equal(t, 3, executive.State.PageCount)
	assert.InDelta(t, 667.0, executive.Pages[1].AvailablePx, 0.001)

	// modern: half header, 717 available -> b and c (700) share page 2.
	modern := PlanPages(input, testBudget(), mustTemplate(t, "modern"))
	assert.Equal(t, 2, modern.State.PageCount)
	assert.InDelta(t, 50.0, modern.Pages[1].HeaderPx, 0.001)
}

func TestPlanPages_PageFillsMatchMap(t *testing.T) {
	plan := PlanPages(sections("summary", 200, "employment", 300, "education", 250), testBudget(), mustTemplate(t, "classic"))

	require.Len(t, plan.Pages, 2)
	assert.Equal(t, []string{"summary", "employment"}, plan.Pages[0].Sections)
	assert.InDelta(t, 500.0, plan.Pages[0].UsedPx, 0.001)
	assert.Equal(t, []string{"education"}, plan.Pages[1].Sections)
}

func randomSections(r *rand.Rand) []types.SectionMeasurement {
	n := 1 + r.Intn(12)
	out := make([]types.SectionMeasurement, n)
	for i := range out {
		out[i] = types.SectionMeasurement{
			SectionID: string(rune('a' + i)),
			HeightPx:  float64(1 + r.Intn(900)),
		}
	}
	return out
}

func TestDistribute_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	templates := Templates()

	for iter := 0; iter < 500; iter++ {
		input := randomSections(r)
		tmpl := templates[iter%len(templates)]
		state := Distribute(input, testBudget(), tmpl)

		total := 0.0
		for _, s := range input {
			total += s.HeightPx
		}

		if total <= FirstPageAvailable(testBudget()) {
			assert.Equal(t, 1, state.PageCount)
			assert.Empty(t, state.SectionPageMap)
			continue
		}

		// coverage: every section exactly once
		require.Len(t, state.SectionPageMap, len(input))

		// order preservation
		prev := 1
		for _, s := range input {
			page := state.SectionPageMap[s.SectionID]
			assert.GreaterOrEqual(t, page, prev, "section %s moved before its predecessor", s.SectionID)
			assert.LessOrEqual(t, page, state.PageCount)
			prev = page
		}
		assert.Equal(t, prev, state.PageCount)
	}
}

func TestDistribute_MonotonicPageGrowth(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	templates := Templates()

	for iter := 0; iter < 300; iter++ {
		input := randomSections(r)
		tmpl := templates[iter%len(templates)]
		before := Distribute(input, testBudget(), tmpl).PageCount

		grown := append([]types.SectionMeasurement(nil), input...)
		idx := r.Intn(len(grown))
		grown[idx].HeightPx += float64(1 + r.Intn(400))
		after := Distribute(grown, testBudget(), tmpl).PageCount

		assert.GreaterOrEqual(t, after, before)
	}
}
