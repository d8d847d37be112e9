package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableHeight(t *testing.T) {
	b := testBudget()
	assert.InDelta(t, 667.0, FirstPageAvailable(b), 0.001)
	assert.InDelta(t, 767.0, AvailableHeight(b, 0), 0.001)
}

func TestFitsOnePage(t *testing.T) {
	b := testBudget()
	assert.True(t, FitsOnePage(600, b))
	assert.True(t, FitsOnePage(667, b))
	assert.False(t, FitsOnePage(667.5, b))
}

func TestComputePageCount(t *testing.T) {
	tmpl := mustTemplate(t, "classic")
	assert.Equal(t, 1, ComputePageCount(sections("skills", 600), testBudget(), tmpl))
	assert.Equal(t, 2, ComputePageCount(sections("summary", 200, "employment", 300, "education", 250), testBudget(), tmpl))
}

func TestEstimatePageCount(t *testing.T) {
	assert.Equal(t, 1, EstimatePageCount(0, 842))
	assert.Equal(t, 1, EstimatePageCount(842, 842))
	assert.Equal(t, 2, EstimatePageCount(843, 842))
	assert.Equal(t, 3, EstimatePageCount(2000, 842))
	assert.Equal(t, 1, EstimatePageCount(2000, 0))
}

func TestDefaultBudget(t *testing.T) {
	b := DefaultBudget(100)
	assert.Equal(t, A4HeightPx, b.PageHeightPx)
	assert.Equal(t, DefaultFooterPx, b.FooterHeightPx)
	assert.Equal(t, DefaultMarginPx, b.MarginPx)
	assert.Equal(t, 100.0, b.HeaderHeightPx)
}

func TestNewBudget_RejectsInvalidGeometry(t *testing.T) {
	_, err := NewBudget(0, 100, 40, 35)
	require.Error(t, err)

	var budgetErr *BudgetError
	assert.ErrorAs(t, err, &budgetErr)

	b, err := NewBudget(842, 100, 40, 35)
	require.NoError(t, err)
	assert.Equal(t, 842.0, b.PageHeightPx)
}
