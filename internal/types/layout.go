package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// SectionMeasurement is the rendered height of one section, recomputed on every layout pass.
type SectionMeasurement struct {
	SectionID string  `json:"section_id"`
	HeightPx  float64 `json:"height_px"`
}

// Measurement is the result of one read of a rendered page-1 view.
type Measurement struct {
	HeaderHeightPx float64              `json:"header_height_px"`
	ScrollHeightPx float64              `json:"scroll_height_px"`
	Sections       []SectionMeasurement `json:"sections"`
}

// TotalSectionHeight sums the heights of all measured sections.
func (m *Measurement) TotalSectionHeight() float64 {
	total := 0.0
	for _, s := range m.Sections {
		total += s.HeightPx
	}
	return total
}

// PageBudget holds the fixed page geometry used to compute the space available to sections.
type PageBudget struct {
	PageHeightPx   float64 `json:"page_height_px" validate:"gt=0"`
	HeaderHeightPx float64 `json:"header_height_px" validate:"gte=0"`
	FooterHeightPx float64 `json:"footer_height_px" validate:"gte=0"`
	MarginPx       float64 `json:"margin_px" validate:"gte=0"`
}

// Validate validates the PageBudget using the validator.
func (b *PageBudget) Validate() error {
	validate := validator.New()
	return validate.Struct(b)
}

// Available is the space left for sections on a page whose header is headerPx tall.
func (b PageBudget) Available(headerPx float64) float64 {
	return b.PageHeightPx - headerPx - b.MarginPx - b.FooterHeightPx
}

// SectionPageMap maps a section id to its 1-based page number.
type SectionPageMap map[string]int

// PaginationState is derived state: replaced on every recalculation, never persisted.
type PaginationState struct {
	PageCount      int            `json:"page_count"`
	SectionPageMap SectionPageMap `json:"section_page_map"`
	Version        uint64         `json:"version"`
	ComputedAt     time.Time      `json:"computed_at"`
}

// PageOf returns the page a section renders on. Single-page states have an empty map,
// in which case every section is implicitly on page 1.
func (s PaginationState) PageOf(sectionID string) (int, bool) {
	if s.PageCount <= 1 {
		return 1, true
	}
	page, ok := s.SectionPageMap[sectionID]
	return page, ok
}

// LayoutPreferences are the user's persisted layout and style choices.
type LayoutPreferences struct {
	Template       string   `json:"template" validate:"required"`
	FontFamily     string   `json:"font_family,omitempty"`
	FontSizePt     float64  `json:"font_size_pt,omitempty" validate:"omitempty,gte=6,lte=24"`
	Spacing        string   `json:"spacing,omitempty" validate:"omitempty,oneof=compact normal relaxed"`
	ActiveSections []string `json:"active_sections,omitempty"`
}

// Validate validates the LayoutPreferences using the validator.
func (p *LayoutPreferences) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// DefaultLayoutPreferences returns the preferences a new session starts with.
func DefaultLayoutPreferences(template string) LayoutPreferences {
	return LayoutPreferences{
		Template:   template,
		FontFamily: "Helvetica, Arial, sans-serif",
		FontSizePt: 10.5,
		Spacing:    "normal",
	}
}
