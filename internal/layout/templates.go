package layout

import "sort"

// HeaderPolicy decides how tall the resume header is on pages after the first.
type HeaderPolicy int

const (
	// HeaderFirstPageOnly shows the header once; later pages reserve no header space.
	HeaderFirstPageOnly HeaderPolicy = iota
	// HeaderReduced repeats a compact header scaled by the template's ReducedHeaderRatio.
	HeaderReduced
	// HeaderRepeat repeats the full header on every page.
	HeaderRepeat
)

// String returns the policy name used in the rendered markup.
func (p HeaderPolicy) String() string {
	switch p {
	case HeaderReduced:
		return "reduced"
	case HeaderRepeat:
		return "full"
	default:
		return "first-page"
	}
}

// HeaderMode is the kind of header a specific page renders.
type HeaderMode string

const (
	HeaderModeFull    HeaderMode = "full"
	HeaderModeReduced HeaderMode = "reduced"
	HeaderModeNone    HeaderMode = "none"
)

// DefaultTemplateID is used when a resume has no template preference.
const DefaultTemplateID = "classic"

// Template is the layout-relevant configuration of a resume template.
type Template struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Description        string       `json:"description"`
	HeaderPolicy       HeaderPolicy `json:"-"`
	ReducedHeaderRatio float64      `json:"-"`
}

// HeaderMode returns which header page renders.
func (t Template) HeaderMode(page int) HeaderMode {
	if page <= 1 {
		return HeaderModeFull
	}
	switch t.HeaderPolicy {
	case HeaderRepeat:
		return HeaderModeFull
	case HeaderReduced:
		return HeaderModeReduced
	default:
		return HeaderModeNone
	}
}

// HeaderHeight returns the header height reserved on page given the measured full header height.
func (t Template) HeaderHeight(page int, fullHeaderPx float64) float64 {
	switch t.HeaderMode(page) {
	case HeaderModeFull:
		return fullHeaderPx
	case HeaderModeReduced:
		return fullHeaderPx * t.ReducedHeaderRatio
	default:
		return 0
	}
}

var registry = map[string]Template{
	"classic": {
		ID:           "classic",
		Name:         "Classic",
		Description:  "Serif single column; header on the first page only",
		HeaderPolicy: HeaderFirstPageOnly,
	},
	"modern": {
		ID:                 "modern",
		Name:               "Modern",
		Description:        "Sans-serif with a compact running header",
		HeaderPolicy:       HeaderReduced,
		ReducedHeaderRatio: 0.5,
	},
	"executive": {
		ID:           "executive",
		Name:         "Executive",
		Description:  "Full letterhead repeated on every page",
		HeaderPolicy: HeaderRepeat,
	},
	"minimal": {
		ID:           "minimal",
		Name:         "Minimal",
		Description:  "No rules or colour; header on the first page only",
		HeaderPolicy: HeaderFirstPageOnly,
	},
	"creative": {
		ID:                 "creative",
		Name:               "Creative",
		Description:        "Accent colour band with a half-height running header",
		HeaderPolicy:       HeaderReduced,
		ReducedHeaderRatio: 0.5,
	},
}

// LookupTemplate returns the registered template with the given id.
func LookupTemplate(id string) (Template, error) {
	t, ok := registry[id]
	if !ok {
		return Template{}, &UnknownTemplateError{ID: id}
	}
	return t, nil
}

// Templates returns all registered templates sorted by id.
func Templates() []Template {
	out := make([]Template, 0, len(registry))
	for _, t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}
