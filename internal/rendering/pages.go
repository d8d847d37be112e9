package rendering

import (
	"html/template"
	"strings"

	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/types"
)

// PageOptions controls which pages RenderPages renders in full.
type PageOptions struct {
	// CurrentPage is the page the user is looking at. Pages further than one away render as placeholders.
	CurrentPage int
	// ForceAll renders every page, as export requires.
	ForceAll bool
}

// Page is one fixed-size A4 block.
type Page struct {
	Number      int    `json:"number"`
	ID          string `json:"id"`
	HTML        string `json:"html"`
	Placeholder bool   `json:"placeholder"`
	// Sections lists the section ids rendered on this page.
	Sections []string `json:"sections"`
}

// pageData is the data passed to the "page" template
type pageData struct {
	ID          string
	Number      int
	PageCount   int
	Placeholder bool
	Header      headerData
	Sections    []sectionData
}

// documentData is the data passed to the "document" template
type documentData struct {
	Title      string
	CSS        template.CSS
	TemplateID string
	FontSizePt float64
	Spacing    string
	PageCount  int
	Pages      []template.HTML
}

// RenderPages renders the resume onto state.PageCount pages. Each page shows the header the template's
// policy allows, the sections mapped to it in active-section order, and a "Page N of M" footer.
// A single-page state renders every section on page 1 without consulting the map.
func (r *Renderer) RenderPages(doc *types.ResumeDocument, prefs types.LayoutPreferences, state types.PaginationState, opts PageOptions) ([]Page, error) {
	if doc == nil {
		return nil, &RenderError{Op: "pages", Cause: errNilDocument}
	}
	tmpl, err := layout.LookupTemplate(prefs.Template)
	if err != nil {
		return nil, &RenderError{Op: "pages", Cause: err}
	}

	pageCount := max(1, state.PageCount)
	sections := buildSections(doc)
	byPage := assignSections(sections, state, pageCount)

	current := opts.CurrentPage
	if current < 1 {
		current = 1
	}
	if current > pageCount {
		current = pageCount
	}

	pages := make([]Page, 0, pageCount)
	for n := 1; n <= pageCount; n++ {
		data := pageData{
			ID:        PageID(n),
			Number:    n,
			PageCount: pageCount,
		}
		if !opts.ForceAll && (n < current-1 || n > current+1) {
			data.Placeholder = true
		} else {
			data.Header = buildHeader(doc, tmpl.HeaderMode(n))
			data.Sections = byPage[n]
		}

		var sb strings.Builder
		if err := r.tmpl.ExecuteTemplate(&sb, "page", data); err != nil {
			return nil, &TemplateError{Block: "page", Page: n, Cause: err}
		}

		ids := make([]string, 0, len(byPage[n]))
		for _, s := range byPage[n] {
			ids = append(ids, s.ID)
		}
		pages = append(pages, Page{
			Number:      n,
			ID:          data.ID,
			HTML:        sb.String(),
			Placeholder: data.Placeholder,
			Sections:    ids,
		})
	}
	return pages, nil
}

// assignSections groups sections by page, keeping active-section order within a page.
// Sections the last pass did not measure (added since) go to the last page until the next pass.
func assignSections(sections []sectionData, state types.PaginationState, pageCount int) map[int][]sectionData {
	byPage := make(map[int][]sectionData, pageCount)
	for _, s := range sections {
		page, ok := state.PageOf(s.ID)
		if !ok || page < 1 || page > pageCount {
			page = pageCount
		}
		byPage[page] = append(byPage[page], s)
	}
	return byPage
}

// RenderDocument wraps rendered pages into one printable HTML document.
func (r *Renderer) RenderDocument(doc *types.ResumeDocument, prefs types.LayoutPreferences, pages []Page) (string, error) {
	if doc == nil {
		return "", &RenderError{Op: "document", Cause: errNilDocument}
	}
	tmpl, err := layout.LookupTemplate(prefs.Template)
	if err != nil {
		return "", &RenderError{Op: "document", Cause: err}
	}
	prefs = normalizePreferences(prefs)

	fragments := make([]template.HTML, len(pages))
	for i, p := range pages {
		// Page HTML was produced by the "page" template and is already escaped.
		fragments[i] = template.HTML(p.HTML)
	}

	data := documentData{
		Title:      doc.Name,
		CSS:        buildCSS(tmpl, prefs),
		TemplateID: tmpl.ID,
		FontSizePt: prefs.FontSizePt,
		Spacing:    prefs.Spacing,
		PageCount:  len(pages),
		Pages:      fragments,
	}

	var sb strings.Builder
	if err := r.tmpl.ExecuteTemplate(&sb, "document", data); err != nil {
		return "", &TemplateError{Block: "document", Cause: err}
	}
	return sb.String(), nil
}

// PageIDs returns the DOM ids of pages in order.
func PageIDs(pages []Page) []string {
	ids := make([]string, len(pages))
	for i, p := range pages {
		ids[i] = p.ID
	}
	return ids
}
