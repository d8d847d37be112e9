package rendering

import (
	"embed"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Selectors the measurer and the exporters rely on.
const (
	SectionSelector = "[data-section-id]"
	HeaderSelector  = `[data-role="resume-header"]`
	FlowSelector    = "#resume-flow"
	PageIDPrefix    = "resume-page-"
)

// PageID returns the stable DOM id of a page block.
func PageID(number int) string {
	return fmt.Sprintf("%s%d", PageIDPrefix, number)
}

// View is the flowing page-1 rendering of a resume that the measurer reads.
type View struct {
	HTML       string
	TemplateID string
	FontSizePt float64
	Spacing    string
	// Sections lists the rendered section ids in document order.
	Sections []string
}

// Renderer renders resumes with the embedded HTML templates.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("resume").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, &TemplateError{Cause: err}
	}
	return &Renderer{tmpl: tmpl}, nil
}

// headerData is the data passed to the "header" template
type headerData struct {
	Mode    layout.HeaderMode
	Name    string
	Title   string
	Contact []string
}

// sectionData is the data passed to the "section" template
type sectionData struct {
	ID         string
	Kind       string
	Heading    string
	Text       string
	Items      []string
	Employment []types.Employment
	Education  []types.Education
	Links      []types.Link
}

// viewData is the data passed to the "view" template
type viewData struct {
	Title      string
	CSS        template.CSS
	TemplateID string
	FontSizePt float64
	Spacing    string
	Header     headerData
	Sections   []sectionData
}

// RenderView renders every active section in one flowing column with the full header.
func (r *Renderer) RenderView(doc *types.ResumeDocument, prefs types.LayoutPreferences) (*View, error) {
	if doc == nil {
		return nil, &RenderError{Op: "view", Cause: errNilDocument}
	}
	tmpl, err := layout.LookupTemplate(prefs.Template)
	if err != nil {
		return nil, &RenderError{Op: "view", Cause: err}
	}
	prefs = normalizePreferences(prefs)

	sections := buildSections(doc)
	data := viewData{
		Title:      doc.Name,
		CSS:        buildCSS(tmpl, prefs),
		TemplateID: tmpl.ID,
		FontSizePt: prefs.FontSizePt,
		Spacing:    prefs.Spacing,
		Header:     buildHeader(doc, layout.HeaderModeFull),
		Sections:   sections,
	}

	var sb strings.Builder
	if err := r.tmpl.ExecuteTemplate(&sb, "view", data); err != nil {
		return nil, &TemplateError{Block: "view", Cause: err}
	}

	ids := make([]string, len(sections))
	for i, s := range sections {
		ids[i] = s.ID
	}

	return &View{
		HTML:       sb.String(),
		TemplateID: tmpl.ID,
		FontSizePt: prefs.FontSizePt,
		Spacing:    prefs.Spacing,
		Sections:   ids,
	}, nil
}

// buildHeader collects the personal block, which is pinned to the header and never paginated
func buildHeader(doc *types.ResumeDocument, mode layout.HeaderMode) headerData {
	contact := make([]string, 0, 3)
	for _, c := range []string{doc.Email, doc.Phone, doc.Location} {
		if c != "" {
			contact = append(contact, c)
		}
	}
	return headerData{
		Mode:    mode,
		Name:    doc.Name,
		Title:   doc.Title,
		Contact: contact,
	}
}

// buildSections converts active sections into template data, in document order
func buildSections(doc *types.ResumeDocument) []sectionData {
	out := make([]sectionData, 0, len(doc.ActiveSections))
	seen := make(map[string]bool, len(doc.ActiveSections))

	for _, id := range doc.PaginatedSections() {
		if seen[id] || !doc.IsKnownSection(id) {
			continue
		}
		seen[id] = true

		s := sectionData{ID: id, Kind: id}
		switch id {
		case types.SectionSummary:
			s.Heading = "Summary"
			s.Text = doc.Summary
		case types.SectionEmployment:
			s.Heading = "Experience"
			s.Employment = doc.Employment
		case types.SectionEducation:
			s.Heading = "Education"
			s.Education = doc.Education
		case types.SectionSkills:
			s.Heading = "Skills"
			s.Items = doc.Skills
		case types.SectionLinks:
			s.Heading = "Links"
			s.Links = doc.Links
		default:
			custom := doc.Custom[types.CustomSectionName(id)]
			s.Kind = "custom"
			s.Heading = custom.Title
			s.Text = custom.Body
			s.Items = custom.Items
		}

		if isEmptySection(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// isEmptySection reports whether a section has no content; empty sections get no page slot
func isEmptySection(s sectionData) bool {
	return strings.TrimSpace(s.Text) == "" &&
		len(s.Items) == 0 &&
		len(s.Employment) == 0 &&
		len(s.Education) == 0 &&
		len(s.Links) == 0
}

func normalizePreferences(p types.LayoutPreferences) types.LayoutPreferences {
	if p.FontSizePt <= 0 {
		p.FontSizePt = 10.5
	}
	if p.Spacing == "" {
		p.Spacing = "normal"
	}
	if strings.TrimSpace(p.FontFamily) == "" {
		p.FontFamily = "Helvetica, Arial, sans-serif"
	}
	return p
}

// Spacing presets: line height multiplier and the gap between sections in px.
var spacingPresets = map[string]struct {
	LineHeight float64
	SectionGap float64
}{
	"compact": {LineHeight: 1.2, SectionGap: 6},
	"normal":  {LineHeight: 1.35, SectionGap: 10},
	"relaxed": {LineHeight: 1.55, SectionGap: 14},
}

// SpacingPreset returns the line height multiplier and section gap for a spacing name.
func SpacingPreset(spacing string) (lineHeight, sectionGap float64) {
	p, ok := spacingPresets[spacing]
	if !ok {
		p = spacingPresets["normal"]
	}
	return p.LineHeight, p.SectionGap
}

var accents = map[string]string{
	"classic":   "#1f2937",
	"modern":    "#2563eb",
	"executive": "#111827",
	"minimal":   "#000000",
	"creative":  "#db2777",
}

var unsafeFontChars = regexp.MustCompile(`[^A-Za-z0-9 ,\-']`)

func buildCSS(tmpl layout.Template, p types.LayoutPreferences) template.CSS {
	lineHeight, gap := SpacingPreset(p.Spacing)
	font := unsafeFontChars.ReplaceAllString(p.FontFamily, "")
	accent := accents[tmpl.ID]

	var sb strings.Builder
	fmt.Fprintf(&sb, "*{box-sizing:border-box;margin:0;padding:0}")
	fmt.Fprintf(&sb, "body{font-family:%s;font-size:%.1fpt;line-height:%.2f;color:#111;background:#fff}", font, p.FontSizePt, lineHeight)
	fmt.Fprintf(&sb, ".resume-flow{width:%.0fpx;padding:0 %.0fpx}", layout.A4WidthPx, layout.DefaultMarginPx)
	fmt.Fprintf(&sb, ".resume-page{position:relative;width:%.0fpx;height:%.0fpx;padding:%.0fpx %.0fpx 0;page-break-after:always;break-after:page}",
		layout.A4WidthPx, layout.A4HeightPx, layout.DefaultMarginPx/2, layout.DefaultMarginPx)
	fmt.Fprintf(&sb, "footer[data-role=resume-footer]{position:absolute;bottom:0;left:0;right:0;height:%.0fpx;line-height:%.0fpx;text-align:center;font-size:8pt;color:#666}",
		layout.DefaultFooterPx, layout.DefaultFooterPx)
	fmt.Fprintf(&sb, "header.header-full{padding-bottom:8px;border-bottom:2px solid %s}", accent)
	fmt.Fprintf(&sb, "header.header-full .name{font-size:20pt;color:%s}", accent)
	fmt.Fprintf(&sb, "header.header-reduced{font-size:9pt;border-bottom:1px solid %s;padding-bottom:4px}", accent)
	fmt.Fprintf(&sb, ".section{padding-top:%.0fpx}", gap)
	fmt.Fprintf(&sb, ".section h2{font-size:12pt;color:%s;margin-bottom:4px}", accent)
	fmt.Fprintf(&sb, ".entry{margin-bottom:6px}.entry-head .dates{float:right;color:#555}")
	fmt.Fprintf(&sb, "ul{padding-left:16px}ul.skills li{display:inline;margin-right:8px}ul.skills{padding-left:0;list-style:none}")
	fmt.Fprintf(&sb, "@page{size:A4;margin:0}")
	return template.CSS(sb.String())
}
