package rendering

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	return r
}

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestRenderView_SectionsInActiveOrder(t *testing.T) {
	r := newTestRenderer(t)
	doc := types.SampleResume(2)
	doc.ActiveSections = []string{"skills", "summary", "employment"}

	view, err := r.RenderView(doc, types.DefaultLayoutPreferences("classic"))
	require.NoError(t, err)
	assert.Equal(t, []string{"skills", "summary", "employment"}, view.Sections)

	dom := parseHTML(t, view.HTML)
	var ids []string
	dom.Find(SectionSelector).Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("data-section-id")
		ids = append(ids, id)
	})
	assert.Equal(t, view.Sections, ids)
	assert.Equal(t, 1, dom.Find(HeaderSelector).Length())
	assert.Equal(t, 1, dom.Find(FlowSelector).Length())
}

func TestRenderView_PersonalIsHeaderOnly(t *testing.T) {
	r := newTestRenderer(t)
	doc := types.SampleResume(1)
	doc.ActiveSections = append([]string{types.SectionPersonal}, doc.ActiveSections...)

	view, err := r.RenderView(doc, types.DefaultLayoutPreferences("modern"))
	require.NoError(t, err)
	assert.NotContains(t, view.Sections, types.SectionPersonal)

	dom := parseHTML(t, view.HTML)
	assert.Equal(t, "Alex Morgan", dom.Find(HeaderSelector+" .name").Text())
}

func TestRenderView_SkipsEmptyAndUnknownSections(t *testing.T) {
	r := newTestRenderer(t)
	doc := types.SampleResume(1)
	doc.Links = nil
	doc.ActiveSections = []string{"summary", "links", "custom:missing", "skills"}

	view, err := r.RenderView(doc, types.DefaultLayoutPreferences("classic"))
	require.NoError(t, err)
	assert.Equal(t, []string{"summary", "skills"}, view.Sections)
}

func TestRenderView_CustomSection(t *testing.T) {
	r := newTestRenderer(t)
	doc := types.SampleResume(0)
	doc.Custom = map[string]types.CustomSection{
		"Volunteering": {Title: "Volunteering", Items: []string{"Food bank driver"}},
	}
	doc.ActiveSections = []string{"summary", "custom:Volunteering"}

	view, err := r.RenderView(doc, types.DefaultLayoutPreferences("creative"))
	require.NoError(t, err)

	dom := parseHTML(t, view.HTML)
	sel := dom.Find(`[data-section-id="custom:Volunteering"]`)
	require.Equal(t, 1, sel.Length())
	assert.Equal(t, "Volunteering", sel.Find("h2").Text())
	assert.Contains(t, sel.Text(), "Food bank driver")
}

func TestRenderView_EscapesContent(t *testing.T) {
	r := newTestRenderer(t)
	doc := types.SampleResume(0)
	doc.Summary = `<script>alert("x")</script>`
	doc.ActiveSections = []string{"summary"}

	view, err := r.RenderView(doc, types.DefaultLayoutPreferences("classic"))
	require.NoError(t, err)
	assert.NotContains(t, view.HTML, "<script>")
	assert.Contains(t, view.HTML, "&lt;script&gt;")
}

func TestRenderView_FontFamilySanitized(t *testing.T) {
	r := newTestRenderer(t)
	prefs := types.DefaultLayoutPreferences("classic")
	prefs.FontFamily = "Georgia; } body { display:none"

	view, err := r.RenderView(types.SampleResume(0), prefs)
	require.NoError(t, err)
	assert.NotContains(t, view.HTML, "display:none")
	assert.NotContains(t, view.HTML, "ZgotmplZ")
	assert.Contains(t, view.HTML, "font-family:Georgia")
}

func TestRenderView_BodyCarriesMetrics(t *testing.T) {
	r := newTestRenderer(t)
	prefs := types.DefaultLayoutPreferences("executive")
	prefs.FontSizePt = 12
	prefs.Spacing = "compact"

	view, err := r.RenderView(types.SampleResume(1), prefs)
	require.NoError(t, err)

	body := parseHTML(t, view.HTML).Find("body")
	tpl, _ := body.Attr("data-template")
	size, _ := body.Attr("data-font-size")
	spacing, _ := body.Attr("data-spacing")
	assert.Equal(t, "executive", tpl)
	assert.Equal(t, "12", size)
	assert.Equal(t, "compact", spacing)
}

func TestRenderView_Errors(t *testing.T) {
	r := newTestRenderer(t)

	_, err := r.RenderView(nil, types.DefaultLayoutPreferences("classic"))
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "view", renderErr.Op)
	assert.ErrorIs(t, err, errNilDocument)
	assert.Equal(t, "render view: resume document is nil", err.Error())

	_, err = r.RenderView(types.SampleResume(0), types.DefaultLayoutPreferences("baroque"))
	require.Error(t, err)
	var unknown *layout.UnknownTemplateError
	assert.ErrorAs(t, err, &unknown)
}

func TestTemplateError_Message(t *testing.T) {
	cause := assert.AnError
	assert.Equal(t, "template error: parse: "+cause.Error(), (&TemplateError{Cause: cause}).Error())
	assert.Equal(t, "template error: view: "+cause.Error(), (&TemplateError{Block: "view", Cause: cause}).Error())
	assert.Equal(t, "template error: page (page 3): "+cause.Error(), (&TemplateError{Block: "page", Page: 3, Cause: cause}).Error())
}

func TestSpacingPreset(t *testing.T) {
	lh, gap := SpacingPreset("relaxed")
	assert.Equal(t, 1.55, lh)
	assert.Equal(t, 14.0, gap)

	lh, gap = SpacingPreset("unknown")
	assert.Equal(t, 1.35, lh)
	assert.Equal(t, 10.0, gap)
}
