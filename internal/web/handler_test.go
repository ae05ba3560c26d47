package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Mrwire/geniusad-sub002/internal/casestudies"
	"github.com/Mrwire/geniusad-sub002/internal/cms"
	"github.com/Mrwire/geniusad-sub002/internal/forms"
	"github.com/Mrwire/geniusad-sub002/internal/pages"
	"github.com/Mrwire/geniusad-sub002/internal/sitectx"
	"github.com/Mrwire/geniusad-sub002/internal/subsidiaries"
	"github.com/Mrwire/geniusad-sub002/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

var pixelLab = subsidiaries.Subsidiary{
	ID:    "s1",
	Name:  "Pixel Lab",
	Slug:  "pixel-lab",
	Theme: subsidiaries.Theme{Primary: "#222222", Accent: "#ff0066", Background: "#fafafa", Text: "#222222"},
}

func sampleItems() []casestudies.CaseStudy {
	ref := &casestudies.SubsidiaryRef{ID: "s1", Name: "Pixel Lab", Slug: "pixel-lab"}
	return []casestudies.CaseStudy{
		{Slug: "launch", Title: "App Launch", ClientName: "Acme", Industry: []string{"Tech"}, Services: []string{"Digital"}, Subsidiary: ref},
		{Slug: "festival", Title: "Summer Festival", ClientName: "City", Industry: []string{"Culture"}, Services: []string{"Events"}},
		{Slug: "bank", Title: "Bank rebrand", ClientName: "Bank", Industry: []string{"Finance"}, Services: []string{"Branding"}},
	}
}

type fakeContent struct{}

func (fakeContent) Home(ctx context.Context, locale string) cms.HomeView {
	return cms.HomeView{
		Page:         pages.Page{Title: "Welcome", Sections: []pages.Section{{Kind: pages.SectionHero, Heading: "We make brands"}}},
		Featured:     sampleItems()[:1],
		Subsidiaries: []subsidiaries.Subsidiary{pixelLab},
	}
}

func (fakeContent) Work(ctx context.Context) cms.WorkView {
	items := sampleItems()
	return cms.WorkView{Items: items, Facets: casestudies.BuildFacets(items)}
}

func (fakeContent) CaseStudy(ctx context.Context, slug string) cms.CaseStudyView {
	for _, item := range sampleItems() {
		if item.Slug == slug {
			return cms.CaseStudyView{CaseStudy: item, Found: true}
		}
	}
	return cms.CaseStudyView{}
}

func (fakeContent) Subsidiary(ctx context.Context, slug string) cms.SubsidiaryView {
	if slug != pixelLab.Slug {
		return cms.SubsidiaryView{}
	}
	return cms.SubsidiaryView{Subsidiary: pixelLab, Found: true, CaseStudies: sampleItems()[:1]}
}

func (fakeContent) Page(ctx context.Context, slug, locale string) cms.PageView {
	if slug != "about" {
		return cms.PageView{}
	}
	return cms.PageView{Page: pages.Page{Slug: "about", Locale: locale, Title: "About us"}, Found: true}
}

type fakeProcessor struct {
	val *validation.Validator
	err error
}

func (p fakeProcessor) Process(ctx context.Context, def forms.Definition, values map[string]string, meta forms.Meta) (*forms.Form, error) {
	form := forms.New(def, p.val)
	form.SetValues(values)
	err := form.Submit(ctx, func(ctx context.Context, values map[string]string) error { return p.err })
	return form, err
}

func newTestServer(t *testing.T, submitErr error) http.Handler {
	t.Helper()
	reg, err := forms.LoadRegistry("")
	require.NoError(t, err)
	val := validation.New()
	h, err := NewHandler(fakeContent{}, reg, fakeProcessor{val: val, err: submitErr}, val, []string{"fr", "en"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(sitectx.NewResolver("en", []string{"fr", "en"}, false).Middleware)
	r.Get("/", h.Home)
	r.Get("/work", h.Work)
	r.Get("/work/{slug}", h.CaseStudy)
	r.Get("/subsidiaries/{slug}", h.Subsidiary)
	r.Get("/contact", h.ContactForm)
	r.Post("/contact", h.ContactSubmit)
	r.Get("/p/{slug}", h.Page)
	r.NotFound(h.NotFound)
	return r
}

func get(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHomePage(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "We make brands")
	require.Contains(t, body, `href="/work/launch"`)
	require.Contains(t, body, `href="/subsidiaries/pixel-lab"`)
	require.Contains(t, body, `lang="en"`)
}

func TestWorkPageFilters(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := get(t, srv, "/work")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "App Launch")
	require.Contains(t, body, "Bank rebrand")
	require.NotContains(t, body, "No projects match the selected filters.")

	body = get(t, srv, "/work?industry=Tech").Body.String()
	require.Contains(t, body, "App Launch")
	require.NotContains(t, body, "Bank rebrand")
	require.Contains(t, body, "Reset filters")

	body = get(t, srv, "/work?industry=Retail").Body.String()
	require.Contains(t, body, "No projects match the selected filters.")
	require.NotContains(t, body, "App Launch")

	body = get(t, srv, "/work?q=festival").Body.String()
	require.Contains(t, body, "Summer Festival")
	require.NotContains(t, body, "Bank rebrand")

	body = get(t, srv, "/work?q=zzz").Body.String()
	require.Contains(t, body, "No projects match your search.")
}

func TestWorkDataButtons(t *testing.T) {
	items := sampleItems()
	data := buildWorkData("en", items, casestudies.BuildFacets(items), casestudies.Selection{Industry: "Tech"}, "")

	require.Len(t, data.Groups, 3)
	industry := data.Groups[0]
	require.Equal(t, casestudies.DimensionIndustry, industry.Dimension)

	var tech filterButton
	for _, b := range industry.Buttons {
		if b.Label == "Tech" {
			tech = b
		}
	}
	require.True(t, tech.Active)
	// clicking the active value keeps it selected
	require.Equal(t, "/work?industry=Tech", tech.URL)

	sub := data.Groups[2].Buttons[0]
	u, err := url.Parse(sub.URL)
	require.NoError(t, err)
	require.Equal(t, "pixel-lab", u.Query().Get("subsidiary"))
	require.Equal(t, "Tech", u.Query().Get("industry"))
	require.Equal(t, "/work", data.ResetURL)
}

func TestWorkDataSubsidiaryButtonsUseSlug(t *testing.T) {
	items := []casestudies.CaseStudy{
		{ID: "1", Title: "One", Subsidiary: &casestudies.SubsidiaryRef{ID: "s1", Name: "Studio", Slug: "studio-ma"}},
		{ID: "2", Title: "Two", Subsidiary: &casestudies.SubsidiaryRef{ID: "s2", Name: "Studio", Slug: "studio-fr"}},
	}
	data := buildWorkData("en", items, casestudies.BuildFacets(items), casestudies.Selection{Subsidiary: "studio-fr"}, "")

	require.Len(t, data.Groups, 1)
	buttons := data.Groups[0].Buttons
	require.Len(t, buttons, 2)
	active := map[string]bool{}
	for _, b := range buttons {
		require.Equal(t, "Studio", b.Label)
		u, err := url.Parse(b.URL)
		require.NoError(t, err)
		require.Equal(t, b.Value, u.Query().Get("subsidiary"))
		active[b.Value] = b.Active
	}
	require.Equal(t, map[string]bool{"studio-ma": false, "studio-fr": true}, active)
}

func TestWorkDataNoSearchResults(t *testing.T) {
	items := sampleItems()

	data := buildWorkData("en", items, casestudies.BuildFacets(items), casestudies.Selection{}, "zzz")
	require.True(t, data.Result.NoSearchResults)

	data = buildWorkData("en", items, casestudies.BuildFacets(items), casestudies.Selection{Industry: "Retail"}, "")
	require.False(t, data.Result.NoSearchResults)
	require.True(t, data.Result.ShowEmpty)
}

func TestCaseStudyAndPages(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := get(t, srv, "/work/bank")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Bank rebrand")

	require.Equal(t, http.StatusNotFound, get(t, srv, "/work/nope").Code)

	rec = get(t, srv, "/p/about?lang=fr")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "About us")
	require.Contains(t, rec.Body.String(), "Accueil")

	rec = get(t, srv, "/p/missing")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Page not found")
}

func TestSubsidiaryTheme(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := get(t, srv, "/subsidiaries/pixel-lab")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "--color-accent: #ff0066")
	require.Contains(t, rec.Body.String(), `data-subsidiary="pixel-lab"`)

	rec = get(t, srv, "/work?subsidiary=pixel-lab")
	require.Contains(t, rec.Body.String(), "--color-accent: #ff0066")

	rec = get(t, srv, "/")
	require.Contains(t, rec.Body.String(), "--color-accent: "+subsidiaries.DefaultTheme.Accent)

	require.Equal(t, http.StatusNotFound, get(t, srv, "/subsidiaries/ghost").Code)
}

func postContact(t *testing.T, srv http.Handler, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func validContact() url.Values {
	return url.Values{
		"name":    {"Salma"},
		"email":   {"salma@example.com"},
		"message": {"We would like a new identity."},
		"consent": {"true"},
	}
}

func TestContactFormRendersFields(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/contact")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `name="email"`)
	require.Contains(t, body, `type="checkbox" name="consent"`)
	require.Contains(t, body, "<textarea")
}

func TestContactSubmitValidation(t *testing.T) {
	values := validContact()
	values.Set("name", "")
	values.Set("email", "nope")
	rec := postContact(t, newTestServer(t, nil), values)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Name is required")
	require.Contains(t, body, "Email is invalid")
	require.Contains(t, body, "We would like a new identity.")
}

func TestContactSubmitSuccess(t *testing.T) {
	rec := postContact(t, newTestServer(t, nil), validContact())
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Thank you! We will get back to you shortly.")
	require.NotContains(t, body, "salma@example.com")
}

func TestContactSubmitFailureKeepsValues(t *testing.T) {
	rec := postContact(t, newTestServer(t, errors.New("db down")), validContact())
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Your message could not be sent. Please try again later.")
	require.Contains(t, body, `value="salma@example.com"`)
	require.Contains(t, body, "checked")
}
