// Package web renders the public HTML pages from CMS content.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Mrwire/geniusad-sub002/internal/casestudies"
	"github.com/Mrwire/geniusad-sub002/internal/cms"
	"github.com/Mrwire/geniusad-sub002/internal/forms"
	"github.com/Mrwire/geniusad-sub002/internal/middleware"
	"github.com/Mrwire/geniusad-sub002/internal/sitectx"
	"github.com/Mrwire/geniusad-sub002/internal/transport"
	"github.com/Mrwire/geniusad-sub002/internal/validation"
	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templateFS embed.FS

const contactFormID = "contact"

var pageNames = []string{"home", "work", "case_study", "subsidiary", "contact", "page", "not_found"}

type Content interface {
	Home(ctx context.Context, locale string) cms.HomeView
	Work(ctx context.Context) cms.WorkView
	CaseStudy(ctx context.Context, slug string) cms.CaseStudyView
	Subsidiary(ctx context.Context, slug string) cms.SubsidiaryView
	Page(ctx context.Context, slug, locale string) cms.PageView
}

type FormProcessor interface {
	Process(ctx context.Context, def forms.Definition, values map[string]string, meta forms.Meta) (*forms.Form, error)
}

type Handler struct {
	content   Content
	registry  *forms.Registry
	processor FormProcessor
	val       *validation.Validator
	locales   []string
	log       *slog.Logger
	templates map[string]*template.Template
	now       func() time.Time
}

func NewHandler(content Content, registry *forms.Registry, processor FormProcessor, val *validation.Validator, locales []string, log *slog.Logger) (*Handler, error) {
	funcs := template.FuncMap{"t": translate}
	templates := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return &Handler{
		content:   content,
		registry:  registry,
		processor: processor,
		val:       val,
		locales:   locales,
		log:       log,
		templates: templates,
		now:       time.Now,
	}, nil
}

type pageData struct {
	Site        sitectx.Site
	Locales     []string
	Title       string
	Description string
	Degraded    bool
	Year        int
	Data        interface{}
}

type contactField struct {
	Field   forms.Field
	Value   string
	Checked bool
	Error   string
}

type contactData struct {
	Definition forms.Definition
	Form       *forms.Form
	Fields     []contactField
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	ctx, site := h.siteContext(r)
	view := h.content.Home(ctx, site.Locale)
	h.render(w, r, http.StatusOK, "home", pageData{
		Site:        site,
		Title:       view.Page.Title,
		Description: view.Page.Description,
		Degraded:    view.Degraded,
		Data:        view,
	})
}

func (h *Handler) Work(w http.ResponseWriter, r *http.Request) {
	ctx, site := h.siteContext(r)
	view := h.content.Work(ctx)
	query := r.URL.Query()
	sel := casestudies.SelectionFromQuery(query)

	h.render(w, r, http.StatusOK, "work", pageData{
		Site:     site,
		Title:    translate(site.Locale, "nav_work"),
		Degraded: view.Degraded,
		Data:     buildWorkData(site.Locale, view.Items, view.Facets, sel, query.Get("q")),
	})
}

func (h *Handler) CaseStudy(w http.ResponseWriter, r *http.Request) {
	ctx, site := h.siteContext(r)
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	view := h.content.CaseStudy(ctx, slug)
	if !view.Found {
		h.notFound(w, r, site, view.Degraded)
		return
	}
	h.render(w, r, http.StatusOK, "case_study", pageData{
		Site:        site,
		Title:       view.CaseStudy.Title,
		Description: view.CaseStudy.Description,
		Data:        view.CaseStudy,
	})
}

func (h *Handler) Subsidiary(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	view := h.content.Subsidiary(r.Context(), slug)
	site := sitectx.From(r.Context())
	if !view.Found {
		h.notFound(w, r, site, view.Degraded)
		return
	}
	site = sitectx.From(sitectx.WithSubsidiary(r.Context(), view.Subsidiary))
	h.render(w, r, http.StatusOK, "subsidiary", pageData{
		Site:        site,
		Title:       view.Subsidiary.Name,
		Description: view.Subsidiary.Tagline,
		Degraded:    view.Degraded,
		Data:        view,
	})
}

func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	ctx, site := h.siteContext(r)
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	view := h.content.Page(ctx, slug, site.Locale)
	if !view.Found {
		h.notFound(w, r, site, view.Degraded)
		return
	}
	h.render(w, r, http.StatusOK, "page", pageData{
		Site:        site,
		Title:       view.Page.Title,
		Description: view.Page.Description,
		Data:        view.Page,
	})
}

func (h *Handler) ContactForm(w http.ResponseWriter, r *http.Request) {
	_, site := h.siteContext(r)
	def, err := h.registry.Get(contactFormID)
	if err != nil {
		h.notFound(w, r, site, false)
		return
	}
	form := forms.New(def, h.val)
	h.renderContact(w, r, http.StatusOK, site, form)
}

func (h *Handler) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ctx, site := h.siteContext(r)
	def, err := h.registry.Get(contactFormID)
	if err != nil {
		h.notFound(w, r, site, false)
		return
	}
	if err := r.ParseForm(); err != nil {
		log.Warn("contact submit: invalid form body", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "invalid form", nil)
		return
	}

	values := make(map[string]string, len(def.Fields))
	for _, f := range def.Fields {
		values[f.ID] = r.PostForm.Get(f.ID)
	}

	submitCtx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()

	form, err := h.processor.Process(submitCtx, def, values, forms.MetaFromRequest(r))
	switch {
	case errors.Is(err, forms.ErrInvalid):
		log.Warn("contact submit: validation error", slog.Int("errors", len(form.Errors)))
		h.renderContact(w, r, http.StatusUnprocessableEntity, site, form)
	case err != nil:
		log.Error("contact submit: handler error", slog.String("error", err.Error()))
		h.renderContact(w, r, http.StatusInternalServerError, site, form)
	default:
		log.Info("contact submit: ok")
		h.renderContact(w, r, http.StatusOK, site, form)
	}
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	_, site := h.siteContext(r)
	h.notFound(w, r, site, false)
}

func (h *Handler) renderContact(w http.ResponseWriter, r *http.Request, status int, site sitectx.Site, form *forms.Form) {
	def := form.Definition()
	data := contactData{Definition: def, Form: form}
	for _, f := range def.Fields {
		v := form.Values[f.ID]
		data.Fields = append(data.Fields, contactField{
			Field:   f,
			Value:   v,
			Checked: f.Type == forms.TypeCheckbox && forms.Checked(v),
			Error:   form.Errors[f.ID],
		})
	}
	h.render(w, r, status, "contact", pageData{
		Site:  site,
		Title: def.Title,
		Data:  data,
	})
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, site sitectx.Site, degraded bool) {
	h.render(w, r, http.StatusNotFound, "not_found", pageData{
		Site:     site,
		Title:    translate(site.Locale, "not_found"),
		Degraded: degraded,
	})
}

// siteContext applies the theme of the subsidiary named by ?subsidiary=, when it exists.
func (h *Handler) siteContext(r *http.Request) (context.Context, sitectx.Site) {
	ctx := r.Context()
	site := sitectx.From(ctx)
	if site.Subsidiary == "" {
		return ctx, site
	}
	view := h.content.Subsidiary(ctx, site.Subsidiary)
	if !view.Found {
		return ctx, site
	}
	ctx = sitectx.WithSubsidiary(ctx, view.Subsidiary)
	return ctx, sitectx.From(ctx)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	tmpl, ok := h.templates[name]
	if !ok {
		h.logWithRequest(r).Error("web render: unknown template", slog.String("template", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	data.Locales = h.locales
	data.Year = h.now().Year()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logWithRequest(r).Error("web render: template error", slog.String("template", name), slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	transport.WriteHTML(w, status, buf.Bytes())
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
