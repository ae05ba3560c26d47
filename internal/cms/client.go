// Package cms is the content source used by the rendered pages. Every fetch is cached and
// never fails: errors are logged and replaced by empty content flagged as degraded.
package cms

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/Mrwire/geniusad-sub002/internal/cache"
	"github.com/Mrwire/geniusad-sub002/internal/casestudies"
	"github.com/Mrwire/geniusad-sub002/internal/pages"
	"github.com/Mrwire/geniusad-sub002/internal/subsidiaries"
	"golang.org/x/sync/errgroup"
)

const (
	generationKey = "cms:generation"
	homeSlug      = "home"
	// generationTTL bounds how long an instance may serve views from a generation another
	// instance has already retired.
	generationTTL = time.Second
)

type PageSource interface {
	GetPublished(ctx context.Context, slug, locale string) (pages.Page, error)
}

type CaseStudySource interface {
	ListPublic(ctx context.Context, filter casestudies.PublicListFilter) ([]casestudies.CaseStudy, error)
	GetPublishedBySlug(ctx context.Context, slug string) (casestudies.CaseStudy, error)
}

type SubsidiarySource interface {
	ListPublic(ctx context.Context) ([]subsidiaries.Subsidiary, error)
	GetPublicBySlug(ctx context.Context, slug string) (subsidiaries.Subsidiary, error)
}

type Client struct {
	pages        PageSource
	caseStudies  CaseStudySource
	subsidiaries SubsidiarySource
	cache        cache.Cache
	ttl          time.Duration
	log          *slog.Logger

	now          func() time.Time
	mu           sync.Mutex
	generation   string
	generationAt time.Time
}

func NewClient(p PageSource, cs CaseStudySource, subs SubsidiarySource, c cache.Cache, ttl time.Duration, log *slog.Logger) *Client {
	if c == nil {
		c = cache.NewNoop()
	}
	return &Client{
		pages:        p,
		caseStudies:  cs,
		subsidiaries: subs,
		cache:        c,
		ttl:          ttl,
		log:          log,
		now:          time.Now,
	}
}

type PageView struct {
	Page     pages.Page `json:"page"`
	Found    bool       `json:"found"`
	Degraded bool       `json:"-"`
}

type HomeView struct {
	Page         pages.Page                `json:"page"`
	Featured     []casestudies.CaseStudy   `json:"featured"`
	Subsidiaries []subsidiaries.Subsidiary `json:"subsidiaries"`
	Degraded     bool                      `json:"-"`
}

type WorkView struct {
	Items    []casestudies.CaseStudy `json:"items"`
	Facets   casestudies.Facets      `json:"facets"`
	Degraded bool                    `json:"-"`
}

type CaseStudyView struct {
	CaseStudy casestudies.CaseStudy `json:"case_study"`
	Found     bool                  `json:"found"`
	Degraded  bool                  `json:"-"`
}

type SubsidiaryView struct {
	Subsidiary  subsidiaries.Subsidiary `json:"subsidiary"`
	CaseStudies []casestudies.CaseStudy `json:"case_studies"`
	Found       bool                    `json:"found"`
	Degraded    bool                    `json:"-"`
}

// Page returns a published page. A missing page is reported with Found=false.
func (c *Client) Page(ctx context.Context, slug, locale string) PageView {
	var view PageView
	key := c.key(ctx, "page", slug, locale)
	if c.cached(ctx, key, &view) {
		return view
	}

	page, err := c.pages.GetPublished(ctx, slug, locale)
	switch {
	case err == nil:
		view = PageView{Page: page, Found: true}
		c.store(ctx, key, view)
	case errors.Is(err, pages.ErrNotFound):
		view = PageView{Page: emptyPage(slug, locale)}
	default:
		c.warn("page", err, slog.String("slug", slug), slog.String("locale", locale))
		view = PageView{Page: emptyPage(slug, locale), Degraded: true}
	}
	return view
}

// Home loads the home page, the featured case studies and the subsidiaries concurrently.
func (c *Client) Home(ctx context.Context, locale string) HomeView {
	var view HomeView
	key := c.key(ctx, "home", locale)
	if c.cached(ctx, key, &view) {
		return view
	}

	var (
		page     PageView
		featured []casestudies.CaseStudy
		subs     []subsidiaries.Subsidiary
		mu       sync.Mutex
		degraded bool
	)
	markDegraded := func() {
		mu.Lock()
		degraded = true
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		page = c.Page(ctx, homeSlug, locale)
		if page.Degraded {
			markDegraded()
		}
		return nil
	})
	g.Go(func() error {
		items, err := c.caseStudies.ListPublic(ctx, casestudies.PublicListFilter{FeaturedOnly: true})
		if err != nil {
			c.warn("home featured", err)
			markDegraded()
			items = []casestudies.CaseStudy{}
		}
		featured = items
		return nil
	})
	g.Go(func() error {
		items, err := c.subsidiaries.ListPublic(ctx)
		if err != nil {
			c.warn("home subsidiaries", err)
			markDegraded()
			items = []subsidiaries.Subsidiary{}
		}
		subs = items
		return nil
	})
	_ = g.Wait()

	view = HomeView{Page: page.Page, Featured: featured, Subsidiaries: subs, Degraded: degraded}
	if !degraded {
		c.store(ctx, key, view)
	}
	return view
}

// Work returns every published case study with the facets used to draw the filter buttons.
func (c *Client) Work(ctx context.Context) WorkView {
	var view WorkView
	key := c.key(ctx, "work")
	if c.cached(ctx, key, &view) {
		return view
	}

	items, err := c.caseStudies.ListPublic(ctx, casestudies.PublicListFilter{})
	if err != nil {
		c.warn("work", err)
		return WorkView{
			Items:    []casestudies.CaseStudy{},
			Facets:   casestudies.BuildFacets(nil),
			Degraded: true,
		}
	}
	view = WorkView{Items: items, Facets: casestudies.BuildFacets(items)}
	c.store(ctx, key, view)
	return view
}

func (c *Client) CaseStudy(ctx context.Context, slug string) CaseStudyView {
	var view CaseStudyView
	key := c.key(ctx, "case", slug)
	if c.cached(ctx, key, &view) {
		return view
	}

	item, err := c.caseStudies.GetPublishedBySlug(ctx, slug)
	switch {
	case err == nil:
		view = CaseStudyView{CaseStudy: item, Found: true}
		c.store(ctx, key, view)
	case errors.Is(err, casestudies.ErrNotFound):
	default:
		c.warn("case study", err, slog.String("slug", slug))
		view.Degraded = true
	}
	return view
}

// Subsidiary returns a public subsidiary with its published case studies.
func (c *Client) Subsidiary(ctx context.Context, slug string) SubsidiaryView {
	var view SubsidiaryView
	key := c.key(ctx, "subsidiary", slug)
	if c.cached(ctx, key, &view) {
		return view
	}

	sub, err := c.subsidiaries.GetPublicBySlug(ctx, slug)
	switch {
	case err == nil:
	case errors.Is(err, subsidiaries.ErrNotFound):
		return SubsidiaryView{CaseStudies: []casestudies.CaseStudy{}}
	default:
		c.warn("subsidiary", err, slog.String("slug", slug))
		return SubsidiaryView{CaseStudies: []casestudies.CaseStudy{}, Degraded: true}
	}

	view = SubsidiaryView{Subsidiary: sub, Found: true, CaseStudies: []casestudies.CaseStudy{}}
	items, err := c.caseStudies.ListPublic(ctx, casestudies.PublicListFilter{})
	if err != nil {
		c.warn("subsidiary case studies", err, slog.String("slug", slug))
		view.Degraded = true
		return view
	}
	res := casestudies.Apply(items, casestudies.Selection{Subsidiary: sub.Slug})
	view.CaseStudies = res.Select(items)
	c.store(ctx, key, view)
	return view
}

// ContentChanged drops every cached view by moving to a new key generation.
// It implements casestudies.ChangeListener.
func (c *Client) ContentChanged(ctx context.Context, kind string) {
	gen := strconv.FormatInt(time.Now().UnixNano(), 36)
	if err := c.cache.Set(ctx, generationKey, []byte(gen), 0); err != nil {
		c.warn("invalidate", err, slog.String("kind", kind))
	}
	c.mu.Lock()
	c.generation = gen
	c.generationAt = c.now()
	c.mu.Unlock()
	c.log.Info("cms invalidate: ok", slog.String("kind", kind))
}

func (c *Client) key(ctx context.Context, parts ...string) string {
	key := "cms:" + c.currentGeneration(ctx)
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// currentGeneration prefers the shared cache value so that every instance sees invalidations.
// The value is reread at most once per generationTTL.
func (c *Client) currentGeneration(ctx context.Context) string {
	c.mu.Lock()
	if c.generation != "" && c.now().Sub(c.generationAt) < generationTTL {
		gen := c.generation
		c.mu.Unlock()
		return gen
	}
	c.mu.Unlock()

	raw, ok, err := c.cache.Get(ctx, generationKey)

	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case err == nil && ok && len(raw) > 0:
		c.generation = string(raw)
	case c.generation == "":
		c.generation = "0"
	}
	c.generationAt = c.now()
	return c.generation
}

func (c *Client) cached(ctx context.Context, key string, dst interface{}) bool {
	ok, err := cache.GetJSON(ctx, c.cache, key, dst)
	if err != nil {
		c.warn("cache get", err, slog.String("key", key))
		return false
	}
	return ok
}

func (c *Client) store(ctx context.Context, key string, value interface{}) {
	if err := cache.SetJSON(ctx, c.cache, key, value, c.ttl); err != nil {
		c.warn("cache set", err, slog.String("key", key))
	}
}

func (c *Client) warn(op string, err error, attrs ...any) {
	args := append([]any{slog.String("error", err.Error())}, attrs...)
	c.log.Warn("cms "+op+": failed", args...)
}

func emptyPage(slug, locale string) pages.Page {
	return pages.Page{Slug: slug, Locale: locale, Sections: []pages.Section{}}
}
