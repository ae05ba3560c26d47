package cms

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Mrwire/geniusad-sub002/internal/cache"
	"github.com/Mrwire/geniusad-sub002/internal/casestudies"
	"github.com/Mrwire/geniusad-sub002/internal/pages"
	"github.com/Mrwire/geniusad-sub002/internal/subsidiaries"
	"github.com/stretchr/testify/require"
)

type fakePages struct {
	mu    sync.Mutex
	calls int
	pages map[string]pages.Page
	err   error
}

func (f *fakePages) GetPublished(ctx context.Context, slug, locale string) (pages.Page, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return pages.Page{}, f.err
	}
	p, ok := f.pages[slug+":"+locale]
	if !ok {
		return pages.Page{}, pages.ErrNotFound
	}
	return p, nil
}

type fakeCaseStudies struct {
	mu    sync.Mutex
	calls int
	items []casestudies.CaseStudy
	err   error
}

func (f *fakeCaseStudies) ListPublic(ctx context.Context, filter casestudies.PublicListFilter) ([]casestudies.CaseStudy, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []casestudies.CaseStudy{}
	for _, item := range f.items {
		if filter.FeaturedOnly && !item.Featured {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (f *fakeCaseStudies) GetPublishedBySlug(ctx context.Context, slug string) (casestudies.CaseStudy, error) {
	if f.err != nil {
		return casestudies.CaseStudy{}, f.err
	}
	for _, item := range f.items {
		if item.Slug == slug {
			return item, nil
		}
	}
	return casestudies.CaseStudy{}, casestudies.ErrNotFound
}

type fakeSubsidiaries struct {
	items []subsidiaries.Subsidiary
	err   error
}

func (f *fakeSubsidiaries) ListPublic(ctx context.Context) ([]subsidiaries.Subsidiary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func (f *fakeSubsidiaries) GetPublicBySlug(ctx context.Context, slug string) (subsidiaries.Subsidiary, error) {
	if f.err != nil {
		return subsidiaries.Subsidiary{}, f.err
	}
	for _, s := range f.items {
		if s.Slug == slug {
			return s, nil
		}
	}
	return subsidiaries.Subsidiary{}, subsidiaries.ErrNotFound
}

type fixture struct {
	pages  *fakePages
	cases  *fakeCaseStudies
	subs   *fakeSubsidiaries
	client *Client
}

func newFixture() *fixture {
	pixel := &casestudies.SubsidiaryRef{ID: "s1", Name: "Pixel Lab", Slug: "pixel-lab"}
	f := &fixture{
		pages: &fakePages{pages: map[string]pages.Page{
			"home:fr": {Slug: "home", Locale: "fr", Title: "Accueil"},
		}},
		cases: &fakeCaseStudies{items: []casestudies.CaseStudy{
			{ID: "1", Slug: "festival", Title: "Summer Festival", Featured: true, Subsidiary: pixel},
			{ID: "2", Slug: "bank", Title: "Bank rebrand", Industry: []string{"Finance"}},
		}},
		subs: &fakeSubsidiaries{items: []subsidiaries.Subsidiary{
			{ID: "s1", Name: "Pixel Lab", Slug: "pixel-lab", IsPublic: true},
		}},
	}
	f.client = NewClient(f.pages, f.cases, f.subs, cache.NewMemory(), time.Minute,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f
}

func TestHomeCombinesSources(t *testing.T) {
	f := newFixture()
	view := f.client.Home(context.Background(), "fr")

	require.False(t, view.Degraded)
	require.Equal(t, "Accueil", view.Page.Title)
	require.Len(t, view.Featured, 1)
	require.Equal(t, "festival", view.Featured[0].Slug)
	require.Len(t, view.Subsidiaries, 1)
}

func TestHomeIsCached(t *testing.T) {
	f := newFixture()
	f.client.Home(context.Background(), "fr")
	f.client.Home(context.Background(), "fr")
	require.Equal(t, 1, f.cases.calls)
	require.Equal(t, 1, f.pages.calls)
}

func TestFailuresDegradeToEmptyDefaults(t *testing.T) {
	f := newFixture()
	f.cases.err = errors.New("connection refused")
	f.subs.err = errors.New("connection refused")
	f.pages.err = errors.New("connection refused")

	home := f.client.Home(context.Background(), "fr")
	require.True(t, home.Degraded)
	require.NotNil(t, home.Featured)
	require.Empty(t, home.Featured)
	require.Empty(t, home.Subsidiaries)
	require.Empty(t, home.Page.Title)

	work := f.client.Work(context.Background())
	require.True(t, work.Degraded)
	require.Empty(t, work.Items)
	require.NotNil(t, work.Facets.Industries)

	cs := f.client.CaseStudy(context.Background(), "festival")
	require.True(t, cs.Degraded)
	require.False(t, cs.Found)

	sub := f.client.Subsidiary(context.Background(), "pixel-lab")
	require.True(t, sub.Degraded)
	require.False(t, sub.Found)
}

func TestDegradedResultsAreNotCached(t *testing.T) {
	f := newFixture()
	f.cases.err = errors.New("boom")
	require.True(t, f.client.Work(context.Background()).Degraded)

	f.cases.err = nil
	work := f.client.Work(context.Background())
	require.False(t, work.Degraded)
	require.Len(t, work.Items, 2)
	require.Equal(t, []string{"Finance"}, work.Facets.Industries)
}

func TestMissingContentIsNotDegraded(t *testing.T) {
	f := newFixture()

	page := f.client.Page(context.Background(), "about", "fr")
	require.False(t, page.Found)
	require.False(t, page.Degraded)

	cs := f.client.CaseStudy(context.Background(), "nope")
	require.False(t, cs.Found)
	require.False(t, cs.Degraded)

	sub := f.client.Subsidiary(context.Background(), "nope")
	require.False(t, sub.Found)
	require.False(t, sub.Degraded)
}

func TestSubsidiaryListsItsCaseStudies(t *testing.T) {
	f := newFixture()
	view := f.client.Subsidiary(context.Background(), "pixel-lab")
	require.True(t, view.Found)
	require.Len(t, view.CaseStudies, 1)
	require.Equal(t, "festival", view.CaseStudies[0].Slug)
}

func TestContentChangedInvalidates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.Len(t, f.client.Work(ctx).Items, 2)
	f.cases.items = f.cases.items[:1]
	require.Len(t, f.client.Work(ctx).Items, 2)

	f.client.ContentChanged(ctx, "case_studies")
	require.Len(t, f.client.Work(ctx).Items, 1)
}

func TestContentChangedSharedAcrossClients(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	shared := cache.NewMemory()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := NewClient(f.pages, f.cases, f.subs, shared, time.Minute, log)
	b := NewClient(f.pages, f.cases, f.subs, shared, time.Minute, log)

	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return clock }

	require.Len(t, b.Work(ctx).Items, 2)
	f.cases.items = f.cases.items[:1]
	a.ContentChanged(ctx, "case_studies")

	clock = clock.Add(generationTTL)
	require.Len(t, b.Work(ctx).Items, 1)
}

type countingCache struct {
	cache.Cache
	mu   sync.Mutex
	gets map[string]int
}

func (c *countingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	c.gets[key]++
	c.mu.Unlock()
	return c.Cache.Get(ctx, key)
}

func TestGenerationLookupIsThrottled(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	counting := &countingCache{Cache: cache.NewMemory(), gets: map[string]int{}}
	c := NewClient(f.pages, f.cases, f.subs, counting, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	for i := 0; i < 5; i++ {
		c.Work(ctx)
		c.Page(ctx, "home", "fr")
	}
	require.Equal(t, 1, counting.gets[generationKey])

	clock = clock.Add(generationTTL)
	c.Work(ctx)
	require.Equal(t, 2, counting.gets[generationKey])

	// a local invalidation is visible immediately without another lookup
	f.cases.items = f.cases.items[:1]
	c.ContentChanged(ctx, "case_studies")
	require.Len(t, c.Work(ctx).Items, 1)
	require.Equal(t, 2, counting.gets[generationKey])
}
