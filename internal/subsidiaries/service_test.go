package subsidiaries

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Mrwire/geniusad-sub002/internal/casestudies"
	"github.com/Mrwire/geniusad-sub002/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type memRepo struct {
	items []Subsidiary
}

func (m *memRepo) Create(ctx context.Context, item Subsidiary) error {
	m.items = append(m.items, item)
	return nil
}

func (m *memRepo) Update(ctx context.Context, id string, set bson.M) (Subsidiary, error) {
	for i, item := range m.items {
		if item.ID == id {
			item.Name = set["name"].(string)
			item.Slug = set["slug"].(string)
			item.Theme = set["theme"].(Theme)
			m.items[i] = item
			return item, nil
		}
	}
	return Subsidiary{}, mongo.ErrNoDocuments
}

func (m *memRepo) Delete(ctx context.Context, id string) (bool, error) {
	for i, item := range m.items {
		if item.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) List(ctx context.Context, publicOnly bool) ([]Subsidiary, error) {
	out := []Subsidiary{}
	for _, item := range m.items {
		if publicOnly && !item.IsPublic {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (m *memRepo) GetBySlug(ctx context.Context, slug string) (Subsidiary, error) {
	for _, item := range m.items {
		if item.Slug == slug {
			return item, nil
		}
	}
	return Subsidiary{}, mongo.ErrNoDocuments
}

type refRecorder struct {
	refs    []casestudies.SubsidiaryRef
	cleared []string
	err     error
}

func (r *refRecorder) UpdateSubsidiaryRef(ctx context.Context, ref casestudies.SubsidiaryRef) error {
	if r.err != nil {
		return r.err
	}
	r.refs = append(r.refs, ref)
	return nil
}

func (r *refRecorder) ClearSubsidiaryRef(ctx context.Context, id string) error {
	if r.err != nil {
		return r.err
	}
	r.cleared = append(r.cleared, id)
	return nil
}

type changeCounter struct {
	n int
}

func (c *changeCounter) ContentChanged(ctx context.Context, kind string) {
	c.n++
}

func TestCreateAppliesDefaultTheme(t *testing.T) {
	svc := NewService(&memRepo{}, time.UTC)
	item, err := svc.Create(context.Background(), UpsertRequest{
		Name:        "Pixel Lab",
		Description: "Digital studio",
		Theme:       ThemeRequest{Accent: "#ff0066"},
	})
	require.NoError(t, err)
	require.Equal(t, "pixel-lab", item.Slug)
	require.True(t, item.IsPublic)
	require.Equal(t, "#ff0066", item.Theme.Accent)
	require.Equal(t, DefaultTheme.Primary, item.Theme.Primary)
}

func TestUpdatePropagatesRef(t *testing.T) {
	repo := &memRepo{items: []Subsidiary{{ID: "s1", Name: "Pixel", Slug: "pixel", IsPublic: true}}}
	svc := NewService(repo, time.UTC)
	rec := &refRecorder{}
	svc.SetRefUpdater(rec)

	_, err := svc.Update(context.Background(), "s1", UpsertRequest{Name: "Pixel Lab", Description: "x"})
	require.NoError(t, err)
	require.Equal(t, []casestudies.SubsidiaryRef{{ID: "s1", Name: "Pixel Lab", Slug: "pixel-lab"}}, rec.refs)
}

func TestResolveRef(t *testing.T) {
	repo := &memRepo{items: []Subsidiary{{ID: "s1", Name: "Pixel", Slug: "pixel"}}}
	svc := NewService(repo, time.UTC)

	ref, err := svc.ResolveRef(context.Background(), "pixel")
	require.NoError(t, err)
	require.Equal(t, "s1", ref.ID)

	_, err = svc.ResolveRef(context.Background(), "ghost")
	require.ErrorIs(t, err, casestudies.ErrUnknownSubsidiary)
}

func TestGetPublicBySlugHidesPrivate(t *testing.T) {
	repo := &memRepo{items: []Subsidiary{{ID: "s1", Slug: "hidden", IsPublic: false}}}
	svc := NewService(repo, time.UTC)
	_, err := svc.GetPublicBySlug(context.Background(), "hidden")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHandlers(t *testing.T) {
	repo := &memRepo{items: []Subsidiary{
		{ID: "s1", Name: "Live", Slug: "live", IsPublic: true},
		{ID: "s2", Name: "Hidden", Slug: "hidden"},
	}}
	h := NewHandler(NewService(repo, time.UTC), validation.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Get("/subsidiaries", h.PublicList)
	r.Get("/subsidiaries/{slug}", h.PublicGetBySlug)
	r.Post("/admin/subsidiaries", h.AdminCreate)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subsidiaries", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Items []Subsidiary `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subsidiaries/hidden", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/subsidiaries",
		strings.NewReader(`{"name":"Events Co","description":"x","theme":{"accent":"pink"}}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "hexcolor")
}

func TestUpdateInvalidatesEvenWhenRefSyncFails(t *testing.T) {
	repo := &memRepo{items: []Subsidiary{{ID: "s1", Name: "Pixel", Slug: "pixel", IsPublic: true}}}
	svc := NewService(repo, time.UTC)
	svc.SetRefUpdater(&refRecorder{err: errors.New("mongo down")})
	changes := &changeCounter{}
	svc.SetChangeListener(changes)

	item, err := svc.Update(context.Background(), "s1", UpsertRequest{Name: "Pixel Lab", Description: "x"})
	require.ErrorIs(t, err, ErrRefsNotSynced)
	require.Equal(t, "pixel-lab", item.Slug)
	require.Equal(t, "Pixel Lab", repo.items[0].Name)
	require.Equal(t, 1, changes.n)
}

func TestDeleteClearsRefs(t *testing.T) {
	repo := &memRepo{items: []Subsidiary{{ID: "s1", Name: "Gone", Slug: "gone"}}}
	svc := NewService(repo, time.UTC)
	rec := &refRecorder{}
	svc.SetRefUpdater(rec)
	changes := &changeCounter{}
	svc.SetChangeListener(changes)

	require.NoError(t, svc.Delete(context.Background(), "s1"))
	require.Equal(t, []string{"s1"}, rec.cleared)
	require.Equal(t, 1, changes.n)
	require.Empty(t, repo.items)

	require.ErrorIs(t, svc.Delete(context.Background(), "s1"), ErrNotFound)
	require.Equal(t, []string{"s1"}, rec.cleared)
}

func TestAdminWritesSucceedWhenRefSyncFails(t *testing.T) {
	repo := &memRepo{items: []Subsidiary{
		{ID: "s1", Name: "Pixel", Slug: "pixel", IsPublic: true},
		{ID: "s2", Name: "Gone", Slug: "gone", IsPublic: true},
	}}
	svc := NewService(repo, time.UTC)
	svc.SetRefUpdater(&refRecorder{err: errors.New("mongo down")})
	h := NewHandler(svc, validation.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Put("/admin/subsidiaries/{id}", h.AdminUpdate)
	r.Delete("/admin/subsidiaries/{id}", h.AdminDelete)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/admin/subsidiaries/s1",
		strings.NewReader(`{"name":"Pixel Lab","description":"x"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Warning"))
	require.Contains(t, rec.Body.String(), `"slug":"pixel-lab"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/subsidiaries/s2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Warning"))
}
