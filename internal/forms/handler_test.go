package forms

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

	"github.com/Mrwire/geniusad-sub002/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	values map[string]string
	err    error
}

func (f *fakeSubmitter) Submit(ctx context.Context, def Definition, values map[string]string, meta Meta) error {
	f.values = values
	return f.err
}

func newTestRouter(t *testing.T, sub Submitter) http.Handler {
	t.Helper()
	reg, err := LoadRegistry("")
	require.NoError(t, err)
	h := NewHandler(reg, validation.New(), sub, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Get("/forms/{id}", h.Get)
	r.Post("/forms/{id}", h.Post)
	return r
}

func TestHandlerGetDefinition(t *testing.T) {
	r := newTestRouter(t, &fakeSubmitter{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forms/newsletter", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var def Definition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &def))
	require.Equal(t, "newsletter", def.ID)
	require.Len(t, def.Fields, 1)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forms/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerPostValidationErrors(t *testing.T) {
	sub := &fakeSubmitter{}
	r := newTestRouter(t, sub)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/forms/newsletter", strings.NewReader(`{"email":""}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "validation error", body.Error)
	require.Equal(t, "Email is required", body.Details["email"])
	require.Nil(t, sub.values)
}

func TestHandlerPostSuccess(t *testing.T) {
	sub := &fakeSubmitter{}
	r := newTestRouter(t, sub)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/forms/newsletter", strings.NewReader(`{"email":"a@b.co"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), "You are subscribed.")
	require.Equal(t, "a@b.co", sub.values["email"])
}

func TestHandlerPostSubmitterFailure(t *testing.T) {
	r := newTestRouter(t, &fakeSubmitter{err: errors.New("db down")})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/forms/newsletter", strings.NewReader(`{"email":"a@b.co"}`)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), defaultErrorMessage)
}

func TestHandlerPostInvalidJSON(t *testing.T) {
	r := newTestRouter(t, &fakeSubmitter{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/forms/contact", strings.NewReader(`{`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
