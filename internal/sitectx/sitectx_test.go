package sitectx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mrwire/geniusad-sub002/internal/subsidiaries"
	"github.com/stretchr/testify/require"
)

func TestLocaleResolution(t *testing.T) {
	res := NewResolver("fr", []string{"fr", "en"}, false)

	tests := []struct {
		name   string
		target string
		cookie string
		accept string
		want   string
	}{
		{name: "default", target: "/", want: "fr"},
		{name: "query wins", target: "/?lang=en", cookie: "fr", accept: "fr-FR", want: "en"},
		{name: "query region", target: "/?lang=en-GB", want: "en"},
		{name: "unsupported query falls through", target: "/?lang=de", cookie: "en", want: "en"},
		{name: "cookie", target: "/", cookie: "en", accept: "fr", want: "en"},
		{name: "accept language", target: "/", accept: "de-DE,en;q=0.8,fr;q=0.5", want: "en"},
		{name: "garbage header", target: "/", accept: ";;;", want: "fr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: LocaleCookie, Value: tt.cookie})
			}
			if tt.accept != "" {
				r.Header.Set("Accept-Language", tt.accept)
			}
			require.Equal(t, tt.want, res.Locale(r))
		})
	}
}

func TestMiddlewareAttachesSite(t *testing.T) {
	res := NewResolver("fr", []string{"fr", "en"}, false)
	var got Site
	h := res.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = From(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/work?lang=en&subsidiary=pixel-lab", nil))

	require.Equal(t, "en", got.Locale)
	require.Equal(t, "pixel-lab", got.Subsidiary)
	require.Equal(t, subsidiaries.DefaultTheme, got.Theme)
	require.Contains(t, rec.Header().Get("Set-Cookie"), "lang=en")
}

func TestWithSubsidiaryKeepsLocale(t *testing.T) {
	ctx := With(context.Background(), Site{Locale: "en", Theme: subsidiaries.DefaultTheme})
	theme := subsidiaries.Theme{Primary: "#000000", Accent: "#ff0066", Background: "#ffffff", Text: "#000000"}
	ctx = WithSubsidiary(ctx, subsidiaries.Subsidiary{Slug: "pixel-lab", Theme: theme})

	site := From(ctx)
	require.Equal(t, "en", site.Locale)
	require.Equal(t, "pixel-lab", site.Subsidiary)
	require.Equal(t, theme, site.Theme)
}

func TestFromWithoutMiddleware(t *testing.T) {
	require.Equal(t, subsidiaries.DefaultTheme, From(context.Background()).Theme)
}
