// Package sitectx carries the per-request locale and subsidiary theme.
package sitectx

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Mrwire/geniusad-sub002/internal/subsidiaries"
	"golang.org/x/text/language"
)

const (
	LocaleQuery      = "lang"
	LocaleCookie     = "lang"
	SubsidiaryQuery  = "subsidiary"
	localeCookieDays = 365
)

type Site struct {
	Locale     string
	Subsidiary string
	Theme      subsidiaries.Theme
}

type siteKey struct{}

func With(ctx context.Context, site Site) context.Context {
	return context.WithValue(ctx, siteKey{}, site)
}

// From returns the site attached by Middleware, or a site with the default theme.
func From(ctx context.Context) Site {
	if site, ok := ctx.Value(siteKey{}).(Site); ok {
		return site
	}
	return Site{Theme: subsidiaries.DefaultTheme}
}

// WithSubsidiary switches the theme of the current request to sub.
func WithSubsidiary(ctx context.Context, sub subsidiaries.Subsidiary) context.Context {
	site := From(ctx)
	site.Subsidiary = sub.Slug
	site.Theme = sub.Theme
	return With(ctx, site)
}

type Resolver struct {
	defaultLocale string
	supported     []string
	cookieSecure  bool
}

func NewResolver(defaultLocale string, supported []string, cookieSecure bool) *Resolver {
	list := make([]string, 0, len(supported))
	for _, l := range supported {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			list = append(list, l)
		}
	}
	def := strings.ToLower(strings.TrimSpace(defaultLocale))
	if def == "" && len(list) > 0 {
		def = list[0]
	}
	return &Resolver{defaultLocale: def, supported: list, cookieSecure: cookieSecure}
}

// Locale picks the first supported locale from ?lang=, the lang cookie and Accept-Language,
// falling back to the default.
func (res *Resolver) Locale(r *http.Request) string {
	if l, ok := res.match(r.URL.Query().Get(LocaleQuery)); ok {
		return l
	}
	if c, err := r.Cookie(LocaleCookie); err == nil {
		if l, ok := res.match(c.Value); ok {
			return l
		}
	}
	if tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language")); err == nil {
		for _, tag := range tags {
			base, _ := tag.Base()
			if l, ok := res.match(base.String()); ok {
				return l
			}
		}
	}
	return res.defaultLocale
}

func (res *Resolver) match(raw string) (string, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return "", false
	}
	if tag, err := language.Parse(raw); err == nil {
		base, _ := tag.Base()
		raw = base.String()
	}
	for _, l := range res.supported {
		if l == raw {
			return l, true
		}
	}
	return "", false
}

// Middleware attaches the resolved Site. An explicit ?lang= is remembered in a cookie.
func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site := Site{
			Locale:     res.Locale(r),
			Subsidiary: strings.TrimSpace(r.URL.Query().Get(SubsidiaryQuery)),
			Theme:      subsidiaries.DefaultTheme,
		}
		if l, ok := res.match(r.URL.Query().Get(LocaleQuery)); ok {
			http.SetCookie(w, &http.Cookie{
				Name:     LocaleCookie,
				Value:    l,
				Path:     "/",
				MaxAge:   int((localeCookieDays * 24 * time.Hour).Seconds()),
				HttpOnly: true,
				Secure:   res.cookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(With(r.Context(), site)))
	})
}
