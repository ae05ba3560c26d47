package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/Mrwire/geniusad-sub002/internal/auth"
	"github.com/Mrwire/geniusad-sub002/internal/transport"
)

type identityKey struct{}

func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// CurrentUser returns the identity attached by Authenticate or RequireRole.
func CurrentUser(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(auth.Identity)
	return id, ok
}

// Authenticate attaches the identity of a valid access token (cookie or bearer header) to the
// request context. Requests without a valid token pass through anonymously.
func Authenticate(manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				next.ServeHTTP(w, r)
				return
			}
			token := bearerToken(r)
			if token == "" {
				if cookie, err := r.Cookie(auth.AccessCookieName); err == nil {
					token = cookie.Value
				}
			}
			if token != "" {
				if claims, err := manager.ParseAs(token, auth.TokenAccess); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), claims.Identity))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := CurrentUser(r.Context()); !ok {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole admits requests carrying the service key in X-Admin-Key or an authenticated
// identity with one of roles. It must run after Authenticate.
func RequireRole(adminKey string, manager *auth.Manager, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" && manager == nil {
				transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
				return
			}

			if adminKey != "" {
				if key := r.Header.Get("X-Admin-Key"); key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(adminKey)) == 1 {
					ctx := WithIdentity(r.Context(), auth.Identity{UserID: "service", Role: "admin"})
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			id, ok := CurrentUser(r.Context())
			if !ok {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			for _, role := range roles {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
