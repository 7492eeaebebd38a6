// pkg/middleware/session.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"kolnexus/pkg/identity"
	"kolnexus/pkg/problems"
)

type sessionCtxKey struct{}
type tokenCtxKey struct{}

// Session resolves the caller through the identity gate and stores the
// session plus the raw access token in the request context. Requests
// that resolve unauthenticated get 401; the gate never distinguishes the
// failure mode to the caller.
func Session(gate *identity.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			sess := gate.Resolve(r.Context(), token)
			if !sess.Authenticated {
				problems.Write(w, http.StatusUnauthorized, "unauthenticated", "Not signed in", "")
				return
			}
			ctx := context.WithValue(r.Context(), sessionCtxKey{}, sess)
			ctx = context.WithValue(ctx, tokenCtxKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[len("Bearer "):])
}

// ContextWithSession injects a resolved session, primarily for handler
// tests that bypass the Session middleware.
func ContextWithSession(ctx context.Context, sess identity.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, sess)
}

// SessionFrom returns the resolved session; the zero value outside the
// Session middleware.
func SessionFrom(ctx context.Context) identity.Session {
	if v := ctx.Value(sessionCtxKey{}); v != nil {
		return v.(identity.Session)
	}
	return identity.Session{}
}

// TokenFrom returns the raw access token for provider calls (sign-out).
func TokenFrom(ctx context.Context) string {
	if v := ctx.Value(tokenCtxKey{}); v != nil {
		return v.(string)
	}
	return ""
}

// RequireAdmin guards the mapping-admin surface.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !SessionFrom(r.Context()).IsAdmin {
			problems.Write(w, http.StatusForbidden, "admin-only", "Administrator role required", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireStandardUser guards dashboard routes: admins get the mapping
// screen and nothing else.
func RequireStandardUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFrom(r.Context()).IsAdmin {
			problems.Write(w, http.StatusForbidden, "dashboard-unavailable", "Dashboard is not available to administrators", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}
