package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const adminLoginPath = "/admin/login"

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), "request_id", requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionMiddleware resolves the storefront session for the request
// and stashes it in the context.
func SessionMiddleware(reg *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sessionID(w, r)
			s, err := reg.Get(id)
			if err != nil {
				respondError(w, http.StatusInternalServerError, "session_error", "could not open session")
				return
			}
			ctx := context.WithValue(r.Context(), "session", s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value("session").(*Session); ok {
		return s
	}
	return nil
}

// AdminGuard protects every /admin path except the login path: without
// a session token the request is redirected to the login path with the
// original path carried as the return parameter.
func AdminGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/admin") || strings.HasPrefix(r.URL.Path, adminLoginPath) {
			next.ServeHTTP(w, r)
			return
		}

		token := bearerToken(r)
		if token == "" {
			if s := sessionFromContext(r.Context()); s != nil {
				if t, err := s.Store.Token(r.Context()); err == nil {
					token = t
				}
			}
		}
		if token == "" {
			http.Redirect(w, r, adminLoginPath+"?next="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
