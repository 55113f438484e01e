package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey struct{}

// Middleware extracts the bearer token, authorizes it, and stashes the
// resulting ActorInfo in the request context. Requests without a valid token
// get 401 and never reach the handler.
func Middleware(az Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			actor, err := az.Authorize(r.Context(), token)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKey{}, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFrom returns the ActorInfo stored by Middleware, or nil.
func ActorFrom(ctx context.Context) *ActorInfo {
	actor, _ := ctx.Value(ctxKey{}).(*ActorInfo)
	return actor
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
