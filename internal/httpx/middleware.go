package httpx

import (
	"context"
	"net/http"
	"strings"

	"optica/internal/users"
)

type ctxKey int

const claimsKey ctxKey = 0

// Authenticate verifies the Bearer token and stores the claims in the
// request context.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing or malformed token"})
				return
			}
			claims, err := users.ParseToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid token"})
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

// RequireAdmin sits behind Authenticate and rejects non-admin callers.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r.Context())
		if !ok || claims.Role != users.RoleAdmin {
			writeJSON(w, http.StatusForbidden, errorBody{Error: "admin privileges required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func ClaimsFrom(ctx context.Context) (*users.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*users.Claims)
	return c, ok
}

// WithClaims is used by handler tests to simulate an authenticated request.
func WithClaims(ctx context.Context, c *users.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}
