package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optica/internal/users"
)

func protectedRouter(secret []byte) *chi.Mux {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(Authenticate(secret))
		gr.Get("/me", func(w http.ResponseWriter, req *http.Request) {
			claims, _ := ClaimsFrom(req.Context())
			writeJSON(w, http.StatusOK, map[string]string{"user_id": claims.UserID})
		})
		gr.Group(func(ar chi.Router) {
			ar.Use(RequireAdmin)
			ar.Get("/admin", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		})
	})
	return r
}

func TestAuthenticateAcceptsIssuedToken(t *testing.T) {
	secret := []byte("s3cret")
	tok, err := users.IssueToken(secret, users.User{ID: "u-1", Role: users.RoleUser}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	protectedRouter(secret).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "u-1")
}

func TestAuthenticateRejectsMissingAndBadTokens(t *testing.T) {
	r := protectedRouter([]byte("s3cret"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	secret := []byte("s3cret")
	r := protectedRouter(secret)

	userTok, _ := users.IssueToken(secret, users.User{ID: "u-1", Role: users.RoleUser}, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userTok)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminTok, _ := users.IssueToken(secret, users.User{ID: "a-1", Role: users.RoleAdmin}, time.Hour)
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminTok)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
