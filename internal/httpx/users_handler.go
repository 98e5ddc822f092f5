package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"optica/internal/errs"
	"optica/internal/users"
)

type UserStore interface {
	Register(ctx context.Context, email, name, password string) (users.User, error)
	Authenticate(ctx context.Context, email, password string) (users.User, error)
}

type UsersHandler struct {
	Store    UserStore
	Secret   []byte
	TokenTTL time.Duration
}

func (h *UsersHandler) Register(r chi.Router) {
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)
}

type credentialsReq struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *UsersHandler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid json"))
		return
	}
	u, err := h.Store.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respondWithToken(w, http.StatusCreated, u)
}

func (h *UsersHandler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid json"))
		return
	}
	u, err := h.Store.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respondWithToken(w, http.StatusOK, u)
}

func (h *UsersHandler) respondWithToken(w http.ResponseWriter, code int, u users.User) {
	token, err := users.IssueToken(h.Secret, u, h.TokenTTL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, code, map[string]any{
		"user":  u,
		"token": token,
	})
}
