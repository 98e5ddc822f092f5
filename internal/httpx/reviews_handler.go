package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"optica/internal/errs"
	"optica/internal/reviews"
	"optica/internal/users"
)

type ReviewStore interface {
	Create(ctx context.Context, userID, productID string, rating int, comment string) (reviews.Review, error)
	Update(ctx context.Context, reviewID, userID string, rating int, comment string) (reviews.Review, error)
	Delete(ctx context.Context, reviewID, userID string, isAdmin bool) error
	ListByProduct(ctx context.Context, productID string) ([]reviews.Review, error)
	AverageRating(ctx context.Context, productID string) (float64, error)
}

type ReviewsHandler struct {
	Store ReviewStore
}

func (h *ReviewsHandler) RegisterPublic(r chi.Router) {
	r.Get("/products/{id}/reviews", h.list)
}

func (h *ReviewsHandler) Register(r chi.Router) {
	r.Post("/products/{id}/reviews", h.create)
	r.Put("/products/{id}/reviews/{reviewId}", h.update)
	r.Delete("/products/{id}/reviews/{reviewId}", h.delete)
}

func (h *ReviewsHandler) list(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	rs, err := h.Store.ListByProduct(r.Context(), productID)
	if err != nil {
		writeError(w, err)
		return
	}
	avg, err := h.Store.AverageRating(r.Context(), productID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reviews":        rs,
		"average_rating": avg,
	})
}

type reviewReq struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *ReviewsHandler) create(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeError(w, errs.ErrUnauthenticated)
		return
	}
	var req reviewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid json"))
		return
	}
	rv, err := h.Store.Create(r.Context(), claims.UserID, chi.URLParam(r, "id"), req.Rating, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (h *ReviewsHandler) update(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeError(w, errs.ErrUnauthenticated)
		return
	}
	var req reviewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid json"))
		return
	}
	rv, err := h.Store.Update(r.Context(), chi.URLParam(r, "reviewId"), claims.UserID, req.Rating, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *ReviewsHandler) delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeError(w, errs.ErrUnauthenticated)
		return
	}
	err := h.Store.Delete(r.Context(), chi.URLParam(r, "reviewId"), claims.UserID, claims.Role == users.RoleAdmin)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "review deleted"})
}
