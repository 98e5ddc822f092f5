package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"optica/internal/cart"
	"optica/internal/errs"
)

type CartStore interface {
	GetOrCreate(ctx context.Context, userID string) (cart.Cart, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (cart.Cart, error)
	UpdateItem(ctx context.Context, userID, itemID string, quantity int) (cart.Item, error)
	RemoveItem(ctx context.Context, itemID string) error
	Clear(ctx context.Context, userID string) error
}

type CartHandler struct {
	Store CartStore
}

func (h *CartHandler) Register(r chi.Router) {
	r.Get("/cart", h.getCart)
	r.Post("/cart/add", h.addToCart)
	r.Put("/cart/items/{itemId}", h.updateItem)
	r.Delete("/cart/items/{itemId}", h.removeItem)
	r.Delete("/cart/clear", h.clearCart)
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeError(w, errs.ErrUnauthenticated)
		return
	}
	c, err := h.Store.GetOrCreate(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type addToCartReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) addToCart(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeError(w, errs.ErrUnauthenticated)
		return
	}
	var req addToCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid json"))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	c, err := h.Store.AddItem(r.Context(), claims.UserID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeError(w, errs.ErrUnauthenticated)
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid json"))
		return
	}
	it, err := h.Store.UpdateItem(r.Context(), claims.UserID, chi.URLParam(r, "itemId"), req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.RemoveItem(r.Context(), chi.URLParam(r, "itemId")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "item removed from cart"})
}

func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeError(w, errs.ErrUnauthenticated)
		return
	}
	if err := h.Store.Clear(r.Context(), claims.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}
