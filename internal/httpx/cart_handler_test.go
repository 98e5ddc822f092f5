package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optica/internal/cart"
	"optica/internal/errs"
	"optica/internal/users"
)

type fakeCartStore struct {
	getOrCreate func(userID string) (cart.Cart, error)
	addItem     func(userID, productID string, qty int) (cart.Cart, error)
	updateItem  func(userID, itemID string, qty int) (cart.Item, error)
	removed     []string
	cleared     []string
}

func (f *fakeCartStore) GetOrCreate(_ context.Context, userID string) (cart.Cart, error) {
	return f.getOrCreate(userID)
}
func (f *fakeCartStore) AddItem(_ context.Context, userID, productID string, qty int) (cart.Cart, error) {
	return f.addItem(userID, productID, qty)
}
func (f *fakeCartStore) UpdateItem(_ context.Context, userID, itemID string, qty int) (cart.Item, error) {
	return f.updateItem(userID, itemID, qty)
}
func (f *fakeCartStore) RemoveItem(_ context.Context, itemID string) error {
	f.removed = append(f.removed, itemID)
	return nil
}
func (f *fakeCartStore) Clear(_ context.Context, userID string) error {
	f.cleared = append(f.cleared, userID)
	return nil
}

// testRouter injects the given claims the way Authenticate would.
func testRouter(claims *users.Claims, register func(chi.Router)) *chi.Mux {
	r := chi.NewRouter()
	if claims != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(WithClaims(req.Context(), claims)))
			})
		})
	}
	register(r)
	return r
}

func userClaims(id string) *users.Claims { return &users.Claims{UserID: id, Role: users.RoleUser} }

func TestGetCartCreatesLazily(t *testing.T) {
	store := &fakeCartStore{
		getOrCreate: func(userID string) (cart.Cart, error) {
			return cart.Cart{ID: "c-1", UserID: userID, Items: []cart.Item{}}, nil
		},
	}
	h := &CartHandler{Store: store}
	r := testRouter(userClaims("u-1"), h.Register)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got cart.Cart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "c-1", got.ID)
	assert.NotNil(t, got.Items)
}

func TestGetCartRequiresAuth(t *testing.T) {
	h := &CartHandler{Store: &fakeCartStore{}}
	r := testRouter(nil, h.Register)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddToCartDefaultsQuantity(t *testing.T) {
	var gotQty int
	store := &fakeCartStore{
		addItem: func(userID, productID string, qty int) (cart.Cart, error) {
			gotQty = qty
			return cart.Cart{ID: "c-1", UserID: userID}, nil
		},
	}
	h := &CartHandler{Store: store}
	r := testRouter(userClaims("u-1"), h.Register)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/add", strings.NewReader(`{"product_id":"p-1"}`))
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, gotQty)
}

func TestAddToCartUnknownProduct(t *testing.T) {
	store := &fakeCartStore{
		addItem: func(_, _ string, _ int) (cart.Cart, error) { return cart.Cart{}, errs.ErrNotFound },
	}
	h := &CartHandler{Store: store}
	r := testRouter(userClaims("u-1"), h.Register)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/add", strings.NewReader(`{"product_id":"nope","quantity":2}`))
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddToCartInsufficientStock(t *testing.T) {
	store := &fakeCartStore{
		addItem: func(_, _ string, _ int) (cart.Cart, error) {
			return cart.Cart{}, &errs.InsufficientStockError{Name: "Aviator", Requested: 10, Available: 3}
		},
	}
	h := &CartHandler{Store: store}
	r := testRouter(userClaims("u-1"), h.Register)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/add", strings.NewReader(`{"product_id":"p-1","quantity":10}`))
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Aviator")
}

func TestUpdateItemForbiddenForNonOwner(t *testing.T) {
	store := &fakeCartStore{
		updateItem: func(_, _ string, _ int) (cart.Item, error) { return cart.Item{}, errs.ErrForbidden },
	}
	h := &CartHandler{Store: store}
	r := testRouter(userClaims("u-2"), h.Register)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/cart/items/item-1", strings.NewReader(`{"quantity":2}`))
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRemoveAndClear(t *testing.T) {
	store := &fakeCartStore{}
	h := &CartHandler{Store: store}
	r := testRouter(userClaims("u-1"), h.Register)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cart/items/item-9", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"item-9"}, store.removed)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cart/clear", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"u-1"}, store.cleared)
}
