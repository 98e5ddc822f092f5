package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"optica/internal/errs"
	kafkax "optica/internal/kafka"
	"optica/internal/orders"
	"optica/internal/redisx"
	"optica/internal/users"
)

type OrderStore interface {
	Place(ctx context.Context, userID string, in orders.PlacementInput) (orders.Order, error)
	SetStatus(ctx context.Context, orderID string, to orders.Status) (orders.Order, error)
	GetByID(ctx context.Context, orderID string) (orders.Order, error)
	ListByUser(ctx context.Context, userID string) ([]orders.Order, error)
	ListAll(ctx context.Context) ([]orders.Order, error)
}

type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Store          OrderStore
	PlacedProducer EventPublisher // order.placed topic
	StatusProducer EventPublisher // order.status topic
	Redis          *redis.Client
	Service        string
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/my-orders", h.myOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getOrderStatus)
	r.Patch("/orders/{id}/status", h.setStatus)
}

func (h *OrdersHandler) RegisterAdmin(r chi.Router) {
	r.Get("/orders", h.listAll)
}

type createOrderReq struct {
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	PaymentMethod   string `json:"payment_method"`
	CardNumber      string `json:"card_number"`
	CardHolderName  string `json:"card_holder_name"`
	CardExpiryMonth string `json:"card_expiry_month"`
	CardExpiryYear  string `json:"card_expiry_year"`
	CardCVV         string `json:"card_cvv"`
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeError(w, errs.ErrUnauthenticated)
		return
	}
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid json"))
		return
	}

	in := orders.PlacementInput{
		Address:       req.Address,
		Phone:         req.Phone,
		PaymentMethod: orders.PaymentMethod(req.PaymentMethod),
	}
	if req.CardNumber != "" || req.CardHolderName != "" || req.CardCVV != "" ||
		req.CardExpiryMonth != "" || req.CardExpiryYear != "" {
		in.Card = &orders.CardDetails{
			Number:      req.CardNumber,
			HolderName:  req.CardHolderName,
			ExpiryMonth: req.CardExpiryMonth,
			ExpiryYear:  req.CardExpiryYear,
			CVV:         req.CardCVV,
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Store.Place(ctx, claims.UserID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cacheStatus(ctx, o.ID, o.UserID, o.Status)

	items := make([]orders.ItemQty, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orders.ItemQty{ProductID: it.ProductID, Qty: it.Quantity})
	}
	h.publish(r, orders.EventOrderPlaced, o.ID, orders.OrderPlacedPayload{
		OrderID:    o.ID,
		UserID:     o.UserID,
		Items:      items,
		TotalCents: o.TotalCents,
		Status:     o.Status,
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "order placed",
		"order":   o,
	})
}

func (h *OrdersHandler) myOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeError(w, errs.ErrUnauthenticated)
		return
	}
	out, err := h.Store.ListByUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeError(w, errs.ErrUnauthenticated)
		return
	}
	o, err := h.Store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if claims.Role != users.RoleAdmin && o.UserID != claims.UserID {
		writeError(w, errs.ErrForbidden)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// getOrderStatus serves the status document through the Redis cache; the DB
// is the fallback and refills the cache.
func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeError(w, errs.ErrUnauthenticated)
		return
	}
	orderID := chi.URLParam(r, "id")

	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
		if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
			var doc orders.StatusDoc
			// entries without an owner fall through to the database
			if err := json.Unmarshal([]byte(s), &doc); err == nil && doc.UserID != "" {
				if claims.Role != users.RoleAdmin && doc.UserID != claims.UserID {
					writeError(w, errs.ErrForbidden)
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"status": doc.Status})
				return
			}
		}
	}

	o, err := h.Store.GetByID(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	if claims.Role != users.RoleAdmin && o.UserID != claims.UserID {
		writeError(w, errs.ErrForbidden)
		return
	}
	h.cacheStatus(r.Context(), o.ID, o.UserID, o.Status)
	writeJSON(w, http.StatusOK, map[string]any{"status": o.Status})
}

func (h *OrdersHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeError(w, errs.ErrUnauthenticated)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid json"))
		return
	}
	to, err := orders.ParseStatus(req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	existing, err := h.Store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	// non-admin callers may only cancel their own order
	if claims.Role != users.RoleAdmin {
		if existing.UserID != claims.UserID {
			writeError(w, errs.ErrForbidden)
			return
		}
		if to != orders.StatusCancelled {
			writeError(w, errs.ErrForbidden)
			return
		}
	}

	o, err := h.Store.SetStatus(r.Context(), existing.ID, to)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cacheStatus(r.Context(), o.ID, o.UserID, o.Status)
	h.publish(r, orders.EventOrderStatusChanged, o.ID, orders.OrderStatusChangedPayload{
		OrderID:       o.ID,
		UserID:        o.UserID,
		Status:        o.Status,
		StockRestored: orders.RestoresStock(existing.Status, o.Status),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "order status updated",
		"order":   o,
	})
}

func (h *OrdersHandler) listAll(w http.ResponseWriter, r *http.Request) {
	out, err := h.Store.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, orderID, userID string, st orders.Status) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	body, _ := json.Marshal(orders.StatusDoc{Status: st, UserID: userID})
	_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) publish(r *http.Request, eventType, orderID string, payload any) {
	var p EventPublisher
	switch eventType {
	case orders.EventOrderPlaced:
		p = h.PlacedProducer
	case orders.EventOrderStatusChanged:
		p = h.StatusProducer
	}
	if p == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
