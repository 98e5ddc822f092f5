package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type ItemQty struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type OrderPlacedPayload struct {
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	Items      []ItemQty `json:"items"`
	TotalCents int       `json:"total_cents"`
	Status     Status    `json:"status"`
}

type OrderStatusChangedPayload struct {
	OrderID       string `json:"order_id"`
	UserID        string `json:"user_id"`
	Status        Status `json:"status"`
	StockRestored bool   `json:"stock_restored"`
}

// StatusDoc is the Redis-cached status document. The owner id rides along so
// a cache hit can enforce the same ownership rule as the database path.
type StatusDoc struct {
	Status Status `json:"status"`
	UserID string `json:"user_id"`
}
