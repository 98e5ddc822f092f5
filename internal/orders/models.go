package orders

import "time"

type PaymentMethod string

const (
	PayCash  PaymentMethod = "CASH"
	PayDebit PaymentMethod = "DEBIT_CARD"
)

type CardDetails struct {
	Number      string `json:"card_number"`
	HolderName  string `json:"card_holder_name"`
	ExpiryMonth string `json:"card_expiry_month"`
	ExpiryYear  string `json:"card_expiry_year"`
	CVV         string `json:"card_cvv"`
}

type Order struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	Status        Status        `json:"status"`
	Address       string        `json:"address"`
	Phone         string        `json:"phone"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	TotalCents    int           `json:"total_cents"`
	Card          *CardDetails  `json:"card,omitempty"`
	Items         []Item        `json:"items"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Item is an immutable snapshot of a purchased line. ProductID is a weak
// reference; PriceCents is the price captured at placement and never
// recalculated.
type Item struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	PriceCents  int    `json:"price_cents"`
}

// PlacementInput carries the shipping and payment details for Place.
type PlacementInput struct {
	Address       string
	Phone         string
	PaymentMethod PaymentMethod
	Card          *CardDetails
}
