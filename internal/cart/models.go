package cart

import "optica/internal/catalog"

type Cart struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Items  []Item `json:"items"`
}

type Item struct {
	ID        string           `json:"id"`
	CartID    string           `json:"cart_id"`
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Product   *catalog.Product `json:"product,omitempty"`
}
