package redisx

import "time"

const (
	// Cache of an order's status document: order_status:{order_id}
	KeyOrderStatus = "order_status:%s"

	// Cache of a product's sold-out flag: product_soldout:{product_id}
	KeyProductSoldOut = "product_soldout:%s"

	// Dedup for event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLSoldOut     = 1 * time.Minute
	TTLDedup       = 48 * time.Hour
)
