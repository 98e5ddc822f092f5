// Package notifier consumes order lifecycle events and keeps the Redis
// status cache warm so status reads rarely hit Postgres.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "optica/internal/kafka"
	"optica/internal/orders"
	"optica/internal/redisx"
)

type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// HandleEvent is installed as the consumer handler for the order topics.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup by event id; redelivery after a rebalance is routine
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case orders.EventOrderPlaced:
		p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
		if err != nil {
			return err
		}
		s.cacheStatus(ctx, p.OrderID, p.UserID, p.Status)
		log.Printf("order %s placed by %s, total %d cents", p.OrderID, p.UserID, p.TotalCents)
	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		s.cacheStatus(ctx, p.OrderID, p.UserID, p.Status)
		if p.StockRestored {
			log.Printf("order %s cancelled, stock restored", p.OrderID)
		} else {
			log.Printf("order %s is now %s", p.OrderID, p.Status)
		}
	}
	return nil
}

func (s *Service) cacheStatus(ctx context.Context, orderID, userID string, st orders.Status) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	body, _ := json.Marshal(orders.StatusDoc{Status: st, UserID: userID})
	_ = s.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}
