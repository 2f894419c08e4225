package reconcile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/modarent/rental-orders/internal/kafka"
	"github.com/modarent/rental-orders/internal/orders"
	"github.com/modarent/rental-orders/internal/redisx"
)

// Service turns paid-but-unfulfilled events into reconciliation rows, the
// worklist an operator uses to refund or restock by hand.
type Service struct {
	DB          *pgxpool.Pool
	Redis       *redis.Client
	Log         *zap.Logger
	ServiceName string
}

// HandleReconcile is wired as the consumer handler for the reconcile topic.
func (s *Service) HandleReconcile(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderPaidUnfulfilled {
		return nil
	}

	// dedup by event id
	dkey := fmt.Sprintf(redisx.KeyDedup, "reconcile", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[orders.PaidUnfulfilledPayload](env.Payload)
	if err != nil {
		return err
	}

	// a redelivered event for the same payment is a no-op
	if _, err := s.DB.Exec(ctx, `
		INSERT INTO reconciliations (id, order_id, gateway_order_id, gateway_payment_id, reason)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (order_id, gateway_payment_id) DO NOTHING
	`, uuid.NewString(), p.OrderID, p.GatewayOrderID, p.GatewayPaymentID, p.Reason); err != nil {
		return err
	}

	s.Log.Warn("paid but unfulfilled order queued for manual reconciliation",
		zap.String("order_id", p.OrderID),
		zap.String("gateway_payment_id", p.GatewayPaymentID),
		zap.String("reason", p.Reason))
	return nil
}
