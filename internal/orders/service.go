package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/modarent/rental-orders/internal/catalog"
	"github.com/modarent/rental-orders/internal/inventory"
	kafkax "github.com/modarent/rental-orders/internal/kafka"
	"github.com/modarent/rental-orders/internal/payment"
	"github.com/modarent/rental-orders/internal/redisx"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrMissingFields    = errors.New("missing payment fields")
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrGateway          = errors.New("payment gateway failure")

	// ErrPaidUnfulfilled is the delicate state: the signature proved the
	// payment, but stock could not be taken. The order stays pending and an
	// operator has to reconcile (refund or restock) manually.
	ErrPaidUnfulfilled = errors.New("payment verified but inventory unavailable")
)

// Publisher is the slice of the kafka producer the service needs.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// ProductResolver resolves product references on the read path.
type ProductResolver interface {
	GetMany(ctx context.Context, ids []string) (map[string]*catalog.Product, error)
}

// Service drives the order lifecycle: create -> pay -> verify -> fulfill.
type Service struct {
	Store   Store
	Ledger  inventory.Ledger
	Gateway payment.Gateway
	Catalog ProductResolver
	Redis   *redis.Client
	Log     *zap.Logger

	// One producer per topic, same shape as the reconciler side.
	PubCreated   Publisher
	PubConfirmed Publisher
	PubReconcile Publisher

	// GatewaySecret verifies confirmation signatures. Never logged.
	GatewaySecret string
	DeliveryFee   decimal.Decimal
	Currency      string
	ServiceName   string
}

type CreateResult struct {
	Order  *Order
	Intent *payment.Intent
}

// CreateOrder validates the cart, gates on availability, persists a pending
// order and asks the gateway for a payment intent. A gateway failure leaves
// the pending order behind without a gateway id; that orphan is accepted and
// cleaned up operationally, not here.
func (s *Service) CreateOrder(ctx context.Context, userID string, items []Item, address Address) (*CreateResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", ErrInvalidInput)
	}
	sels := make([]inventory.Selection, 0, len(items))
	total := s.DeliveryFee
	for i, it := range items {
		if it.ProductID == "" {
			return nil, fmt.Errorf("%w: item %d missing product id", ErrInvalidInput, i)
		}
		// A line without a positive total would silently rent for free, so
		// it is rejected instead of contributing zero.
		if it.Rental.TotalPrice.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: item %d missing rental total price", ErrInvalidInput, i)
		}
		if it.Rental.RentalDays <= 0 {
			return nil, fmt.Errorf("%w: item %d invalid rental days", ErrInvalidInput, i)
		}
		total = total.Add(it.Rental.TotalPrice)
		sels = append(sels, inventory.Selection{ProductID: it.ProductID, Size: it.Rental.SelectedSize})
	}

	if err := s.Ledger.CheckAvailability(ctx, sels); err != nil {
		return nil, err
	}

	o := &Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		Items:         items,
		Address:       address,
		TotalAmount:   total,
		Status:        StatusPending,
		PaymentMethod: "razorpay",
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	if err := s.Store.Create(ctx, o); err != nil {
		return nil, err
	}

	intent, err := s.Gateway.CreateIntent(ctx, payment.IntentRequest{
		AmountMinor: total.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency:    s.Currency,
		Receipt:     "rcpt_" + o.ID[:8],
		Notes:       map[string]string{"orderId": o.ID, "userId": userID},
	})
	if err != nil {
		s.Log.Error("create intent", zap.String("order_id", o.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if err := s.Store.AttachGatewayOrder(ctx, o.ID, intent.ID); err != nil {
		return nil, err
	}
	o.GatewayOrderID = intent.ID

	s.cacheStatus(ctx, o.ID, StatusPending)
	s.publish(s.PubCreated, EventOrderCreated, o.ID, OrderCreatedPayload{
		OrderID:        o.ID,
		UserID:         userID,
		TotalAmount:    total.String(),
		GatewayOrderID: intent.ID,
	})
	s.Log.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("gateway_order_id", intent.ID),
		zap.String("total", total.String()))
	return &CreateResult{Order: o, Intent: intent}, nil
}

// ConfirmPayment verifies the gateway signature, decrements stock atomically
// and transitions the order to confirmed. The signature check runs before any
// database lookup so a forged request cannot probe for order existence.
func (s *Service) ConfirmPayment(ctx context.Context, gatewayOrderID, gatewayPaymentID, gatewaySignature string) (*Order, error) {
	if gatewayOrderID == "" || gatewayPaymentID == "" || gatewaySignature == "" {
		return nil, ErrMissingFields
	}
	if !payment.Verify(gatewayOrderID, gatewayPaymentID, gatewaySignature, s.GatewaySecret) {
		s.Log.Warn("signature mismatch, possible tampering",
			zap.String("gateway_order_id", gatewayOrderID))
		return nil, ErrInvalidSignature
	}

	// Fast path for replayed confirmations. Advisory only: the status check
	// below stays the source of truth.
	if s.Redis != nil {
		key := fmt.Sprintf(redisx.KeyConfirmed, gatewayOrderID)
		if ok, _ := redisx.Exists(ctx, s.Redis, key); ok {
			return s.Store.GetByGatewayOrderID(ctx, gatewayOrderID)
		}
	}

	o, err := s.Store.GetByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		return nil, err
	}
	// Re-verification of an already confirmed order succeeds without
	// touching inventory again.
	if o.Status == StatusConfirmed {
		return o, nil
	}
	if !CanTransition(o.Status, StatusConfirmed) {
		return nil, fmt.Errorf("%w: order %s is %s", ErrInvalidInput, o.ID, o.Status)
	}

	sels := make([]inventory.Selection, 0, len(o.Items))
	for _, it := range o.Items {
		if it.Rental.SelectedSize == "" {
			continue
		}
		sels = append(sels, inventory.Selection{ProductID: it.ProductID, Size: it.Rental.SelectedSize})
	}
	if err := s.Ledger.DecrementForOrder(ctx, sels); err != nil {
		s.publish(s.PubReconcile, EventOrderPaidUnfulfilled, o.ID, PaidUnfulfilledPayload{
			OrderID:          o.ID,
			GatewayOrderID:   gatewayOrderID,
			GatewayPaymentID: gatewayPaymentID,
			Reason:           err.Error(),
		})
		s.Log.Error("inventory decrement after verified payment",
			zap.String("order_id", o.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPaidUnfulfilled, err)
	}

	if err := s.Store.MarkConfirmed(ctx, o.ID, gatewayPaymentID, gatewaySignature); err != nil {
		return nil, err
	}
	o.Status = StatusConfirmed
	o.GatewayPaymentID = gatewayPaymentID
	o.GatewaySignature = gatewaySignature

	s.cacheStatus(ctx, o.ID, StatusConfirmed)
	if s.Redis != nil {
		key := fmt.Sprintf(redisx.KeyConfirmed, gatewayOrderID)
		_ = s.Redis.Set(ctx, key, o.ID, redisx.TTLConfirmed).Err()
	}
	s.publish(s.PubConfirmed, EventOrderConfirmed, o.ID, OrderConfirmedPayload{
		OrderID:          o.ID,
		GatewayOrderID:   gatewayOrderID,
		GatewayPaymentID: gatewayPaymentID,
	})
	s.Log.Info("order confirmed", zap.String("order_id", o.ID))
	return o, nil
}

// ListOrdersForUser returns the user's orders most-recent-first with product
// references resolved. Caller identity is trusted; authorization lives in the
// auth middleware upstream.
func (s *Service) ListOrdersForUser(ctx context.Context, userID string) ([]Order, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	out, err := s.Store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(out))
	seen := map[string]bool{}
	for _, o := range out {
		for _, it := range o.Items {
			if !seen[it.ProductID] {
				seen[it.ProductID] = true
				ids = append(ids, it.ProductID)
			}
		}
	}
	products, err := s.Catalog.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		for j := range out[i].Items {
			out[i].Items[j].Product = products[out[i].Items[j].ProductID]
		}
	}
	return out, nil
}

// GetOrderStatus serves the status poll, cache first.
func (s *Service) GetOrderStatus(ctx context.Context, orderID string) (Status, error) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s.Redis != nil {
		if v, err := s.Redis.Get(ctx, key).Result(); err == nil && v != "" {
			return Status(v), nil
		}
	}
	st, err := s.Store.GetStatus(ctx, orderID)
	if err != nil {
		return "", err
	}
	s.cacheStatus(ctx, orderID, st)
	return st, nil
}

func (s *Service) cacheStatus(ctx context.Context, orderID string, st Status) {
	if s.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	_ = s.Redis.Set(ctx, key, string(st), redisx.TTLStatusCache).Err()
}

func (s *Service) publish(pub Publisher, eventType, orderID string, payload any) {
	if pub == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	pub.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
