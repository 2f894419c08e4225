package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated         = "OrderCreated"
	EventOrderConfirmed       = "OrderConfirmed"
	EventOrderPaidUnfulfilled = "OrderPaidUnfulfilled"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID        string `json:"order_id"`
	UserID         string `json:"user_id"`
	TotalAmount    string `json:"total_amount"`
	GatewayOrderID string `json:"gateway_order_id"`
}

type OrderConfirmedPayload struct {
	OrderID          string `json:"order_id"`
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
}

// PaidUnfulfilledPayload flags the one state that needs an operator: payment
// verified, inventory decrement failed. Consumed by the reconciler.
type PaidUnfulfilledPayload struct {
	OrderID          string `json:"order_id"`
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	Reason           string `json:"reason"`
}
