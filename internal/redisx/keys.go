package redisx

import "time"

const (
	// Order status cache: order_status:{order_id} -> {"status":"..."}
	KeyOrderStatus = "order_status:%s"

	// Fast path for idempotent payment confirmation:
	// confirmed:{gateway_order_id} -> order_id
	KeyConfirmed = "confirmed:%s"

	// Dedup for event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLConfirmed   = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)
