package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/modarent/rental-orders/internal/catalog"
)

var (
	ErrNotFound   = errors.New("product or size not found")
	ErrOutOfStock = errors.New("out of stock")
)

// Selection identifies one requested unit: a product and an exact size string.
type Selection struct {
	ProductID string
	Size      string
}

// UnavailableError reports why a selection cannot be fulfilled.
type UnavailableError struct {
	ProductID string
	Size      string
	Reason    string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("product %s size %q: %s", e.ProductID, e.Size, e.Reason)
}

// Ledger answers availability questions and applies stock decrements against
// per-size product stock.
type Ledger interface {
	// CheckAvailability verifies every selection is currently in stock.
	// Read-only and point-in-time: stock can still disappear between this
	// check and the decrement at confirmation.
	CheckAvailability(ctx context.Context, sels []Selection) error

	// DecrementForOrder takes one unit per selection in a single atomic
	// batch. Either every selection is decremented or none are.
	DecrementForOrder(ctx context.Context, sels []Selection) error
}

// applyDecrement takes one unit from a size entry. Counted entries decrement
// the quantity and re-derive availability; boolean-only entries flip the flag.
func applyDecrement(s catalog.SizeStock) (catalog.SizeStock, error) {
	if !s.Available {
		return s, ErrOutOfStock
	}
	if s.Counted {
		if s.Quantity <= 0 {
			return s, ErrOutOfStock
		}
		s.Quantity--
		s.Available = s.Quantity > 0
		return s, nil
	}
	s.Available = false
	return s, nil
}
