package inventory

import (
	"errors"
	"testing"

	"github.com/modarent/rental-orders/internal/catalog"
)

func TestApplyDecrement_Counted(t *testing.T) {
	s := catalog.SizeStock{Size: "M", Counted: true, Quantity: 2, Available: true}

	next, err := applyDecrement(s)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if next.Quantity != 1 || !next.Available {
		t.Fatalf("got quantity=%d available=%v, want 1/true", next.Quantity, next.Available)
	}

	// last unit: availability flips off
	last, err := applyDecrement(next)
	if err != nil {
		t.Fatalf("decrement last unit: %v", err)
	}
	if last.Quantity != 0 || last.Available {
		t.Fatalf("got quantity=%d available=%v, want 0/false", last.Quantity, last.Available)
	}

	if _, err := applyDecrement(last); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("got %v, want ErrOutOfStock", err)
	}
}

func TestApplyDecrement_BooleanOnly(t *testing.T) {
	s := catalog.SizeStock{Size: "Free", Available: true}

	next, err := applyDecrement(s)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if next.Available {
		t.Fatal("boolean-only entry should be unavailable after decrement")
	}

	if _, err := applyDecrement(next); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("got %v, want ErrOutOfStock", err)
	}
}

func TestApplyDecrement_UnavailableCounted(t *testing.T) {
	s := catalog.SizeStock{Size: "S", Counted: true, Quantity: 0, Available: false}
	if _, err := applyDecrement(s); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("got %v, want ErrOutOfStock", err)
	}
}

func TestUnavailableErrorMessage(t *testing.T) {
	e := &UnavailableError{ProductID: "p1", Size: "M", Reason: "size unavailable"}
	want := `product p1 size "M": size unavailable`
	if e.Error() != want {
		t.Fatalf("got %q, want %q", e.Error(), want)
	}
}
