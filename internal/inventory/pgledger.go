package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/modarent/rental-orders/internal/catalog"
)

// PGLedger keeps stock in the product_sizes table.
type PGLedger struct{ DB *pgxpool.Pool }

func (l *PGLedger) CheckAvailability(ctx context.Context, sels []Selection) error {
	for _, sel := range sels {
		var available bool
		err := l.DB.QueryRow(ctx, `
			SELECT available FROM product_sizes
			WHERE product_id=$1 AND size=$2
		`, sel.ProductID, sel.Size).Scan(&available)
		if errors.Is(err, pgx.ErrNoRows) {
			return &UnavailableError{ProductID: sel.ProductID, Size: sel.Size, Reason: l.missingReason(ctx, sel.ProductID)}
		}
		if err != nil {
			return err
		}
		if !available {
			return &UnavailableError{ProductID: sel.ProductID, Size: sel.Size, Reason: "size unavailable"}
		}
	}
	return nil
}

func (l *PGLedger) missingReason(ctx context.Context, productID string) string {
	var one int
	if err := l.DB.QueryRow(ctx, `SELECT 1 FROM products WHERE id=$1`, productID).Scan(&one); err != nil {
		return "product not found"
	}
	return "size not found"
}

// DecrementForOrder locks each size row, takes one unit, and commits only if
// every selection succeeded. A failure on any row rolls the whole batch back,
// so stock is never left partially decremented for a single order.
func (l *PGLedger) DecrementForOrder(ctx context.Context, sels []Selection) error {
	tx, err := l.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, sel := range sels {
		if sel.Size == "" {
			continue
		}
		var s catalog.SizeStock
		var qty *int
		err := tx.QueryRow(ctx, `
			SELECT quantity, available FROM product_sizes
			WHERE product_id=$1 AND size=$2
			FOR UPDATE
		`, sel.ProductID, sel.Size).Scan(&qty, &s.Available)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("product %s size %q: %w", sel.ProductID, sel.Size, ErrNotFound)
		}
		if err != nil {
			return err
		}
		s.Size = sel.Size
		if qty != nil {
			s.Counted = true
			s.Quantity = *qty
		}

		next, err := applyDecrement(s)
		if err != nil {
			return fmt.Errorf("product %s size %q: %w", sel.ProductID, sel.Size, err)
		}

		var nextQty *int
		if next.Counted {
			nextQty = &next.Quantity
		}
		ct, err := tx.Exec(ctx, `
			UPDATE product_sizes SET quantity=$3, available=$4
			WHERE product_id=$1 AND size=$2
		`, sel.ProductID, sel.Size, nextQty, next.Available)
		if err != nil {
			return err
		}
		if ct.RowsAffected() != 1 {
			return fmt.Errorf("product %s size %q: %w", sel.ProductID, sel.Size, ErrNotFound)
		}
	}
	return tx.Commit(ctx)
}
