package orders

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("order not found")

type Store interface {
	Create(ctx context.Context, o *Order) error
	AttachGatewayOrder(ctx context.Context, orderID, gatewayOrderID string) error
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Order, error)
	MarkConfirmed(ctx context.Context, orderID, gatewayPaymentID, gatewaySignature string) error
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	GetStatus(ctx context.Context, orderID string) (Status, error)
}

type PGStore struct{ DB *pgxpool.Pool }

// Create persists the order and its items in one transaction.
func (s *PGStore) Create(ctx context.Context, o *Order) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	addr, err := json.Marshal(o.Address)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, status, total_amount, payment_method, address, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
	`, o.ID, o.UserID, string(o.Status), o.TotalAmount.String(), o.PaymentMethod, addr); err != nil {
		return err
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, selected_size, rental_days, start_date, end_date, total_price)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, o.ID, it.ProductID, it.Rental.SelectedSize, it.Rental.RentalDays,
			it.Rental.StartDate, it.Rental.EndDate, it.Rental.TotalPrice.String()); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *PGStore) AttachGatewayOrder(ctx context.Context, orderID, gatewayOrderID string) error {
	tag, err := s.DB.Exec(ctx, `
		UPDATE orders SET gateway_order_id=$2, updated_at=NOW() WHERE id=$1
	`, orderID, gatewayOrderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Order, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT id, user_id, status, total_amount::text, payment_method,
		       COALESCE(gateway_order_id,''), COALESCE(gateway_payment_id,''),
		       COALESCE(gateway_signature,''), address, created_at, updated_at
		FROM orders WHERE gateway_order_id=$1
	`, gatewayOrderID)
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	items, err := s.getItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// MarkConfirmed transitions a pending order to confirmed and stamps the
// payment id and signature. The status predicate makes the update a no-op if
// a concurrent confirmation already won.
func (s *PGStore) MarkConfirmed(ctx context.Context, orderID, gatewayPaymentID, gatewaySignature string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := s.DB.Exec(ctx, `
		UPDATE orders
		SET status=$2, gateway_payment_id=$3, gateway_signature=$4, updated_at=NOW()
		WHERE id=$1 AND status=$5
	`, orderID, string(StatusConfirmed), gatewayPaymentID, gatewaySignature, string(StatusPending))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, user_id, status, total_amount::text, payment_method,
		       COALESCE(gateway_order_id,''), COALESCE(gateway_payment_id,''),
		       COALESCE(gateway_signature,''), address, created_at, updated_at
		FROM orders WHERE user_id=$1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		items, err := s.getItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (s *PGStore) GetStatus(ctx context.Context, orderID string) (Status, error) {
	var st string
	err := s.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, orderID).Scan(&st)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return Status(st), nil
}

func (s *PGStore) getItems(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT product_id, selected_size, rental_days, start_date, end_date, total_price::text
		FROM order_items WHERE order_id=$1 ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var price string
		if err := rows.Scan(&it.ProductID, &it.Rental.SelectedSize, &it.Rental.RentalDays,
			&it.Rental.StartDate, &it.Rental.EndDate, &price); err != nil {
			return nil, err
		}
		if it.Rental.TotalPrice, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var total string
	var addr []byte
	var status string
	err := row.Scan(&o.ID, &o.UserID, &status, &total, &o.PaymentMethod,
		&o.GatewayOrderID, &o.GatewayPaymentID, &o.GatewaySignature,
		&addr, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	if len(addr) > 0 {
		if err := json.Unmarshal(addr, &o.Address); err != nil {
			return nil, err
		}
	}
	return &o, nil
}
