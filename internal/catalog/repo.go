package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("product not found")

type Repo struct{ DB *pgxpool.Pool }

// NUMERIC columns are selected as ::text and parsed, to avoid float rounding.
const productCols = `
	id, name, description, images, rental_price_per_day::text,
	original_price::text, mrp::text, gender, created_at, updated_at`

func (r *Repo) GetByID(ctx context.Context, id string) (*Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadSizes(ctx, p); err != nil {
		return nil, err
	}
	if err := r.loadFilters(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetMany loads products keyed by id, sizes included. Missing ids are simply
// absent from the result; callers decide whether that is an error.
func (r *Repo) GetMany(ctx context.Context, ids []string) (map[string]*Product, error) {
	out := make(map[string]*Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	params := ""
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			params += ","
		}
		params += fmt.Sprintf("$%d", i+1)
		args = append(args, id)
	}
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products WHERE id IN (`+params+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range out {
		if err := r.loadSizes(ctx, p); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var price string
	var original, mrp *string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Images, &price,
		&original, &mrp, &p.Gender, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.RentalPricePerDay, err = decimal.NewFromString(price); err != nil {
		return nil, err
	}
	if p.OriginalPrice, err = parseOptional(original); err != nil {
		return nil, err
	}
	if p.MRP, err = parseOptional(mrp); err != nil {
		return nil, err
	}
	return &p, nil
}

func parseOptional(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repo) loadSizes(ctx context.Context, p *Product) error {
	rows, err := r.DB.Query(ctx, `
		SELECT size, quantity, available FROM product_sizes
		WHERE product_id=$1 ORDER BY size`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var s SizeStock
		var qty *int
		if err := rows.Scan(&s.Size, &qty, &s.Available); err != nil {
			return err
		}
		if qty != nil {
			s.Counted = true
			s.Quantity = *qty
		}
		p.Sizes = append(p.Sizes, s)
	}
	return rows.Err()
}

func (r *Repo) loadFilters(ctx context.Context, p *Product) error {
	rows, err := r.DB.Query(ctx, `
		SELECT facet, value FROM product_filters WHERE product_id=$1`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var f Filter
		if err := rows.Scan(&f.Facet, &f.Value); err != nil {
			return err
		}
		p.Filters = append(p.Filters, f)
	}
	return rows.Err()
}
