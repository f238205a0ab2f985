package products

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// Querier is the part of *pgxpool.Pool the repo needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Repo struct{ DB Querier }

const productColumns = `id, seller_id, name, brand, category, price, original_price, image, stock, created_at, updated_at`

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return collect(rows)
}

func (r *Repo) ListBySeller(ctx context.Context, sellerID string) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM products WHERE seller_id=$1 ORDER BY name`, sellerID)
	if err != nil {
		return nil, errors.Wrap(err, "list seller products")
	}
	return collect(rows)
}

// Delete removes a product and returns the deleted rows (empty when id is unknown).
func (r *Repo) Delete(ctx context.Context, id string) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `DELETE FROM products WHERE id=$1 RETURNING `+productColumns, id)
	if err != nil {
		return nil, errors.Wrapf(err, "delete product %s", id)
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SellerID, &p.Name, &p.Brand, &p.Category, &p.Price, &p.OriginalPrice,
			&p.Image, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, errors.WithStack(err)
		}
		out = append(out, p)
	}
	return out, errors.WithStack(rows.Err())
}
