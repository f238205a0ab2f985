package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/products"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_BadDSN(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://%zz")
	assert.ErrorContains(t, err, "parse postgres dsn")
}

// Needs a scratch database; the products table is dropped and recreated.
func TestProductsRepo_Integration(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `DROP TABLE IF EXISTS products`)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = pool.Exec(context.Background(), `DROP TABLE IF EXISTS products`) })
	_, err = pool.Exec(ctx, `CREATE TABLE products (
		id text PRIMARY KEY, seller_id text NOT NULL, name text NOT NULL, brand text NOT NULL DEFAULT '',
		category text NOT NULL DEFAULT '', price bigint NOT NULL, original_price bigint, image text NOT NULL DEFAULT '',
		stock int NOT NULL DEFAULT 0, created_at timestamptz NOT NULL DEFAULT now(), updated_at timestamptz NOT NULL DEFAULT now())`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO products (id, seller_id, name, price, original_price) VALUES
		('p1', 's1', 'MCB 32A', 300, 350), ('p2', 's2', 'RCCB 40A', 400, NULL)`)
	require.NoError(t, err)

	repo := &products.Repo{DB: pool}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "MCB 32A", all[0].Name)
	require.NotNil(t, all[0].OriginalPrice)
	assert.Equal(t, int64(350), *all[0].OriginalPrice)

	mine, err := repo.ListBySeller(ctx, "s2")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Nil(t, mine[0].OriginalPrice)

	deleted, err := repo.Delete(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, deleted, 1)

	none, err := repo.Delete(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, none)
}
