package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"kart-checkout/internal/database"
	"kart-checkout/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL container and applies the embedded migrations.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, "up", zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

type seededVariant struct {
	ProductID uuid.UUID
	VariantID uuid.UUID
}

// seedProduct inserts a product with one variant per (price, stock) pair.
func seedProduct(t *testing.T, pool *pgxpool.Pool, name string, basePrice string, variants ...model.Variant) (uuid.UUID, []uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	productID := uuid.New()
	_, err := pool.Exec(ctx,
		`INSERT INTO products (id, name, base_price) VALUES ($1, $2, $3)`,
		productID, name, decimal.RequireFromString(basePrice))
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(variants))
	for _, v := range variants {
		id := uuid.New()
		_, err := pool.Exec(ctx, `
			INSERT INTO product_variants (id, product_id, name, price, original_price, stock_quantity, weight_value, weight_unit)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			id, productID, v.Name, v.Price, v.OriginalPrice, v.StockQuantity, v.WeightValue, v.WeightUnit)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	return productID, ids
}

func seedAddress(t *testing.T, pool *pgxpool.Pool, shopperID uuid.UUID, city string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO addresses (id, shopper_id, name, phone, street, city, state, pincode)
		VALUES ($1, $2, 'Asha', '9999999999', '12 MG Road', $3, 'KA', '560001')`,
		id, shopperID, city)
	require.NoError(t, err)
	return id
}

func strPtr(s string) *string { return &s }

func TestRunInTx_CommitsOnSuccess(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	txr := NewTransactor(pool, zerolog.Nop())
	shoppers := NewShopperRepository(pool, zerolog.Nop())
	shopperID := uuid.New()

	err := RunInTx(ctx, txr, func(tx pgx.Tx) error {
		_, err := shoppers.IncrementOrderCount(ctx, tx, shopperID)
		return err
	})
	require.NoError(t, err)

	count, err := shoppers.GetOrderCount(ctx, shopperID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	txr := NewTransactor(pool, zerolog.Nop())
	shoppers := NewShopperRepository(pool, zerolog.Nop())
	shopperID := uuid.New()
	boom := errors.New("boom")

	err := RunInTx(ctx, txr, func(tx pgx.Tx) error {
		if _, err := shoppers.IncrementOrderCount(ctx, tx, shopperID); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := shoppers.GetOrderCount(ctx, shopperID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRunInTx_RollsBackOnPanic(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	txr := NewTransactor(pool, zerolog.Nop())
	shoppers := NewShopperRepository(pool, zerolog.Nop())
	shopperID := uuid.New()

	assert.Panics(t, func() {
		_ = RunInTx(ctx, txr, func(tx pgx.Tx) error {
			_, _ = shoppers.IncrementOrderCount(ctx, tx, shopperID)
			panic("unexpected")
		})
	})

	count, err := shoppers.GetOrderCount(ctx, shopperID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestTransactor_BeginTx(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	tx, err := NewTransactor(pool, zerolog.Nop()).BeginTx(ctx)

	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.NoError(t, tx.Rollback(ctx))
}
