package repository

import (
	"context"
	"errors"
	"fmt"

	"kart-checkout/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// inventoryRepository implements the InventoryRepository interface using PostgreSQL.
type inventoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewInventoryRepository creates a new PostgreSQL-backed inventory repository.
func NewInventoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) InventoryRepository {
	return &inventoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "inventory").Logger(),
	}
}

// CheckAvailable returns the variant's current stock quantity.
func (r *inventoryRepository) CheckAvailable(ctx context.Context, variantID uuid.UUID) (int, error) {
	return r.stockOf(ctx, r.pool, variantID)
}

// CheckAvailableTx returns the variant's stock quantity as seen by tx.
func (r *inventoryRepository) CheckAvailableTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID) (int, error) {
	return r.stockOf(ctx, tx, variantID)
}

// TryDecrement reduces stock by quantity in one conditional UPDATE. When no
// row qualifies, a follow-up read tells a missing variant apart from a short one.
func (r *inventoryRepository) TryDecrement(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, quantity int) (int, error) {
	if quantity < 1 {
		return 0, model.ErrInvalidQuantity
	}

	query := `
		UPDATE product_variants
		SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		WHERE id = $1 AND stock_quantity >= $2
		RETURNING stock_quantity
	`

	var remaining int
	err := tx.QueryRow(ctx, query, variantID, quantity).Scan(&remaining)
	if err == nil {
		r.logger.Debug().
			Str("variant_id", variantID.String()).
			Int("quantity", quantity).
			Int("remaining", remaining).
			Msg("stock decremented")
		return remaining, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error().Err(err).
			Str("variant_id", variantID.String()).
			Int("quantity", quantity).
			Msg("failed to decrement stock")
		return 0, fmt.Errorf("failed to decrement stock: %w", err)
	}

	available, err := r.stockOf(ctx, tx, variantID)
	if err != nil {
		return 0, err
	}

	r.logger.Warn().
		Str("variant_id", variantID.String()).
		Int("requested", quantity).
		Int("available", available).
		Msg("insufficient stock")

	return 0, model.NewInsufficientStockError(variantID, available)
}

// Adjust applies delta to the stock, clamping at zero, and returns the new quantity.
func (r *inventoryRepository) Adjust(ctx context.Context, variantID uuid.UUID, delta int) (int, error) {
	return r.adjust(ctx, r.pool, variantID, delta)
}

// AdjustTx is Adjust inside tx.
func (r *inventoryRepository) AdjustTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, delta int) (int, error) {
	return r.adjust(ctx, tx, variantID, delta)
}

func (r *inventoryRepository) adjust(ctx context.Context, q querier, variantID uuid.UUID, delta int) (int, error) {
	query := `
		UPDATE product_variants
		SET stock_quantity = GREATEST(stock_quantity + $2, 0), updated_at = NOW()
		WHERE id = $1
		RETURNING stock_quantity
	`

	var quantity int
	err := q.QueryRow(ctx, query, variantID, delta).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrVariantNotFound
		}
		r.logger.Error().Err(err).
			Str("variant_id", variantID.String()).
			Int("delta", delta).
			Msg("failed to adjust stock")
		return 0, fmt.Errorf("failed to adjust stock: %w", err)
	}

	r.logger.Info().
		Str("variant_id", variantID.String()).
		Int("delta", delta).
		Int("stock_quantity", quantity).
		Msg("stock adjusted")

	return quantity, nil
}

func (r *inventoryRepository) stockOf(ctx context.Context, q querier, variantID uuid.UUID) (int, error) {
	var quantity int
	err := q.QueryRow(ctx, `SELECT stock_quantity FROM product_variants WHERE id = $1`, variantID).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrVariantNotFound
		}
		r.logger.Error().Err(err).Str("variant_id", variantID.String()).Msg("failed to query stock")
		return 0, fmt.Errorf("failed to query stock: %w", err)
	}
	return quantity, nil
}
