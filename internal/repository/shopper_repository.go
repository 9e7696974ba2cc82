package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type shopperRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewShopperRepository creates a new PostgreSQL-backed shopper repository.
func NewShopperRepository(pool *pgxpool.Pool, logger zerolog.Logger) ShopperRepository {
	return &shopperRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "shopper").Logger(),
	}
}

// IncrementOrderCount bumps the counter, creating the shopper row on first order.
func (r *shopperRepository) IncrementOrderCount(ctx context.Context, tx pgx.Tx, shopperID uuid.UUID) (int, error) {
	query := `
		INSERT INTO shoppers (id, total_orders)
		VALUES ($1, 1)
		ON CONFLICT (id) DO UPDATE SET total_orders = shoppers.total_orders + 1
		RETURNING total_orders
	`

	var total int
	if err := tx.QueryRow(ctx, query, shopperID).Scan(&total); err != nil {
		r.logger.Error().Err(err).Str("shopper_id", shopperID.String()).Msg("failed to increment order count")
		return 0, fmt.Errorf("failed to increment order count: %w", err)
	}
	return total, nil
}

// GetOrderCount returns the shopper's lifetime order counter, zero when unknown.
func (r *shopperRepository) GetOrderCount(ctx context.Context, shopperID uuid.UUID) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT total_orders FROM shoppers WHERE id = $1`, shopperID).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		r.logger.Error().Err(err).Str("shopper_id", shopperID.String()).Msg("failed to query order count")
		return 0, fmt.Errorf("failed to query order count: %w", err)
	}
	return total, nil
}
