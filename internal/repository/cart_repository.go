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

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

const cartLineColumns = `id, shopper_id, product_id, variant_id, quantity, price_at_add, variant_name, weight_value, weight_unit, created_at, updated_at`

// GetLines returns all lines of the shopper's cart in insertion order.
func (r *cartRepository) GetLines(ctx context.Context, shopperID uuid.UUID) ([]model.CartLine, error) {
	query := `
		SELECT ` + cartLineColumns + `
		FROM cart_lines
		WHERE shopper_id = $1
		ORDER BY created_at, id
	`
	return r.queryLines(ctx, r.pool, query, shopperID)
}

// FindLine returns the line matching (shopper, product, variant).
func (r *cartRepository) FindLine(ctx context.Context, shopperID, productID uuid.UUID, variantID *uuid.UUID) (*model.CartLine, error) {
	query := `
		SELECT ` + cartLineColumns + `
		FROM cart_lines
		WHERE shopper_id = $1 AND product_id = $2 AND variant_id IS NOT DISTINCT FROM $3
	`

	line, err := scanCartLine(r.pool.QueryRow(ctx, query, shopperID, productID, variantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).
			Str("shopper_id", shopperID.String()).
			Str("product_id", productID.String()).
			Msg("failed to query cart line")
		return nil, fmt.Errorf("failed to query cart line: %w", err)
	}
	return &line, nil
}

// SaveLine inserts the line or overwrites the existing (shopper, product, variant)
// line. The stored row is scanned back into line.
func (r *cartRepository) SaveLine(ctx context.Context, line *model.CartLine) error {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}

	query := `
		INSERT INTO cart_lines (id, shopper_id, product_id, variant_id, quantity, price_at_add, variant_name, weight_value, weight_unit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT ON CONSTRAINT cart_lines_shopper_product_variant_key
		DO UPDATE SET
			quantity = EXCLUDED.quantity,
			price_at_add = EXCLUDED.price_at_add,
			variant_name = EXCLUDED.variant_name,
			weight_value = EXCLUDED.weight_value,
			weight_unit = EXCLUDED.weight_unit,
			updated_at = NOW()
		RETURNING ` + cartLineColumns

	saved, err := scanCartLine(r.pool.QueryRow(ctx, query,
		line.ID,
		line.ShopperID,
		line.ProductID,
		line.VariantID,
		line.Quantity,
		line.PriceAtAdd,
		line.VariantName,
		line.WeightValue,
		line.WeightUnit,
	))
	if err != nil {
		r.logger.Error().Err(err).
			Str("shopper_id", line.ShopperID.String()).
			Str("product_id", line.ProductID.String()).
			Msg("failed to save cart line")
		return fmt.Errorf("failed to save cart line: %w", err)
	}

	*line = saved
	return nil
}

// UpdateQuantity sets the quantity of a line.
func (r *cartRepository) UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cart_lines SET quantity = $2, updated_at = NOW() WHERE id = $1`,
		lineID, quantity)
	if err != nil {
		r.logger.Error().Err(err).Str("line_id", lineID.String()).Msg("failed to update cart line")
		return fmt.Errorf("failed to update cart line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrLineNotFound
	}
	return nil
}

// DeleteByProduct removes every line of the product from the shopper's cart.
func (r *cartRepository) DeleteByProduct(ctx context.Context, shopperID, productID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cart_lines WHERE shopper_id = $1 AND product_id = $2`,
		shopperID, productID)
	if err != nil {
		r.logger.Error().Err(err).
			Str("shopper_id", shopperID.String()).
			Str("product_id", productID.String()).
			Msg("failed to delete cart lines")
		return 0, fmt.Errorf("failed to delete cart lines: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Clear removes all of the shopper's lines.
func (r *cartRepository) Clear(ctx context.Context, shopperID uuid.UUID) (int64, error) {
	return r.clear(ctx, r.pool, shopperID)
}

// LockLines returns the shopper's lines locked FOR UPDATE inside tx.
func (r *cartRepository) LockLines(ctx context.Context, tx pgx.Tx, shopperID uuid.UUID) ([]model.CartLine, error) {
	query := `
		SELECT ` + cartLineColumns + `
		FROM cart_lines
		WHERE shopper_id = $1
		ORDER BY created_at, id
		FOR UPDATE
	`
	return r.queryLines(ctx, tx, query, shopperID)
}

// ClearTx removes all of the shopper's lines inside tx.
func (r *cartRepository) ClearTx(ctx context.Context, tx pgx.Tx, shopperID uuid.UUID) (int64, error) {
	return r.clear(ctx, tx, shopperID)
}

func (r *cartRepository) clear(ctx context.Context, q querier, shopperID uuid.UUID) (int64, error) {
	tag, err := q.Exec(ctx, `DELETE FROM cart_lines WHERE shopper_id = $1`, shopperID)
	if err != nil {
		r.logger.Error().Err(err).Str("shopper_id", shopperID.String()).Msg("failed to clear cart")
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *cartRepository) queryLines(ctx context.Context, q querier, query string, shopperID uuid.UUID) ([]model.CartLine, error) {
	rows, err := q.Query(ctx, query, shopperID)
	if err != nil {
		r.logger.Error().Err(err).Str("shopper_id", shopperID.String()).Msg("failed to query cart lines")
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	lines := []model.CartLine{}
	for rows.Next() {
		line, err := scanCartLine(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart line row")
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart line rows")
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}

	return lines, nil
}

func scanCartLine(row pgx.Row) (model.CartLine, error) {
	var l model.CartLine
	err := row.Scan(
		&l.ID,
		&l.ShopperID,
		&l.ProductID,
		&l.VariantID,
		&l.Quantity,
		&l.PriceAtAdd,
		&l.VariantName,
		&l.WeightValue,
		&l.WeightUnit,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}
