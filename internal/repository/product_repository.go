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

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

const productColumns = `id, name, image_url, base_price, created_at`

const variantColumns = `id, product_id, name, price, original_price, stock_quantity, weight_value, weight_unit, updated_at`

// GetAll retrieves products, with their variants, using pagination.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY name, id
		LIMIT $1 OFFSET $2
	`

	products, err := r.queryProducts(ctx, r.pool, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, err
	}

	if err := r.attachVariants(ctx, r.pool, products); err != nil {
		return nil, err
	}

	return products, nil
}

// GetByID retrieves a single product with its variants.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	var p model.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.ImageURL, &p.BasePrice, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	products := []model.Product{p}
	if err := r.attachVariants(ctx, r.pool, products); err != nil {
		return nil, err
	}

	return &products[0], nil
}

// GetByIDsTx retrieves products with their variants inside tx.
func (r *productRepository) GetByIDsTx(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
		ORDER BY name, id
	`

	products, err := r.queryProducts(ctx, tx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, err
	}

	if err := r.attachVariants(ctx, tx, products); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepository) queryProducts(ctx context.Context, q querier, query string, args ...any) ([]model.Product, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.ImageURL, &p.BasePrice, &p.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.Variants = []model.Variant{}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// attachVariants loads the variants of every product in one query.
func (r *productRepository) attachVariants(ctx context.Context, q querier, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	index := make(map[uuid.UUID]int, len(products))
	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		index[p.ID] = i
		ids[i] = p.ID
	}

	query := `
		SELECT ` + variantColumns + `
		FROM product_variants
		WHERE product_id = ANY($1)
		ORDER BY price, id
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query variants")
		return fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan variant row")
			return err
		}
		i := index[v.ProductID]
		products[i].Variants = append(products[i].Variants, v)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating variant rows")
		return fmt.Errorf("error iterating variants: %w", err)
	}

	return nil
}

func scanVariant(row pgx.Row) (model.Variant, error) {
	var v model.Variant
	err := row.Scan(
		&v.ID,
		&v.ProductID,
		&v.Name,
		&v.Price,
		&v.OriginalPrice,
		&v.StockQuantity,
		&v.WeightValue,
		&v.WeightUnit,
		&v.UpdatedAt,
	)
	if err != nil {
		return model.Variant{}, fmt.Errorf("failed to scan variant: %w", err)
	}
	return v, nil
}
