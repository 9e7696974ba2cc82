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

// checkoutRepository implements the CheckoutRepository interface using PostgreSQL.
type checkoutRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCheckoutRepository creates a new PostgreSQL-backed checkout repository.
func NewCheckoutRepository(pool *pgxpool.Pool, logger zerolog.Logger) CheckoutRepository {
	return &checkoutRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "checkout").Logger(),
	}
}

// SaveSelection creates or overwrites the shopper's selection.
func (r *checkoutRepository) SaveSelection(ctx context.Context, selection *model.CheckoutSelection) error {
	query := `
		INSERT INTO checkout_selections (shopper_id, address_id, delivery_option, payment_method, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (shopper_id) DO UPDATE SET
			address_id = EXCLUDED.address_id,
			delivery_option = EXCLUDED.delivery_option,
			payment_method = EXCLUDED.payment_method,
			updated_at = NOW()
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		selection.ShopperID,
		selection.AddressID,
		selection.DeliveryOption,
		selection.PaymentMethod,
	).Scan(&selection.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).
			Str("shopper_id", selection.ShopperID.String()).
			Msg("failed to save checkout selection")
		return fmt.Errorf("failed to save checkout selection: %w", err)
	}

	return nil
}

// GetSelection returns the shopper's selection.
func (r *checkoutRepository) GetSelection(ctx context.Context, shopperID uuid.UUID) (*model.CheckoutSelection, error) {
	return r.getSelection(ctx, r.pool, shopperID)
}

// GetSelectionTx is GetSelection inside tx.
func (r *checkoutRepository) GetSelectionTx(ctx context.Context, tx pgx.Tx, shopperID uuid.UUID) (*model.CheckoutSelection, error) {
	return r.getSelection(ctx, tx, shopperID)
}

func (r *checkoutRepository) getSelection(ctx context.Context, q querier, shopperID uuid.UUID) (*model.CheckoutSelection, error) {
	query := `
		SELECT shopper_id, address_id, delivery_option, payment_method, updated_at
		FROM checkout_selections
		WHERE shopper_id = $1
	`

	var s model.CheckoutSelection
	err := q.QueryRow(ctx, query, shopperID).Scan(
		&s.ShopperID,
		&s.AddressID,
		&s.DeliveryOption,
		&s.PaymentMethod,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("shopper_id", shopperID.String()).Msg("failed to query checkout selection")
		return nil, fmt.Errorf("failed to query checkout selection: %w", err)
	}
	return &s, nil
}

// GetAddress returns an address by ID.
func (r *checkoutRepository) GetAddress(ctx context.Context, id uuid.UUID) (*model.Address, error) {
	return r.getAddress(ctx, r.pool, id)
}

// GetAddressTx is GetAddress inside tx.
func (r *checkoutRepository) GetAddressTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Address, error) {
	return r.getAddress(ctx, tx, id)
}

func (r *checkoutRepository) getAddress(ctx context.Context, q querier, id uuid.UUID) (*model.Address, error) {
	query := `
		SELECT id, shopper_id, name, phone, street, city, state, pincode, landmark, address_type
		FROM addresses
		WHERE id = $1
	`

	var a model.Address
	err := q.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.ShopperID,
		&a.Name,
		&a.Phone,
		&a.Street,
		&a.City,
		&a.State,
		&a.Pincode,
		&a.Landmark,
		&a.AddressType,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to query address")
		return nil, fmt.Errorf("failed to query address: %w", err)
	}
	return &a, nil
}
