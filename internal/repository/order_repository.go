package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kart-checkout/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

const orderColumns = `id, shopper_id, status, delivery_option, payment_method, subtotal, shipping_fee, total,
	ship_name, ship_phone, ship_street, ship_city, ship_state, ship_pincode, ship_landmark, ship_address_type,
	created_at, updated_at`

const orderItemColumns = `id, order_id, product_id, variant_id, quantity, price, product_name, product_image_url,
	variant_name, variant_price, variant_original_price, variant_weight_value, variant_weight_unit,
	weight_value, weight_unit`

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	s := order.Shipping
	_, err := tx.Exec(ctx, query,
		order.ID,
		order.ShopperID,
		order.Status,
		order.DeliveryOption,
		order.PaymentMethod,
		order.Subtotal,
		order.ShippingFee,
		order.Total,
		s.Name,
		s.Phone,
		s.Street,
		s.City,
		s.State,
		s.Pincode,
		s.Landmark,
		s.AddressType,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
// Slice order is stored as the item position.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (` + orderItemColumns + `, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	batch := &pgx.Batch{}
	for i, item := range items {
		batch.Queue(query,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.VariantID,
			item.Quantity,
			item.Price,
			item.ProductName,
			item.ProductImageURL,
			item.VariantName,
			item.VariantPrice,
			item.VariantOriginalPrice,
			item.VariantWeightValue,
			item.VariantWeightUnit,
			item.WeightValue,
			item.WeightUnit,
			i,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("variant_id", items[i].VariantID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// AppendStatus inserts a status history row within tx.
func (r *orderRepository) AppendStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.OrderStatus, at time.Time) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO order_status_history (order_id, status, changed_at) VALUES ($1, $2, $3)`,
		orderID, status, at)
	if err != nil {
		r.logger.Error().Err(err).
			Str("order_id", orderID.String()).
			Str("status", string(status)).
			Msg("failed to append order status")
		return fmt.Errorf("failed to append order status: %w", err)
	}
	return nil
}

// UpdateStatus sets the order's current status within tx.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.OrderStatus, at time.Time) error {
	tag, err := tx.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
		orderID, status, at)
	if err != nil {
		r.logger.Error().Err(err).
			Str("order_id", orderID.String()).
			Str("status", string(status)).
			Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

// GetForUpdate locks the order row and returns it with its items.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	order, err := scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, nil, fmt.Errorf("failed to lock order: %w", err)
	}

	items, err := r.getItems(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}

	return &order, items, nil
}

// GetByID retrieves an order by its ID along with its items and history.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.getItems(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}

	history, err := r.getHistory(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.OrderDetail{Order: order, Items: items, History: history}, nil
}

// ListByShopper lists the shopper's orders, newest first.
func (r *orderRepository) ListByShopper(ctx context.Context, shopperID uuid.UUID, filter model.OrderFilter) ([]model.Order, error) {
	return r.list(ctx, &shopperID, filter)
}

// ListAll lists all orders, newest first.
func (r *orderRepository) ListAll(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	return r.list(ctx, nil, filter)
}

func (r *orderRepository) list(ctx context.Context, shopperID *uuid.UUID, filter model.OrderFilter) ([]model.Order, error) {
	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1::uuid IS NULL OR shopper_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query, shopperID, status, filter.Limit, filter.Offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) getItems(ctx context.Context, q querier, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT ` + orderItemColumns + `
		FROM order_items
		WHERE order_id = $1
		ORDER BY position, id
	`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.VariantID,
			&item.Quantity,
			&item.Price,
			&item.ProductName,
			&item.ProductImageURL,
			&item.VariantName,
			&item.VariantPrice,
			&item.VariantOriginalPrice,
			&item.VariantWeightValue,
			&item.VariantWeightUnit,
			&item.WeightValue,
			&item.WeightUnit,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

func (r *orderRepository) getHistory(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, status, changed_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY changed_at, id
	`, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order history")
		return nil, fmt.Errorf("failed to query order history: %w", err)
	}
	defer rows.Close()

	history := []model.OrderStatusHistory{}
	for rows.Next() {
		var h model.OrderStatusHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &h.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order history: %w", err)
		}
		history = append(history, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order history: %w", err)
	}

	return history, nil
}

func scanOrder(row pgx.Row) (model.Order, error) {
	var o model.Order
	s := &o.Shipping
	err := row.Scan(
		&o.ID,
		&o.ShopperID,
		&o.Status,
		&o.DeliveryOption,
		&o.PaymentMethod,
		&o.Subtotal,
		&o.ShippingFee,
		&o.Total,
		&s.Name,
		&s.Phone,
		&s.Street,
		&s.City,
		&s.State,
		&s.Pincode,
		&s.Landmark,
		&s.AddressType,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}
