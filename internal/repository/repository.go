package repository

import (
	"context"
	"time"

	"kart-checkout/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Transactor starts database transactions that span several repositories.
type Transactor interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// ProductRepository defines the interface for catalogue data access operations.
type ProductRepository interface {
	// GetAll retrieves products, with their variants, using pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product with its variants. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDsTx retrieves products with their variants inside tx.
	GetByIDsTx(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Product, error)
}

// InventoryRepository owns per-variant stock. Every write is a single
// conditional statement so concurrent callers serialise on the variant row.
type InventoryRepository interface {
	// CheckAvailable returns the variant's current stock quantity.
	CheckAvailable(ctx context.Context, variantID uuid.UUID) (int, error)

	// CheckAvailableTx returns the variant's stock quantity as seen by tx.
	CheckAvailableTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID) (int, error)

	// TryDecrement reduces stock by quantity only if enough is available and
	// returns the remaining quantity. The row lock is held until tx ends.
	TryDecrement(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, quantity int) (int, error)

	// Adjust applies delta to the stock, clamping at zero, and returns the new quantity.
	Adjust(ctx context.Context, variantID uuid.UUID, delta int) (int, error)

	// AdjustTx is Adjust inside tx.
	AdjustTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, delta int) (int, error)
}

// CartRepository defines the interface for cart line persistence.
type CartRepository interface {
	// GetLines returns all lines of the shopper's cart.
	GetLines(ctx context.Context, shopperID uuid.UUID) ([]model.CartLine, error)

	// FindLine returns the line matching (shopper, product, variant). Returns nil when absent.
	FindLine(ctx context.Context, shopperID, productID uuid.UUID, variantID *uuid.UUID) (*model.CartLine, error)

	// SaveLine inserts the line or overwrites the existing (shopper, product, variant) line.
	SaveLine(ctx context.Context, line *model.CartLine) error

	// UpdateQuantity sets the quantity of a line.
	UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error

	// DeleteByProduct removes every line of the product from the shopper's cart.
	DeleteByProduct(ctx context.Context, shopperID, productID uuid.UUID) (int64, error)

	// Clear removes all of the shopper's lines.
	Clear(ctx context.Context, shopperID uuid.UUID) (int64, error)

	// LockLines returns the shopper's lines locked FOR UPDATE inside tx.
	LockLines(ctx context.Context, tx pgx.Tx, shopperID uuid.UUID) ([]model.CartLine, error)

	// ClearTx removes all of the shopper's lines inside tx.
	ClearTx(ctx context.Context, tx pgx.Tx, shopperID uuid.UUID) (int64, error)
}

// CheckoutRepository defines access to checkout selections and the address book.
type CheckoutRepository interface {
	// SaveSelection creates or overwrites the shopper's selection.
	SaveSelection(ctx context.Context, selection *model.CheckoutSelection) error

	// GetSelection returns the shopper's selection. Returns nil when absent.
	GetSelection(ctx context.Context, shopperID uuid.UUID) (*model.CheckoutSelection, error)

	// GetSelectionTx is GetSelection inside tx.
	GetSelectionTx(ctx context.Context, tx pgx.Tx, shopperID uuid.UUID) (*model.CheckoutSelection, error)

	// GetAddress returns an address by ID. Returns nil when absent.
	GetAddress(ctx context.Context, id uuid.UUID) (*model.Address, error)

	// GetAddressTx is GetAddress inside tx.
	GetAddressTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Address, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// CreateOrder inserts a new order, including its shipping snapshot, within tx.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts the order's items, preserving slice order, within tx.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// AppendStatus inserts a status history row within tx.
	AppendStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.OrderStatus, at time.Time) error

	// UpdateStatus sets the order's current status within tx.
	UpdateStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.OrderStatus, at time.Time) error

	// GetForUpdate locks the order row and returns it with its items. Returns nil when absent.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// GetByID retrieves an order with its items and status history. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error)

	// ListByShopper lists the shopper's orders, newest first.
	ListByShopper(ctx context.Context, shopperID uuid.UUID, filter model.OrderFilter) ([]model.Order, error)

	// ListAll lists all orders, newest first.
	ListAll(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
}

// ShopperRepository exposes the user-management hooks checkout depends on.
type ShopperRepository interface {
	// IncrementOrderCount bumps the shopper's lifetime order counter within tx.
	IncrementOrderCount(ctx context.Context, tx pgx.Tx, shopperID uuid.UUID) (int, error)

	// GetOrderCount returns the shopper's lifetime order counter.
	GetOrderCount(ctx context.Context, shopperID uuid.UUID) (int, error)
}
