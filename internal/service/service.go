package service

import (
	"context"

	"kart-checkout/internal/model"

	"github.com/google/uuid"
)

// ProductService defines read operations on the catalogue.
type ProductService interface {
	// GetAll retrieves products with their variants using pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

// InventoryService exposes per-variant stock to the admin surface. Checkout
// decrements and cancel releases run on the repository inside their own
// transactions.
type InventoryService interface {
	// CheckAvailable returns the variant's current stock.
	CheckAvailable(ctx context.Context, variantID uuid.UUID) (int, error)

	// Adjust applies an administrative delta, clamping the result at zero.
	Adjust(ctx context.Context, variantID uuid.UUID, delta int) (int, error)
}

// CartService manages the shopper's cart lines.
type CartService interface {
	// AddLine adds quantity to the (product, variant) line, creating it if needed.
	AddLine(ctx context.Context, in model.AddLineInput) (*model.CartLine, error)

	// UpdateLineQuantity replaces the quantity of an existing line.
	UpdateLineQuantity(ctx context.Context, shopperID, productID uuid.UUID, variantID *uuid.UUID, quantity int) (*model.CartLine, error)

	// RemoveLine deletes the product's lines. Removing an absent line is not an error.
	RemoveLine(ctx context.Context, shopperID, productID uuid.UUID) error

	// Clear empties the cart.
	Clear(ctx context.Context, shopperID uuid.UUID) error

	// GetLines returns the shopper's current lines.
	GetLines(ctx context.Context, shopperID uuid.UUID) ([]model.CartLine, error)
}

// CheckoutService stages checkout choices and places orders.
type CheckoutService interface {
	// SaveSelection records the shopper's address, delivery option and payment method.
	SaveSelection(ctx context.Context, shopperID uuid.UUID, req *model.CheckoutSelectionRequest) (*model.CheckoutSelection, error)

	// GetSelection returns the shopper's staged selection.
	GetSelection(ctx context.Context, shopperID uuid.UUID) (*model.CheckoutSelection, error)

	// PlaceOrder converts the shopper's cart into a committed order.
	PlaceOrder(ctx context.Context, shopperID uuid.UUID) (*model.OrderDetail, error)
}

// OrderService defines operations on committed orders.
type OrderService interface {
	// GetByID retrieves an order with its items and status history.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error)

	// GetForShopper retrieves an order only if shopperID owns it.
	GetForShopper(ctx context.Context, shopperID, id uuid.UUID) (*model.OrderDetail, error)

	// ListByShopper lists the shopper's orders, newest first.
	ListByShopper(ctx context.Context, shopperID uuid.UUID, filter model.OrderFilter) ([]model.Order, error)

	// ListAll lists every order, newest first.
	ListAll(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// UpdateStatus moves an order to status, releasing its stock on cancellation.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.OrderDetail, error)
}
