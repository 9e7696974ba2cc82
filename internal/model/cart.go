package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one (product, variant) entry in a shopper's cart.
type CartLine struct {
	ID          uuid.UUID           `json:"id" db:"id"`
	ShopperID   uuid.UUID           `json:"-" db:"shopper_id"`
	ProductID   uuid.UUID           `json:"productId" db:"product_id"`
	VariantID   *uuid.UUID          `json:"variantId,omitempty" db:"variant_id"`
	Quantity    int                 `json:"quantity" db:"quantity"`
	PriceAtAdd  decimal.Decimal     `json:"price" db:"price_at_add"`
	VariantName *string             `json:"variantName,omitempty" db:"variant_name"`
	WeightValue decimal.NullDecimal `json:"weightValue" db:"weight_value"`
	WeightUnit  *string             `json:"weightUnit,omitempty" db:"weight_unit"`
	CreatedAt   time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time           `json:"updatedAt" db:"updated_at"`
}

// LineTotal returns price-at-add multiplied by quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.PriceAtAdd.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// VariantMeta is descriptive variant data captured on the cart line at add time.
type VariantMeta struct {
	Name        *string
	WeightValue decimal.NullDecimal
	WeightUnit  *string
}

// AddLineInput captures an addLine call.
type AddLineInput struct {
	ShopperID     uuid.UUID
	ProductID     uuid.UUID
	VariantID     *uuid.UUID
	Quantity      int
	PriceOverride *decimal.Decimal
	Meta          VariantMeta
}

// AddCartItemRequest represents the request payload for adding to the cart.
type AddCartItemRequest struct {
	ProductID   uuid.UUID        `json:"productId" validate:"required"`
	VariantID   *uuid.UUID       `json:"variantId,omitempty"`
	Quantity    int              `json:"quantity"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	VariantName *string          `json:"variantName,omitempty" validate:"omitempty,max=255"`
	WeightValue *decimal.Decimal `json:"weightValue,omitempty"`
	WeightUnit  *string          `json:"weightUnit,omitempty" validate:"omitempty,max=50"`
}

// UpdateCartItemRequest represents the request payload for changing a line quantity.
type UpdateCartItemRequest struct {
	VariantID *uuid.UUID `json:"variantId,omitempty"`
	Quantity  int        `json:"quantity"`
}

// CartResponse represents a shopper's cart.
type CartResponse struct {
	Items    []CartLine      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// NewCartResponse builds a CartResponse, summing line totals.
func NewCartResponse(lines []CartLine) *CartResponse {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}
	if lines == nil {
		lines = []CartLine{}
	}
	return &CartResponse{Items: lines, Subtotal: subtotal}
}
