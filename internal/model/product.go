package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalogue product. Purchasable units are its variants.
type Product struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	ImageURL  *string         `json:"imageUrl,omitempty" db:"image_url"`
	BasePrice decimal.Decimal `json:"basePrice" db:"base_price"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	Variants  []Variant       `json:"variants"`
}

// Variant is a purchasable SKU with its own price and stock.
type Variant struct {
	ID            uuid.UUID           `json:"id" db:"id"`
	ProductID     uuid.UUID           `json:"productId" db:"product_id"`
	Name          *string             `json:"name,omitempty" db:"name"`
	Price         decimal.Decimal     `json:"price" db:"price"`
	OriginalPrice decimal.NullDecimal `json:"originalPrice" db:"original_price"`
	StockQuantity int                 `json:"stockQuantity" db:"stock_quantity"`
	WeightValue   decimal.NullDecimal `json:"weightValue" db:"weight_value"`
	WeightUnit    *string             `json:"weightUnit,omitempty" db:"weight_unit"`
	UpdatedAt     time.Time           `json:"updatedAt" db:"updated_at"`
}

// FindVariant returns the product's variant with the given ID.
func (p *Product) FindVariant(id uuid.UUID) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// StockAdjustmentRequest represents an administrative stock change.
type StockAdjustmentRequest struct {
	Delta  int    `json:"delta" validate:"ne=0"`
	Reason string `json:"reason,omitempty" validate:"max=255"`
}

// StockResponse reports the available quantity of a variant.
type StockResponse struct {
	VariantID     uuid.UUID `json:"variantId"`
	StockQuantity int       `json:"stockQuantity"`
}
