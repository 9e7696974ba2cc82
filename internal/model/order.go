package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents a committed customer order. Only Status changes after creation.
type Order struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	ShopperID      uuid.UUID        `json:"shopperId" db:"shopper_id"`
	Status         OrderStatus      `json:"status" db:"status"`
	DeliveryOption DeliveryOption   `json:"deliveryOption" db:"delivery_option"`
	PaymentMethod  string           `json:"paymentMethod" db:"payment_method"`
	Subtotal       decimal.Decimal  `json:"subtotal" db:"subtotal"`
	ShippingFee    decimal.Decimal  `json:"shippingFee" db:"shipping_fee"`
	Total          decimal.Decimal  `json:"total" db:"total"`
	Shipping       ShippingSnapshot `json:"shipping"`
	CreatedAt      time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time        `json:"updatedAt" db:"updated_at"`
}

// ShippingSnapshot is a frozen copy of the delivery address at order time.
type ShippingSnapshot struct {
	Name        string  `json:"name" db:"ship_name"`
	Phone       string  `json:"phone" db:"ship_phone"`
	Street      string  `json:"street" db:"ship_street"`
	City        string  `json:"city" db:"ship_city"`
	State       string  `json:"state" db:"ship_state"`
	Pincode     string  `json:"pincode" db:"ship_pincode"`
	Landmark    *string `json:"landmark,omitempty" db:"ship_landmark"`
	AddressType *string `json:"addressType,omitempty" db:"ship_address_type"`
}

// NewShippingSnapshot copies the address fields into a snapshot.
func NewShippingSnapshot(a *Address) ShippingSnapshot {
	return ShippingSnapshot{
		Name:        a.Name,
		Phone:       a.Phone,
		Street:      a.Street,
		City:        a.City,
		State:       a.State,
		Pincode:     a.Pincode,
		Landmark:    a.Landmark,
		AddressType: a.AddressType,
	}
}

// OrderItem represents a line item in an order, with product and variant data
// frozen at the moment of purchase.
type OrderItem struct {
	ID                   uuid.UUID           `json:"id" db:"id"`
	OrderID              uuid.UUID           `json:"-" db:"order_id"`
	ProductID            uuid.UUID           `json:"productId" db:"product_id"`
	VariantID            uuid.UUID           `json:"variantId" db:"variant_id"`
	Quantity             int                 `json:"quantity" db:"quantity"`
	Price                decimal.Decimal     `json:"price" db:"price"`
	ProductName          string              `json:"productName" db:"product_name"`
	ProductImageURL      *string             `json:"productImageUrl,omitempty" db:"product_image_url"`
	VariantName          *string             `json:"variantName,omitempty" db:"variant_name"`
	VariantPrice         decimal.Decimal     `json:"variantPrice" db:"variant_price"`
	VariantOriginalPrice decimal.NullDecimal `json:"variantOriginalPrice" db:"variant_original_price"`
	VariantWeightValue   decimal.NullDecimal `json:"variantWeightValue" db:"variant_weight_value"`
	VariantWeightUnit    *string             `json:"variantWeightUnit,omitempty" db:"variant_weight_unit"`
	WeightValue          *string             `json:"weightValue,omitempty" db:"weight_value"`
	WeightUnit           *string             `json:"weightUnit,omitempty" db:"weight_unit"`
}

// LineTotal returns the purchase price multiplied by quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderStatusHistory is one insert-only status record.
type OrderStatusHistory struct {
	ID        int64       `json:"-" db:"id"`
	OrderID   uuid.UUID   `json:"-" db:"order_id"`
	Status    OrderStatus `json:"status" db:"status"`
	ChangedAt time.Time   `json:"changedAt" db:"changed_at"`
}

// OrderDetail bundles an order with its items and status history.
type OrderDetail struct {
	Order
	Items   []OrderItem          `json:"items"`
	History []OrderStatusHistory `json:"history"`
}

// UpdateOrderStatusRequest represents the request payload for an admin status change.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Status *OrderStatus
	Limit  int
	Offset int
}
