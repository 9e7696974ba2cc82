package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeliveryOption selects the shipping fee tier.
type DeliveryOption string

const (
	DeliveryStandard DeliveryOption = "standard"
	DeliveryExpress  DeliveryOption = "express"
)

// ParseDeliveryOption normalises and validates a delivery option.
func ParseDeliveryOption(s string) (DeliveryOption, error) {
	switch DeliveryOption(strings.ToLower(strings.TrimSpace(s))) {
	case DeliveryStandard:
		return DeliveryStandard, nil
	case DeliveryExpress:
		return DeliveryExpress, nil
	}
	return "", ErrInvalidDelivery
}

// Address is the live, shopper-editable address owned by address management.
type Address struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ShopperID   uuid.UUID `json:"shopperId" db:"shopper_id"`
	Name        string    `json:"name" db:"name"`
	Phone       string    `json:"phone" db:"phone"`
	Street      string    `json:"street" db:"street"`
	City        string    `json:"city" db:"city"`
	State       string    `json:"state" db:"state"`
	Pincode     string    `json:"pincode" db:"pincode"`
	Landmark    *string   `json:"landmark,omitempty" db:"landmark"`
	AddressType *string   `json:"addressType,omitempty" db:"address_type"`
}

// CheckoutSelection is the shopper's staged delivery and payment choice.
type CheckoutSelection struct {
	ShopperID      uuid.UUID      `json:"-" db:"shopper_id"`
	AddressID      uuid.UUID      `json:"addressId" db:"address_id"`
	DeliveryOption DeliveryOption `json:"deliveryOption" db:"delivery_option"`
	PaymentMethod  string         `json:"paymentMethod" db:"payment_method"`
	UpdatedAt      time.Time      `json:"updatedAt" db:"updated_at"`
}

// CheckoutSelectionRequest represents the request payload for staging checkout.
type CheckoutSelectionRequest struct {
	AddressID      uuid.UUID `json:"addressId" validate:"required"`
	DeliveryOption string    `json:"deliveryOption" validate:"required"`
	PaymentMethod  string    `json:"paymentMethod" validate:"required,max=50"`
}
