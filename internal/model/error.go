package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error     string        `json:"error"`
	Message   string        `json:"message"`
	RequestID string        `json:"requestId,omitempty"`
	Details   *ErrorDetails `json:"details,omitempty"`
}

// ErrorDetails carries the stock context of a StockError.
type ErrorDetails struct {
	VariantID *uuid.UUID `json:"variantId,omitempty"`
	Available *int       `json:"available,omitempty"`
}

// ErrorKind groups error codes by how a caller is expected to react.
type ErrorKind string

const (
	// KindValidation errors are rejected before any mutation; retry after correcting input.
	KindValidation ErrorKind = "validation"
	// KindStock errors require the caller to adjust requested quantities.
	KindStock ErrorKind = "stock"
	// KindState errors require the caller to complete a prerequisite step.
	KindState ErrorKind = "state"
	// KindNotFound errors reference an unknown entity.
	KindNotFound ErrorKind = "not_found"
	// KindCommit errors mean the storage backend aborted the transaction.
	KindCommit ErrorKind = "commit"
)

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeInvalidPrice       = "INVALID_PRICE"
	ErrCodeMissingVariant     = "MISSING_VARIANT"
	ErrCodeInvalidDelivery    = "INVALID_DELIVERY_OPTION"
	ErrCodeInvalidPayment     = "INVALID_PAYMENT_METHOD"
	ErrCodeInvalidStatus      = "INVALID_STATUS"
	ErrCodeOutOfStock         = "OUT_OF_STOCK"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeStockLimitExceeded = "STOCK_LIMIT_EXCEEDED"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeNoSelection        = "NO_CHECKOUT_SELECTION"
	ErrCodeAddressNotFound    = "ADDRESS_NOT_FOUND"
	ErrCodeInvalidTransition  = "INVALID_STATUS_TRANSITION"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeVariantNotFound    = "VARIANT_NOT_FOUND"
	ErrCodeLineNotFound       = "LINE_NOT_FOUND"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeCommitFailed       = "COMMIT_FAILED"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeIdempotencyReused  = "IDEMPOTENCY_KEY_REUSED"
	ErrCodeRequestInProgress  = "REQUEST_IN_PROGRESS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a typed business failure. Two DomainErrors are considered the
// same error by errors.Is when their codes match, so a sentinel still matches
// an error that carries variant or quantity details.
type DomainError struct {
	Kind      ErrorKind
	Code      string
	Message   string
	VariantID *uuid.UUID
	Available *int
	cause     error
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Unwrap returns the underlying storage error, if any.
func (e *DomainError) Unwrap() error {
	return e.cause
}

// AsDomainError returns the first DomainError in err's chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidQuantity    = NewDomainError(KindValidation, ErrCodeInvalidQuantity, "Quantity must be between 1 and 2147483647")
	ErrInvalidPrice       = NewDomainError(KindValidation, ErrCodeInvalidPrice, "Price cannot be negative")
	ErrMissingVariant     = NewDomainError(KindValidation, ErrCodeMissingVariant, "Cart line is missing variant information")
	ErrInvalidDelivery    = NewDomainError(KindValidation, ErrCodeInvalidDelivery, "Delivery option must be standard or express")
	ErrInvalidPayment     = NewDomainError(KindValidation, ErrCodeInvalidPayment, "Payment method is required")
	ErrInvalidStatus      = NewDomainError(KindValidation, ErrCodeInvalidStatus, "Unknown order status")
	ErrOutOfStock         = NewDomainError(KindStock, ErrCodeOutOfStock, "Variant is out of stock")
	ErrInsufficientStock  = NewDomainError(KindStock, ErrCodeInsufficientStock, "Insufficient stock for variant")
	ErrStockLimitExceeded = NewDomainError(KindStock, ErrCodeStockLimitExceeded, "Stock limit exceeded")
	ErrEmptyCart          = NewDomainError(KindState, ErrCodeEmptyCart, "Cart is empty")
	ErrNoSelection        = NewDomainError(KindState, ErrCodeNoSelection, "No checkout selection found")
	ErrAddressNotFound    = NewDomainError(KindState, ErrCodeAddressNotFound, "Selected address not found")
	ErrInvalidTransition  = NewDomainError(KindState, ErrCodeInvalidTransition, "Order status transition not allowed")
	ErrProductNotFound    = NewDomainError(KindNotFound, ErrCodeProductNotFound, "Product not found")
	ErrVariantNotFound    = NewDomainError(KindNotFound, ErrCodeVariantNotFound, "Product variant not found")
	ErrLineNotFound       = NewDomainError(KindNotFound, ErrCodeLineNotFound, "Cart line not found")
	ErrOrderNotFound      = NewDomainError(KindNotFound, ErrCodeOrderNotFound, "Order not found")
	ErrCommitFailed       = NewDomainError(KindCommit, ErrCodeCommitFailed, "Order could not be committed")
)

// NewInsufficientStockError reports that variantID holds fewer than the requested units.
func NewInsufficientStockError(variantID uuid.UUID, available int) *DomainError {
	return &DomainError{
		Kind:      KindStock,
		Code:      ErrCodeInsufficientStock,
		Message:   fmt.Sprintf("Insufficient stock for variant %s", variantID),
		VariantID: &variantID,
		Available: &available,
	}
}

// NewStockLimitError reports that a cart line would exceed the variant's stock.
func NewStockLimitError(variantID uuid.UUID, available int) *DomainError {
	return &DomainError{
		Kind:      KindStock,
		Code:      ErrCodeStockLimitExceeded,
		Message:   fmt.Sprintf("Stock limit exceeded. Available: %d", available),
		VariantID: &variantID,
		Available: &available,
	}
}

// NewOutOfStockError reports that variantID has no stock left.
func NewOutOfStockError(variantID uuid.UUID) *DomainError {
	available := 0
	return &DomainError{
		Kind:      KindStock,
		Code:      ErrCodeOutOfStock,
		Message:   "Variant is out of stock",
		VariantID: &variantID,
		Available: &available,
	}
}

// NewCommitFailedError wraps a storage failure raised while committing an order.
func NewCommitFailedError(cause error) *DomainError {
	return &DomainError{
		Kind:    KindCommit,
		Code:    ErrCodeCommitFailed,
		Message: "Order could not be committed",
		cause:   cause,
	}
}
