package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	variantID := uuid.New()
	err := NewInsufficientStockError(variantID, 4)

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NotErrorIs(t, err, ErrStockLimitExceeded)
	assert.ErrorIs(t, fmt.Errorf("checkout: %w", err), ErrInsufficientStock)
	assert.NotErrorIs(t, errors.New("Insufficient stock for variant"), ErrInsufficientStock)
}

func TestAsDomainError(t *testing.T) {
	variantID := uuid.New()
	wrapped := fmt.Errorf("outer: %w", NewStockLimitError(variantID, 3))

	de, ok := AsDomainError(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindStock, de.Kind)
	assert.Equal(t, ErrCodeStockLimitExceeded, de.Code)
	assert.Equal(t, variantID, *de.VariantID)
	assert.Equal(t, 3, *de.Available)
	assert.Contains(t, de.Message, "Available: 3")

	_, ok = AsDomainError(errors.New("plain"))
	assert.False(t, ok)
}

func TestCommitFailedError(t *testing.T) {
	cause := errors.New("deadlock detected")
	err := NewCommitFailedError(cause)

	assert.ErrorIs(t, err, ErrCommitFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Order could not be committed: deadlock detected", err.Error())
	assert.Equal(t, KindCommit, err.Kind)
}

func TestNewCartResponse(t *testing.T) {
	resp := NewCartResponse(nil)
	assert.NotNil(t, resp.Items)
	assert.True(t, resp.Subtotal.IsZero())

	resp = NewCartResponse([]CartLine{
		{Quantity: 2, PriceAtAdd: decimal.NewFromInt(100)},
		{Quantity: 3, PriceAtAdd: decimal.RequireFromString("0.10")},
	})
	assert.Equal(t, "200.30", resp.Subtotal.StringFixed(2))
}
