package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"kart-checkout/internal/middleware"
	"kart-checkout/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) AddLine(ctx context.Context, in model.AddLineInput) (*model.CartLine, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartLine), args.Error(1)
}

func (m *MockCartService) UpdateLineQuantity(ctx context.Context, shopperID, productID uuid.UUID, variantID *uuid.UUID, quantity int) (*model.CartLine, error) {
	args := m.Called(ctx, shopperID, productID, variantID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartLine), args.Error(1)
}

func (m *MockCartService) RemoveLine(ctx context.Context, shopperID, productID uuid.UUID) error {
	return m.Called(ctx, shopperID, productID).Error(0)
}

func (m *MockCartService) Clear(ctx context.Context, shopperID uuid.UUID) error {
	return m.Called(ctx, shopperID).Error(0)
}

func (m *MockCartService) GetLines(ctx context.Context, shopperID uuid.UUID) ([]model.CartLine, error) {
	args := m.Called(ctx, shopperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartLine), args.Error(1)
}

// MockCheckoutService is a mock implementation of CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) SaveSelection(ctx context.Context, shopperID uuid.UUID, req *model.CheckoutSelectionRequest) (*model.CheckoutSelection, error) {
	args := m.Called(ctx, shopperID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutSelection), args.Error(1)
}

func (m *MockCheckoutService) GetSelection(ctx context.Context, shopperID uuid.UUID) (*model.CheckoutSelection, error) {
	args := m.Called(ctx, shopperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutSelection), args.Error(1)
}

func (m *MockCheckoutService) PlaceOrder(ctx context.Context, shopperID uuid.UUID) (*model.OrderDetail, error) {
	args := m.Called(ctx, shopperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderDetail), args.Error(1)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderDetail), args.Error(1)
}

func (m *MockOrderService) GetForShopper(ctx context.Context, shopperID, id uuid.UUID) (*model.OrderDetail, error) {
	args := m.Called(ctx, shopperID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderDetail), args.Error(1)
}

func (m *MockOrderService) ListByShopper(ctx context.Context, shopperID uuid.UUID, filter model.OrderFilter) ([]model.Order, error) {
	args := m.Called(ctx, shopperID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) ListAll(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.OrderDetail, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderDetail), args.Error(1)
}

// MockInventoryService is a mock implementation of InventoryService.
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) CheckAvailable(ctx context.Context, variantID uuid.UUID) (int, error) {
	args := m.Called(ctx, variantID)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryService) Adjust(ctx context.Context, variantID uuid.UUID, delta int) (int, error) {
	args := m.Called(ctx, variantID, delta)
	return args.Int(0), args.Error(1)
}

// MockPublisher is a mock implementation of cache.OrderPlacedPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderPlaced(ctx context.Context, order *model.OrderDetail) error {
	return m.Called(ctx, order).Error(0)
}

// shopperRequest builds a request already carrying an authenticated shopper.
func shopperRequest(method, target string, shopper uuid.UUID, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithShopperID(req.Context(), shopper))
}
