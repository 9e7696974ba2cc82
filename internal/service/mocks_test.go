package service

import (
	"context"
	"time"

	"kart-checkout/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockTransactor is a mock implementation of Transactor.
type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

// newCommittingTx returns a MockTx expecting a successful commit.
func newCommittingTx() *MockTx {
	tx := new(MockTx)
	tx.On("Commit", mock.Anything).Return(nil)
	return tx
}

// newRollingBackTx returns a MockTx expecting a rollback.
func newRollingBackTx() *MockTx {
	tx := new(MockTx)
	tx.On("Rollback", mock.Anything).Return(nil)
	return tx
}

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDsTx(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Product, error) {
	args := m.Called(ctx, tx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

// MockInventoryRepository is a mock implementation of InventoryRepository.
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) CheckAvailable(ctx context.Context, variantID uuid.UUID) (int, error) {
	args := m.Called(ctx, variantID)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryRepository) CheckAvailableTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID) (int, error) {
	args := m.Called(ctx, tx, variantID)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryRepository) TryDecrement(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, quantity int) (int, error) {
	args := m.Called(ctx, tx, variantID, quantity)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryRepository) Adjust(ctx context.Context, variantID uuid.UUID, delta int) (int, error) {
	args := m.Called(ctx, variantID, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryRepository) AdjustTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, delta int) (int, error) {
	args := m.Called(ctx, tx, variantID, delta)
	return args.Int(0), args.Error(1)
}

// MockCartRepository is a mock implementation of CartRepository.
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetLines(ctx context.Context, shopperID uuid.UUID) ([]model.CartLine, error) {
	args := m.Called(ctx, shopperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartLine), args.Error(1)
}

func (m *MockCartRepository) FindLine(ctx context.Context, shopperID, productID uuid.UUID, variantID *uuid.UUID) (*model.CartLine, error) {
	args := m.Called(ctx, shopperID, productID, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartLine), args.Error(1)
}

func (m *MockCartRepository) SaveLine(ctx context.Context, line *model.CartLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockCartRepository) UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	args := m.Called(ctx, lineID, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) DeleteByProduct(ctx context.Context, shopperID, productID uuid.UUID) (int64, error) {
	args := m.Called(ctx, shopperID, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCartRepository) Clear(ctx context.Context, shopperID uuid.UUID) (int64, error) {
	args := m.Called(ctx, shopperID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCartRepository) LockLines(ctx context.Context, tx pgx.Tx, shopperID uuid.UUID) ([]model.CartLine, error) {
	args := m.Called(ctx, tx, shopperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartLine), args.Error(1)
}

func (m *MockCartRepository) ClearTx(ctx context.Context, tx pgx.Tx, shopperID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, shopperID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCheckoutRepository is a mock implementation of CheckoutRepository.
type MockCheckoutRepository struct {
	mock.Mock
}

func (m *MockCheckoutRepository) SaveSelection(ctx context.Context, selection *model.CheckoutSelection) error {
	args := m.Called(ctx, selection)
	return args.Error(0)
}

func (m *MockCheckoutRepository) GetSelection(ctx context.Context, shopperID uuid.UUID) (*model.CheckoutSelection, error) {
	args := m.Called(ctx, shopperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutSelection), args.Error(1)
}

func (m *MockCheckoutRepository) GetSelectionTx(ctx context.Context, tx pgx.Tx, shopperID uuid.UUID) (*model.CheckoutSelection, error) {
	args := m.Called(ctx, tx, shopperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutSelection), args.Error(1)
}

func (m *MockCheckoutRepository) GetAddress(ctx context.Context, id uuid.UUID) (*model.Address, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Address), args.Error(1)
}

func (m *MockCheckoutRepository) GetAddressTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Address, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Address), args.Error(1)
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) AppendStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.OrderStatus, at time.Time) error {
	args := m.Called(ctx, tx, orderID, status, at)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.OrderStatus, at time.Time) error {
	args := m.Called(ctx, tx, orderID, status, at)
	return args.Error(0)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Get(1).([]model.OrderItem), args.Error(2)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderDetail), args.Error(1)
}

func (m *MockOrderRepository) ListByShopper(ctx context.Context, shopperID uuid.UUID, filter model.OrderFilter) ([]model.Order, error) {
	args := m.Called(ctx, shopperID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListAll(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

// MockShopperRepository is a mock implementation of ShopperRepository.
type MockShopperRepository struct {
	mock.Mock
}

func (m *MockShopperRepository) IncrementOrderCount(ctx context.Context, tx pgx.Tx, shopperID uuid.UUID) (int, error) {
	args := m.Called(ctx, tx, shopperID)
	return args.Int(0), args.Error(1)
}

func (m *MockShopperRepository) GetOrderCount(ctx context.Context, shopperID uuid.UUID) (int, error) {
	args := m.Called(ctx, shopperID)
	return args.Int(0), args.Error(1)
}
