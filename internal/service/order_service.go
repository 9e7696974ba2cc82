package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"kart-checkout/internal/metrics"
	"kart-checkout/internal/model"
	"kart-checkout/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	txr           repository.Transactor
	orderRepo     repository.OrderRepository
	inventoryRepo repository.InventoryRepository
	metrics       *metrics.CheckoutMetrics
	logger        zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	txr repository.Transactor,
	orderRepo repository.OrderRepository,
	inventoryRepo repository.InventoryRepository,
	m *metrics.CheckoutMetrics,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		txr:           txr,
		orderRepo:     orderRepo,
		inventoryRepo: inventoryRepo,
		metrics:       m,
		logger:        logger.With().Str("service", "order").Logger(),
	}
}

// GetByID retrieves an order by its ID with all items and history.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

// GetForShopper hides orders owned by other shoppers behind ErrOrderNotFound.
func (s *orderService) GetForShopper(ctx context.Context, shopperID, id uuid.UUID) (*model.OrderDetail, error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.ShopperID != shopperID {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListByShopper(ctx context.Context, shopperID uuid.UUID, filter model.OrderFilter) ([]model.Order, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)

	orders, err := s.orderRepo.ListByShopper(ctx, shopperID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) ListAll(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)

	orders, err := s.orderRepo.ListAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus applies one state-machine transition. Cancelling puts every
// item's quantity back on its variant in the same transaction.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.OrderDetail, error) {
	var released int
	err := repository.RunInTx(ctx, s.txr, func(tx pgx.Tx) error {
		order, items, err := s.orderRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return model.ErrOrderNotFound
		}

		if !order.Status.CanTransitionTo(status) {
			s.logger.Warn().
				Str("order_id", id.String()).
				Str("from", string(order.Status)).
				Str("to", string(status)).
				Msg("rejected status transition")
			return model.ErrInvalidTransition
		}

		now := time.Now().UTC()
		if err := s.orderRepo.UpdateStatus(ctx, tx, id, status, now); err != nil {
			return err
		}
		if err := s.orderRepo.AppendStatus(ctx, tx, id, status, now); err != nil {
			return err
		}

		if status != model.StatusCancelled {
			return nil
		}
		// Same lock order as checkout.
		ordered := make([]model.OrderItem, len(items))
		copy(ordered, items)
		sort.Slice(ordered, func(i, j int) bool {
			return ordered[i].VariantID.String() < ordered[j].VariantID.String()
		})
		for _, item := range ordered {
			_, err := s.inventoryRepo.AdjustTx(ctx, tx, item.VariantID, item.Quantity)
			if errors.Is(err, model.ErrVariantNotFound) {
				s.logger.Warn().
					Str("order_id", id.String()).
					Str("variant_id", item.VariantID.String()).
					Msg("variant gone, stock not released")
				continue
			}
			if err != nil {
				return err
			}
			released++
		}
		return nil
	})
	if err != nil {
		if _, ok := model.AsDomainError(err); ok {
			return nil, err
		}
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.metrics.IncStatusChange(string(status))
	for i := 0; i < released; i++ {
		s.metrics.IncStockAdjustment("release")
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("status", string(status)).
		Int("released_items", released).
		Msg("order status updated")

	return s.GetByID(ctx, id)
}
