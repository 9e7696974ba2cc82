package service

import (
	"context"
	"fmt"

	"kart-checkout/internal/metrics"
	"kart-checkout/internal/model"
	"kart-checkout/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
	metrics       *metrics.CheckoutMetrics
	logger        zerolog.Logger
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(
	inventoryRepo repository.InventoryRepository,
	m *metrics.CheckoutMetrics,
	logger zerolog.Logger,
) InventoryService {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		metrics:       m,
		logger:        logger.With().Str("service", "inventory").Logger(),
	}
}

func (s *inventoryService) CheckAvailable(ctx context.Context, variantID uuid.UUID) (int, error) {
	available, err := s.inventoryRepo.CheckAvailable(ctx, variantID)
	if err != nil {
		return 0, passDomain(err, "failed to check stock")
	}
	return available, nil
}

func (s *inventoryService) Adjust(ctx context.Context, variantID uuid.UUID, delta int) (int, error) {
	quantity, err := s.inventoryRepo.Adjust(ctx, variantID, delta)
	if err != nil {
		return 0, passDomain(err, "failed to adjust stock")
	}

	s.metrics.IncStockAdjustment("adjust")
	s.logger.Info().
		Str("variant_id", variantID.String()).
		Int("delta", delta).
		Int("stock_quantity", quantity).
		Msg("stock adjusted")

	return quantity, nil
}

// passDomain returns typed domain errors unchanged and wraps anything else.
func passDomain(err error, msg string) error {
	if _, ok := model.AsDomainError(err); ok {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
