package service

import (
	"context"
	"fmt"
	"math"

	"kart-checkout/internal/model"
	"kart-checkout/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// maxLineQuantity is the largest quantity the INTEGER column holds.
const maxLineQuantity = math.MaxInt32

// cartService implements CartService. Stock checks here are advisory; the
// binding check is the decrement at checkout.
type cartService struct {
	cartRepo      repository.CartRepository
	productRepo   repository.ProductRepository
	inventoryRepo repository.InventoryRepository
	logger        zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	inventoryRepo repository.InventoryRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:      cartRepo,
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		logger:        logger.With().Str("service", "cart").Logger(),
	}
}

// AddLine merges quantity into the matching line. Price resolves as override,
// then variant price, then product base price; an existing line keeps its
// price unless an override is given.
func (s *cartService) AddLine(ctx context.Context, in model.AddLineInput) (*model.CartLine, error) {
	if in.Quantity < 1 || in.Quantity > maxLineQuantity {
		return nil, model.ErrInvalidQuantity
	}
	if in.PriceOverride != nil && in.PriceOverride.IsNegative() {
		return nil, model.ErrInvalidPrice
	}

	product, err := s.getProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	variant, err := resolveVariant(product, in.VariantID)
	if err != nil {
		return nil, err
	}

	var variantID *uuid.UUID
	if variant != nil {
		variantID = &variant.ID
	}

	existing, err := s.cartRepo.FindLine(ctx, in.ShopperID, in.ProductID, variantID)
	if err != nil {
		s.logger.Error().Err(err).Str("shopper_id", in.ShopperID.String()).Msg("failed to look up cart line")
		return nil, fmt.Errorf("failed to add cart line: %w", err)
	}

	merged := in.Quantity
	if existing != nil {
		if existing.Quantity > maxLineQuantity-in.Quantity {
			return nil, model.ErrInvalidQuantity
		}
		merged += existing.Quantity
	}

	if variant != nil {
		if variant.StockQuantity <= 0 {
			return nil, model.NewOutOfStockError(variant.ID)
		}
		if merged > variant.StockQuantity {
			s.logger.Debug().
				Str("variant_id", variant.ID.String()).
				Int("requested", merged).
				Int("available", variant.StockQuantity).
				Msg("cart line exceeds stock")
			return nil, model.NewStockLimitError(variant.ID, variant.StockQuantity)
		}
	}

	line := existing
	if line == nil {
		line = &model.CartLine{
			ShopperID:  in.ShopperID,
			ProductID:  in.ProductID,
			VariantID:  variantID,
			PriceAtAdd: defaultPrice(product, variant),
		}
		if variant != nil {
			line.VariantName = variant.Name
			line.WeightValue = variant.WeightValue
			line.WeightUnit = variant.WeightUnit
		}
	}

	line.Quantity = merged
	if in.PriceOverride != nil {
		line.PriceAtAdd = *in.PriceOverride
	}
	if in.Meta.Name != nil {
		line.VariantName = in.Meta.Name
	}
	if in.Meta.WeightValue.Valid {
		line.WeightValue = in.Meta.WeightValue
	}
	if in.Meta.WeightUnit != nil {
		line.WeightUnit = in.Meta.WeightUnit
	}

	if err := s.cartRepo.SaveLine(ctx, line); err != nil {
		return nil, fmt.Errorf("failed to add cart line: %w", err)
	}

	s.logger.Debug().
		Str("shopper_id", in.ShopperID.String()).
		Str("product_id", in.ProductID.String()).
		Int("quantity", line.Quantity).
		Msg("cart line saved")

	return line, nil
}

// UpdateLineQuantity validates quantity first, then the line, then stock.
func (s *cartService) UpdateLineQuantity(ctx context.Context, shopperID, productID uuid.UUID, variantID *uuid.UUID, quantity int) (*model.CartLine, error) {
	if quantity < 1 || quantity > maxLineQuantity {
		return nil, model.ErrInvalidQuantity
	}

	line, err := s.cartRepo.FindLine(ctx, shopperID, productID, variantID)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart line: %w", err)
	}
	if line == nil && variantID == nil {
		line, err = s.findSoleVariantLine(ctx, shopperID, productID)
		if err != nil {
			return nil, err
		}
	}
	if line == nil {
		return nil, model.ErrLineNotFound
	}

	if line.VariantID != nil {
		available, err := s.inventoryRepo.CheckAvailable(ctx, *line.VariantID)
		if err != nil {
			return nil, passDomain(err, "failed to update cart line")
		}
		if available <= 0 {
			return nil, model.NewOutOfStockError(*line.VariantID)
		}
		if quantity > available {
			return nil, model.NewStockLimitError(*line.VariantID, available)
		}
	}

	if err := s.cartRepo.UpdateQuantity(ctx, line.ID, quantity); err != nil {
		return nil, passDomain(err, "failed to update cart line")
	}
	line.Quantity = quantity

	return line, nil
}

func (s *cartService) RemoveLine(ctx context.Context, shopperID, productID uuid.UUID) error {
	removed, err := s.cartRepo.DeleteByProduct(ctx, shopperID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove cart line: %w", err)
	}
	s.logger.Debug().
		Str("shopper_id", shopperID.String()).
		Str("product_id", productID.String()).
		Int64("removed", removed).
		Msg("cart line removed")
	return nil
}

func (s *cartService) Clear(ctx context.Context, shopperID uuid.UUID) error {
	if _, err := s.cartRepo.Clear(ctx, shopperID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *cartService) GetLines(ctx context.Context, shopperID uuid.UUID) ([]model.CartLine, error) {
	lines, err := s.cartRepo.GetLines(ctx, shopperID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return lines, nil
}

func (s *cartService) getProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}
	return product, nil
}

// findSoleVariantLine finds the line of a single-variant product when the
// caller did not name the variant.
func (s *cartService) findSoleVariantLine(ctx context.Context, shopperID, productID uuid.UUID) (*model.CartLine, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil || len(product.Variants) != 1 {
		return nil, nil
	}
	line, err := s.cartRepo.FindLine(ctx, shopperID, productID, &product.Variants[0].ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart line: %w", err)
	}
	return line, nil
}

// resolveVariant returns the named variant, or the only variant when none is
// named. A nil variant with a nil error means a product-level line.
func resolveVariant(product *model.Product, variantID *uuid.UUID) (*model.Variant, error) {
	if variantID != nil {
		v, ok := product.FindVariant(*variantID)
		if !ok {
			return nil, model.ErrVariantNotFound
		}
		return v, nil
	}
	if len(product.Variants) == 1 {
		return &product.Variants[0], nil
	}
	return nil, nil
}

func defaultPrice(product *model.Product, variant *model.Variant) decimal.Decimal {
	if variant != nil {
		return variant.Price
	}
	return product.BasePrice
}
