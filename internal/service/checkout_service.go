package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"kart-checkout/internal/config"
	"kart-checkout/internal/metrics"
	"kart-checkout/internal/model"
	"kart-checkout/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ShippingFees maps a delivery option to its flat fee.
type ShippingFees struct {
	Standard decimal.Decimal
	Express  decimal.Decimal
}

// NewShippingFees converts configured fees to money.
func NewShippingFees(cfg config.CheckoutConfig) ShippingFees {
	return ShippingFees{
		Standard: decimal.NewFromFloat(cfg.StandardFee).Round(2),
		Express:  decimal.NewFromFloat(cfg.ExpressFee).Round(2),
	}
}

// For returns the fee for option. Anything other than express pays the standard fee.
func (f ShippingFees) For(option model.DeliveryOption) decimal.Decimal {
	if option == model.DeliveryExpress {
		return f.Express
	}
	return f.Standard
}

// CheckoutRepositories groups the stores a checkout spans.
type CheckoutRepositories struct {
	Tx        repository.Transactor
	Cart      repository.CartRepository
	Checkout  repository.CheckoutRepository
	Inventory repository.InventoryRepository
	Products  repository.ProductRepository
	Orders    repository.OrderRepository
	Shoppers  repository.ShopperRepository
}

// checkoutService implements CheckoutService.
type checkoutService struct {
	repos   CheckoutRepositories
	fees    ShippingFees
	metrics *metrics.CheckoutMetrics
	now     func() time.Time
	logger  zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(repos CheckoutRepositories, fees ShippingFees, m *metrics.CheckoutMetrics, logger zerolog.Logger) CheckoutService {
	return &checkoutService{
		repos:   repos,
		fees:    fees,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger.With().Str("service", "checkout").Logger(),
	}
}

// SaveSelection validates and stores the shopper's checkout choices.
func (s *checkoutService) SaveSelection(ctx context.Context, shopperID uuid.UUID, req *model.CheckoutSelectionRequest) (*model.CheckoutSelection, error) {
	option, err := model.ParseDeliveryOption(req.DeliveryOption)
	if err != nil {
		return nil, err
	}

	payment := strings.TrimSpace(req.PaymentMethod)
	if payment == "" {
		return nil, model.ErrInvalidPayment
	}

	address, err := s.repos.Checkout.GetAddress(ctx, req.AddressID)
	if err != nil {
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	if address == nil || address.ShopperID != shopperID {
		s.logger.Warn().
			Str("shopper_id", shopperID.String()).
			Str("address_id", req.AddressID.String()).
			Msg("selected address not found for shopper")
		return nil, model.ErrAddressNotFound
	}

	selection := &model.CheckoutSelection{
		ShopperID:      shopperID,
		AddressID:      address.ID,
		DeliveryOption: option,
		PaymentMethod:  payment,
	}
	if err := s.repos.Checkout.SaveSelection(ctx, selection); err != nil {
		return nil, fmt.Errorf("failed to save checkout selection: %w", err)
	}

	return selection, nil
}

// GetSelection returns the staged selection or ErrNoSelection.
func (s *checkoutService) GetSelection(ctx context.Context, shopperID uuid.UUID) (*model.CheckoutSelection, error) {
	selection, err := s.repos.Checkout.GetSelection(ctx, shopperID)
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout selection: %w", err)
	}
	if selection == nil {
		return nil, model.ErrNoSelection
	}
	return selection, nil
}

// PlaceOrder runs every precondition check and write in one transaction.
// Typed failures are returned as-is; anything else is reported as CommitFailed.
func (s *checkoutService) PlaceOrder(ctx context.Context, shopperID uuid.UUID) (*model.OrderDetail, error) {
	start := time.Now()

	var detail *model.OrderDetail
	err := repository.RunInTx(ctx, s.repos.Tx, func(tx pgx.Tx) error {
		var err error
		detail, err = s.placeOrder(ctx, tx, shopperID)
		return err
	})
	if err != nil {
		de, ok := model.AsDomainError(err)
		if !ok {
			s.logger.Error().Err(err).Str("shopper_id", shopperID.String()).Msg("order commit failed")
			de = model.NewCommitFailedError(err)
			err = de
		}
		s.metrics.IncFailure(de.Code)
		return nil, err
	}

	s.metrics.ObservePlaced(time.Since(start))
	s.logger.Info().
		Str("order_id", detail.ID.String()).
		Str("shopper_id", shopperID.String()).
		Int("item_count", len(detail.Items)).
		Str("total", detail.Total.StringFixed(2)).
		Msg("order placed")

	return detail, nil
}

func (s *checkoutService) placeOrder(ctx context.Context, tx pgx.Tx, shopperID uuid.UUID) (*model.OrderDetail, error) {
	lines, err := s.repos.Cart.LockLines(ctx, tx, shopperID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	for _, line := range lines {
		if line.VariantID == nil {
			s.logger.Error().
				Str("shopper_id", shopperID.String()).
				Str("line_id", line.ID.String()).
				Str("product_id", line.ProductID.String()).
				Msg("cart line has no variant")
			return nil, model.ErrMissingVariant
		}
	}

	for _, line := range lines {
		available, err := s.repos.Inventory.CheckAvailableTx(ctx, tx, *line.VariantID)
		if err != nil {
			return nil, err
		}
		if available < line.Quantity {
			return nil, model.NewInsufficientStockError(*line.VariantID, available)
		}
	}

	selection, err := s.repos.Checkout.GetSelectionTx(ctx, tx, shopperID)
	if err != nil {
		return nil, err
	}
	if selection == nil {
		return nil, model.ErrNoSelection
	}

	address, err := s.repos.Checkout.GetAddressTx(ctx, tx, selection.AddressID)
	if err != nil {
		return nil, err
	}
	if address == nil || address.ShopperID != shopperID {
		return nil, model.ErrAddressNotFound
	}

	// Lock variant rows in a fixed order so overlapping checkouts cannot deadlock.
	ordered := make([]model.CartLine, len(lines))
	copy(ordered, lines)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].VariantID.String() < ordered[j].VariantID.String()
	})
	for _, line := range ordered {
		if _, err := s.repos.Inventory.TryDecrement(ctx, tx, *line.VariantID, line.Quantity); err != nil {
			return nil, err
		}
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
	}
	fee := s.fees.For(selection.DeliveryOption)

	now := s.now()
	order := model.Order{
		ID:             uuid.New(),
		ShopperID:      shopperID,
		Status:         model.StatusPending,
		DeliveryOption: selection.DeliveryOption,
		PaymentMethod:  selection.PaymentMethod,
		Subtotal:       subtotal,
		ShippingFee:    fee,
		Total:          subtotal.Add(fee),
		Shipping:       model.NewShippingSnapshot(address),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	items, err := s.snapshotItems(ctx, tx, order.ID, lines)
	if err != nil {
		return nil, err
	}

	if err := s.repos.Orders.CreateOrder(ctx, tx, &order); err != nil {
		return nil, err
	}
	if err := s.repos.Orders.CreateOrderItems(ctx, tx, items); err != nil {
		return nil, err
	}
	if err := s.repos.Orders.AppendStatus(ctx, tx, order.ID, model.StatusPending, now); err != nil {
		return nil, err
	}

	if _, err := s.repos.Cart.ClearTx(ctx, tx, shopperID); err != nil {
		return nil, err
	}
	if _, err := s.repos.Shoppers.IncrementOrderCount(ctx, tx, shopperID); err != nil {
		return nil, err
	}

	return &model.OrderDetail{
		Order: order,
		Items: items,
		History: []model.OrderStatusHistory{
			{OrderID: order.ID, Status: model.StatusPending, ChangedAt: now},
		},
	}, nil
}

// snapshotItems freezes product and variant data for each line in cart order.
func (s *checkoutService) snapshotItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, lines []model.CartLine) ([]model.OrderItem, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, line := range lines {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}

	products, err := s.repos.Products.GetByIDsTx(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, model.ErrProductNotFound
		}
		variant, ok := product.FindVariant(*line.VariantID)
		if !ok {
			return nil, model.ErrVariantNotFound
		}

		item := model.OrderItem{
			ID:                   uuid.New(),
			OrderID:              orderID,
			ProductID:            product.ID,
			VariantID:            variant.ID,
			Quantity:             line.Quantity,
			Price:                line.PriceAtAdd,
			ProductName:          product.Name,
			ProductImageURL:      product.ImageURL,
			VariantName:          variant.Name,
			VariantPrice:         variant.Price,
			VariantOriginalPrice: variant.OriginalPrice,
			VariantWeightValue:   variant.WeightValue,
			VariantWeightUnit:    variant.WeightUnit,
		}
		if line.VariantName != nil {
			item.VariantName = line.VariantName
		}

		weight, unit := line.WeightValue, line.WeightUnit
		if !weight.Valid {
			weight, unit = variant.WeightValue, variant.WeightUnit
		}
		if weight.Valid {
			w := weight.Decimal.String()
			item.WeightValue = &w
		}
		item.WeightUnit = unit

		items = append(items, item)
	}

	return items, nil
}
