package handler

import (
	"net/http"

	"kart-checkout/internal/model"
	"kart-checkout/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CartHandler handles the shopper's cart.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r, h.logger)
	if !ok {
		return
	}

	lines, err := h.service.GetLines(r.Context(), shopper)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.NewCartResponse(lines))
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r, h.logger)
	if !ok {
		return
	}

	var req model.AddCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	in := model.AddLineInput{
		ShopperID:     shopper,
		ProductID:     req.ProductID,
		VariantID:     req.VariantID,
		Quantity:      req.Quantity,
		PriceOverride: req.Price,
		Meta: model.VariantMeta{
			Name:       req.VariantName,
			WeightUnit: req.WeightUnit,
		},
	}
	if req.WeightValue != nil {
		in.Meta.WeightValue = decimal.NewNullDecimal(*req.WeightValue)
	}

	line, err := h.service.AddLine(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, line)
}

// UpdateItem handles PUT /api/cart/items/{productId}.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r, h.logger)
	if !ok {
		return
	}

	productID, ok := uuidParam(r, "productId")
	if !ok {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid product ID format", h.logger)
		return
	}

	var req model.UpdateCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	line, err := h.service.UpdateLineQuantity(r.Context(), shopper, productID, req.VariantID, req.Quantity)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, line)
}

// RemoveItem handles DELETE /api/cart/items/{productId}. Removing an absent line succeeds.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r, h.logger)
	if !ok {
		return
	}

	productID, ok := uuidParam(r, "productId")
	if !ok {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid product ID format", h.logger)
		return
	}

	if err := h.service.RemoveLine(r.Context(), shopper, productID); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.Clear(r.Context(), shopper); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
