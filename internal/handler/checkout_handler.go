package handler

import (
	"net/http"

	"kart-checkout/internal/cache"
	"kart-checkout/internal/model"
	"kart-checkout/internal/service"

	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout selection and order placement.
type CheckoutHandler struct {
	service   service.CheckoutService
	publisher cache.OrderPlacedPublisher
	logger    zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler. Committed orders are
// handed to publisher for notification delivery.
func NewCheckoutHandler(service service.CheckoutService, publisher cache.OrderPlacedPublisher, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service:   service,
		publisher: publisher,
		logger:    logger.With().Str("handler", "checkout").Logger(),
	}
}

// SaveSelection handles PUT /api/checkout/selection.
func (h *CheckoutHandler) SaveSelection(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r, h.logger)
	if !ok {
		return
	}

	var req model.CheckoutSelectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	selection, err := h.service.SaveSelection(r.Context(), shopper, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, selection)
}

// GetSelection handles GET /api/checkout/selection.
func (h *CheckoutHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r, h.logger)
	if !ok {
		return
	}

	selection, err := h.service.GetSelection(r.Context(), shopper)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, selection)
}

// PlaceOrder handles POST /api/checkout/orders.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r, h.logger)
	if !ok {
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), shopper)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	// The order is committed; a failed notification must not fail the request.
	if h.publisher != nil {
		if err := h.publisher.PublishOrderPlaced(r.Context(), order); err != nil {
			h.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to publish order placed event")
		}
	}

	writeJSON(w, http.StatusCreated, order)
}
