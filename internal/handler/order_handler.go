package handler

import (
	"net/http"

	"kart-checkout/internal/model"
	"kart-checkout/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles a shopper's order history.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// List handles GET /api/orders, newest first.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r, h.logger)
	if !ok {
		return
	}

	filter, err := orderFilter(r)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	orders, err := h.service.ListByShopper(r.Context(), shopper, filter)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{id}.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r, h.logger)
	if !ok {
		return
	}

	orderID, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid order ID format", h.logger)
		return
	}

	order, err := h.service.GetForShopper(r.Context(), shopper, orderID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
