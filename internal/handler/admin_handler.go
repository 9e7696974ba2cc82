package handler

import (
	"net/http"

	"kart-checkout/internal/model"
	"kart-checkout/internal/service"

	"github.com/rs/zerolog"
)

// AdminHandler serves the API-key protected order and stock routes.
type AdminHandler struct {
	orders    service.OrderService
	inventory service.InventoryService
	logger    zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(orders service.OrderService, inventory service.InventoryService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		orders:    orders,
		inventory: inventory,
		logger:    logger.With().Str("handler", "admin").Logger(),
	}
}

// ListOrders handles GET /api/admin/orders.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filter, err := orderFilter(r)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	orders, err := h.orders.ListAll(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus handles PATCH /api/admin/orders/{id}/status.
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid order ID format", h.logger)
		return
	}

	var req model.UpdateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	status, err := model.ParseOrderStatus(req.Status)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), orderID, status)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// GetStock handles GET /api/admin/variants/{id}/stock.
func (h *AdminHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	variantID, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid variant ID format", h.logger)
		return
	}

	stock, err := h.inventory.CheckAvailable(r.Context(), variantID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.StockResponse{VariantID: variantID, StockQuantity: stock})
}

// AdjustStock handles POST /api/admin/variants/{id}/stock. Results below zero clamp to zero.
func (h *AdminHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	variantID, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid variant ID format", h.logger)
		return
	}

	var req model.StockAdjustmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	stock, err := h.inventory.Adjust(r.Context(), variantID, req.Delta)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info().
		Str("variant_id", variantID.String()).
		Int("delta", req.Delta).
		Str("reason", req.Reason).
		Msg("stock adjusted by admin")

	writeJSON(w, http.StatusOK, model.StockResponse{VariantID: variantID, StockQuantity: stock})
}
