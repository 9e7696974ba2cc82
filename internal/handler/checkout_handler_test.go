package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kart-checkout/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func checkoutRouter(h *CheckoutHandler) http.Handler {
	r := chi.NewRouter()
	r.Put("/api/checkout/selection", h.SaveSelection)
	r.Get("/api/checkout/selection", h.GetSelection)
	r.Post("/api/checkout/orders", h.PlaceOrder)
	return r
}

func placedOrder(shopper uuid.UUID) *model.OrderDetail {
	return &model.OrderDetail{
		Order: model.Order{
			ID:          uuid.New(),
			ShopperID:   shopper,
			Status:      model.StatusPending,
			Subtotal:    decimal.NewFromInt(200),
			ShippingFee: decimal.NewFromInt(50),
			Total:       decimal.NewFromInt(250),
		},
		Items: []model.OrderItem{{ID: uuid.New(), Quantity: 2, Price: decimal.NewFromInt(100)}},
	}
}

func TestCheckoutHandler_PlaceOrder(t *testing.T) {
	shopper := uuid.New()

	t.Run("Created and published", func(t *testing.T) {
		order := placedOrder(shopper)
		svc := new(MockCheckoutService)
		pub := new(MockPublisher)
		svc.On("PlaceOrder", mock.Anything, shopper).Return(order, nil)
		pub.On("PublishOrderPlaced", mock.Anything, order).Return(nil)

		w := httptest.NewRecorder()
		checkoutRouter(NewCheckoutHandler(svc, pub, zerolog.Nop())).ServeHTTP(w, shopperRequest(http.MethodPost, "/api/checkout/orders", shopper, nil))

		require.Equal(t, http.StatusCreated, w.Code)
		var got model.OrderDetail
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, order.ID, got.ID)
		assert.Equal(t, "250", got.Total.String())
		pub.AssertExpectations(t)
	})

	t.Run("Publish failure does not fail the request", func(t *testing.T) {
		order := placedOrder(shopper)
		svc := new(MockCheckoutService)
		pub := new(MockPublisher)
		svc.On("PlaceOrder", mock.Anything, shopper).Return(order, nil)
		pub.On("PublishOrderPlaced", mock.Anything, order).Return(errors.New("redis down"))

		w := httptest.NewRecorder()
		checkoutRouter(NewCheckoutHandler(svc, pub, zerolog.Nop())).ServeHTTP(w, shopperRequest(http.MethodPost, "/api/checkout/orders", shopper, nil))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{name: "Empty cart", err: model.ErrEmptyCart, expectedStatus: http.StatusUnprocessableEntity, expectedCode: model.ErrCodeEmptyCart},
		{name: "Missing variant", err: model.ErrMissingVariant, expectedStatus: http.StatusBadRequest, expectedCode: model.ErrCodeMissingVariant},
		{name: "Insufficient stock", err: model.NewInsufficientStockError(uuid.New(), 4), expectedStatus: http.StatusConflict, expectedCode: model.ErrCodeInsufficientStock},
		{name: "No selection", err: model.ErrNoSelection, expectedStatus: http.StatusUnprocessableEntity, expectedCode: model.ErrCodeNoSelection},
		{name: "Address not found", err: model.ErrAddressNotFound, expectedStatus: http.StatusUnprocessableEntity, expectedCode: model.ErrCodeAddressNotFound},
		{name: "Commit failed", err: model.NewCommitFailedError(errors.New("serialization failure")), expectedStatus: http.StatusInternalServerError, expectedCode: model.ErrCodeCommitFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCheckoutService)
			pub := new(MockPublisher)
			svc.On("PlaceOrder", mock.Anything, shopper).Return(nil, tt.err)

			w := httptest.NewRecorder()
			checkoutRouter(NewCheckoutHandler(svc, pub, zerolog.Nop())).ServeHTTP(w, shopperRequest(http.MethodPost, "/api/checkout/orders", shopper, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			var resp model.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedCode, resp.Error)
			pub.AssertNotCalled(t, "PublishOrderPlaced", mock.Anything, mock.Anything)
		})
	}
}

func TestCheckoutHandler_SaveSelection(t *testing.T) {
	shopper := uuid.New()
	addressID := uuid.New()

	t.Run("Saved", func(t *testing.T) {
		svc := new(MockCheckoutService)
		svc.On("SaveSelection", mock.Anything, shopper, &model.CheckoutSelectionRequest{
			AddressID:      addressID,
			DeliveryOption: "express",
			PaymentMethod:  "upi",
		}).Return(&model.CheckoutSelection{
			ShopperID:      shopper,
			AddressID:      addressID,
			DeliveryOption: model.DeliveryExpress,
			PaymentMethod:  "upi",
		}, nil)

		body := `{"addressId":"` + addressID.String() + `","deliveryOption":"express","paymentMethod":"upi"}`
		w := httptest.NewRecorder()
		checkoutRouter(NewCheckoutHandler(svc, nil, zerolog.Nop())).ServeHTTP(w, shopperRequest(http.MethodPut, "/api/checkout/selection", shopper, strings.NewReader(body)))

		require.Equal(t, http.StatusOK, w.Code)
		var got model.CheckoutSelection
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, model.DeliveryExpress, got.DeliveryOption)
	})

	t.Run("Invalid delivery option", func(t *testing.T) {
		svc := new(MockCheckoutService)
		svc.On("SaveSelection", mock.Anything, shopper, mock.Anything).Return(nil, model.ErrInvalidDelivery)

		body := `{"addressId":"` + addressID.String() + `","deliveryOption":"drone","paymentMethod":"upi"}`
		w := httptest.NewRecorder()
		checkoutRouter(NewCheckoutHandler(svc, nil, zerolog.Nop())).ServeHTTP(w, shopperRequest(http.MethodPut, "/api/checkout/selection", shopper, strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Missing fields rejected before service", func(t *testing.T) {
		svc := new(MockCheckoutService)

		w := httptest.NewRecorder()
		checkoutRouter(NewCheckoutHandler(svc, nil, zerolog.Nop())).ServeHTTP(w, shopperRequest(http.MethodPut, "/api/checkout/selection", shopper, strings.NewReader(`{"deliveryOption":"standard"}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "SaveSelection", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCheckoutHandler_GetSelection(t *testing.T) {
	shopper := uuid.New()
	svc := new(MockCheckoutService)
	svc.On("GetSelection", mock.Anything, shopper).Return(nil, model.ErrNoSelection)

	w := httptest.NewRecorder()
	checkoutRouter(NewCheckoutHandler(svc, nil, zerolog.Nop())).ServeHTTP(w, shopperRequest(http.MethodGet, "/api/checkout/selection", shopper, nil))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
