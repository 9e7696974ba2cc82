package router

import (
	"net/http"
	"time"

	"kart-checkout/internal/handler"
	"kart-checkout/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Product  *handler.ProductHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Order    *handler.OrderHandler
	Admin    *handler.AdminHandler
}

// Options configures authentication, idempotency and metrics exposition.
type Options struct {
	APIKey string

	// IdempotencyStore may be nil, in which case Idempotency-Key is ignored.
	IdempotencyStore middleware.IdempotencyStore
	IdempotencyTTL   time.Duration

	// MetricsHandler is mounted at MetricsPath when non-nil.
	MetricsHandler http.Handler
	MetricsPath    string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> Logging -> CORS
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	if opts.MetricsHandler != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, opts.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.Product.GetAll)
		r.Get("/products/{id}", h.Product.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(middleware.ShopperID(logger))

			r.Get("/cart", h.Cart.Get)
			r.Delete("/cart", h.Cart.Clear)
			r.Post("/cart/items", h.Cart.AddItem)
			r.Put("/cart/items/{productId}", h.Cart.UpdateItem)
			r.Delete("/cart/items/{productId}", h.Cart.RemoveItem)

			r.Put("/checkout/selection", h.Checkout.SaveSelection)
			r.Get("/checkout/selection", h.Checkout.GetSelection)
			r.With(middleware.Idempotency(opts.IdempotencyStore, opts.IdempotencyTTL, logger)).
				Post("/checkout/orders", h.Checkout.PlaceOrder)

			r.Get("/orders", h.Order.List)
			r.Get("/orders/{id}", h.Order.GetByID)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(opts.APIKey, logger))

			r.Get("/orders", h.Admin.ListOrders)
			r.Patch("/orders/{id}/status", h.Admin.UpdateOrderStatus)
			r.Get("/variants/{id}/stock", h.Admin.GetStock)
			r.Post("/variants/{id}/stock", h.Admin.AdjustStock)
		})
	})

	return r
}
