package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout, order and stock activity. A nil
// *CheckoutMetrics is valid and records nothing.
type CheckoutMetrics struct {
	placed        prometheus.Counter
	failed        *prometheus.CounterVec
	duration      prometheus.Histogram
	statusChanges *prometheus.CounterVec
	stockChanges  *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_placed_total",
		Help: "Orders committed by checkout.",
	})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failures_total",
		Help: "Rejected or aborted checkouts by error code.",
	}, []string{"code"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of successful order placement in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_changes_total",
		Help: "Order status transitions by target status.",
	}, []string{"status"})
	stockChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_adjustments_total",
		Help: "Stock adjustments by reason.",
	}, []string{"reason"})
	reg.MustRegister(placed, failed, duration, statusChanges, stockChanges)
	return &CheckoutMetrics{
		placed:        placed,
		failed:        failed,
		duration:      duration,
		statusChanges: statusChanges,
		stockChanges:  stockChanges,
	}
}

// ObservePlaced counts a committed order and records how long it took.
func (m *CheckoutMetrics) ObservePlaced(d time.Duration) {
	if m == nil || m.placed == nil {
		return
	}
	m.placed.Inc()
	m.duration.Observe(d.Seconds())
}

// IncFailure counts a failed checkout under its error code.
func (m *CheckoutMetrics) IncFailure(code string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(code)).Inc()
}

// IncStatusChange counts an order moving to status.
func (m *CheckoutMetrics) IncStatusChange(status string) {
	if m == nil || m.statusChanges == nil {
		return
	}
	m.statusChanges.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncStockAdjustment counts a stock change with the given reason (adjust, release).
func (m *CheckoutMetrics) IncStockAdjustment(reason string) {
	if m == nil || m.stockChanges == nil {
		return
	}
	m.stockChanges.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
