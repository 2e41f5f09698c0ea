package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ShopMetrics records checkout and order lifecycle outcomes.
type ShopMetrics struct {
	checkoutDuration *prometheus.HistogramVec
	checkoutOutcome  *prometheus.CounterVec
	orderTransitions *prometheus.CounterVec
	credentialViews  *prometheus.CounterVec
}

// NewShopMetrics registers the shop metrics on the provided registerer.
func NewShopMetrics(reg prometheus.Registerer) *ShopMetrics {
	if reg == nil {
		return &ShopMetrics{}
	}
	checkoutDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	checkoutOutcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_total",
		Help: "Checkout attempts partitioned by outcome.",
	}, []string{"outcome"})
	orderTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Order status transitions partitioned by target status.",
	}, []string{"status"})
	credentialViews := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "credential_views_total",
		Help: "Credential reveals partitioned by result.",
	}, []string{"result"})
	reg.MustRegister(checkoutDuration, checkoutOutcome, orderTransitions, credentialViews)
	return &ShopMetrics{
		checkoutDuration: checkoutDuration,
		checkoutOutcome:  checkoutOutcome,
		orderTransitions: orderTransitions,
		credentialViews:  credentialViews,
	}
}

// ObserveCheckout records the duration and outcome of a checkout attempt.
func (s *ShopMetrics) ObserveCheckout(outcome string, duration time.Duration) {
	if s == nil || s.checkoutDuration == nil {
		return
	}
	label := normalizeLabel(outcome)
	s.checkoutDuration.WithLabelValues(label).Observe(duration.Seconds())
	s.checkoutOutcome.WithLabelValues(label).Inc()
}

// IncOrderTransition increments the transition counter for the target status.
func (s *ShopMetrics) IncOrderTransition(status string) {
	if s == nil || s.orderTransitions == nil {
		return
	}
	s.orderTransitions.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncCredentialView increments the credential reveal counter.
func (s *ShopMetrics) IncCredentialView(result string) {
	if s == nil || s.credentialViews == nil {
		return
	}
	s.credentialViews.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
