package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records storefront order flow counters and request latency.
type OrderMetrics struct {
	ordersPlaced    *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	notifyFailures  *prometheus.CounterVec
	feedReconnects  prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders accepted, by payment method.",
	}, []string{"payment_method"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Order status transitions applied.",
	}, []string{"from", "to"})
	notifyFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_failures_total",
		Help: "Transactional email dispatches that failed.",
	}, []string{"kind"})
	feedReconnects := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_feed_reconnects_total",
		Help: "Reconnects of the orders change-feed listener.",
	})
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
	reg.MustRegister(ordersPlaced, transitions, notifyFailures, feedReconnects, requestDuration)
	return &OrderMetrics{
		ordersPlaced:    ordersPlaced,
		transitions:     transitions,
		notifyFailures:  notifyFailures,
		feedReconnects:  feedReconnects,
		requestDuration: requestDuration,
	}
}

// IncOrderPlaced increments the accepted-order counter for a payment method.
func (m *OrderMetrics) IncOrderPlaced(paymentMethod string) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// IncStatusTransition records an applied status transition.
func (m *OrderMetrics) IncStatusTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncNotificationFailure records a failed email dispatch for a notification kind.
func (m *OrderMetrics) IncNotificationFailure(kind string) {
	if m == nil || m.notifyFailures == nil {
		return
	}
	m.notifyFailures.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncFeedReconnect records a change-feed listener reconnect.
func (m *OrderMetrics) IncFeedReconnect() {
	if m == nil || m.feedReconnects == nil {
		return
	}
	m.feedReconnects.Inc()
}

// ObserveRequest records the duration of a handled HTTP request.
func (m *OrderMetrics) ObserveRequest(route, method string, status int, duration time.Duration) {
	if m == nil || m.requestDuration == nil {
		return
	}
	m.requestDuration.
		WithLabelValues(normalizeLabel(route), normalizeLabel(method), strconv.Itoa(status)).
		Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
