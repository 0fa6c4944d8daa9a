package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Metrics owns its registry so that tests and multiple instances never collide
// on the global one.
type Metrics struct {
	registry *prometheus.Registry

	Checkouts           *prometheus.CounterVec
	OrdersShipped       prometheus.Counter
	NotificationsFailed prometheus.Counter
	Requests            *prometheus.CounterVec
	LatencyMS           *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		OrdersShipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_shipped_total",
			Help:      "Orders moved from Pending to Shipped.",
		}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_failed_total",
			Help:      "Order notifications that could not be delivered.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		m.Checkouts,
		m.OrdersShipped,
		m.NotificationsFailed,
		m.Requests,
		m.LatencyMS,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) CheckoutCompleted(outcome string) {
	m.Checkouts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) OrderShipped() {
	m.OrdersShipped.Inc()
}

func (m *Metrics) NotificationFailed() {
	m.NotificationsFailed.Inc()
}

func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(route).Observe(float64(elapsed) / float64(time.Millisecond))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
