// Package observability holds the Prometheus metrics exported at /metrics.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "petcare"

// Metrics groups the application counters. A nil *Metrics is valid and records nothing,
// which keeps tests and tools free of registry wiring.
type Metrics struct {
	registry *prometheus.Registry

	// HTTPRequestsTotal labels: method, route, status.
	HTTPRequestsTotal *prometheus.CounterVec
	// BookingsCreatedTotal labels: result (created, deduplicated).
	BookingsCreatedTotal *prometheus.CounterVec
	// WebhookEventsTotal labels: type, result (handled, ignored, error).
	WebhookEventsTotal *prometheus.CounterVec
	// OutboxDeliveriesTotal labels: result (delivered, retry, failed).
	OutboxDeliveriesTotal *prometheus.CounterVec
}

// NewMetrics creates the metrics on a private registry together with the Go runtime collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		BookingsCreatedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "bookings_created_total",
			Help:      "Booking create requests by outcome.",
		}, []string{"result"}),
		WebhookEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "webhook_events_total",
			Help:      "Stripe webhook events by type and outcome.",
		}, []string{"type", "result"}),
		OutboxDeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "outbox_deliveries_total",
			Help:      "Outbox delivery attempts by outcome.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.HTTPRequestsTotal, m.BookingsCreatedTotal, m.WebhookEventsTotal, m.OutboxDeliveriesTotal)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTPRequest counts a served request by method, route template and status.
func (m *Metrics) ObserveHTTPRequest(method, route, status string) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
}

// ObserveBookingCreated counts a booking request, split by whether it was deduplicated.
func (m *Metrics) ObserveBookingCreated(deduplicated bool) {
	if m == nil {
		return
	}
	result := "created"
	if deduplicated {
		result = "deduplicated"
	}
	m.BookingsCreatedTotal.WithLabelValues(result).Inc()
}

// ObserveWebhookEvent counts a Stripe webhook event by type and result.
func (m *Metrics) ObserveWebhookEvent(eventType, result string) {
	if m == nil {
		return
	}
	m.WebhookEventsTotal.WithLabelValues(eventType, result).Inc()
}

// ObserveOutboxDelivery counts an outbox delivery attempt by result.
func (m *Metrics) ObserveOutboxDelivery(result string) {
	if m == nil {
		return
	}
	m.OutboxDeliveriesTotal.WithLabelValues(result).Inc()
}
