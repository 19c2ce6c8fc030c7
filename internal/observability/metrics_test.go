package observability

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.ObserveBookingCreated(false)
	m.ObserveBookingCreated(true)
	m.ObserveBookingCreated(true)
	m.ObserveWebhookEvent("checkout.session.completed", "handled")
	m.ObserveOutboxDelivery("delivered")
	m.ObserveHTTPRequest("GET", "/health", "200")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsCreatedTotal.WithLabelValues("created")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingsCreatedTotal.WithLabelValues("deduplicated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WebhookEventsTotal.WithLabelValues("checkout.session.completed", "handled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxDeliveriesTotal.WithLabelValues("delivered")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveBookingCreated(true)
		m.ObserveWebhookEvent("x", "y")
		m.ObserveOutboxDelivery("failed")
		m.ObserveHTTPRequest("GET", "/", "200")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveHTTPRequest("POST", "/api/bookings", "201")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `petcare_http_requests_total{method="POST",route="/api/bookings",status="201"} 1`)
}
