package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountersExported(t *testing.T) {
	m := New()
	m.OrdersCreated.Inc()
	m.StatusChanges.WithLabelValues("confirmed").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_orders_created_total 1")
	assert.Contains(t, rec.Body.String(), `storefront_order_status_changes_total{status="confirmed"} 1`)
}

func TestIndependentRegistries(t *testing.T) {
	// separate instances must not collide on registration
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
