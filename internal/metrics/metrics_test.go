package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	return rec.Body.String()
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.OperationApplied("private", "createUser")
	m.OperationApplied("private", "createUser")
	m.OperationApplied("public", "createRecord")
	m.ViewReset("private")
	m.PairingRequest("accepted")
	m.SetConnections(3)

	body := scrape(t, m)
	for _, line := range []string{
		`mneme_store_operations_applied_total{namespace="private",type="createUser"} 2`,
		`mneme_store_operations_applied_total{namespace="public",type="createRecord"} 1`,
		`mneme_store_view_resets_total{namespace="private"} 1`,
		`mneme_pairing_requests_total{outcome="accepted"} 1`,
		`mneme_swarm_connections 3`,
	} {
		assert.Contains(t, body, line)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.OperationApplied("private", "createUser")
		m.ViewReset("private")
		m.PairingRequest("accepted")
		m.SetConnections(1)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.OperationApplied("private", "createRecord")

	body := scrape(t, m)
	assert.Contains(t, body, `mneme_store_operations_applied_total{namespace="private",type="createRecord"} 1`)
	assert.Contains(t, body, "go_goroutines")
}
