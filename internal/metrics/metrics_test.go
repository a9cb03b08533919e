package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCollectorIsSafe(t *testing.T) {
	var m *Collector
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "200", 0.1)
		m.IncRequestLogDropped()
		m.IncRequestLogFailure()
		m.SetRequestLogQueue(3)
		m.IncRemoteSubmission("ok")
		m.AddPartitionsRemoved(2)
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := NewCollector("test")
	m.ObserveRequest("GET", "200", 0.02)
	m.IncRemoteSubmission("failed")
	m.AddPartitionsRemoved(2)

	// Two collectors never share a registry.
	other := NewCollector("test")
	other.IncRequestLogDropped()

	app := fiber.New()
	app.Get("/metrics", m.Handler())
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)

	assert.Contains(t, body, `test_requests_recorded_total{method="GET",status="200"} 1`)
	assert.Contains(t, body, `test_remote_log_submissions_total{result="failed"} 1`)
	assert.Contains(t, body, "test_request_log_partitions_removed_total 2")
	assert.Contains(t, body, "test_request_log_dropped_total 0")
}
