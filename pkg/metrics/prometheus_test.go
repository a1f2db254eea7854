package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chrisdamba/skybooker/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_Independent(t *testing.T) {
	a := metrics.NewMetrics("skybooker")
	b := metrics.NewMetrics("skybooker")

	a.BookingsConfirmed.Inc()
	a.SearchesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	a.SearchesTotal.WithLabelValues(metrics.OutcomeFailure).Add(2)
	a.ActiveSessions.Set(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.BookingsConfirmed))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.BookingsConfirmed))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.SearchesTotal.WithLabelValues(metrics.OutcomeFailure)))
	assert.Equal(t, 3.0, testutil.ToFloat64(a.ActiveSessions))
}

func TestHandler(t *testing.T) {
	m := metrics.NewMetrics("skybooker")
	m.TransitionsTotal.WithLabelValues("submit_search").Inc()
	m.SearchDuration.Observe(1.5)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `skybooker_transitions_total{event="submit_search"} 1`)
	assert.Contains(t, string(body), "skybooker_search_duration_seconds_count 1")
	assert.Contains(t, string(body), "skybooker_active_sessions 0")
	assert.Contains(t, string(body), "go_goroutines")
}
