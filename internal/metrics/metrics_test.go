package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	// Given: fresh metrics on their own registry
	m := New()

	// When: a few observations are made
	m.IncConnections()
	m.IncConnections()
	m.DecConnections()
	m.SetActiveRooms(3)
	m.ObserveMove("accepted")
	m.ObserveMove("accepted")
	m.ObserveMove("rejected")
	m.ObserveRound("win")
	m.ObserveEvent("updateBoard")

	// Then: the collectors reflect them
	assert.InDelta(t, 1, testutil.ToFloat64(m.Connections), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.ActiveRooms), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.Moves.WithLabelValues("accepted")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Moves.WithLabelValues("rejected")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RoundsFinished.WithLabelValues("win")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.EventsPublished.WithLabelValues("updateBoard")), 0)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveRound("draw")
	m.ObserveMessageLatency(time.Millisecond)

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `connectn_rounds_finished_total{outcome="draw"} 1`)
	assert.Contains(t, recorder.Body.String(), "connectn_message_latency_seconds_count 1")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncConnections()
		m.DecConnections()
		m.SetActiveRooms(1)
		m.ObserveMove("accepted")
		m.ObserveRound("win")
		m.ObserveEvent("gameOver")
		m.ObserveMessageLatency(time.Second)
	})

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
