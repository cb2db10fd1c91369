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

func TestMetricsRecordAndServe(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/api/v1/students", 200, 15*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/v1/students", 200, 5*time.Millisecond)
	m.AddMarks(40, 5)
	m.SetFeedConnections(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/students", "200")))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.marks.WithLabelValues("PRESENT")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.feedConnections))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "attendly_attendance_marks_total")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200, time.Millisecond)
		m.AddMarks(1, 1)
		m.SetFeedConnections(1)
	})
}

func TestSeparateInstancesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
