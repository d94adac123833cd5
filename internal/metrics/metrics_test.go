package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFetch(t *testing.T) {
	m := New()

	m.ObserveFetch("search", "zh", 10, 120*time.Millisecond, nil)
	m.ObserveFetch("search", "zh", 0, 30*time.Millisecond, errors.New("boom"))
	m.ObserveFetch("mostviewed", "en", 7, 80*time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchRequests.WithLabelValues("search", "zh", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchRequests.WithLabelValues("search", "zh", "error")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.ArticlesFetched.WithLabelValues("search")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.ArticlesFetched.WithLabelValues("mostviewed")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveFetch("search", "en", 1, time.Millisecond, nil)
	m.ObserveStale()
	m.ObserveReset()
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveStale()
	m.ObserveReset()
	m.ObserveReset()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "wikr_stale_responses_discarded_total 1"))
	assert.True(t, strings.Contains(body, "wikr_session_resets_total 2"))
}
