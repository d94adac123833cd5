// Package metrics exposes fetch and session counters for Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors on a private registry so tests and multiple
// instances don't collide on the global one.
type Metrics struct {
	Registry *prometheus.Registry

	FetchRequests   *prometheus.CounterVec
	FetchDuration   *prometheus.HistogramVec
	ArticlesFetched *prometheus.CounterVec
	StaleDiscarded  prometheus.Counter
	SessionResets   prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		FetchRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wikr_fetch_requests_total",
				Help: "Total number of article API requests",
			},
			[]string{"mode", "lang", "status"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wikr_fetch_duration_seconds",
				Help:    "Article API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		ArticlesFetched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wikr_articles_fetched_total",
				Help: "Total number of articles decoded from API responses",
			},
			[]string{"mode"},
		),
		StaleDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wikr_stale_responses_discarded_total",
			Help: "Responses dropped because a newer request superseded them",
		}),
		SessionResets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wikr_session_resets_total",
			Help: "Number of feed sessions started by query or topic changes",
		}),
	}

	m.Registry.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.ArticlesFetched,
		m.StaleDiscarded,
		m.SessionResets,
	)
	return m
}

// ObserveFetch records one API request. A nil receiver is a no-op.
func (m *Metrics) ObserveFetch(mode, lang string, n int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.FetchRequests.WithLabelValues(mode, lang, status).Inc()
	m.FetchDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	if err == nil {
		m.ArticlesFetched.WithLabelValues(mode).Add(float64(n))
	}
}

func (m *Metrics) ObserveStale() {
	if m == nil {
		return
	}
	m.StaleDiscarded.Inc()
}

func (m *Metrics) ObserveReset() {
	if m == nil {
		return
	}
	m.SessionResets.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
