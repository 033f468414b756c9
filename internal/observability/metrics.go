// Package observability exposes Prometheus metrics for the capture engine
// and the downstream processing pipeline, with an optional local /metrics
// endpoint for daemon mode.
package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every instrument the application records. All methods are
// safe on a nil receiver so callers can wire metrics in optionally.
type Metrics struct {
	registry *prometheus.Registry

	sessionsStarted  prometheus.Counter
	autoStops        prometheus.Counter
	manualStops      prometheus.Counter
	chunksCaptured   prometheus.Counter
	bytesCaptured    prometheus.Counter
	artifactsWritten prometheus.Counter
	captureErrors    prometheus.Counter
	captureLevel     prometheus.Gauge

	providerRequests *prometheus.CounterVec
	providerDuration prometheus.Histogram
	injections       *prometheus.CounterVec
}

// NewMetrics creates a metrics set backed by its own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		sessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "voxcode_sessions_started_total",
			Help: "Number of recording sessions started.",
		}),
		autoStops: factory.NewCounter(prometheus.CounterOpts{
			Name: "voxcode_sessions_autostopped_total",
			Help: "Number of sessions ended by silence detection.",
		}),
		manualStops: factory.NewCounter(prometheus.CounterOpts{
			Name: "voxcode_sessions_stopped_total",
			Help: "Number of sessions ended by a manual stop.",
		}),
		chunksCaptured: factory.NewCounter(prometheus.CounterOpts{
			Name: "voxcode_chunks_captured_total",
			Help: "Number of audio chunks appended to session buffers.",
		}),
		bytesCaptured: factory.NewCounter(prometheus.CounterOpts{
			Name: "voxcode_bytes_captured_total",
			Help: "Total PCM bytes appended to session buffers.",
		}),
		artifactsWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "voxcode_artifacts_written_total",
			Help: "Number of WAV artifacts written to disk.",
		}),
		captureErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "voxcode_capture_errors_total",
			Help: "Number of capture sessions that ended in an error.",
		}),
		captureLevel: factory.NewGauge(prometheus.GaugeOpts{
			Name: "voxcode_capture_level",
			Help: "Most recent audio level of the active session (0-100).",
		}),
		providerRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voxcode_provider_requests_total",
			Help: "Translation requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		providerDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voxcode_provider_request_duration_seconds",
			Help:    "Latency of translation requests.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
		injections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voxcode_injections_total",
			Help: "Text injections by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) SessionStarted() {
	if m != nil {
		m.sessionsStarted.Inc()
	}
}

func (m *Metrics) AutoStopped() {
	if m != nil {
		m.autoStops.Inc()
	}
}

func (m *Metrics) ManualStopped() {
	if m != nil {
		m.manualStops.Inc()
	}
}

func (m *Metrics) ChunkCaptured(bytes int) {
	if m != nil {
		m.chunksCaptured.Inc()
		m.bytesCaptured.Add(float64(bytes))
	}
}

func (m *Metrics) ArtifactWritten() {
	if m != nil {
		m.artifactsWritten.Inc()
	}
}

func (m *Metrics) CaptureError() {
	if m != nil {
		m.captureErrors.Inc()
	}
}

func (m *Metrics) SetCaptureLevel(level int) {
	if m != nil {
		m.captureLevel.Set(float64(level))
	}
}

func (m *Metrics) ProviderRequest(provider string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.providerRequests.WithLabelValues(provider, outcome).Inc()
	m.providerDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) Injection(err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.injections.WithLabelValues(outcome).Inc()
}

// Handler returns an HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is canceled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
