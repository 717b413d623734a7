package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry exposes a PerformanceMetrics over HTTP in Prometheus
// exposition format, grounded on
// infrastructure/prometheus/promclient.go's registry-and-handler
// pattern.
type Registry struct {
	perf   *PerformanceMetrics
	reg    *prometheus.Registry
	server *http.Server
	logger *slog.Logger
}

// NewRegistry wires GaugeFunc/CounterFunc collectors that read perf on
// every scrape, so there is no separate bookkeeping to keep in sync.
func NewRegistry(perf *PerformanceMetrics, path string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	reg := prometheus.NewRegistry()

	snap := func() Snapshot { return perf.Snapshot(time.Now()) }

	reg.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "marketdepth_messages_consumed_total",
			Help: "Total messages polled from the ingress bus.",
		}, func() float64 { return float64(snap().MessagesConsumed) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "marketdepth_messages_processed_total",
			Help: "Total snapshots successfully applied to the book registry.",
		}, func() float64 { return float64(snap().MessagesProcessed) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "marketdepth_messages_published_total",
			Help: "Total snapshot/CDC messages published downstream.",
		}, func() float64 { return float64(snap().MessagesPublished) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "marketdepth_processing_errors_total",
			Help: "Total per-message processing failures.",
		}, func() float64 { return float64(snap().ProcessingErrors) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "marketdepth_bus_errors_total",
			Help: "Total non-benign consumer poll errors.",
		}, func() float64 { return float64(snap().BusErrors) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "marketdepth_processing_time_avg_micros",
			Help: "Rolling average processing latency in microseconds.",
		}, func() float64 { return snap().AverageProcessingTimeMicros() }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "marketdepth_processing_time_max_micros",
			Help: "Maximum observed processing latency in microseconds.",
		}, func() float64 { return float64(snap().MaxProcessingTimeMicros) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "marketdepth_processing_time_min_micros",
			Help: "Minimum observed processing latency in microseconds.",
		}, func() float64 { return float64(snap().MinProcessingTimeMicros) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "marketdepth_uptime_seconds",
			Help: "Seconds since the pipeline started.",
		}, func() float64 { return snap().UptimeSeconds }),
		collectors.NewGoCollector(),
	)

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return &Registry{
		perf:   perf,
		reg:    reg,
		logger: logger,
		server: &http.Server{Handler: mux},
	}
}

// Serve starts the exposition HTTP server on addr. It blocks until the
// server stops; callers typically run it in its own goroutine.
func (r *Registry) Serve(addr string) error {
	r.server.Addr = addr
	r.logger.Info("metrics server listening", "addr", addr)
	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics: serve: %w", err)
	}
	return nil
}

// Shutdown stops the exposition server, bounded by ctx.
func (r *Registry) Shutdown(ctx context.Context) error {
	return r.server.Shutdown(ctx)
}
