// Package metrics provides Prometheus metrics collection for the swapper services.
//
// This package includes:
//   - HTTP request metrics (count, latency, in flight, errors by kind)
//   - Provider quote metrics (per provider outcome and latency, round outcome)
//   - Metrics HTTP server on configurable port
//   - Echo middleware for automatic request instrumentation
//
// Usage:
//
//	metricsServer := metrics.StartMetricsServer(cfg.Metrics, []string{metrics.ServiceHTTP, metrics.ServiceSwapper}, logger)
//	defer metricsServer.Stop(context.Background())
//
//	e.Use(metrics.HTTPMiddleware())
//	svc := swapper.New(set.Registry, cfg.Providers.SwapperConfig(), logger, swapper.WithMetrics(metrics.NewSwapperMetrics()))
package metrics

const namespace = "swapper"

const (
	ServiceHTTP    = "http"
	ServiceSwapper = "swapper"
)
