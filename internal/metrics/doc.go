// Package metrics records build and stage metrics for siteforge.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metric calls never need nil checks:
//
//	gen := site.NewGenerator(cfg, site.WithRecorder(metrics.NoopRecorder{}))
//
// Serve mode swaps in a PrometheusRecorder and exposes it on /metrics:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	router.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
