// Package metrics provides render and build metrics for hyde.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection needs no nil checks at call sites:
//
//	gen := build.NewGenerator(cfg, build.WithRecorder(metrics.NoopRecorder{}))
//
// PrometheusRecorder backs the interface with client_golang collectors. A
// static site build is a short-lived process, so instead of serving a scrape
// endpoint the recorder writes its registry to a node exporter textfile
// (WriteTextfile) once the run finishes.
package metrics
