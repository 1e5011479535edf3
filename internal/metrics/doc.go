// Package metrics exposes Prometheus instrumentation for cinephile.
//
// Collectors are registered with the default registry at init time via
// promauto, so `cinephile serve` can publish them on /metrics with
// promhttp.Handler. Recording helpers keep label values consistent across
// the query layer, the trivia client and the HTTP API.
package metrics
