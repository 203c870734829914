// Package metrics is the Prometheus registry for the allocator's single
// domain collector. The teacher's pkg/metrics registers an arbitrary set of
// named collectors through an init-time RegisterCollector map; this repo
// only ever has the one Collector defined in collector.go, so
// NewMetricGatherer registers it directly instead of carrying a registry
// for collectors that will never exist.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewMetricGatherer builds the gatherer cmd/board-allocator's
// --metrics-addr flag serves over HTTP, with Default (collector.go)
// registered as its sole collector.
func NewMetricGatherer() (prometheus.Gatherer, error) {
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(Default); err != nil {
		return nil, err
	}
	return reg, nil
}
