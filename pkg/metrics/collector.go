package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/evaluator"
)

// Prometheus Metric descriptor indices and descriptor table, grounded on
// pkg/cgroupstats's collector.go layout.
const (
	maxSlotNumDesc = iota
	totalEdgesDesc
	routedSwitchesDesc
	avgSlotNumDesc
	driverIterationsDesc
	driverAcceptancesDesc
	numDescriptors
)

var descriptors = [numDescriptors]*prometheus.Desc{
	maxSlotNumDesc: prometheus.NewDesc(
		"board_allocator_max_slot_num",
		"Number of time-division slots used by the most recently evaluated allocation.",
		nil, nil,
	),
	totalEdgesDesc: prometheus.NewDesc(
		"board_allocator_total_edges",
		"Sum, over every flow, of the number of edges in its flow graph.",
		nil, nil,
	),
	routedSwitchesDesc: prometheus.NewDesc(
		"board_allocator_routed_switches",
		"Number of distinct switch nodes touched by any pair's routed path.",
		nil, nil,
	),
	avgSlotNumDesc: prometheus.NewDesc(
		"board_allocator_avg_slot_num",
		"Arithmetic mean of per-switch slot counts over the current allocation.",
		nil, nil,
	),
	driverIterationsDesc: prometheus.NewDesc(
		"board_allocator_driver_iterations_total",
		"Number of iterations/generations a search driver has run.",
		[]string{"driver"}, nil,
	),
	driverAcceptancesDesc: prometheus.NewDesc(
		"board_allocator_driver_acceptances_total",
		"Number of iterations/generations that improved a search driver's incumbent or archive.",
		[]string{"driver"}, nil,
	),
}

// Collector is a prometheus.Collector reporting the evaluator's objective
// tuple for the allocator's current state plus per-driver iteration and
// acceptance counters, grounded on pkg/policycollector's
// "collector struct holding live domain state, Describe/Collect reading
// it on demand" shape.
type Collector struct {
	mu sync.Mutex

	haveObjective bool
	objective     evaluator.Objective
	avgSlotNum    float64

	iterations  map[string]uint64
	acceptances map[string]uint64
}

// NewCollector creates an empty Collector; callers drive it with Observe/
// IncIteration/IncAcceptance as a search session progresses.
func NewCollector() *Collector {
	return &Collector{
		iterations:  make(map[string]uint64),
		acceptances: make(map[string]uint64),
	}
}

// Default is the process-wide collector the shell and search drivers
// report into; NewMetricGatherer registers it directly.
var Default = NewCollector()

// Observe records u's current objective tuple and average slot number as
// the latest allocator snapshot to report.
func (c *Collector) Observe(u *allocator.AllocatorUnit) {
	obj := evaluator.Evaluate(u)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.haveObjective = true
	c.objective = obj
	c.avgSlotNum = u.AverageSlotNum()
}

// IncIteration counts one completed iteration/generation of the named
// driver ("alns", "twoopt", "nsga2", "ncga", "spea2").
func (c *Collector) IncIteration(driver string) { c.IncIterations(driver, 1) }

// IncIterations counts n completed iterations/generations of driver at
// once, for a caller that only learns the total after a run completes.
func (c *Collector) IncIterations(driver string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.iterations[driver] += uint64(n)
}

// IncAcceptance counts one iteration/generation of the named driver that
// improved its incumbent or archive.
func (c *Collector) IncAcceptance(driver string) { c.IncAcceptances(driver, 1) }

// IncAcceptances is IncAcceptance's bulk counterpart.
func (c *Collector) IncAcceptances(driver string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.acceptances[driver] += uint64(n)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range descriptors {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.haveObjective {
		ch <- prometheus.MustNewConstMetric(descriptors[maxSlotNumDesc], prometheus.GaugeValue, float64(c.objective.MaxSlotNum))
		ch <- prometheus.MustNewConstMetric(descriptors[totalEdgesDesc], prometheus.GaugeValue, float64(c.objective.TotalEdges))
		ch <- prometheus.MustNewConstMetric(descriptors[routedSwitchesDesc], prometheus.GaugeValue, float64(c.objective.RoutedSwitches))
		ch <- prometheus.MustNewConstMetric(descriptors[avgSlotNumDesc], prometheus.GaugeValue, c.avgSlotNum)
	}
	for driver, n := range c.iterations {
		ch <- prometheus.MustNewConstMetric(descriptors[driverIterationsDesc], prometheus.CounterValue, float64(n), driver)
	}
	for driver, n := range c.acceptances {
		ch <- prometheus.MustNewConstMetric(descriptors[driverAcceptancesDesc], prometheus.CounterValue, float64(n), driver)
	}
}
