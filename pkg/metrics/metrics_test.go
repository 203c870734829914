package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/metrics"
	"github.com/hungalab/board-allocator/pkg/topology"
)

func ring4(t *testing.T) *topology.Topology {
	t.Helper()
	links := []topology.Link{
		{CoreA: "0", CoreB: "1"},
		{CoreA: "1", CoreB: "2"},
		{CoreA: "2", CoreB: "3"},
		{CoreA: "3", CoreB: "0"},
	}
	topo, err := topology.New(links, false)
	require.NoError(t, err)
	return topo
}

func gather(t *testing.T, c *metrics.Collector) map[string]*prometheus.MetricFamily {
	t.Helper()
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))
	mfs, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*prometheus.MetricFamily, len(mfs))
	for _, mf := range mfs {
		out[mf.GetName()] = mf
	}
	return out
}

func TestCollectorReportsDriverCounters(t *testing.T) {
	c := metrics.NewCollector()
	c.IncIteration("alns")
	c.IncIterations("alns", 2)
	c.IncAcceptance("alns")

	mfs := gather(t, c)
	iterations := mfs["board_allocator_driver_iterations_total"]
	require.NotNil(t, iterations)
	require.Len(t, iterations.GetMetric(), 1)
	require.Equal(t, float64(3), iterations.GetMetric()[0].GetCounter().GetValue())

	acceptances := mfs["board_allocator_driver_acceptances_total"]
	require.NotNil(t, acceptances)
	require.Equal(t, float64(1), acceptances.GetMetric()[0].GetCounter().GetValue())

	require.Nil(t, mfs["board_allocator_max_slot_num"], "objective gauges should not report until Observe is called")
}

func TestCollectorReportsObjectiveOnceObserved(t *testing.T) {
	c := metrics.NewCollector()
	u := allocator.New(ring4(t))
	c.Observe(u)

	mfs := gather(t, c)
	maxSlotNum := mfs["board_allocator_max_slot_num"]
	require.NotNil(t, maxSlotNum)
	require.Len(t, maxSlotNum.GetMetric(), 1)
}

func TestNewMetricGathererRegistersTheDefaultCollector(t *testing.T) {
	metrics.Default.IncIteration("twoopt")

	g, err := metrics.NewMetricGatherer()
	require.NoError(t, err)
	mfs, err := g.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range mfs {
		if mf.GetName() == "board_allocator_driver_iterations_total" {
			found = true
		}
	}
	require.True(t, found)
}
