package slotalloc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hungalab/board-allocator/pkg/conflict"
	"github.com/hungalab/board-allocator/pkg/slotalloc"
	"github.com/hungalab/board-allocator/pkg/topology"
)

func triangle() []conflict.FlowEdges {
	// Three flows, pairwise conflicting (a triangle in H): each must get
	// its own slot.
	return []conflict.FlowEdges{
		{CVID: 0, Edges: []topology.Edge{{From: 0, To: 1}}},
		{CVID: 1, Edges: []topology.Edge{{From: 0, To: 1}, {From: 1, To: 2}}},
		{CVID: 2, Edges: []topology.Edge{{From: 1, To: 2}, {From: 2, To: 3}}},
	}
}

func TestGreedyProperColoring(t *testing.T) {
	flows := triangle()
	res := slotalloc.Greedy(flows)
	require.Equal(t, 3, res.MaxSlot)

	pairs := conflict.CrossingFlows(flows)
	for _, p := range pairs {
		require.NotEqual(t, res.Slot[p.A], res.Slot[p.B])
	}
}

func TestGreedyPreservesFixedSlot(t *testing.T) {
	flows := []conflict.FlowEdges{
		{CVID: -3, Edges: []topology.Edge{{From: 0, To: 1}}}, // frozen at slot 2
		{CVID: 0, Edges: []topology.Edge{{From: 2, To: 3}}},  // disjoint, free
	}
	res := slotalloc.Greedy(flows)
	require.Equal(t, 2, res.Slot[-3])
}

func TestExactNeverWorseThanGreedy(t *testing.T) {
	flows := triangle()
	greedy := slotalloc.Greedy(flows)
	exact := slotalloc.Exact(flows)
	require.LessOrEqual(t, exact.MaxSlot, greedy.MaxSlot)
}

func TestExactIndependentSet(t *testing.T) {
	flows := []conflict.FlowEdges{
		{CVID: 0, Edges: []topology.Edge{{From: 0, To: 1}}},
		{CVID: 1, Edges: []topology.Edge{{From: 2, To: 3}}},
	}
	res := slotalloc.Exact(flows)
	require.Equal(t, 1, res.MaxSlot, "two non-conflicting flows should share one slot")
}
