package conflict_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hungalab/board-allocator/pkg/conflict"
	"github.com/hungalab/board-allocator/pkg/topology"
)

func TestCrossingFlowsInvariantUnderPermutation(t *testing.T) {
	flows := []conflict.FlowEdges{
		{CVID: 0, Edges: []topology.Edge{{From: 0, To: 1}}},
		{CVID: 1, Edges: []topology.Edge{{From: 0, To: 1}, {From: 1, To: 2}}},
		{CVID: 2, Edges: []topology.Edge{{From: 5, To: 6}}},
	}
	reordered := []conflict.FlowEdges{flows[2], flows[0], flows[1]}

	a := conflict.CrossingFlows(flows)
	b := conflict.CrossingFlows(reordered)
	require.ElementsMatch(t, a, b)
}

func TestCrossingsForFlowMatchesPairCount(t *testing.T) {
	flows := []conflict.FlowEdges{
		{CVID: 0, Edges: []topology.Edge{{From: 0, To: 1}}},
		{CVID: 1, Edges: []topology.Edge{{From: 0, To: 1}}},
		{CVID: 2, Edges: []topology.Edge{{From: 0, To: 1}}},
	}
	pairs := conflict.CrossingFlows(flows)
	require.Len(t, pairs, 3)
	require.Equal(t, 2, conflict.CrossingsForFlow(0, pairs))
}

func TestNoSharedEdgesNoCrossings(t *testing.T) {
	flows := []conflict.FlowEdges{
		{CVID: 0, Edges: []topology.Edge{{From: 0, To: 1}}},
		{CVID: 1, Edges: []topology.Edge{{From: 2, To: 3}}},
	}
	require.Empty(t, conflict.CrossingFlows(flows))
}
