package evaluator_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/evaluator"
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

// TestScenarioS1 reproduces §8 scenario S1: a 4-core ring, one app with
// two vNodes and one pair, seed 0. After random allocation (without
// apply), exactly one slot is used.
func TestScenarioS1(t *testing.T) {
	u := allocator.New(ring4(t))
	rng := rand.New(rand.NewSource(0))

	ok, err := u.AddApp(allocator.AppSpec{
		NumVNodes: 2,
		Flows:     []allocator.FlowSpec{{Pairs: []allocator.PairSpec{{Src: 0, Dst: 1}}}},
	})
	require.NoError(t, err)
	require.True(t, ok)

	for _, id := range u.AllocatingVNodeList() {
		require.NoError(t, u.RandomNodeAllocation(rng, id, true))
	}
	for _, id := range u.AllocatingPairList() {
		p, _ := u.Pair(id)
		if _, ok := p.Path.Get(); !ok {
			require.NoError(t, u.RandomPairAllocation(rng, id))
		}
	}

	obj := evaluator.Evaluate(u)
	require.Equal(t, 1, obj.MaxSlotNum)
	require.Contains(t, []int{1, 2}, obj.TotalEdges)
}

func TestDominatesRequiresNoWorseAndOneStrictlyBetter(t *testing.T) {
	a := evaluator.Objective{MaxSlotNum: 2, TotalEdges: 5, RoutedSwitches: 3}
	b := evaluator.Objective{MaxSlotNum: 2, TotalEdges: 6, RoutedSwitches: 3}
	require.True(t, a.Dominates(b))
	require.False(t, b.Dominates(a))
	require.False(t, a.Dominates(a))
}
