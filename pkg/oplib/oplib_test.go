package oplib_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/oplib"
	"github.com/hungalab/board-allocator/pkg/topology"
)

func ring6(t *testing.T) *topology.Topology {
	t.Helper()
	links := []topology.Link{
		{CoreA: "0", CoreB: "1"},
		{CoreA: "1", CoreB: "2"},
		{CoreA: "2", CoreB: "3"},
		{CoreA: "3", CoreB: "4"},
		{CoreA: "4", CoreB: "5"},
		{CoreA: "5", CoreB: "0"},
	}
	topo, err := topology.New(links, false)
	require.NoError(t, err)
	return topo
}

func twoFlowApp() allocator.AppSpec {
	return allocator.AppSpec{
		NumVNodes: 4,
		Flows: []allocator.FlowSpec{
			{Pairs: []allocator.PairSpec{{Src: 0, Dst: 1}}},
			{Pairs: []allocator.PairSpec{{Src: 2, Dst: 3}}},
		},
	}
}

func TestGenerateInitialSolutionAllocatesEveryVNode(t *testing.T) {
	u := allocator.New(ring6(t))
	ok, err := u.AddApp(twoFlowApp())
	require.NoError(t, err)
	require.True(t, ok)

	rng := rand.New(rand.NewSource(1))
	cp, err := oplib.GenerateInitialSolution(rng, u)
	require.NoError(t, err)

	for _, id := range cp.AllocatingVNodeList() {
		v, err := cp.VNode(id)
		require.NoError(t, err)
		_, ok := v.RNode.Get()
		require.True(t, ok, "vNode %d should have a board", id)
	}
	// input unmodified
	require.Equal(t, 0, u.VNodeCount()-u.AllocatingVNodeCount()) // all still allocating on u
	for _, id := range u.AllocatingVNodeList() {
		v, err := u.VNode(id)
		require.NoError(t, err)
		_, ok := v.RNode.Get()
		require.False(t, ok, "original unit must not be mutated")
	}
}

func TestInitializeByAssistRoutesEveryPair(t *testing.T) {
	u := allocator.New(ring6(t))
	ok, err := u.AddApp(twoFlowApp())
	require.NoError(t, err)
	require.True(t, ok)

	rng := rand.New(rand.NewSource(2))
	cp, err := oplib.InitializeByAssist(rng, u)
	require.NoError(t, err)

	for _, id := range cp.AllocatingPairList() {
		p, err := cp.Pair(id)
		require.NoError(t, err)
		_, ok := p.Path.Get()
		require.True(t, ok, "pair %d should be routed", id)
	}
}

func TestNodeSwapPreservesAllocatedRNodeMultiset(t *testing.T) {
	u := allocator.New(ring6(t))
	ok, err := u.AddApp(twoFlowApp())
	require.NoError(t, err)
	require.True(t, ok)

	rng := rand.New(rand.NewSource(3))
	cp, err := oplib.GenerateInitialSolution(rng, u)
	require.NoError(t, err)

	before := rNodeSet(t, cp)
	cp2, err := oplib.NodeSwap(rng, cp)
	require.NoError(t, err)
	after := rNodeSet(t, cp2)

	require.Equal(t, before, after)
}

func rNodeSet(t *testing.T, u *allocator.AllocatorUnit) map[topology.NodeID]struct{} {
	t.Helper()
	out := make(map[topology.NodeID]struct{})
	for _, id := range u.VNodeIDs() {
		v, err := u.VNode(id)
		require.NoError(t, err)
		if r, ok := v.RNode.Get(); ok {
			out[r] = struct{}{}
		}
	}
	return out
}

func TestBreakAndRepairEmptyDomainIsNoop(t *testing.T) {
	u := allocator.New(ring6(t))
	ok, err := u.AddApp(twoFlowApp())
	require.NoError(t, err)
	require.True(t, ok)

	rng := rand.New(rand.NewSource(4))
	cp, err := oplib.BreakAndRepair(rng, u, 0, oplib.TargetNode)
	require.NoError(t, err)
	require.Equal(t, u.AllocatingVNodeCount(), cp.AllocatingVNodeCount())
}

func TestBreakAndRepairPreservesAllocatingCount(t *testing.T) {
	u := allocator.New(ring6(t))
	ok, err := u.AddApp(twoFlowApp())
	require.NoError(t, err)
	require.True(t, ok)

	rng := rand.New(rand.NewSource(5))
	cp, err := oplib.GenerateInitialSolution(rng, u)
	require.NoError(t, err)

	cp2, err := oplib.BreakAndRepair(rng, cp, 2, oplib.TargetNode)
	require.NoError(t, err)
	require.Equal(t, cp.AllocatingVNodeCount(), cp2.AllocatingVNodeCount())
}

func TestBreakAMaximalCliqueAndRepairEmptyDomainIsNoop(t *testing.T) {
	u := allocator.New(ring6(t))
	ok, err := u.AddApp(twoFlowApp())
	require.NoError(t, err)
	require.True(t, ok)

	rng := rand.New(rand.NewSource(6))
	// With nothing routed yet, H has no edges and therefore no clique of
	// size >= 2.
	cp, err := oplib.BreakAMaximalCliqueAndRepair(rng, u)
	require.NoError(t, err)
	require.Equal(t, u.AllocatingPairList(), cp.AllocatingPairList())
}

func TestBreakAndRepair2EmptyDomainIsNoop(t *testing.T) {
	u := allocator.New(ring6(t))
	ok, err := u.AddApp(twoFlowApp())
	require.NoError(t, err)
	require.True(t, ok)

	rng := rand.New(rand.NewSource(7))
	// Nothing is routed yet, so no flow is eligible for rip-up.
	cp, err := oplib.BreakAndRepair2(rng, u)
	require.NoError(t, err)
	require.Equal(t, u.AllocatingPairList(), cp.AllocatingPairList())
}

func TestBreakAndRepair2PreservesAllocatingPairCount(t *testing.T) {
	u := allocator.New(ring6(t))
	ok, err := u.AddApp(twoFlowApp())
	require.NoError(t, err)
	require.True(t, ok)

	rng := rand.New(rand.NewSource(8))
	cp, err := oplib.GenerateInitialSolution(rng, u)
	require.NoError(t, err)

	cp2, err := oplib.BreakAndRepair2(rng, cp)
	require.NoError(t, err)
	require.Equal(t, cp.AllocatingPairList(), cp2.AllocatingPairList())
	for _, pid := range cp2.AllocatingPairList() {
		p, err := cp2.Pair(pid)
		require.NoError(t, err)
		_, has := p.Path.Get()
		require.True(t, has, "every allocating pair must be routed after repair")
	}
}
