package allocator_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/topology"
)

// ring4 builds the 4-core ring used by the end-to-end scenarios in §8 of
// the allocator design (S1-S4).
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

func onePairApp() allocator.AppSpec {
	return allocator.AppSpec{
		NumVNodes: 2,
		Flows: []allocator.FlowSpec{
			{Pairs: []allocator.PairSpec{{Src: 0, Dst: 1}}},
		},
	}
}

func TestAddAppThenApply(t *testing.T) {
	u := allocator.New(ring4(t))
	rng := rand.New(rand.NewSource(0))

	ok, err := u.AddApp(onePairApp())
	require.NoError(t, err)
	require.True(t, ok)

	for _, id := range u.AllocatingVNodeList() {
		require.NoError(t, u.RandomNodeAllocation(rng, id, true))
	}
	for _, id := range u.AllocatingPairList() {
		p, err := u.Pair(id)
		require.NoError(t, err)
		if _, ok := p.Path.Get(); !ok {
			require.NoError(t, u.RandomPairAllocation(rng, id))
		}
	}

	require.NoError(t, u.Apply())
	require.Equal(t, 0, u.AllocatingVNodeCount())

	flow, err := u.Flow(0)
	require.NoError(t, err)
	slot, ok := flow.SlotID.Get()
	require.True(t, ok)
	require.Equal(t, 0, slot)
}

func TestDuplicateAddAppCapacityRejected(t *testing.T) {
	u := allocator.New(ring4(t))
	big := allocator.AppSpec{NumVNodes: 3}
	ok, err := u.AddApp(big)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = u.AddApp(big)
	require.NoError(t, err)
	require.False(t, ok, "adding past capacity must be rejected, not mutate")
	require.Equal(t, 3, u.VNodeCount())
}

func TestApplyFreezesAllocatingItems(t *testing.T) {
	u := allocator.New(ring4(t))
	rng := rand.New(rand.NewSource(0))
	ok, err := u.AddApp(onePairApp())
	require.NoError(t, err)
	require.True(t, ok)

	for _, id := range u.AllocatingVNodeList() {
		require.NoError(t, u.RandomNodeAllocation(rng, id, true))
	}
	require.NoError(t, u.Apply())

	v, err := u.VNode(0)
	require.NoError(t, err)
	require.False(t, v.Allocating)

	// A mutating primitive on a frozen vNode is still mechanically callable
	// (primitives don't special-case frozen items per §3(5), callers must
	// not invoke them on frozen items): deallocating the frozen vNode
	// still returns no error.
	require.NoError(t, u.NodeDeallocation(0, true))
}

func TestRemoveAppFreesRNodes(t *testing.T) {
	u := allocator.New(ring4(t))
	rng := rand.New(rand.NewSource(0))
	ok, err := u.AddApp(onePairApp())
	require.NoError(t, err)
	require.True(t, ok)

	for _, id := range u.AllocatingVNodeList() {
		require.NoError(t, u.RandomNodeAllocation(rng, id, false))
	}
	require.Len(t, u.EmptyRNodeSet(), 2)

	require.NoError(t, u.RemoveApp(0))
	require.Equal(t, 0, u.VNodeCount())
	require.Len(t, u.EmptyRNodeSet(), 4)
}
