package ncga_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/search/ncga"
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

func TestRunCyclicProducesANonEmptyParetoFront(t *testing.T) {
	u := allocator.New(ring6(t))
	ok, err := u.AddApp(allocator.AppSpec{
		NumVNodes: 4,
		Flows: []allocator.FlowSpec{
			{Pairs: []allocator.PairSpec{{Src: 0, Dst: 1}}},
			{Pairs: []allocator.PairSpec{{Src: 2, Dst: 3}}},
		},
	})
	require.NoError(t, err)
	require.True(t, ok)

	res, err := ncga.Run(context.Background(), u, ncga.Config{
		Budget: 200 * time.Millisecond, Workers: 2, Seed: 1, ArchiveSize: 8, SortMethod: ncga.Cyclic,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.ParetoFront)
}

func TestRunRandomSortMethodTerminatesWithinBudget(t *testing.T) {
	u := allocator.New(ring6(t))
	ok, err := u.AddApp(allocator.AppSpec{
		NumVNodes: 2,
		Flows:     []allocator.FlowSpec{{Pairs: []allocator.PairSpec{{Src: 0, Dst: 1}}}},
	})
	require.NoError(t, err)
	require.True(t, ok)

	start := time.Now()
	_, err = ncga.Run(context.Background(), u, ncga.Config{
		Budget: 80 * time.Millisecond, Seed: 3, ArchiveSize: 6, SortMethod: ncga.Random,
	})
	require.NoError(t, err)
	require.Less(t, time.Since(start), time.Second)
}
