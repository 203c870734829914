package spea2_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/search/spea2"
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

func TestRunProducesANonEmptyParetoFront(t *testing.T) {
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

	res, err := spea2.Run(context.Background(), u, spea2.Config{
		Budget: 200 * time.Millisecond, Workers: 2, Seed: 1, ArchiveSize: 8,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.ParetoFront)
}

func TestRunDefaultMutationProbabilityTerminatesWithinBudget(t *testing.T) {
	u := allocator.New(ring6(t))
	ok, err := u.AddApp(allocator.AppSpec{
		NumVNodes: 2,
		Flows:     []allocator.FlowSpec{{Pairs: []allocator.PairSpec{{Src: 0, Dst: 1}}}},
	})
	require.NoError(t, err)
	require.True(t, ok)

	start := time.Now()
	_, err = spea2.Run(context.Background(), u, spea2.Config{Budget: 80 * time.Millisecond, Seed: 2, ArchiveSize: 6})
	require.NoError(t, err)
	require.Less(t, time.Since(start), time.Second)
}
