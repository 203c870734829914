package alns_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/search/alns"
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

// TestScenarioS1 reproduces §8 scenario S1: a 4-core ring, one app with two
// vNodes and one pair, after add_app and alns(1s) exactly one slot is used.
func TestScenarioS1(t *testing.T) {
	u := allocator.New(ring4(t))
	ok, err := u.AddApp(allocator.AppSpec{
		NumVNodes: 2,
		Flows:     []allocator.FlowSpec{{Pairs: []allocator.PairSpec{{Src: 0, Dst: 1}}}},
	})
	require.NoError(t, err)
	require.True(t, ok)

	res, err := alns.Run(context.Background(), u, alns.Config{Budget: 100 * time.Millisecond, Workers: 2, Seed: 0})
	require.NoError(t, err)
	require.Equal(t, 1, res.BestObjective.MaxSlotNum)
	require.Contains(t, []int{1, 2}, res.BestObjective.TotalEdges)
}

func TestRunNeverWorsensTheSeed(t *testing.T) {
	u := allocator.New(ring4(t))
	ok, err := u.AddApp(allocator.AppSpec{
		NumVNodes: 4,
		Flows: []allocator.FlowSpec{
			{Pairs: []allocator.PairSpec{{Src: 0, Dst: 1}}},
			{Pairs: []allocator.PairSpec{{Src: 1, Dst: 2}}},
			{Pairs: []allocator.PairSpec{{Src: 2, Dst: 3}}},
			{Pairs: []allocator.PairSpec{{Src: 3, Dst: 0}}},
		},
	})
	require.NoError(t, err)
	require.True(t, ok)

	res, err := alns.Run(context.Background(), u, alns.Config{Budget: 150 * time.Millisecond, Workers: 4, Seed: 7})
	require.NoError(t, err)
	require.GreaterOrEqual(t, res.Loops, 0)
	require.NotNil(t, res.Best)
}

func TestRunNodeSwapOnlyTerminatesWithinBudget(t *testing.T) {
	u := allocator.New(ring4(t))
	ok, err := u.AddApp(allocator.AppSpec{
		NumVNodes: 2,
		Flows:     []allocator.FlowSpec{{Pairs: []allocator.PairSpec{{Src: 0, Dst: 1}}}},
	})
	require.NoError(t, err)
	require.True(t, ok)

	start := time.Now()
	_, err = alns.RunNodeSwapOnly(context.Background(), u, alns.Config{Budget: 50 * time.Millisecond, Seed: 1})
	require.NoError(t, err)
	require.Less(t, time.Since(start), time.Second)
}

func TestRunCliqueAwareEmptyDomainStillReturnsAResult(t *testing.T) {
	u := allocator.New(ring4(t))
	ok, err := u.AddApp(allocator.AppSpec{
		NumVNodes: 2,
		Flows:     []allocator.FlowSpec{{Pairs: []allocator.PairSpec{{Src: 0, Dst: 1}}}},
	})
	require.NoError(t, err)
	require.True(t, ok)

	res, err := alns.RunCliqueAware(context.Background(), u, alns.Config{Budget: 50 * time.Millisecond, Seed: 2})
	require.NoError(t, err)
	require.NotNil(t, res.Best)
}
