package topology_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hungalab/board-allocator/pkg/topology"
)

// ring4 builds the 4-core ring (0,1)-(1,2)-(2,3)-(3,0) used by scenario S1
// of the allocator's end-to-end tests.
func ring4(t *testing.T, multiEject bool) *topology.Topology {
	t.Helper()
	links := []topology.Link{
		{CoreA: "0", PortA: 0, CoreB: "1", PortB: 0},
		{CoreA: "1", PortA: 1, CoreB: "2", PortB: 0},
		{CoreA: "2", PortA: 1, CoreB: "3", PortB: 0},
		{CoreA: "3", PortA: 1, CoreB: "0", PortB: 1},
	}
	topo, err := topology.New(links, multiEject)
	require.NoError(t, err)
	return topo
}

func TestNewRejectsSelfLink(t *testing.T) {
	_, err := topology.New([]topology.Link{{CoreA: "0", CoreB: "0"}}, false)
	require.Error(t, err)
}

func TestRingHasFourCores(t *testing.T) {
	topo := ring4(t, false)
	require.Equal(t, 4, topo.NumCores())
}

func TestShortestPathsAreMinimumHop(t *testing.T) {
	topo := ring4(t, false)
	s, ok := topo.CoreByLabel("0")
	require.True(t, ok)
	d, ok := topo.CoreByLabel("1")
	require.True(t, ok)

	paths := topo.Paths().Paths(s, d)
	require.NotEmpty(t, paths)
	for _, p := range paths {
		require.Equal(t, s, p[0])
		require.Equal(t, d, p[len(p)-1])
	}

	want := len(paths[0])
	for _, p := range paths {
		require.Equal(t, want, len(p), "all minimum-hop paths must have equal length")
	}
}

func TestMultiEjectionStripsLastHop(t *testing.T) {
	without := ring4(t, false)
	with := ring4(t, true)

	s, _ := without.CoreByLabel("0")
	d, _ := without.CoreByLabel("2")

	plain := without.Paths().Paths(s, d)[0]
	stripped := with.Paths().Paths(s, d)[0]

	require.Equal(t, len(plain)-1, len(stripped))
	require.NotEqual(t, d, stripped[len(stripped)-1], "multi-ejection path must end at the switch, not the core")
	require.Equal(t, with.SwitchOf(d), stripped[len(stripped)-1])
}

func TestSwitchCoreRoundTrip(t *testing.T) {
	topo := ring4(t, false)
	c, _ := topo.CoreByLabel("2")
	sw := topo.SwitchOf(c)
	require.True(t, topo.IsSwitch(sw))
	require.Equal(t, c, topo.CoreOf(sw))
}
