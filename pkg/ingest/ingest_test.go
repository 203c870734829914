package ingest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/ingest"
	"github.com/hungalab/board-allocator/pkg/topology"
)

func TestParseTopologyFile(t *testing.T) {
	input := `
# a 4-core ring
0 0 1 1
1 0 2 1
2 0 3 1
3 0 0 1
`
	links, err := ingest.ParseTopologyFile(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, links, 4)
	require.Equal(t, topology.Link{CoreA: "0", PortA: 0, CoreB: "1", PortB: 1}, links[0])

	topo, err := topology.New(links, false)
	require.NoError(t, err)
	require.Equal(t, 4, topo.NumCores())
}

func TestParseTopologyFileRejectsSelfLoop(t *testing.T) {
	_, err := ingest.ParseTopologyFile(strings.NewReader("0 0 0 1"))
	require.Error(t, err)
}

func TestParseTopologyFileRejectsMalformedRow(t *testing.T) {
	_, err := ingest.ParseTopologyFile(strings.NewReader("0 0 1"))
	require.Error(t, err)
}

func TestParseCommunicationFile(t *testing.T) {
	input := `
0 1 f0
1 2 f0
2 3 f1
`
	spec, err := ingest.ParseCommunicationFile(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 4, spec.NumVNodes)
	require.Len(t, spec.Flows, 2)
	require.Equal(t, []allocator.PairSpec{{Src: 0, Dst: 1}, {Src: 1, Dst: 2}}, spec.Flows[0].Pairs)
	require.Equal(t, []allocator.PairSpec{{Src: 2, Dst: 3}}, spec.Flows[1].Pairs)
}

func TestParseCommunicationFileRejectsNonIntegerVNode(t *testing.T) {
	_, err := ingest.ParseCommunicationFile(strings.NewReader("a 1 f0"))
	require.Error(t, err)
}
