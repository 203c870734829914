package model

import "github.com/hungalab/board-allocator/pkg/topology"

// FlowGraph is the union, as a directed graph, of a flow's pairs' paths.
type FlowGraph struct {
	edges map[topology.Edge]struct{}
}

// BuildFlowGraph materializes the union of a set of paths.
func BuildFlowGraph(paths [][]topology.NodeID) *FlowGraph {
	fg := &FlowGraph{edges: make(map[topology.Edge]struct{})}
	for _, p := range paths {
		for i := 0; i+1 < len(p); i++ {
			fg.edges[topology.Edge{From: p[i], To: p[i+1]}] = struct{}{}
		}
	}
	return fg
}

func (fg *FlowGraph) clone() *FlowGraph {
	cp := &FlowGraph{edges: make(map[topology.Edge]struct{}, len(fg.edges))}
	for e := range fg.edges {
		cp.edges[e] = struct{}{}
	}
	return cp
}

// Edges returns the edge set as a slice. Order is unspecified.
func (fg *FlowGraph) Edges() []topology.Edge {
	out := make([]topology.Edge, 0, len(fg.edges))
	for e := range fg.edges {
		out = append(out, e)
	}
	return out
}

// EdgeCount is |flow_graph.edges|, the per-flow contribution to the
// total_edges objective.
func (fg *FlowGraph) EdgeCount() int { return len(fg.edges) }

// HasEdge reports whether e is present in the flow graph.
func (fg *FlowGraph) HasEdge(e topology.Edge) bool {
	_, ok := fg.edges[e]
	return ok
}

// Switches returns the set of switch nodes touched by the flow graph, i.e.
// every endpoint of an edge that topo classifies as a switch.
func (fg *FlowGraph) Switches(topo *topology.Topology) map[topology.NodeID]struct{} {
	out := make(map[topology.NodeID]struct{})
	for e := range fg.edges {
		if topo.IsSwitch(e.From) {
			out[e.From] = struct{}{}
		}
		if topo.IsSwitch(e.To) {
			out[e.To] = struct{}{}
		}
	}
	return out
}
