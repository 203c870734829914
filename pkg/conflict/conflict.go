// Package conflict computes pairwise edge-sharing conflicts between flows.
// Its two routines are pure, deterministic and safe to call from multiple
// goroutines over independent inputs.
package conflict

import "github.com/hungalab/board-allocator/pkg/topology"

// CVID is a flow's canonical vertex id: non-negative while the flow is
// still allocating (equal to its flow id), negative once frozen, encoding
// -(slot_id+1).
type CVID int

// FlowEdges is one flow's contribution to the conflict graph: its cvid and
// the edge set of its materialized (or provisional) flow graph.
type FlowEdges struct {
	CVID  CVID
	Edges []topology.Edge
}

// Pair is an unordered pair of distinct cvids whose edge sets intersect.
type Pair struct {
	A, B CVID
}

func normalize(a, b CVID) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// CrossingFlows returns the set of unordered pairs {i, j}, i != j, whose
// edge sets share at least one edge. It is computed via an inverted index:
// for each edge, the flows using it form a clique of conflicting pairs.
// The result is invariant under permutation of flows.
func CrossingFlows(flows []FlowEdges) []Pair {
	byEdge := make(map[topology.Edge][]CVID)
	for _, f := range flows {
		for _, e := range f.Edges {
			byEdge[e] = append(byEdge[e], f.CVID)
		}
	}

	seen := make(map[Pair]struct{})
	var out []Pair
	for _, cvids := range byEdge {
		for i := 0; i < len(cvids); i++ {
			for j := i + 1; j < len(cvids); j++ {
				if cvids[i] == cvids[j] {
					continue
				}
				p := normalize(cvids[i], cvids[j])
				if _, ok := seen[p]; ok {
					continue
				}
				seen[p] = struct{}{}
				out = append(out, p)
			}
		}
	}
	return out
}

// CrossingsForFlow is |{ j : j != i && edge_set_i ∩ edge_set_j != ∅ }|, used
// as a per-candidate-path tie-breaker during greedy pair placement.
func CrossingsForFlow(i CVID, pairs []Pair) int {
	count := 0
	for _, p := range pairs {
		if p.A == i || p.B == i {
			count++
		}
	}
	return count
}

// Adjacency builds an adjacency-set representation of the conflict graph H
// from a list of conflicting pairs, over the given vertex set. Vertices
// with no recorded conflicts still get an (empty) entry.
func Adjacency(vertices []CVID, pairs []Pair) map[CVID]map[CVID]struct{} {
	adj := make(map[CVID]map[CVID]struct{}, len(vertices))
	for _, v := range vertices {
		adj[v] = make(map[CVID]struct{})
	}
	for _, p := range pairs {
		if adj[p.A] == nil {
			adj[p.A] = make(map[CVID]struct{})
		}
		if adj[p.B] == nil {
			adj[p.B] = make(map[CVID]struct{})
		}
		adj[p.A][p.B] = struct{}{}
		adj[p.B][p.A] = struct{}{}
	}
	return adj
}
