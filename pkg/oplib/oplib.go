// Package oplib is the allocator's functional operator library. Every
// operator takes an AllocatorUnit, structurally copies it (AllocatorUnit.Clone),
// mutates only the copy via the allocator's invariant-preserving primitives,
// and returns the copy — the input is never modified. Flow-graph and slot
// recomputation is left lazy (see allocator.FlowConflictInputs and
// evaluator.Evaluate), rather than cached and explicitly invalidated, so an
// operator never needs a separate "rebuild" step after it changes a path.
package oplib

import (
	"math/rand"
	"sort"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/conflict"
	"github.com/hungalab/board-allocator/pkg/model"
	"github.com/hungalab/board-allocator/pkg/topology"
)

// GenerateInitialSolution gives every allocating vNode without a board a
// uniformly random one, with its incident pairs auto-routed as their other
// endpoint becomes available. An empty operator domain (nothing allocating)
// returns an unchanged copy.
func GenerateInitialSolution(rng *rand.Rand, u *allocator.AllocatorUnit) (*allocator.AllocatorUnit, error) {
	cp := u.Clone()
	for _, id := range cp.AllocatingVNodeList() {
		v, err := cp.VNode(id)
		if err != nil {
			return nil, err
		}
		if _, ok := v.RNode.Get(); ok {
			continue
		}
		if err := cp.RandomNodeAllocation(rng, id, true); err != nil {
			return nil, err
		}
	}
	return cp, nil
}

// InitializeByAssist places every unallocated vNode on a uniformly random
// board (without the auto pair-routing GenerateInitialSolution uses), then
// routes every unrouted pair in ascending shortest-path-length order,
// scoring each candidate path by how many other flows it would newly
// conflict with, then by the resulting flow graph's total edge count —
// lexicographically smallest wins, ties broken uniformly at random.
func InitializeByAssist(rng *rand.Rand, u *allocator.AllocatorUnit) (*allocator.AllocatorUnit, error) {
	cp := u.Clone()

	for _, id := range cp.AllocatingVNodeList() {
		v, err := cp.VNode(id)
		if err != nil {
			return nil, err
		}
		if _, ok := v.RNode.Get(); ok {
			continue
		}
		if err := cp.RandomNodeAllocation(rng, id, false); err != nil {
			return nil, err
		}
	}

	var toRoute []model.PairID
	for _, id := range cp.AllocatingPairList() {
		p, err := cp.Pair(id)
		if err != nil {
			return nil, err
		}
		if _, ok := p.Path.Get(); ok {
			continue
		}
		toRoute = append(toRoute, id)
	}
	sort.SliceStable(toRoute, func(i, j int) bool {
		return pairPathLength(cp, toRoute[i]) < pairPathLength(cp, toRoute[j])
	})

	for _, id := range toRoute {
		if err := assistRoutePair(rng, cp, id); err != nil {
			return nil, err
		}
	}
	return cp, nil
}

// pairPathLength is the node count (hop count plus one) of any shortest
// path between a pair's endpoints (all candidates in the shortest-path
// table share a length), or
// 0 if either endpoint has no board yet.
func pairPathLength(u *allocator.AllocatorUnit, pairID model.PairID) int {
	p, err := u.Pair(pairID)
	if err != nil {
		return 0
	}
	src, err := u.VNode(p.Src)
	if err != nil {
		return 0
	}
	dst, err := u.VNode(p.Dst)
	if err != nil {
		return 0
	}
	srcR, ok := src.RNode.Get()
	if !ok {
		return 0
	}
	dstR, ok := dst.RNode.Get()
	if !ok {
		return 0
	}
	candidates := u.Topology().Paths().Paths(srcR, dstR)
	if len(candidates) == 0 {
		return 0
	}
	return len(candidates[0])
}

// assistRoutePair enumerates every shortest candidate path for pairID,
// scores each by (conflicts with other flows, this flow's resulting total
// edge count), and installs the lexicographically smallest, breaking ties
// uniformly at random.
func assistRoutePair(rng *rand.Rand, u *allocator.AllocatorUnit, pairID model.PairID) error {
	p, err := u.Pair(pairID)
	if err != nil {
		return err
	}
	src, err := u.VNode(p.Src)
	if err != nil {
		return err
	}
	dst, err := u.VNode(p.Dst)
	if err != nil {
		return err
	}
	srcR, ok := src.RNode.Get()
	if !ok {
		return allocatorNoRNode(p.Src)
	}
	dstR, ok := dst.RNode.Get()
	if !ok {
		return allocatorNoRNode(p.Dst)
	}
	candidates := u.Topology().Paths().Paths(srcR, dstR)
	if len(candidates) == 0 {
		return allocatorNoPath(pairID, srcR, dstR)
	}

	f, err := u.Flow(p.Flow)
	if err != nil {
		return err
	}
	others := otherFlowEdges(u, f.ID)

	type candidate struct {
		path      []topology.NodeID
		conflicts int
		edges     int
	}
	var best []candidate
	for _, cand := range candidates {
		conflicts, edges := scoreCandidate(u, f, pairID, cand, others)
		switch {
		case len(best) == 0 || conflicts < best[0].conflicts || (conflicts == best[0].conflicts && edges < best[0].edges):
			best = []candidate{{cand, conflicts, edges}}
		case conflicts == best[0].conflicts && edges == best[0].edges:
			best = append(best, candidate{cand, conflicts, edges})
		}
	}
	chosen := best[rng.Intn(len(best))].path
	return u.PairAllocation(pairID, chosen)
}

// otherFlowEdges is the conflict-detector input for every flow except
// exclude, as currently routed.
func otherFlowEdges(u *allocator.AllocatorUnit, exclude model.FlowID) []conflict.FlowEdges {
	all := u.FlowConflictInputs()
	f, err := u.Flow(exclude)
	if err != nil {
		return all
	}
	excludeCVID := conflict.CVID(f.CVID())
	out := make([]conflict.FlowEdges, 0, len(all))
	for _, fe := range all {
		if fe.CVID == excludeCVID {
			continue
		}
		out = append(out, fe)
	}
	return out
}

// scoreCandidate reports (conflicts, edges) for f's flow graph if pairID's
// path were candidate: conflicts is how many other flows' edge sets that
// graph would intersect, edges is the graph's own total edge count.
func scoreCandidate(u *allocator.AllocatorUnit, f *model.Flow, pairID model.PairID, candidate []topology.NodeID, others []conflict.FlowEdges) (int, int) {
	paths := flowPairPaths(u, f, pairID, candidate)
	g := model.BuildFlowGraph(paths)
	edges := g.EdgeCount()

	cvid := conflict.CVID(f.CVID())
	inputs := make([]conflict.FlowEdges, 0, len(others)+1)
	inputs = append(inputs, others...)
	inputs = append(inputs, conflict.FlowEdges{CVID: cvid, Edges: g.Edges()})

	pairs := conflict.CrossingFlows(inputs)
	conflicts := conflict.CrossingsForFlow(cvid, pairs)
	return conflicts, edges
}

// flowPairPaths is f's pairs' current paths, with pairID's path replaced by
// override regardless of what (if anything) it currently holds.
func flowPairPaths(u *allocator.AllocatorUnit, f *model.Flow, pairID model.PairID, override []topology.NodeID) [][]topology.NodeID {
	out := make([][]topology.NodeID, 0, len(f.Pairs))
	for _, pid := range f.Pairs {
		if pid == pairID {
			out = append(out, override)
			continue
		}
		p, err := u.Pair(pid)
		if err != nil {
			continue
		}
		if path, ok := p.Path.Get(); ok {
			out = append(out, path)
		}
	}
	return out
}
