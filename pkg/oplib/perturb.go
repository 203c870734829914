package oplib

import (
	"math/rand"
	"sort"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/conflict"
	"github.com/hungalab/board-allocator/pkg/model"
	"github.com/hungalab/board-allocator/pkg/slotalloc"
	"github.com/hungalab/board-allocator/pkg/topology"
)

// NodeSwap picks an allocating vNode A uniformly, then a target rNode
// uniformly from EmptyRNodeSet union the rNodes currently used by
// allocating vNodes. If the target already hosts an allocating vNode B, B
// is deallocated and reallocated onto A's former board first; A then moves
// to the target. An empty operator domain (nothing allocating, or no
// candidate target) returns an unchanged copy.
func NodeSwap(rng *rand.Rand, u *allocator.AllocatorUnit) (*allocator.AllocatorUnit, error) {
	cp := u.Clone()

	allocating := cp.AllocatingVNodeList()
	if len(allocating) == 0 {
		return cp, nil
	}
	aID := allocating[rng.Intn(len(allocating))]
	a, err := cp.VNode(aID)
	if err != nil {
		return nil, err
	}
	aOld, hadOld := a.RNode.Get()

	usedByAllocating := make(map[topology.NodeID]model.VNodeID)
	var candidates []topology.NodeID
	for n := range cp.EmptyRNodeSet() {
		candidates = append(candidates, n)
	}
	for _, id := range allocating {
		v, err := cp.VNode(id)
		if err != nil {
			return nil, err
		}
		if r, ok := v.RNode.Get(); ok {
			usedByAllocating[r] = id
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return cp, nil
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
	target := candidates[rng.Intn(len(candidates))]

	bID, occupied := usedByAllocating[target]
	occupied = occupied && bID != aID
	if occupied {
		if err := cp.NodeDeallocation(bID, true); err != nil {
			return nil, err
		}
	}
	if hadOld {
		if err := cp.NodeDeallocation(aID, true); err != nil {
			return nil, err
		}
	}
	if occupied && hadOld {
		if err := cp.NodeAllocation(rng, bID, aOld, true); err != nil {
			return nil, err
		}
	}
	if err := cp.NodeAllocation(rng, aID, target, true); err != nil {
		return nil, err
	}
	return cp, nil
}

// Target names which kind of allocating item BreakAndRepair samples.
type Target int

const (
	TargetNode Target = iota
	TargetPair
)

// BreakAndRepair samples k allocating items of the given kind without
// replacement, deallocates every sampled item, then reallocates each
// uniformly at random. k <= 0 or an empty domain returns an unchanged copy.
func BreakAndRepair(rng *rand.Rand, u *allocator.AllocatorUnit, k int, target Target) (*allocator.AllocatorUnit, error) {
	cp := u.Clone()
	if k <= 0 {
		return cp, nil
	}

	switch target {
	case TargetNode:
		ids := cp.AllocatingVNodeList()
		if len(ids) == 0 {
			return cp, nil
		}
		sample := sampleVNodes(rng, ids, k)
		for _, id := range sample {
			if err := cp.NodeDeallocation(id, true); err != nil {
				return nil, err
			}
		}
		for _, id := range sample {
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
	case TargetPair:
		ids := cp.AllocatingPairList()
		if len(ids) == 0 {
			return cp, nil
		}
		sample := samplePairs(rng, ids, k)
		for _, id := range sample {
			if err := cp.PairDeallocation(id); err != nil {
				return nil, err
			}
		}
		for _, id := range sample {
			if err := cp.RandomPairAllocation(rng, id); err != nil {
				return nil, err
			}
		}
	}
	return cp, nil
}

func sampleVNodes(rng *rand.Rand, ids []model.VNodeID, k int) []model.VNodeID {
	pool := append([]model.VNodeID(nil), ids...)
	if k > len(pool) {
		k = len(pool)
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:k]
}

func samplePairs(rng *rand.Rand, ids []model.PairID, k int) []model.PairID {
	pool := append([]model.PairID(nil), ids...)
	if k > len(pool) {
		k = len(pool)
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:k]
}

// BreakAndRepair2 is the single-flow rip-up neighbor §4.6.1 names as ALNS's
// alternative to BreakAndRepair: it picks one allocating flow uniformly,
// deallocates every one of its pairs that is currently routed, then
// reallocates each uniformly at random (RandomPairAllocation, matching
// BreakAndRepair's TargetPair repair — not InitializeByAssist's scored
// routing, which is BreakAMaximalCliqueAndRepair's repair strategy for a
// whole clique rather than a single flow). An empty operator domain (no
// allocating flow with at least one routed pair) returns an unchanged copy.
func BreakAndRepair2(rng *rand.Rand, u *allocator.AllocatorUnit) (*allocator.AllocatorUnit, error) {
	cp := u.Clone()

	var eligible []model.FlowID
	for _, id := range cp.FlowIDs() {
		f, err := cp.Flow(id)
		if err != nil {
			return nil, err
		}
		if !f.Allocating {
			continue
		}
		for _, pid := range f.Pairs {
			p, err := cp.Pair(pid)
			if err != nil {
				return nil, err
			}
			if p.Allocating {
				if _, has := p.Path.Get(); has {
					eligible = append(eligible, id)
					break
				}
			}
		}
	}
	if len(eligible) == 0 {
		return cp, nil
	}
	chosen, err := cp.Flow(eligible[rng.Intn(len(eligible))])
	if err != nil {
		return nil, err
	}

	var toRoute []model.PairID
	for _, pid := range chosen.Pairs {
		p, err := cp.Pair(pid)
		if err != nil {
			return nil, err
		}
		if !p.Allocating {
			continue
		}
		if _, has := p.Path.Get(); !has {
			continue
		}
		if err := cp.PairDeallocation(pid); err != nil {
			return nil, err
		}
		toRoute = append(toRoute, pid)
	}
	for _, pid := range toRoute {
		if err := cp.RandomPairAllocation(rng, pid); err != nil {
			return nil, err
		}
	}
	return cp, nil
}

// BreakAMaximalCliqueAndRepair enumerates every maximal clique of size >= 2
// in the conflict graph H (edge-sharing only — unlike slotalloc.Greedy/Exact,
// no synthetic fixed-separation edges are added, since H here is exactly the
// conflict detector's graph), picks one uniformly, deallocates every
// still-allocating, currently-routed pair belonging to a flow in that
// clique, and re-routes them in ascending path-length order using
// InitializeByAssist's scoring rule. An empty operator domain (no clique of
// size >= 2) returns an unchanged copy.
func BreakAMaximalCliqueAndRepair(rng *rand.Rand, u *allocator.AllocatorUnit) (*allocator.AllocatorUnit, error) {
	cp := u.Clone()

	inputs := cp.FlowConflictInputs()
	vertices := make([]conflict.CVID, len(inputs))
	for i, f := range inputs {
		vertices[i] = f.CVID
	}
	adj := conflict.Adjacency(vertices, conflict.CrossingFlows(inputs))
	cliques := slotalloc.MaximalCliques(adj, vertices)

	var eligible [][]conflict.CVID
	for _, c := range cliques {
		if len(c) >= 2 {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return cp, nil
	}
	chosen := eligible[rng.Intn(len(eligible))]

	flowByCVID := make(map[conflict.CVID]model.FlowID, len(inputs))
	for _, id := range cp.FlowIDs() {
		f, err := cp.Flow(id)
		if err != nil {
			return nil, err
		}
		flowByCVID[conflict.CVID(f.CVID())] = id
	}

	var toRoute []model.PairID
	for _, cvid := range chosen {
		flowID, ok := flowByCVID[cvid]
		if !ok {
			continue
		}
		f, err := cp.Flow(flowID)
		if err != nil {
			return nil, err
		}
		for _, pid := range f.Pairs {
			p, err := cp.Pair(pid)
			if err != nil {
				return nil, err
			}
			if !p.Allocating {
				continue
			}
			if _, has := p.Path.Get(); !has {
				continue
			}
			if err := cp.PairDeallocation(pid); err != nil {
				return nil, err
			}
			toRoute = append(toRoute, pid)
		}
	}

	sort.SliceStable(toRoute, func(i, j int) bool {
		return pairPathLength(cp, toRoute[i]) < pairPathLength(cp, toRoute[j])
	})
	for _, pid := range toRoute {
		if err := assistRoutePair(rng, cp, pid); err != nil {
			return nil, err
		}
	}
	return cp, nil
}
