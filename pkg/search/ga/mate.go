package ga

import (
	"math/rand"
	"sort"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/model"
	"github.com/hungalab/board-allocator/pkg/topology"
)

// sentinel marks a vNode whose collision forced it to inherit from neither
// parent; buildChild deallocates it and assigns a fresh uniformly random
// board instead.
const sentinel = -1

// Mate produces two children from two parents by uniform masked crossover
// over every allocating vNode's board assignment. galib.py's shared GA base
// class (the DEAP toolbox this was originally registered against) is
// truncated mid-definition in the retrieval pack, so the operator itself is
// built directly from spec §4.6.2's prose: generate two complementary bit
// masks over the sorted allocating vNode ids — whichever parent a vNode is
// NOT drawn from by child 1 is the parent it IS drawn from by child 2 —
// then, before building either child, scan both projected assignments for
// target-board collisions and flip one colliding vNode's bit to the
// sentinel per collision, chosen uniformly. Each child is then built by
// copying parent 0 (a), applying its own (possibly sentinel-patched)
// mask, and randomly reallocating any vNode left unset; every allocating
// pair is re-routed from scratch afterward.
func Mate(rng *rand.Rand, a, b *allocator.AllocatorUnit) (*allocator.AllocatorUnit, *allocator.AllocatorUnit, error) {
	parents := [2]*allocator.AllocatorUnit{a, b}

	ids := append([]model.VNodeID(nil), a.AllocatingVNodeList()...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	maskA := make([]int, len(ids))
	maskB := make([]int, len(ids))
	for i := range ids {
		bit := rng.Intn(2)
		maskA[i] = bit
		maskB[i] = 1 - bit
	}

	projA, haveA, err := project(parents, ids, maskA)
	if err != nil {
		return nil, nil, err
	}
	projB, haveB, err := project(parents, ids, maskB)
	if err != nil {
		return nil, nil, err
	}
	resolveCollisions(rng, maskA, projA, haveA)
	resolveCollisions(rng, maskB, projB, haveB)

	childA, err := buildChild(rng, parents, ids, maskA)
	if err != nil {
		return nil, nil, err
	}
	childB, err := buildChild(rng, parents, ids, maskB)
	if err != nil {
		return nil, nil, err
	}
	return childA, childB, nil
}

// project computes, for every vNode, the rNode its mask-selected parent
// currently has it on; have[i] is false when that parent doesn't have the
// vNode allocated, in which case targets[i] is meaningless.
func project(parents [2]*allocator.AllocatorUnit, ids []model.VNodeID, mask []int) ([]topology.NodeID, []bool, error) {
	targets := make([]topology.NodeID, len(ids))
	have := make([]bool, len(ids))
	for i, id := range ids {
		if mask[i] == sentinel {
			continue
		}
		v, err := parents[mask[i]].VNode(id)
		if err != nil {
			return nil, nil, err
		}
		if r, ok := v.RNode.Get(); ok {
			targets[i], have[i] = r, true
		}
	}
	return targets, have, nil
}

// resolveCollisions flips mask entries to sentinel until no two non-
// sentinel, allocated vNodes project onto the same target rNode. Ties
// within a colliding group are broken by repeatedly picking one uniformly
// at random and sentineling it, which generalizes the "flip one colliding
// bit" rule to groups of more than two.
func resolveCollisions(rng *rand.Rand, mask []int, targets []topology.NodeID, have []bool) {
	for {
		byTarget := make(map[topology.NodeID][]int)
		for i, m := range mask {
			if m == sentinel || !have[i] {
				continue
			}
			byTarget[targets[i]] = append(byTarget[targets[i]], i)
		}
		conflicted := false
		for _, idxs := range byTarget {
			if len(idxs) <= 1 {
				continue
			}
			conflicted = true
			drop := idxs[rng.Intn(len(idxs))]
			mask[drop] = sentinel
			have[drop] = false
		}
		if !conflicted {
			return
		}
	}
}

func buildChild(rng *rand.Rand, parents [2]*allocator.AllocatorUnit, ids []model.VNodeID, mask []int) (*allocator.AllocatorUnit, error) {
	child := parents[0].Clone()

	for _, id := range ids {
		v, err := child.VNode(id)
		if err != nil {
			return nil, err
		}
		if _, ok := v.RNode.Get(); ok {
			if err := child.NodeDeallocation(id, false); err != nil {
				return nil, err
			}
		}
	}

	for i, id := range ids {
		var target topology.NodeID
		haveTarget := false
		if mask[i] != sentinel {
			src := parents[mask[i]]
			v, err := src.VNode(id)
			if err != nil {
				return nil, err
			}
			if r, ok := v.RNode.Get(); ok {
				if _, free := child.EmptyRNodeSet()[r]; free {
					target, haveTarget = r, true
				}
			}
		}
		if haveTarget {
			if err := child.NodeAllocation(rng, id, target, false); err != nil {
				return nil, err
			}
			continue
		}
		if err := child.RandomNodeAllocation(rng, id, false); err != nil {
			return nil, err
		}
	}

	for _, pid := range child.AllocatingPairList() {
		p, err := child.Pair(pid)
		if err != nil {
			return nil, err
		}
		if _, ok := p.Path.Get(); ok {
			if err := child.PairDeallocation(pid); err != nil {
				return nil, err
			}
		}
	}
	for _, pid := range child.AllocatingPairList() {
		if err := child.RandomPairAllocation(rng, pid); err != nil {
			return nil, err
		}
	}

	return child, nil
}
