package allocator

import (
	"math/rand"

	"github.com/hungalab/board-allocator/pkg/conflict"
	"github.com/hungalab/board-allocator/pkg/model"
	"github.com/hungalab/board-allocator/pkg/slotalloc"
	"github.com/hungalab/board-allocator/pkg/topology"
	"github.com/pkg/errors"
)

// PairAllocation sets pair.path. The caller guarantees path is drawn from
// the shortest-path table for the pair's current board placement.
func (u *AllocatorUnit) PairAllocation(pairID model.PairID, path []topology.NodeID) error {
	p, err := u.Pair(pairID)
	if err != nil {
		return err
	}
	p.Path = model.Some(append([]topology.NodeID(nil), path...))
	return nil
}

// RandomPairAllocation samples uniformly from path_table[src_rNode][dst_rNode].
func (u *AllocatorUnit) RandomPairAllocation(rng *rand.Rand, pairID model.PairID) error {
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
		return allocError(ErrConsistency, "pair %d: src vNode %d has no rNode", pairID, p.Src)
	}
	dstR, ok := dst.RNode.Get()
	if !ok {
		return allocError(ErrConsistency, "pair %d: dst vNode %d has no rNode", pairID, p.Dst)
	}
	candidates := u.topo.Paths().Paths(srcR, dstR)
	if len(candidates) == 0 {
		return allocError(ErrConsistency, "pair %d: no shortest path from %d to %d", pairID, srcR, dstR)
	}
	return u.PairAllocation(pairID, candidates[rng.Intn(len(candidates))])
}

// PairDeallocation sets pair.path = none.
func (u *AllocatorUnit) PairDeallocation(pairID model.PairID) error {
	p, err := u.Pair(pairID)
	if err != nil {
		return err
	}
	p.Path = model.None[[]topology.NodeID]()
	return nil
}

func (u *AllocatorUnit) incidentPairs(v *model.VNode) []model.PairID {
	out := make([]model.PairID, 0, len(v.SendPairs)+len(v.RecvPairs))
	out = append(out, v.SendPairs...)
	out = append(out, v.RecvPairs...)
	return out
}

func (u *AllocatorUnit) otherEndpoint(p *model.Pair, self model.VNodeID) model.VNodeID {
	if p.Src == self {
		return p.Dst
	}
	return p.Src
}

// NodeAllocation sets vNode.rNode_id = rNodeID. When withPairAlloc is set,
// every incident pair whose other endpoint already has a board gets a
// fresh random path.
func (u *AllocatorUnit) NodeAllocation(rng *rand.Rand, vNodeID model.VNodeID, rNodeID topology.NodeID, withPairAlloc bool) error {
	v, err := u.VNode(vNodeID)
	if err != nil {
		return err
	}
	v.RNode = model.Some(rNodeID)

	if !withPairAlloc {
		return nil
	}
	for _, pid := range u.incidentPairs(v) {
		p := u.pairs[pid]
		other, err := u.VNode(u.otherEndpoint(p, vNodeID))
		if err != nil {
			return err
		}
		if _, ok := other.RNode.Get(); ok {
			if err := u.RandomPairAllocation(rng, pid); err != nil {
				return err
			}
		}
	}
	return nil
}

// RandomNodeAllocation picks uniformly from EmptyRNodeSet.
func (u *AllocatorUnit) RandomNodeAllocation(rng *rand.Rand, vNodeID model.VNodeID, withPairAlloc bool) error {
	empty := u.EmptyRNodeSet()
	if len(empty) == 0 {
		return allocError(ErrConsistency, "no empty rNode available for vNode %d", vNodeID)
	}
	choices := make([]topology.NodeID, 0, len(empty))
	for n := range empty {
		choices = append(choices, n)
	}
	sortNodeIDs(choices)
	chosen := choices[rng.Intn(len(choices))]
	return u.NodeAllocation(rng, vNodeID, chosen, withPairAlloc)
}

// NodeDeallocation clears rNode_id. When withPairDealloc is set, every
// incident pair whose path is set is deallocated too.
func (u *AllocatorUnit) NodeDeallocation(vNodeID model.VNodeID, withPairDealloc bool) error {
	v, err := u.VNode(vNodeID)
	if err != nil {
		return err
	}
	v.RNode = model.None[topology.NodeID]()

	if !withPairDealloc {
		return nil
	}
	for _, pid := range u.incidentPairs(v) {
		p := u.pairs[pid]
		if _, ok := p.Path.Get(); ok {
			if err := u.PairDeallocation(pid); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortNodeIDs(ids []topology.NodeID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// FlowConflictInputs builds the conflict-detector input for every flow
// currently held by this unit: frozen flows contribute their materialized
// flow graph, still-allocating flows get one built on the fly from their
// pairs' current paths.
func (u *AllocatorUnit) FlowConflictInputs() []conflict.FlowEdges {
	out := make([]conflict.FlowEdges, 0, len(u.flows))
	for _, id := range u.FlowIDs() {
		f := u.flows[id]
		g := f.Graph()
		if f.Allocating {
			g = model.BuildFlowGraph(u.pairPaths(f))
		}
		out = append(out, conflict.FlowEdges{CVID: conflict.CVID(f.CVID()), Edges: g.Edges()})
	}
	return out
}

func (u *AllocatorUnit) pairPaths(f *model.Flow) [][]topology.NodeID {
	var out [][]topology.NodeID
	for _, pid := range f.Pairs {
		if path, ok := u.pairs[pid].Path.Get(); ok {
			out = append(out, path)
		}
	}
	return out
}

// Apply verifies invariants, runs greedy slot allocation, then flips
// Allocating to false on every vNode with an rNode, every pair with a
// path, and every flow that received a slot, materializing each newly
// frozen flow's flow graph.
func (u *AllocatorUnit) Apply() error {
	for id, v := range u.vnodes {
		if v.Allocating {
			if _, ok := v.RNode.Get(); !ok {
				return allocError(ErrConsistency, "apply: vNode %d is not yet allocated", id)
			}
		}
	}
	for id, p := range u.pairs {
		if p.Allocating {
			if _, ok := p.Path.Get(); !ok {
				return allocError(ErrConsistency, "apply: pair %d has no path", id)
			}
		}
	}
	if err := u.ConsistencyCheck(); err != nil {
		return errors.Wrap(err, "apply")
	}

	inputs := u.FlowConflictInputs()
	result := slotalloc.Greedy(inputs)
	if err := verifyProperColoring(inputs, result); err != nil {
		return allocError(ErrConsistency, "apply: %v", err)
	}

	for _, f := range u.flows {
		if !f.Allocating {
			continue
		}
		slot, ok := result.Slot[conflict.CVID(f.CVID())]
		if !ok {
			return allocError(ErrConsistency, "apply: flow %d missing from coloring result", f.ID)
		}
		f.SlotID = model.Some(slot)
		f.Allocating = false
		f.SetGraph(model.BuildFlowGraph(u.pairPaths(f)))
	}
	for _, v := range u.vnodes {
		v.Allocating = false
	}
	for _, p := range u.pairs {
		p.Allocating = false
	}

	log.Debug("apply: froze %d flows, max_slot_num=%d", len(u.flows), result.MaxSlot)
	return nil
}

func verifyProperColoring(inputs []conflict.FlowEdges, result slotalloc.Result) error {
	pairs := conflict.CrossingFlows(inputs)
	for _, p := range pairs {
		if result.Slot[p.A] == result.Slot[p.B] {
			return errors.Errorf("flows %d and %d share slot %d despite sharing an edge", p.A, p.B, result.Slot[p.A])
		}
	}
	return nil
}
