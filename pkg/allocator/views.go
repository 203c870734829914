package allocator

import (
	"github.com/hungalab/board-allocator/pkg/model"
	"github.com/hungalab/board-allocator/pkg/slotalloc"
	"github.com/hungalab/board-allocator/pkg/topology"
)

// AllocatingVNodeList filters vNodes by Allocating == true, in ascending
// id order.
func (u *AllocatorUnit) AllocatingVNodeList() []model.VNodeID {
	var out []model.VNodeID
	for _, id := range u.VNodeIDs() {
		if u.vnodes[id].Allocating {
			out = append(out, id)
		}
	}
	return out
}

// AllocatingPairList filters pairs by Allocating == true, in ascending id
// order.
func (u *AllocatorUnit) AllocatingPairList() []model.PairID {
	var out []model.PairID
	for _, id := range u.PairIDs() {
		if u.pairs[id].Allocating {
			out = append(out, id)
		}
	}
	return out
}

// TempAllocatedRNodeDict maps rNode -> vNode for every currently-allocating
// vNode that already has a board.
func (u *AllocatorUnit) TempAllocatedRNodeDict() map[topology.NodeID]model.VNodeID {
	out := make(map[topology.NodeID]model.VNodeID)
	for id, v := range u.vnodes {
		if !v.Allocating {
			continue
		}
		if r, ok := v.RNode.Get(); ok {
			out[r] = id
		}
	}
	return out
}

// EmptyRNodeSet is core_nodes minus every rNode currently assigned to any
// vNode, allocating or frozen.
func (u *AllocatorUnit) EmptyRNodeSet() map[topology.NodeID]struct{} {
	used := make(map[topology.NodeID]struct{})
	for _, v := range u.vnodes {
		if r, ok := v.RNode.Get(); ok {
			used[r] = struct{}{}
		}
	}
	out := make(map[topology.NodeID]struct{})
	for c := topology.NodeID(0); c < topology.NodeID(u.topo.NumCores()); c++ {
		if _, ok := used[c]; !ok {
			out[c] = struct{}{}
		}
	}
	return out
}

// AverageSlotNum is a read-only diagnostic, not an objective dimension
// (the evaluator's weights are a fixed 3-tuple): the arithmetic mean of
// per-switch slot counts over every frozen flow's assigned slot, per
// slotalloc.AverageSlotNum.
func (u *AllocatorUnit) AverageSlotNum() float64 {
	flowsBySlot := make(map[int][]*model.Flow)
	for _, f := range u.flows {
		if s, ok := f.SlotID.Get(); ok {
			flowsBySlot[s] = append(flowsBySlot[s], f)
		}
	}
	return slotalloc.AverageSlotNum(u.topo, flowsBySlot)
}

// ConsistencyCheck recomputes the set of rNodes in use, asserts
// injectivity of the vNode->rNode mapping, and for each pair with a
// non-none path asserts its endpoints against invariant §3(2).
func (u *AllocatorUnit) ConsistencyCheck() error {
	seen := make(map[topology.NodeID]model.VNodeID)
	for id, v := range u.vnodes {
		r, ok := v.RNode.Get()
		if !ok {
			continue
		}
		if other, exists := seen[r]; exists {
			return allocError(ErrConsistency, "rNode %d is assigned to both vNode %d and vNode %d", r, other, id)
		}
		seen[r] = id
	}

	for id, p := range u.pairs {
		path, ok := p.Path.Get()
		if !ok {
			continue
		}
		src, dst := u.vnodes[p.Src], u.vnodes[p.Dst]
		srcR, ok := src.RNode.Get()
		if !ok || len(path) == 0 || path[0] != srcR {
			return allocError(ErrConsistency, "pair %d: path does not start at src vNode %d's rNode", id, p.Src)
		}
		dstR, ok := dst.RNode.Get()
		if !ok {
			return allocError(ErrConsistency, "pair %d: dst vNode %d has no rNode", id, p.Dst)
		}
		last := path[len(path)-1]
		if last == dstR {
			continue
		}
		if last == u.topo.SwitchOf(dstR) && u.topo.MultiEjection(topology.Edge{From: last, To: dstR}) {
			continue
		}
		return allocError(ErrConsistency, "pair %d: path does not terminate at dst vNode %d's rNode", id, p.Dst)
	}
	return nil
}
