package allocator

import (
	"github.com/hungalab/board-allocator/pkg/model"
	"github.com/hungalab/board-allocator/pkg/topology"
)

// Snapshot is the full record set behind an AllocatorUnit, exposed so
// pkg/persistence can round-trip a unit through an on-disk format without
// reaching into unexported state. Every field a save/load round trip must
// reproduce exactly (ids, Allocating, RNode, Path, SlotID) is already
// public on the model types themselves; Snapshot just names the four
// collections.
type Snapshot struct {
	VNodes []*model.VNode
	Pairs  []*model.Pair
	Flows  []*model.Flow
	Apps   []*model.App
}

// ToSnapshot captures u's full record set as independent copies (safe for
// a caller to serialize, or to mutate, without aliasing u).
func (u *AllocatorUnit) ToSnapshot() Snapshot {
	snap := Snapshot{
		VNodes: make([]*model.VNode, 0, len(u.vnodes)),
		Pairs:  make([]*model.Pair, 0, len(u.pairs)),
		Flows:  make([]*model.Flow, 0, len(u.flows)),
		Apps:   make([]*model.App, 0, len(u.apps)),
	}
	for _, id := range u.VNodeIDs() {
		snap.VNodes = append(snap.VNodes, u.vnodes[id].Clone())
	}
	for _, id := range u.PairIDs() {
		snap.Pairs = append(snap.Pairs, u.pairs[id].Clone())
	}
	for _, id := range u.FlowIDs() {
		snap.Flows = append(snap.Flows, u.flows[id].Clone())
	}
	for _, id := range u.AppIDs() {
		snap.Apps = append(snap.Apps, u.apps[id].Clone())
	}
	return snap
}

// FromSnapshot rebuilds an AllocatorUnit over topo from a previously
// captured Snapshot, preserving every id and field exactly, and
// re-materializing every frozen flow's flow graph from its pairs' paths
// (the graph itself is never serialized — §9's "lazily materialized"
// field is a cache, not source state).
func FromSnapshot(topo *topology.Topology, snap Snapshot) *AllocatorUnit {
	u := New(topo)
	for _, v := range snap.VNodes {
		cp := v.Clone()
		u.vnodes[cp.ID] = cp
		if cp.ID >= u.nextVNode {
			u.nextVNode = cp.ID + 1
		}
	}
	for _, p := range snap.Pairs {
		cp := p.Clone()
		u.pairs[cp.ID] = cp
		if cp.ID >= u.nextPair {
			u.nextPair = cp.ID + 1
		}
	}
	for _, f := range snap.Flows {
		cp := f.Clone()
		u.flows[cp.ID] = cp
		if cp.ID >= u.nextFlow {
			u.nextFlow = cp.ID + 1
		}
	}
	for _, a := range snap.Apps {
		cp := a.Clone()
		u.apps[cp.ID] = cp
		if cp.ID >= u.nextApp {
			u.nextApp = cp.ID + 1
		}
	}
	for _, f := range u.flows {
		if !f.Allocating {
			f.SetGraph(model.BuildFlowGraph(u.pairPaths(f)))
		}
	}
	return u
}
