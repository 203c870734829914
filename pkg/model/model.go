// Package model holds the typed records of the allocator's data model:
// VNode, Pair, Flow and App. Every cross-reference is an id, never a
// pointer, so that a deep copy of an AllocatorUnit degenerates to a flat
// copy of id-keyed maps (see the AllocatorUnit package's Clone).
package model

import "github.com/hungalab/board-allocator/pkg/topology"

// VNodeID, PairID, FlowID and AppID are dense, per-kind identifiers. They
// are never reused across packages for different purposes, and all
// back-references between records are expressed through them.
type (
	VNodeID int
	PairID  int
	FlowID  int
	AppID   int
)

// VNode is a virtual endpoint of an application.
type VNode struct {
	ID         VNodeID
	App        AppID
	SendPairs  []PairID
	RecvPairs  []PairID
	RNode      Option[topology.NodeID]
	Allocating bool
}

// Clone returns a deep copy of v; its pair-id slices get their own backing
// arrays so mutating the clone's lists never aliases the original's.
func (v *VNode) Clone() *VNode {
	cp := *v
	cp.SendPairs = append([]PairID(nil), v.SendPairs...)
	cp.RecvPairs = append([]PairID(nil), v.RecvPairs...)
	return &cp
}

// Pair represents one directed vNode->vNode communication, owned by
// exactly one flow.
type Pair struct {
	ID         PairID
	Src, Dst   VNodeID
	Flow       FlowID
	Path       Option[[]topology.NodeID]
	Allocating bool
}

// Clone returns a deep copy of p.
func (p *Pair) Clone() *Pair {
	cp := *p
	if path, ok := p.Path.Get(); ok {
		cp.Path = Some(append([]topology.NodeID(nil), path...))
	}
	return &cp
}

// Flow is a set of pairs sharing the same flow id, forming one logical
// communication tree that occupies exactly one time-division slot once
// frozen.
type Flow struct {
	ID         FlowID
	App        AppID
	Pairs      []PairID
	SlotID     Option[int]
	Allocating bool

	// graph is the lazily materialized union of this flow's pairs' paths.
	// It is only ever populated once the flow is frozen (see AllocatorUnit's
	// apply); nil otherwise.
	graph *FlowGraph
}

// Clone returns a deep copy of f, including its materialized flow graph if
// present.
func (f *Flow) Clone() *Flow {
	cp := *f
	cp.Pairs = append([]PairID(nil), f.Pairs...)
	if f.graph != nil {
		cp.graph = f.graph.clone()
	}
	return &cp
}

// CVID is the canonical vertex id used by the conflict detector and slot
// allocator: non-negative while still allocating (equal to the flow id),
// negative once frozen, encoding the previously assigned slot as
// -(slot_id+1).
func (f *Flow) CVID() int {
	if f.Allocating {
		return int(f.ID)
	}
	slot, ok := f.SlotID.Get()
	if !ok {
		// A frozen flow without a slot id violates invariant §3(3); callers
		// that maintain that invariant never observe this branch.
		return int(f.ID)
	}
	return -(slot + 1)
}

// Graph returns the flow's materialized flow graph, or nil if it has not
// been built yet (always nil while Allocating, per invariant §3(4): a
// frozen flow's graph equals the union of its pairs' paths).
func (f *Flow) Graph() *FlowGraph { return f.graph }

// SetGraph installs a freshly built flow graph; used by AllocatorUnit.apply
// when freezing a flow.
func (f *Flow) SetGraph(g *FlowGraph) { f.graph = g }

// App is a bundle of vNodes, flows and pairs added atomically.
type App struct {
	ID     AppID
	VNodes []VNodeID
	Flows  []FlowID
	Pairs  []PairID
}

// Clone returns a deep copy of a.
func (a *App) Clone() *App {
	cp := *a
	cp.VNodes = append([]VNodeID(nil), a.VNodes...)
	cp.Flows = append([]FlowID(nil), a.Flows...)
	cp.Pairs = append([]PairID(nil), a.Pairs...)
	return &cp
}
