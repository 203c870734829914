// Package allocator implements AllocatorUnit, the central mutable state of
// the board allocator: which vNode sits on which rNode, which pair uses
// which path, which flow holds which slot, plus the invariant-preserving
// primitives that mutate it.
package allocator

import (
	"sort"

	logger "github.com/hungalab/board-allocator/pkg/log"
	"github.com/hungalab/board-allocator/pkg/model"
	"github.com/hungalab/board-allocator/pkg/topology"
)

var log = logger.NewLogger("allocator")

// AllocatorUnit is the central container: the topology, its shortest-path
// table, and id-keyed dictionaries for every vNode/flow/pair/app. Derived
// views (allocating lists, rNode occupancy) are computed on demand, never
// stored.
type AllocatorUnit struct {
	topo *topology.Topology

	vnodes map[model.VNodeID]*model.VNode
	pairs  map[model.PairID]*model.Pair
	flows  map[model.FlowID]*model.Flow
	apps   map[model.AppID]*model.App

	nextVNode model.VNodeID
	nextPair  model.PairID
	nextFlow  model.FlowID
	nextApp   model.AppID
}

// New creates an empty AllocatorUnit over a fixed topology.
func New(topo *topology.Topology) *AllocatorUnit {
	return &AllocatorUnit{
		topo:   topo,
		vnodes: make(map[model.VNodeID]*model.VNode),
		pairs:  make(map[model.PairID]*model.Pair),
		flows:  make(map[model.FlowID]*model.Flow),
		apps:   make(map[model.AppID]*model.App),
	}
}

// Topology returns the (read-only, shareable) physical graph this unit
// allocates against.
func (u *AllocatorUnit) Topology() *topology.Topology { return u.topo }

// PairSpec names two local vNode indices, within the app being added, that
// communicate directly.
type PairSpec struct{ Src, Dst int }

// FlowSpec is one flow's worth of pairs, all sharing the flow's identity.
type FlowSpec struct{ Pairs []PairSpec }

// AppSpec describes an application to add atomically: its vNode count and
// its flows. Flow-label resolution happens at the ingest boundary, not
// here — by the time an AppSpec reaches AllocatorUnit, flow membership is
// already partitioned.
type AppSpec struct {
	NumVNodes int
	Flows     []FlowSpec
}

// AddApp inserts all of spec's records as new, allocating entries. It
// rejects (returning false, nil) rather than mutating when the resulting
// vNode count would exceed the number of core nodes — the "too many
// boards" capacity failure from §7, which is recovered locally, not an
// error return.
func (u *AllocatorUnit) AddApp(spec AppSpec) (bool, error) {
	if len(u.vnodes)+spec.NumVNodes > u.topo.NumCores() {
		return false, nil
	}

	appID := u.nextApp
	app := &model.App{ID: appID}

	localToGlobal := make([]model.VNodeID, spec.NumVNodes)
	for i := 0; i < spec.NumVNodes; i++ {
		id := u.nextVNode
		u.nextVNode++
		u.vnodes[id] = &model.VNode{
			ID:         id,
			App:        appID,
			Allocating: true,
			RNode:      model.None[topology.NodeID](),
		}
		app.VNodes = append(app.VNodes, id)
		localToGlobal[i] = id
	}

	for _, fs := range spec.Flows {
		flowID := u.nextFlow
		u.nextFlow++
		flow := &model.Flow{ID: flowID, App: appID, Allocating: true, SlotID: model.None[int]()}

		for _, ps := range fs.Pairs {
			pairID := u.nextPair
			u.nextPair++
			src, dst := localToGlobal[ps.Src], localToGlobal[ps.Dst]
			u.pairs[pairID] = &model.Pair{
				ID:         pairID,
				Src:        src,
				Dst:        dst,
				Flow:       flowID,
				Allocating: true,
				Path:       model.None[[]topology.NodeID](),
			}
			flow.Pairs = append(flow.Pairs, pairID)
			app.Pairs = append(app.Pairs, pairID)
			u.vnodes[src].SendPairs = append(u.vnodes[src].SendPairs, pairID)
			u.vnodes[dst].RecvPairs = append(u.vnodes[dst].RecvPairs, pairID)
		}
		u.flows[flowID] = flow
		app.Flows = append(app.Flows, flowID)
	}

	u.apps[appID] = app
	u.nextApp++
	log.Debug("added app %d: %d vNodes, %d flows, %d pairs", appID, spec.NumVNodes, len(spec.Flows), len(app.Pairs))
	return true, nil
}

// RemoveApp erases every vNode/flow/pair of appID; their rNodes return to
// the empty set implicitly, since EmptyRNodeSet is a derived view.
func (u *AllocatorUnit) RemoveApp(appID model.AppID) error {
	app, ok := u.apps[appID]
	if !ok {
		return allocError(ErrNoSuchKey, "app %d", appID)
	}
	for _, id := range app.Pairs {
		delete(u.pairs, id)
	}
	for _, id := range app.Flows {
		delete(u.flows, id)
	}
	for _, id := range app.VNodes {
		delete(u.vnodes, id)
	}
	delete(u.apps, appID)
	return nil
}

// VNode looks up a vNode by id.
func (u *AllocatorUnit) VNode(id model.VNodeID) (*model.VNode, error) {
	v, ok := u.vnodes[id]
	if !ok {
		return nil, allocError(ErrNoSuchKey, "vNode %d", id)
	}
	return v, nil
}

// Pair looks up a pair by id.
func (u *AllocatorUnit) Pair(id model.PairID) (*model.Pair, error) {
	p, ok := u.pairs[id]
	if !ok {
		return nil, allocError(ErrNoSuchKey, "pair %d", id)
	}
	return p, nil
}

// Flow looks up a flow by id.
func (u *AllocatorUnit) Flow(id model.FlowID) (*model.Flow, error) {
	f, ok := u.flows[id]
	if !ok {
		return nil, allocError(ErrNoSuchKey, "flow %d", id)
	}
	return f, nil
}

// App looks up an app by id.
func (u *AllocatorUnit) App(id model.AppID) (*model.App, error) {
	a, ok := u.apps[id]
	if !ok {
		return nil, allocError(ErrNoSuchKey, "app %d", id)
	}
	return a, nil
}

// VNodeIDs, PairIDs, FlowIDs and AppIDs return every id of their kind, in
// ascending order, for deterministic iteration by callers (shell listings,
// operators sampling "uniformly" over a stably ordered slice).
func (u *AllocatorUnit) VNodeIDs() []model.VNodeID {
	ids := make([]model.VNodeID, 0, len(u.vnodes))
	for id := range u.vnodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (u *AllocatorUnit) PairIDs() []model.PairID {
	ids := make([]model.PairID, 0, len(u.pairs))
	for id := range u.pairs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (u *AllocatorUnit) FlowIDs() []model.FlowID {
	ids := make([]model.FlowID, 0, len(u.flows))
	for id := range u.flows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (u *AllocatorUnit) AppIDs() []model.AppID {
	ids := make([]model.AppID, 0, len(u.apps))
	for id := range u.apps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// VNodeCount and AllocatingVNodeCount support the "empty operator domain"
// and structural-invariant tests of §8.
func (u *AllocatorUnit) VNodeCount() int { return len(u.vnodes) }

func (u *AllocatorUnit) AllocatingVNodeCount() int {
	n := 0
	for _, v := range u.vnodes {
		if v.Allocating {
			n++
		}
	}
	return n
}
