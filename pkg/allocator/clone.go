package allocator

import "github.com/hungalab/board-allocator/pkg/model"

// Clone returns a structural deep copy of u. The topology and its
// shortest-path table are shared by reference (read-only after
// construction, per §5); every id-keyed record is copied via its own
// Clone, so mutating the copy never aliases the original — the
// arena-and-index layout (§9) makes this a flat buffer copy rather than a
// pointer-graph retrace.
func (u *AllocatorUnit) Clone() *AllocatorUnit {
	cp := &AllocatorUnit{
		topo:      u.topo,
		vnodes:    make(map[model.VNodeID]*model.VNode, len(u.vnodes)),
		pairs:     make(map[model.PairID]*model.Pair, len(u.pairs)),
		flows:     make(map[model.FlowID]*model.Flow, len(u.flows)),
		apps:      make(map[model.AppID]*model.App, len(u.apps)),
		nextVNode: u.nextVNode,
		nextPair:  u.nextPair,
		nextFlow:  u.nextFlow,
		nextApp:   u.nextApp,
	}
	for k, v := range u.vnodes {
		cp.vnodes[k] = v.Clone()
	}
	for k, v := range u.pairs {
		cp.pairs[k] = v.Clone()
	}
	for k, v := range u.flows {
		cp.flows[k] = v.Clone()
	}
	for k, v := range u.apps {
		cp.apps[k] = v.Clone()
	}
	return cp
}
