// Package evaluator computes the allocator's fixed, three-element
// minimization objective over an AllocatorUnit snapshot.
package evaluator

import (
	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/slotalloc"
	"github.com/hungalab/board-allocator/pkg/topology"
)

// Objective is the fixed vector of objectives, all minimized with weight
// -1: max_slot_num, total_edges, routed_switches. It is a closed tagged
// set, not a plugin surface — the drivers compare its fields directly
// rather than iterating an open objective list.
type Objective struct {
	MaxSlotNum     int
	TotalEdges     int
	RoutedSwitches int
}

// Weights names the fixed minimization weight for every objective
// dimension, in the same order as Objective's fields.
var Weights = [3]float64{-1, -1, -1}

// Evaluate runs greedy slot allocation over u (without mutating u, since
// slotalloc.Greedy is pure) and reports the resulting objective vector.
func Evaluate(u *allocator.AllocatorUnit) Objective {
	inputs := u.FlowConflictInputs()
	result := slotalloc.Greedy(inputs)

	totalEdges := 0
	for _, f := range inputs {
		totalEdges += len(f.Edges)
	}

	switches := make(map[topology.NodeID]struct{})
	for _, id := range u.PairIDs() {
		p, err := u.Pair(id)
		if err != nil {
			continue
		}
		path, ok := p.Path.Get()
		if !ok {
			continue
		}
		for _, n := range path {
			if u.Topology().IsSwitch(n) {
				switches[n] = struct{}{}
			}
		}
	}

	return Objective{
		MaxSlotNum:     result.MaxSlot,
		TotalEdges:     totalEdges,
		RoutedSwitches: len(switches),
	}
}

// Less reports whether a strictly improves on b under the lexicographic
// order (max_slot_num, then total_edges) the ALNS driver's acceptance test
// uses.
func (a Objective) Less(b Objective) bool {
	if a.MaxSlotNum != b.MaxSlotNum {
		return a.MaxSlotNum < b.MaxSlotNum
	}
	return a.TotalEdges < b.TotalEdges
}

// Dominates reports whether a Pareto-dominates b: no worse in every
// dimension, and strictly better in at least one. Used by the
// non-dominated sort of the evolutionary drivers.
func (a Objective) Dominates(b Objective) bool {
	betterOrEqual := a.MaxSlotNum <= b.MaxSlotNum && a.TotalEdges <= b.TotalEdges && a.RoutedSwitches <= b.RoutedSwitches
	strictlyBetter := a.MaxSlotNum < b.MaxSlotNum || a.TotalEdges < b.TotalEdges || a.RoutedSwitches < b.RoutedSwitches
	return betterOrEqual && strictlyBetter
}

// Equal is the "all objective values equal" predicate the hall-of-fame
// uses to decide non-dominance equality.
func (a Objective) Equal(b Objective) bool {
	return a.MaxSlotNum == b.MaxSlotNum && a.TotalEdges == b.TotalEdges && a.RoutedSwitches == b.RoutedSwitches
}
