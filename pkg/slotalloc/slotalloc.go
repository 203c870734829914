// Package slotalloc colors the flow-conflict graph H with time-division
// slots, preserving any previously fixed slot assignment encoded by a
// negative cvid. It offers a saturation-degree-first greedy coloring (used
// on every search iteration) and an exact branch-and-bound minimum-coloring
// routine (used only to report a lower bound).
package slotalloc

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/hungalab/board-allocator/pkg/conflict"
)

func slotError(format string, args ...interface{}) error {
	return errors.Errorf("slotalloc: "+format, args...)
}

// Result is a completed slot assignment: every cvid present in the input,
// mapped to its final slot index, plus the resulting maximum slot number
// (max(slot) + 1).
type Result struct {
	Slot    map[conflict.CVID]int
	MaxSlot int
}

func slotOfFixed(cvid conflict.CVID) int { return int(-cvid - 1) }

// fixedSeparationPairs forces distinct previously-fixed slots to remain in
// distinct color classes, even when their flow graphs happen not to share
// an edge: two frozen flows sharing a slot is only valid when they were
// already compatible, so flows frozen to *different* slots must never be
// merged by a fresh coloring pass. Flows frozen to the *same* slot impose
// no such constraint — they are expected to end up together.
func fixedSeparationPairs(flows []conflict.FlowEdges) []conflict.Pair {
	var fixed []conflict.CVID
	for _, f := range flows {
		if f.CVID < 0 {
			fixed = append(fixed, f.CVID)
		}
	}
	var out []conflict.Pair
	for i := 0; i < len(fixed); i++ {
		for j := i + 1; j < len(fixed); j++ {
			a, b := fixed[i], fixed[j]
			if slotOfFixed(a) == slotOfFixed(b) {
				continue
			}
			if a > b {
				a, b = b, a
			}
			out = append(out, conflict.Pair{A: a, B: b})
		}
	}
	return out
}

// classify groups a fresh coloring (class id -> cvids) and renumbers it in
// two phases: classes containing a previously-fixed cvid keep that fixed
// slot; the remaining ("free") classes are sorted by descending total
// flow-graph edge count and packed into the ascending slot indices not
// already claimed by a fixed class.
func renumber(flows []conflict.FlowEdges, classOf map[conflict.CVID]int) Result {
	edgeCount := make(map[conflict.CVID]int, len(flows))
	for _, f := range flows {
		edgeCount[f.CVID] = len(f.Edges)
	}

	type class struct {
		id         int
		cvids      []conflict.CVID
		totalEdges int
		fixedSlot  int // -1 if not fixed
	}
	byClass := make(map[int]*class)
	for _, f := range flows {
		c := classOf[f.CVID]
		cl, ok := byClass[c]
		if !ok {
			cl = &class{id: c, fixedSlot: -1}
			byClass[c] = cl
		}
		cl.cvids = append(cl.cvids, f.CVID)
		cl.totalEdges += edgeCount[f.CVID]
		if f.CVID < 0 {
			cl.fixedSlot = slotOfFixed(f.CVID)
		}
	}

	usedSlots := make(map[int]bool)
	var free []*class
	for _, cl := range byClass {
		if cl.fixedSlot >= 0 {
			usedSlots[cl.fixedSlot] = true
		} else {
			free = append(free, cl)
		}
	}
	sort.Slice(free, func(i, j int) bool {
		if free[i].totalEdges != free[j].totalEdges {
			return free[i].totalEdges > free[j].totalEdges
		}
		return free[i].id < free[j].id // deterministic tie-break
	})

	next := 0
	slot := make(map[conflict.CVID]int, len(classOf))
	maxSlot := -1
	assign := func(cvid conflict.CVID, s int) {
		slot[cvid] = s
		if s > maxSlot {
			maxSlot = s
		}
	}
	for _, cl := range byClass {
		if cl.fixedSlot >= 0 {
			for _, v := range cl.cvids {
				assign(v, cl.fixedSlot)
			}
		}
	}
	for _, cl := range free {
		for usedSlots[next] {
			next++
		}
		usedSlots[next] = true
		for _, v := range cl.cvids {
			assign(v, next)
		}
		next++
	}

	return Result{Slot: slot, MaxSlot: maxSlot + 1}
}
