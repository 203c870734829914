package slotalloc

import (
	"github.com/hungalab/board-allocator/pkg/model"
	"github.com/hungalab/board-allocator/pkg/topology"
)

// MaxSlotNum is max(slot_id) + 1 over a completed result.
func (r Result) MaxSlotNum() int { return r.MaxSlot }

// AverageSlotNum computes the per-switch slot count, then its arithmetic
// mean, per §4.4.3: walking slots from the highest down, each flow either
// raises the switches it touches to one past the highest value any of
// those switches already holds, or (if none are already ahead) bumps them
// to one past its own slot.
func AverageSlotNum(topo *topology.Topology, flowsBySlot map[int][]*model.Flow) float64 {
	switchSlot := make(map[topology.NodeID]int, topo.NumCores())
	for c := topology.NodeID(0); c < topology.NodeID(topo.NumCores()); c++ {
		switchSlot[topo.SwitchOf(c)] = 0
	}

	maxSlot := -1
	for s := range flowsBySlot {
		if s > maxSlot {
			maxSlot = s
		}
	}

	for s := maxSlot; s >= 0; s-- {
		for _, f := range flowsBySlot[s] {
			g := f.Graph()
			if g == nil {
				continue
			}
			touched := g.Switches(topo)
			raiseTo := -1
			for sw := range touched {
				if v := switchSlot[sw]; v > s+1 && (raiseTo == -1 || v+1 > raiseTo) {
					raiseTo = v + 1
				}
			}
			if raiseTo == -1 {
				raiseTo = s + 1
			}
			for sw := range touched {
				switchSlot[sw] = raiseTo
			}
		}
	}

	sum := 0
	for _, v := range switchSlot {
		sum += v
	}
	return float64(sum) / float64(len(switchSlot))
}
