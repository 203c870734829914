package slotalloc

import "github.com/hungalab/board-allocator/pkg/conflict"

// Greedy colors H with a saturation-degree-first (DSATUR) heuristic:
// repeatedly pick the uncolored vertex with the most distinctly-colored
// neighbors (ties broken by largest uncolored degree), and give it the
// smallest color not used by any already-colored neighbor. Previously
// fixed slots are preserved by classifying the resulting color classes in
// a second pass (see renumber).
func Greedy(flows []conflict.FlowEdges) Result {
	if len(flows) == 0 {
		return Result{Slot: map[conflict.CVID]int{}, MaxSlot: 0}
	}

	vertices := make([]conflict.CVID, len(flows))
	for i, f := range flows {
		vertices[i] = f.CVID
	}

	pairs := append(conflict.CrossingFlows(flows), fixedSeparationPairs(flows)...)
	adj := conflict.Adjacency(vertices, pairs)

	color := make(map[conflict.CVID]int, len(vertices))
	colored := make(map[conflict.CVID]bool, len(vertices))
	remaining := make(map[conflict.CVID]bool, len(vertices))
	for _, v := range vertices {
		remaining[v] = true
	}

	for len(remaining) > 0 {
		best, bestSat, bestDeg := conflict.CVID(0), -1, -1
		first := true
		for v := range remaining {
			satColors := make(map[int]struct{})
			for n := range adj[v] {
				if colored[n] {
					satColors[color[n]] = struct{}{}
				}
			}
			sat := len(satColors)
			deg := len(adj[v])
			if first || sat > bestSat || (sat == bestSat && deg > bestDeg) || (sat == bestSat && deg == bestDeg && v < best) {
				best, bestSat, bestDeg = v, sat, deg
				first = false
			}
		}

		used := make(map[int]bool)
		for n := range adj[best] {
			if colored[n] {
				used[color[n]] = true
			}
		}
		c := 0
		for used[c] {
			c++
		}
		color[best] = c
		colored[best] = true
		delete(remaining, best)
	}

	return renumber(flows, color)
}
