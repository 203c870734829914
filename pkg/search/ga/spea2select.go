package ga

import (
	"math"
	"sort"

	"github.com/hungalab/board-allocator/pkg/evaluator"
)

// SelectSPEA2 is tools.selSPEA2's strength-Pareto selection: strength(i) =
// |{j : i dominates j}|; raw fitness(i) = sum of strength(j) over every j
// dominating i (0 for every non-dominated individual); density(i) = 1 /
// (distance to its k-th nearest neighbor in objective space + 2), with
// k = floor(sqrt(pop size)); fitness = raw + density, lower is better. The
// n individuals with the lowest fitness are returned; since density never
// reaches 1, every non-dominated individual outranks every dominated one.
func SelectSPEA2(objs []evaluator.Objective, n int) []int {
	pop := len(objs)
	strength := make([]int, pop)
	for i := 0; i < pop; i++ {
		for j := 0; j < pop; j++ {
			if i != j && objs[i].Dominates(objs[j]) {
				strength[i]++
			}
		}
	}

	raw := make([]float64, pop)
	for i := 0; i < pop; i++ {
		for j := 0; j < pop; j++ {
			if i != j && objs[j].Dominates(objs[i]) {
				raw[i] += float64(strength[j])
			}
		}
	}

	k := int(math.Sqrt(float64(pop)))
	if k < 1 {
		k = 1
	}
	density := make([]float64, pop)
	for i := 0; i < pop; i++ {
		dists := make([]float64, 0, pop-1)
		for j := 0; j < pop; j++ {
			if i != j {
				dists = append(dists, objectiveDistance(objs[i], objs[j]))
			}
		}
		sort.Float64s(dists)
		idx := k - 1
		if idx >= len(dists) {
			idx = len(dists) - 1
		}
		d := 0.0
		if idx >= 0 {
			d = dists[idx]
		}
		density[i] = 1 / (d + 2)
	}

	fitness := make([]float64, pop)
	for i := range fitness {
		fitness[i] = raw[i] + density[i]
	}

	idx := make([]int, pop)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return fitness[idx[a]] < fitness[idx[b]] })
	if n > pop {
		n = pop
	}
	return idx[:n]
}

func objectiveDistance(a, b evaluator.Objective) float64 {
	dx := float64(a.MaxSlotNum - b.MaxSlotNum)
	dy := float64(a.TotalEdges - b.TotalEdges)
	dz := float64(a.RoutedSwitches - b.RoutedSwitches)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
