package ga

import (
	"math"
	"sort"

	"github.com/hungalab/board-allocator/pkg/evaluator"
)

// FastNonDominatedSort partitions indices 0..len(objs)-1 into fronts, front
// 0 being the non-dominated set, per tools.sortNondominated.
func FastNonDominatedSort(objs []evaluator.Objective) [][]int {
	n := len(objs)
	dominates := make([][]int, n)
	dominatedCount := make([]int, n)
	var first []int

	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			if p == q {
				continue
			}
			switch {
			case objs[p].Dominates(objs[q]):
				dominates[p] = append(dominates[p], q)
			case objs[q].Dominates(objs[p]):
				dominatedCount[p]++
			}
		}
		if dominatedCount[p] == 0 {
			first = append(first, p)
		}
	}

	fronts := [][]int{first}
	current := first
	for len(current) > 0 {
		var next []int
		for _, p := range current {
			for _, q := range dominates[p] {
				dominatedCount[q]--
				if dominatedCount[q] == 0 {
					next = append(next, q)
				}
			}
		}
		if len(next) > 0 {
			fronts = append(fronts, next)
		}
		current = next
	}
	return fronts
}

var objectiveDims = []func(evaluator.Objective) float64{
	func(o evaluator.Objective) float64 { return float64(o.MaxSlotNum) },
	func(o evaluator.Objective) float64 { return float64(o.TotalEdges) },
	func(o evaluator.Objective) float64 { return float64(o.RoutedSwitches) },
}

// CrowdingDistance computes tools.emo's crowding distance of every member
// of front (indices into objs); boundary points score +Inf.
func CrowdingDistance(front []int, objs []evaluator.Objective) map[int]float64 {
	dist := make(map[int]float64, len(front))
	for _, i := range front {
		dist[i] = 0
	}
	if len(front) <= 2 {
		for _, i := range front {
			dist[i] = math.Inf(1)
		}
		return dist
	}

	for _, dim := range objectiveDims {
		sorted := append([]int(nil), front...)
		sort.Slice(sorted, func(i, j int) bool { return dim(objs[sorted[i]]) < dim(objs[sorted[j]]) })
		lo, hi := dim(objs[sorted[0]]), dim(objs[sorted[len(sorted)-1]])
		dist[sorted[0]] = math.Inf(1)
		dist[sorted[len(sorted)-1]] = math.Inf(1)
		if hi == lo {
			continue
		}
		for k := 1; k < len(sorted)-1; k++ {
			dist[sorted[k]] += (dim(objs[sorted[k+1]]) - dim(objs[sorted[k-1]])) / (hi - lo)
		}
	}
	return dist
}

// SelectNSGA2 picks n indices from objs by front rank, breaking ties within
// the cutoff front by descending crowding distance (tools.selNSGA2).
func SelectNSGA2(objs []evaluator.Objective, n int) []int {
	fronts := FastNonDominatedSort(objs)
	var selected []int
	for _, front := range fronts {
		if len(selected)+len(front) <= n {
			selected = append(selected, front...)
			if len(selected) == n {
				break
			}
			continue
		}
		remaining := n - len(selected)
		dist := CrowdingDistance(front, objs)
		sorted := append([]int(nil), front...)
		sort.Slice(sorted, func(i, j int) bool { return dist[sorted[i]] > dist[sorted[j]] })
		selected = append(selected, sorted[:remaining]...)
		break
	}
	return selected
}
