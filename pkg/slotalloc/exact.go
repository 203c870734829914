package slotalloc

import "github.com/hungalab/board-allocator/pkg/conflict"

// Exact computes a minimum coloring of H via maximum-clique-cover of its
// complement, using depth-limited recursive branch-and-bound. It is the
// exact counterpart of Greedy, used only to report a lower bound; both
// preserve previously fixed slots identically.
func Exact(flows []conflict.FlowEdges) Result {
	if len(flows) == 0 {
		return Result{Slot: map[conflict.CVID]int{}, MaxSlot: 0}
	}

	vertices := make([]conflict.CVID, len(flows))
	for i, f := range flows {
		vertices[i] = f.CVID
	}

	pairs := append(conflict.CrossingFlows(flows), fixedSeparationPairs(flows)...)
	hAdj := conflict.Adjacency(vertices, pairs)
	complement := complementOf(hAdj, vertices)

	cover := mcc(complement, vertices, len(vertices)+1)

	color := make(map[conflict.CVID]int, len(vertices))
	for classIdx, class := range cover {
		for _, v := range class {
			color[v] = classIdx
		}
	}
	return renumber(flows, color)
}

func complementOf(adj map[conflict.CVID]map[conflict.CVID]struct{}, vertices []conflict.CVID) map[conflict.CVID]map[conflict.CVID]struct{} {
	comp := make(map[conflict.CVID]map[conflict.CVID]struct{}, len(vertices))
	for _, v := range vertices {
		comp[v] = make(map[conflict.CVID]struct{})
	}
	for _, u := range vertices {
		for _, v := range vertices {
			if u == v {
				continue
			}
			if _, ok := adj[u][v]; !ok {
				comp[u][v] = struct{}{}
			}
		}
	}
	return comp
}

// mcc is a direct port of the reference maximum-clique-cover search: it
// walks all cliques of the graph from largest to smallest, prunes a branch
// once even the best-case (ceil(|nodes|/|clique|)) cover size can no
// longer beat bestSize, and recurses on the remainder with one fewer color
// to spend. A remaining vertex set smaller than the best cover found so
// far is always covered trivially, one class per vertex — including the
// empty set, whose trivial cover is the empty list of classes.
func mcc(adj map[conflict.CVID]map[conflict.CVID]struct{}, nodes []conflict.CVID, bestSize int) [][]conflict.CVID {
	var answer [][]conflict.CVID

	cliques := enumerateAllCliquesDesc(adj, nodes)
	for _, clique := range cliques {
		if ceilDiv(len(nodes), len(clique)) >= bestSize {
			break
		}
		remaining := subtract(nodes, clique)
		subAdj := restrict(adj, remaining)
		result := mcc(subAdj, remaining, bestSize-1)
		if result != nil {
			answer = append([][]conflict.CVID{clique}, result...)
			bestSize = len(answer)
		}
	}

	if len(nodes) < bestSize {
		answer = singletonCover(nodes)
	}
	return answer
}

func ceilDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

func subtract(nodes []conflict.CVID, remove []conflict.CVID) []conflict.CVID {
	excl := make(map[conflict.CVID]bool, len(remove))
	for _, v := range remove {
		excl[v] = true
	}
	out := make([]conflict.CVID, 0, len(nodes))
	for _, v := range nodes {
		if !excl[v] {
			out = append(out, v)
		}
	}
	return out
}

func restrict(adj map[conflict.CVID]map[conflict.CVID]struct{}, nodes []conflict.CVID) map[conflict.CVID]map[conflict.CVID]struct{} {
	keep := make(map[conflict.CVID]bool, len(nodes))
	for _, v := range nodes {
		keep[v] = true
	}
	out := make(map[conflict.CVID]map[conflict.CVID]struct{}, len(nodes))
	for _, v := range nodes {
		out[v] = make(map[conflict.CVID]struct{})
		for n := range adj[v] {
			if keep[n] {
				out[v][n] = struct{}{}
			}
		}
	}
	return out
}

func singletonCover(nodes []conflict.CVID) [][]conflict.CVID {
	out := make([][]conflict.CVID, len(nodes))
	for i, v := range nodes {
		out[i] = []conflict.CVID{v}
	}
	return out
}
