package slotalloc

import (
	"sort"

	"github.com/hungalab/board-allocator/pkg/conflict"
)

// MaximalCliques enumerates every maximal clique of the conflict graph
// described by adj over the given vertex set, each sorted ascending and the
// whole list sorted by non-increasing size. Unlike Greedy and Exact, this
// does not add the synthetic fixed-separation edges: callers that want
// maximal cliques of the conflict graph H exactly as defined by the
// conflict detector (e.g. break_a_maximal_clique_and_repair) should build
// adj from conflict.CrossingFlows alone.
func MaximalCliques(adj map[conflict.CVID]map[conflict.CVID]struct{}, vertices []conflict.CVID) [][]conflict.CVID {
	cliques := bronKerbosch(adj, vertices)
	sort.Slice(cliques, func(i, j int) bool { return len(cliques[i]) > len(cliques[j]) })
	return cliques
}

// bronKerbosch enumerates every maximal clique of the graph described by
// adj, over vertex set nodes, using the standard pivoting variant.
func bronKerbosch(adj map[conflict.CVID]map[conflict.CVID]struct{}, nodes []conflict.CVID) [][]conflict.CVID {
	var cliques [][]conflict.CVID

	p := make(map[conflict.CVID]bool, len(nodes))
	for _, n := range nodes {
		p[n] = true
	}
	x := make(map[conflict.CVID]bool)
	r := make(map[conflict.CVID]bool)

	var rec func(r, p, x map[conflict.CVID]bool)
	rec = func(r, p, x map[conflict.CVID]bool) {
		if len(p) == 0 && len(x) == 0 {
			clique := make([]conflict.CVID, 0, len(r))
			for v := range r {
				clique = append(clique, v)
			}
			sort.Slice(clique, func(i, j int) bool { return clique[i] < clique[j] })
			cliques = append(cliques, clique)
			return
		}

		union := make(map[conflict.CVID]bool, len(p)+len(x))
		for v := range p {
			union[v] = true
		}
		for v := range x {
			union[v] = true
		}
		pivot, bestCount := conflict.CVID(0), -1
		first := true
		for u := range union {
			count := 0
			for v := range p {
				if _, ok := adj[u][v]; ok {
					count++
				}
			}
			if first || count > bestCount {
				pivot, bestCount = u, count
				first = false
			}
		}

		var candidates []conflict.CVID
		for v := range p {
			if _, ok := adj[pivot][v]; !ok {
				candidates = append(candidates, v)
			}
		}
		sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })

		for _, v := range candidates {
			newR := cloneSet(r)
			newR[v] = true
			newP := intersectNeighbors(p, adj, v)
			newX := intersectNeighbors(x, adj, v)
			rec(newR, newP, newX)
			delete(p, v)
			x[v] = true
		}
	}
	rec(r, p, x)
	return cliques
}

func cloneSet(s map[conflict.CVID]bool) map[conflict.CVID]bool {
	cp := make(map[conflict.CVID]bool, len(s))
	for k, v := range s {
		cp[k] = v
	}
	return cp
}

func intersectNeighbors(s map[conflict.CVID]bool, adj map[conflict.CVID]map[conflict.CVID]struct{}, v conflict.CVID) map[conflict.CVID]bool {
	out := make(map[conflict.CVID]bool)
	for u := range s {
		if _, ok := adj[v][u]; ok {
			out[u] = true
		}
	}
	return out
}

// enumerateAllCliquesDesc enumerates every clique (not just maximal ones —
// any subset of a clique is itself a clique) and returns them sorted by
// non-increasing size, matching the traversal order mcc's branch-and-bound
// relies on (largest cliques considered, and pruned, first).
func enumerateAllCliquesDesc(adj map[conflict.CVID]map[conflict.CVID]struct{}, nodes []conflict.CVID) [][]conflict.CVID {
	maximal := bronKerbosch(adj, nodes)

	seen := make(map[string]bool)
	var all [][]conflict.CVID
	for _, mc := range maximal {
		for _, sub := range nonEmptySubsets(mc) {
			k := cliqueKey(sub)
			if seen[k] {
				continue
			}
			seen[k] = true
			all = append(all, sub)
		}
	}
	sort.Slice(all, func(i, j int) bool { return len(all[i]) > len(all[j]) })
	return all
}

func cliqueKey(c []conflict.CVID) string {
	b := make([]byte, 0, len(c)*8)
	for _, v := range c {
		b = append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24), '|')
	}
	return string(b)
}

// nonEmptySubsets returns every non-empty subset of a clique, each of
// which is itself a clique.
func nonEmptySubsets(clique []conflict.CVID) [][]conflict.CVID {
	n := len(clique)
	var out [][]conflict.CVID
	for mask := 1; mask < (1 << n); mask++ {
		var sub []conflict.CVID
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				sub = append(sub, clique[i])
			}
		}
		out = append(out, sub)
	}
	return out
}
