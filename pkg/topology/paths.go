package topology

// ShortestPaths is the immutable, all-pairs set of minimum-hop paths between
// every ordered pair of distinct core nodes. It is computed once at
// Topology construction and is safe to share by reference across threads.
type ShortestPaths struct {
	n     int
	table [][][][]NodeID // table[s][d] = set of equal-length minimum paths
}

// Paths returns the immutable tuple of shortest paths from s to d. The
// caller must not mutate the returned slices.
func (p *ShortestPaths) Paths(s, d NodeID) [][]NodeID {
	return p.table[int(s)][int(d)]
}

// computeShortestPaths enumerates, for every ordered (s, d) of distinct
// cores, every minimum-hop path from s to d in the full core/switch graph,
// eliding the final switch->core hop whenever that edge is tagged
// multi_ejection.
func computeShortestPaths(t *Topology) *ShortestPaths {
	n := t.n
	totalNodes := 2 * n
	table := make([][][][]NodeID, n)

	for s := 0; s < n; s++ {
		dist := bfsDistances(t.out, NodeID(s), totalNodes)
		table[s] = make([][][]NodeID, n)
		for d := 0; d < n; d++ {
			if s == d {
				continue
			}
			raw := allShortestPaths(t.out, dist, NodeID(s), NodeID(d))
			table[s][d] = stripMultiEjection(t, raw)
		}
	}

	return &ShortestPaths{n: n, table: table}
}

// bfsDistances computes, from s, the hop distance to every node reachable
// in the directed graph described by out; unreachable nodes get -1.
func bfsDistances(out map[NodeID][]NodeID, s NodeID, total int) []int {
	dist := make([]int, total)
	for i := range dist {
		dist[i] = -1
	}
	dist[s] = 0
	queue := []NodeID{s}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range out[u] {
			if dist[v] == -1 {
				dist[v] = dist[u] + 1
				queue = append(queue, v)
			}
		}
	}
	return dist
}

// allShortestPaths enumerates every path s->d that realizes dist[d], by
// walking forward over the shortest-path DAG implied by dist.
func allShortestPaths(out map[NodeID][]NodeID, dist []int, s, d NodeID) [][]NodeID {
	if dist[d] < 0 {
		return nil
	}
	var paths [][]NodeID
	path := make([]NodeID, 0, dist[d]+1)

	var walk func(cur NodeID)
	walk = func(cur NodeID) {
		path = append(path, cur)
		defer func() { path = path[:len(path)-1] }()

		if cur == d {
			cp := make([]NodeID, len(path))
			copy(cp, path)
			paths = append(paths, cp)
			return
		}
		for _, v := range out[cur] {
			if dist[v] == dist[cur]+1 {
				walk(v)
			}
		}
	}
	walk(s)
	return paths
}

// stripMultiEjection elides the final switch->core hop of every path whose
// last edge is tagged multi_ejection, per the construction contract in
// §4.1: "If the edge (path[-2], path[-1]) is tagged multi_ejection, the
// last hop is stripped before storage."
func stripMultiEjection(t *Topology, raw [][]NodeID) [][]NodeID {
	out := make([][]NodeID, len(raw))
	for i, p := range raw {
		if len(p) >= 2 {
			last := Edge{p[len(p)-2], p[len(p)-1]}
			if t.MultiEjection(last) {
				out[i] = p[:len(p)-1]
				continue
			}
		}
		out[i] = p
	}
	return out
}
