// Package topology represents the physical core/switch graph and the
// all-shortest-paths table derived from it. A Topology is built once and is
// read-only and safe to share across goroutines thereafter.
package topology

import (
	"github.com/pkg/errors"

	logger "github.com/hungalab/board-allocator/pkg/log"
)

var log = logger.NewLogger("topology")

func topologyError(format string, args ...interface{}) error {
	return errors.Errorf("topology: "+format, args...)
}

// NodeID identifies a node of the physical graph. Core nodes occupy
// [0, N); switch node sw(c) for core c is N+c.
type NodeID int

// Edge is a directed graph edge.
type Edge struct {
	From, To NodeID
}

// Link is one undirected inter-switch link as read from a topology file:
// core_a/port_a connects to core_b/port_b. Core labels are opaque strings so
// the ingest layer can hand through whatever token the file used; Topology
// assigns dense NodeIDs itself, in order of first appearance.
type Link struct {
	CoreA, CoreB string
	PortA, PortB int
}

// Topology is the directed core/switch graph plus its shortest-path table.
type Topology struct {
	n             int // number of cores == number of switches
	label         []string
	index         map[string]NodeID
	out           map[NodeID][]NodeID
	multiEjection map[Edge]bool
	inputPort     map[NodeID]map[NodeID]int
	outputPort    map[NodeID]map[NodeID]int
	paths         *ShortestPaths
}

// New builds a Topology from a set of inter-switch links. multiEject is the
// single global flag applied uniformly to every switch->core edge, per the
// construction contract: "the switch→core edge carries multi_ejection (a
// global construction flag, applied uniformly)".
func New(links []Link, multiEject bool) (*Topology, error) {
	t := &Topology{
		index:         make(map[string]NodeID),
		out:           make(map[NodeID][]NodeID),
		multiEjection: make(map[Edge]bool),
		inputPort:     make(map[NodeID]map[NodeID]int),
		outputPort:    make(map[NodeID]map[NodeID]int),
	}

	coreID := func(label string) NodeID {
		if id, ok := t.index[label]; ok {
			return id
		}
		id := NodeID(len(t.label))
		t.label = append(t.label, label)
		t.index[label] = id
		return id
	}

	for _, l := range links {
		if l.CoreA == l.CoreB {
			return nil, topologyError("link endpoints must differ (got %q twice)", l.CoreA)
		}
		coreID(l.CoreA)
		coreID(l.CoreB)
	}
	t.n = len(t.label)
	if t.n == 0 {
		return nil, topologyError("no core nodes found in link list")
	}

	// core <-> switch edges, both directions; switch->core carries the
	// global multi-ejection flag.
	for c := NodeID(0); c < NodeID(t.n); c++ {
		sw := t.switchOf(c)
		t.addEdge(c, sw, false)
		t.addEdge(sw, c, multiEject)
	}

	// inter-switch links, as two directed edges, with port bookkeeping.
	for _, l := range links {
		a, b := t.index[l.CoreA], t.index[l.CoreB]
		swA, swB := t.switchOf(a), t.switchOf(b)
		t.addEdge(swA, swB, false)
		t.addEdge(swB, swA, false)
		t.setPort(t.outputPort, swA, swB, l.PortA)
		t.setPort(t.inputPort, swB, swA, l.PortB)
		t.setPort(t.outputPort, swB, swA, l.PortB)
		t.setPort(t.inputPort, swA, swB, l.PortA)
	}

	t.paths = computeShortestPaths(t)
	log.Debug("built topology with %d cores, %d switches", t.n, t.n)
	return t, nil
}

func (t *Topology) addEdge(from, to NodeID, multiEject bool) {
	t.out[from] = append(t.out[from], to)
	if multiEject {
		t.multiEjection[Edge{from, to}] = true
	}
}

func (t *Topology) setPort(m map[NodeID]map[NodeID]int, from, to NodeID, port int) {
	if m[from] == nil {
		m[from] = make(map[NodeID]int)
	}
	m[from][to] = port
}

// NumCores returns the number of core nodes (equivalently switch nodes).
func (t *Topology) NumCores() int { return t.n }

// CoreLabel returns the original label a core's NodeID was assigned from.
func (t *Topology) CoreLabel(c NodeID) string { return t.label[int(c)] }

// CoreByLabel resolves an original core label back to its NodeID.
func (t *Topology) CoreByLabel(label string) (NodeID, bool) {
	id, ok := t.index[label]
	return id, ok
}

// IsCore reports whether id names a core node.
func (t *Topology) IsCore(id NodeID) bool { return int(id) < t.n }

// IsSwitch reports whether id names a switch node.
func (t *Topology) IsSwitch(id NodeID) bool { return int(id) >= t.n }

// SwitchOf returns the switch paired with core c.
func (t *Topology) SwitchOf(c NodeID) NodeID { return t.switchOf(c) }

func (t *Topology) switchOf(c NodeID) NodeID { return c + NodeID(t.n) }

// CoreOf returns the core paired with switch sw.
func (t *Topology) CoreOf(sw NodeID) NodeID { return sw - NodeID(t.n) }

// MultiEjection reports whether edge e is tagged multi_ejection.
func (t *Topology) MultiEjection(e Edge) bool { return t.multiEjection[e] }

// Neighbors returns the out-adjacency of id. The returned slice must not be
// mutated by callers.
func (t *Topology) Neighbors(id NodeID) []NodeID { return t.out[id] }

// Paths returns the immutable shortest-path table.
func (t *Topology) Paths() *ShortestPaths { return t.paths }

// InputPort looks up the input port switch `to` uses for traffic arriving
// from `from`; opaque bookkeeping consumed only by external config-table
// generation, never by the allocator core.
func (t *Topology) InputPort(to, from NodeID) (int, bool) {
	p, ok := t.inputPort[to][from]
	return p, ok
}

// OutputPort is the output-port analogue of InputPort.
func (t *Topology) OutputPort(from, to NodeID) (int, bool) {
	p, ok := t.outputPort[from][to]
	return p, ok
}

// Links reconstructs the original inter-switch link list New was built
// from, one entry per undirected link, in ascending switch-pair order.
// Used by pkg/persistence to round-trip a Topology structurally.
func (t *Topology) Links() []Link {
	var links []Link
	for a := NodeID(0); a < NodeID(t.n); a++ {
		swA := t.switchOf(a)
		for _, swB := range t.out[swA] {
			if !t.IsSwitch(swB) || swB <= swA {
				continue
			}
			portA, _ := t.outputPort[swA][swB]
			portB, _ := t.outputPort[swB][swA]
			links = append(links, Link{
				CoreA: t.label[int(a)], PortA: portA,
				CoreB: t.label[int(t.CoreOf(swB))], PortB: portB,
			})
		}
	}
	return links
}

// MultiEject reports the global multi_ejection flag New was built with,
// recovered from any switch->core edge (the flag is applied uniformly).
func (t *Topology) MultiEject() bool {
	if t.n == 0 {
		return false
	}
	return t.multiEjection[Edge{t.switchOf(0), 0}]
}
