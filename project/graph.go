// SPDX-License-Identifier: Apache-2.0

// Package project models a dependency graph of components and propagates
// and checks license compatibility across it, the Go port of
// lict.parser.propagate.BasePropagateParser and
// lict.parser.compatible.BaseCompatiblityParser.
package project

import (
	"sort"

	"github.com/liscope/liscope/schema"
)

// Node is one component in the project graph: its own declared license
// (if any), the usage condition under which its consumer links to it, and
// the fields the propagation/conflict passes fill in as they run.
type Node struct {
	ID string

	// Condition is the raw usage-condition literal attached to this
	// node (e.g. "static-link"), translated to a canonical ScopeToken
	// name via Config.Literal2Enum before use.
	Condition string

	DeclaredLicenses    schema.DualLicense
	HasDeclaredLicenses bool

	Outbound    schema.DualLicense
	HasOutbound bool

	BeforeCheck    schema.DualLicense
	HasBeforeCheck bool

	LicenseIsolation bool

	// Conflict is set on the node where the conflict-detection pass first
	// found no compatible alternative left. ConflictGroup lists the id of
	// every ConflictRecord that implicates this node's own declared or
	// outbound licenses — plural, since a node can independently be
	// touched by more than one distinct conflict pattern elsewhere in the
	// graph.
	Conflict      *ConflictRecord
	ConflictGroup []string
}

// Graph is a directed acyclic graph of components: an edge from A to B
// means "A depends on B", matching the networkx DiGraph the Python parser
// traverses (context.graph.successors(node) are node's dependencies).
type Graph struct {
	nodes  map[string]*Node
	depend map[string][]string // node -> its dependencies, insertion order
}

// NewGraph returns an empty project graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:  make(map[string]*Node),
		depend: make(map[string][]string),
	}
}

// AddNode registers a component. Adding the same id twice replaces the
// previous node.
func (g *Graph) AddNode(n *Node) {
	g.nodes[n.ID] = n
	if _, ok := g.depend[n.ID]; !ok {
		g.depend[n.ID] = nil
	}
}

// AddDependency records that fromID depends on toID. Both ids must
// already have been added via AddNode.
func (g *Graph) AddDependency(fromID, toID string) {
	g.depend[fromID] = append(g.depend[fromID], toID)
}

// Node returns the node for id, or nil if absent.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// Dependencies returns id's direct dependencies (its successors).
func (g *Graph) Dependencies(id string) []string {
	return g.depend[id]
}

// NodeIDs returns every node id in the graph, sorted, for callers outside
// this package that need to walk nodes deterministically (e.g. a report
// generator).
func (g *Graph) NodeIDs() []string {
	return g.sortedNodeIDs()
}

// sortedNodeIDs returns every node id in the graph, sorted, for
// deterministic iteration.
func (g *Graph) sortedNodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TopologicalOrder returns node ids such that every dependency appears
// after its consumer (consumer-before-dependency, matching
// nx.topological_sort on the depends-on edge direction used here), with
// ties broken lexicographically for determinism (§8). Returns a
// CycleError if the graph isn't acyclic.
func (g *Graph) TopologicalOrder() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		inDegree[id] = 0
	}
	for _, deps := range g.depend {
		for _, dep := range deps {
			inDegree[dep]++
		}
	}

	ready := make([]string, 0)
	for _, id := range g.sortedNodeIDs() {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		sort.Strings(ready)
		current := ready[0]
		ready = ready[1:]
		order = append(order, current)

		next := make([]string, 0)
		for _, dep := range g.depend[current] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				next = append(next, dep)
			}
		}
		sort.Strings(next)
		ready = append(ready, next...)
	}

	if len(order) != len(g.nodes) {
		return nil, schema.NewCycleError(firstCycleParticipant(inDegree))
	}
	return order, nil
}

func firstCycleParticipant(remaining map[string]int) string {
	ids := make([]string, 0, len(remaining))
	for id, deg := range remaining {
		if deg > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// ReverseTopologicalOrder returns TopologicalOrder reversed: every
// dependency appears before the consumers that depend on it, matching
// the Python parser's reversed(list(nx.topological_sort(graph))).
func (g *Graph) ReverseTopologicalOrder() ([]string, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	reversed := make([]string, len(order))
	for i, id := range order {
		reversed[len(order)-1-i] = id
	}
	return reversed, nil
}
