// SPDX-License-Identifier: Apache-2.0

// Package infer generates the license-compatibility knowledge graph by
// running the rule chain over every ordered pair of known licenses, the
// Go port of lict.infer's CompatibleInfer and its CompatibleRule chain.
package infer

import (
	"sort"

	"github.com/liscope/liscope/schema"
)

// Edge is one compatibility-graph edge: license A is compatible with
// license B under the given verdict, optionally scoped, annotated with
// the rule that produced it and (for or-later upgrades) the intermediate
// version that licensed the relationship, mirroring GraphManager's Edge.
type Edge struct {
	From          string
	To            string
	Compatibility schema.CompatibilityType
	Scope         schema.Scope
	HasScope      bool
	Rule          string
	Path          string
}

// Graph is a multi-digraph over SPDX ids: several edges with different
// verdicts can coexist between the same ordered pair, matching the
// Python GraphManager used by CompatibleInfer.
type Graph struct {
	edges []Edge
}

// NewGraph returns an empty compatibility graph.
func NewGraph() *Graph {
	return &Graph{}
}

// AddEdge appends an edge, keeping insertion order so Edges() and save()
// paths stay deterministic given a deterministic rule chain.
func (g *Graph) AddEdge(e Edge) {
	g.edges = append(g.edges, e)
}

// removeIndex removes the edge at the given index (index into the slice
// returned by the most recent QueryByLabel/Edges call on this graph).
func (g *Graph) removeIndex(i int) {
	g.edges = append(g.edges[:i], g.edges[i+1:]...)
}

// QueryByLabel returns the indices of the edges matching (from, to,
// compatibility), mirroring GraphManager.query_edge_by_label; EdgeAt
// fetches an edge by index.
func (g *Graph) QueryByLabel(from, to string, compatibility schema.CompatibilityType) []int {
	var out []int
	for i, e := range g.edges {
		if e.From == from && e.To == to && e.Compatibility == compatibility {
			out = append(out, i)
		}
	}
	return out
}

// HasEdge reports whether any edge matches (from, to, compatibility).
func (g *Graph) HasEdge(from, to string, compatibility schema.CompatibilityType) bool {
	return len(g.QueryByLabel(from, to, compatibility)) > 0
}

// EdgeAt returns the edge stored at index i.
func (g *Graph) EdgeAt(i int) Edge {
	return g.edges[i]
}

// RemoveEdgesByLabel deletes every edge matching (from, to, compatibility),
// mirroring the rule chain's "origin_edges = query...; for i in
// origin_edges: graph.remove_edge(i)" idiom. Indices are recomputed after
// each removal since they shift.
func (g *Graph) RemoveEdgesByLabel(from, to string, compatibility schema.CompatibilityType) {
	for {
		matches := g.QueryByLabel(from, to, compatibility)
		if len(matches) == 0 {
			return
		}
		g.removeIndex(matches[0])
	}
}

// Edges returns every edge, in insertion order.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Deduplicate removes exact duplicate edges (same from/to/compatibility/
// scope/rule/path), mirroring GraphManager.deduplicate_and_reorder_edges,
// and reorders the remainder lexicographically by (from, to,
// compatibility) for deterministic serialisation (§8 determinism).
func (g *Graph) Deduplicate() {
	seen := make(map[string]struct{}, len(g.edges))
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		key := e.From + "\x00" + e.To + "\x00" + e.Compatibility.String() + "\x00" + e.Rule + "\x00" + e.Path
		if e.HasScope {
			key += "\x00" + e.Scope.String()
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		if out[i].To != out[j].To {
			return out[i].To < out[j].To
		}
		return out[i].Compatibility < out[j].Compatibility
	})
	g.edges = out
}
