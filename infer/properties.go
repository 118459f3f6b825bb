// SPDX-License-Identifier: Apache-2.0
package infer

import (
	"github.com/jwangsadinata/go-multimap/slicemultimap"

	"github.com/liscope/liscope/schema"
)

// PropertyTriple is one (license, feature, modal) fact, plus the optional
// relicense target/scope carried by a "special.relicense" clause,
// mirroring CompatibleInfer.check_license_property's triples.
type PropertyTriple struct {
	License        string
	Feature        string
	Modal          schema.Modal
	RelicenseOf    string
	RelicenseScope schema.Scope
	HasRelicense   bool
}

// PropertyGraph is the flat collection of per-license feature facts, the
// Go analogue of the Python properties_graph, indexed by license id via a
// multimap since one license legitimately carries many triples.
type PropertyGraph struct {
	triples   []PropertyTriple
	byLicense *slicemultimap.MultiMap
}

func NewPropertyGraph() *PropertyGraph {
	return &PropertyGraph{byLicense: slicemultimap.New()}
}

func (g *PropertyGraph) Triples() []PropertyTriple {
	return g.triples
}

// ByLicense returns every triple recorded for spdxID, in the order
// RecordLicense added them.
func (g *PropertyGraph) ByLicense(spdxID string) []PropertyTriple {
	values, ok := g.byLicense.Get(spdxID)
	if !ok {
		return nil
	}
	out := make([]PropertyTriple, 0, len(values))
	for _, v := range values {
		out = append(out, v.(PropertyTriple))
	}
	return out
}

// RecordLicense adds every feature of a license as a triple, plus a
// distinguished relicense-target triple when the license declares one,
// mirroring check_license_property.
func (g *PropertyGraph) RecordLicense(l schema.LicenseFeature) {
	relicense, hasRelicense := l.Special["relicense"]
	if hasRelicense {
		for _, target := range relicense.Target {
			relicenseTriple := PropertyTriple{
				License: l.SPDXID, Feature: "relicense", Modal: schema.ModalSpecial,
				RelicenseOf: target, RelicenseScope: relicense.Scope, HasRelicense: true,
			}
			g.triples = append(g.triples, relicenseTriple)
			g.byLicense.Put(l.SPDXID, relicenseTriple)
		}
	}
	for _, feature := range l.Features() {
		triple := PropertyTriple{License: l.SPDXID, Feature: feature.Name, Modal: feature.Modal}
		g.triples = append(g.triples, triple)
		g.byLicense.Put(l.SPDXID, triple)
	}
}
