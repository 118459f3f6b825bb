// SPDX-License-Identifier: Apache-2.0

// Package checker answers point compatibility queries against a
// pre-built knowledge graph, the Go port of lict.checker.Checker.
package checker

import (
	"github.com/liscope/liscope/infer"
	"github.com/liscope/liscope/internal/logger"
	"github.com/liscope/liscope/schema"
)

// Checker answers compatibility queries against a fixed knowledge graph.
// Unlike the Python Checker it is not a process-wide singleton: callers
// construct one per KnowledgeGraph, which is cheap and keeps the engine
// free of global mutable state (the teacher's own getLogger() is the only
// package-level singleton this codebase follows that pattern for).
type Checker struct {
	kg       *infer.KnowledgeGraph
	licenses map[string]schema.LicenseFeature
}

// New wraps a generated knowledge graph and its source feature table for
// querying.
func New(kg *infer.KnowledgeGraph, licenses map[string]schema.LicenseFeature) *Checker {
	return &Checker{kg: kg, licenses: licenses}
}

// IsLicenseExist reports whether spdxID appears anywhere in the property
// graph, mirroring Checker.is_license_exist.
func (c *Checker) IsLicenseExist(spdxID string) bool {
	for _, t := range c.kg.PropertyGraph.Triples() {
		if t.License == spdxID {
			return true
		}
	}
	return false
}

// CheckCompatibility answers whether licenseA is compatible with
// licenseB, optionally narrowed to the given usage scope, mirroring
// Checker.check_compatibility. A nil scope behaves like the Python
// default of an empty Scope(), which is trivially contained in any
// recorded scope.
func (c *Checker) CheckCompatibility(licenseA, licenseB string, scope schema.Scope) schema.CompatibilityType {
	edge, ok := findFirstEdge(c.kg.CompatibleGraph, licenseA, licenseB)
	if !ok {
		logger.Log().Warningf("the compatibility of %s -> %s is unknown", licenseA, licenseB)
		return schema.Unknown
	}

	if edge.Compatibility == schema.ConditionalCompatible {
		querySc := scope
		if querySc == nil {
			querySc = schema.Scope{}
		}
		if edge.Scope.Contains(querySc) {
			return schema.ConditionalCompatible
		}
		return schema.Incompatible
	}
	return edge.Compatibility
}

// findFirstEdge returns the first edge (in graph insertion/dedup order)
// between licenseA and licenseB, regardless of verdict, mirroring the
// Python query with no compatibility= filter.
func findFirstEdge(g *infer.Graph, from, to string) (infer.Edge, bool) {
	for _, e := range g.Edges() {
		if e.From == from && e.To == to {
			return e, true
		}
	}
	return infer.Edge{}, false
}

// IsCopyleft reports whether the license carries a "must" clause with the
// compliance property, used by the propagation pass to decide whether a
// dependency's terms spread to its consumer.
func (c *Checker) IsCopyleft(feature schema.LicenseFeature) bool {
	for _, f := range feature.Must {
		if c.kg.Schemas.HasProperty(f, schema.PropertyCompliance) {
			return true
		}
	}
	return false
}

// IsCopyleftSPDX is IsCopyleft looked up by SPDX id, mirroring the
// propagation pass's self.checker.is_copyleft(lic.unit_spdx) call. An
// unknown id is treated as non-copyleft.
func (c *Checker) IsCopyleftSPDX(spdxID string) bool {
	feature, ok := c.licenses[spdxID]
	if !ok {
		return false
	}
	return c.IsCopyleft(feature)
}

// GetRelicense returns the relicense target declared by spdxID's
// "relicense" special clause when that clause's own scope overlaps the
// given usage scope, mirroring Checker.get_relicense. Licenses with no
// relicense clause, or whose clause doesn't cover scope, report ok=false.
func (c *Checker) GetRelicense(spdxID string, scope schema.Scope) (target string, ok bool) {
	feature, exists := c.licenses[spdxID]
	if !exists {
		return "", false
	}
	relicense, hasRelicense := feature.Special["relicense"]
	if !hasRelicense || len(relicense.Target) == 0 {
		return "", false
	}
	if !relicense.Scope.Intersect(scope).Bool() {
		return "", false
	}
	return relicense.Target[0], true
}
