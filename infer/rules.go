// SPDX-License-Identifier: Apache-2.0
package infer

import (
	"github.com/liscope/liscope/schema"
)

// Rule names double as the graph-walk's next-state tokens, mirroring the
// CompatibleRule subclass names used as dict keys in lict.infer.
const (
	RulePublicDomain         = "PublicDomainRule"
	RuleImmutability         = "ImmutabilityRule"
	RuleExceptRelicense      = "ExceptRelicenseRule"
	RuleOrLaterRelicense     = "OrLaterRelicenseRule"
	RuleComplianceRequirement = "ComplianceRequirementRule"
	RuleClauseConflict       = "ClauseConflictRule"
	RuleDefaultCompatible    = "DefaultCompatibleRule"
	RuleEnd                  = "EndRule"
)

// callback is a deferred post-pass action, queued by a rule while walking
// the chain and drained (FIFO) once every pair has been visited, mirroring
// CompatibleInfer.callback_queque.
type callback func(licenses map[string]schema.LicenseFeature, graph *Graph)

// ruleContext is the state threaded through one rule-chain walk for a
// single ordered pair, equivalent to the positional args passed to each
// CompatibleRule.__call__ plus the engine-wide state each rule closes
// over (self.schemas, self.add_callback).
type ruleContext struct {
	schemas   schema.Schemas
	addCB     func(callback)
	allLicenseIDs []string
}

// ruleFunc is one link of the chain: given the pair and the edge produced
// by the previous link, decide the next rule name and the edge (if any)
// this link itself produced.
type ruleFunc func(ctx *ruleContext, graph *Graph, a, b schema.LicenseFeature, edge *Edge) (next string, result *Edge)

func ruleTable() map[string]ruleFunc {
	return map[string]ruleFunc{
		RulePublicDomain:          rulePublicDomain,
		RuleImmutability:          ruleImmutability,
		RuleExceptRelicense:       ruleExceptRelicense,
		RuleOrLaterRelicense:      ruleOrLaterRelicense,
		RuleComplianceRequirement: ruleComplianceRequirement,
		RuleClauseConflict:        ruleClauseConflict,
		RuleDefaultCompatible:     ruleDefaultCompatible,
	}
}

// rulePublicDomain: if either side is public-domain, they're
// unconditionally compatible and the chain ends immediately.
func rulePublicDomain(ctx *ruleContext, graph *Graph, a, b schema.LicenseFeature, edge *Edge) (string, *Edge) {
	if a.SPDXID == "public-domain" || b.SPDXID == "public-domain" {
		e := Edge{From: a.SPDXID, To: b.SPDXID, Compatibility: schema.UnconditionalCompatible, Rule: RulePublicDomain}
		graph.AddEdge(e)
		return RuleEnd, &e
	}
	return RuleImmutability, nil
}

// ruleImmutability: an immutable clause on either side is an automatic,
// unscoped incompatibility — no interoperability is possible.
func ruleImmutability(ctx *ruleContext, graph *Graph, a, b schema.LicenseFeature, edge *Edge) (string, *Edge) {
	immutable := func(l schema.LicenseFeature) bool {
		for _, f := range l.Features() {
			if ctx.schemas.HasProperty(f, schema.PropertyImmutability) {
				return true
			}
		}
		return false
	}
	if immutable(a) || immutable(b) {
		e := Edge{From: a.SPDXID, To: b.SPDXID, Compatibility: schema.Incompatible, Rule: RuleImmutability}
		graph.AddEdge(e)
		return RuleEnd, nil
	}
	return RuleExceptRelicense, nil
}

// ruleExceptRelicense queues a callback that checks whether license A's
// "relicense" special clause names a target already (un)conditionally
// compatible with B, narrowing or replacing an INCOMPATIBLE edge found
// for (A, B) once the rest of the graph has been built.
func ruleExceptRelicense(ctx *ruleContext, graph *Graph, a, b schema.LicenseFeature, edge *Edge) (string, *Edge) {
	relicense, ok := a.Special["relicense"]
	if ok && len(relicense.Target) != 0 {
		ctx.addCB(func(licenses map[string]schema.LicenseFeature, g *Graph) {
			exceptRelicenseCallback(g, a, b, relicense)
		})
	}
	return RuleOrLaterRelicense, nil
}

func exceptRelicenseCallback(g *Graph, a, b schema.LicenseFeature, relicense schema.ActionFeature) {
	if g.HasEdge(a.SPDXID, b.SPDXID, schema.UnconditionalCompatible) {
		return
	}
	for _, target := range relicense.Target {
		if g.HasEdge(target, b.SPDXID, schema.UnconditionalCompatible) {
			g.RemoveEdgesByLabel(a.SPDXID, b.SPDXID, schema.Incompatible)
			g.AddEdge(Edge{
				From: a.SPDXID, To: b.SPDXID,
				Compatibility: schema.ConditionalCompatible,
				Scope:         relicense.Scope, HasScope: true,
				Rule: RuleExceptRelicense,
			})
			return
		}

		for _, idx := range g.QueryByLabel(target, b.SPDXID, schema.ConditionalCompatible) {
			origin := g.EdgeAt(idx)
			if !origin.HasScope {
				continue
			}
			newScope := origin.Scope.Intersect(relicense.Scope)
			if !newScope.Bool() {
				continue
			}
			g.AddEdge(Edge{
				From: a.SPDXID, To: b.SPDXID,
				Compatibility: schema.ConditionalCompatible,
				Scope:         newScope, HasScope: true,
				Rule: RuleExceptRelicense,
			})
		}
	}
}

// ruleOrLaterRelicense queues a callback that, for an "-or-later" license,
// checks whether a later version in the same family is compatible with B
// and if so promotes (A, B) — and its symmetric pair — accordingly.
func ruleOrLaterRelicense(ctx *ruleContext, graph *Graph, a, b schema.LicenseFeature, edge *Edge) (string, *Edge) {
	if containsSubstr(a.SPDXID, "or-later") {
		ctx.addCB(func(licenses map[string]schema.LicenseFeature, g *Graph) {
			orLaterRelicenseCallback(g, a, b, ctx.allLicenseIDs)
		})
	}
	return RuleComplianceRequirement, nil
}

func containsSubstr(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func removeExistingEdges(g *Graph, a, b string, compatibility schema.CompatibilityType, biDirect bool) {
	g.RemoveEdgesByLabel(a, b, compatibility)
	if biDirect {
		g.RemoveEdgesByLabel(b, a, compatibility)
	}
}

func orLaterRelicenseCallback(g *Graph, a, b schema.LicenseFeature, allLicenseIDs []string) {
	if g.HasEdge(a.SPDXID, b.SPDXID, schema.UnconditionalCompatible) {
		return
	}

	currentVersion := normalizeVersion(versionOf(a.SPDXID))
	var laterLicenses []string
	for _, id := range findAllVersions(a.SPDXID, allLicenseIDs) {
		if containsSubstr(id, "or-later") {
			continue
		}
		if compareVersions(normalizeVersion(versionOf(id)), currentVersion) > 0 {
			laterLicenses = append(laterLicenses, id)
		}
	}

	for _, target := range laterLicenses {
		if target == b.SPDXID {
			removeExistingEdges(g, a.SPDXID, b.SPDXID, schema.Incompatible, true)
			g.AddEdge(Edge{From: a.SPDXID, To: b.SPDXID, Compatibility: schema.UnconditionalCompatible, Rule: RuleOrLaterRelicense})
			g.AddEdge(Edge{From: b.SPDXID, To: a.SPDXID, Compatibility: schema.UnconditionalCompatible, Rule: RuleOrLaterRelicense})
			continue
		}

		type pair struct{ x, y string }
		for _, p := range []pair{{target, b.SPDXID}, {b.SPDXID, target}} {
			if g.HasEdge(p.x, p.y, schema.UnconditionalCompatible) {
				removeExistingEdges(g, a.SPDXID, b.SPDXID, schema.Incompatible, true)
				removeExistingEdges(g, a.SPDXID, b.SPDXID, schema.ConditionalCompatible, true)

				from, to := resolvePair(a.SPDXID, b.SPDXID, p.x, p.y, target)
				g.AddEdge(Edge{From: from, To: to, Compatibility: schema.UnconditionalCompatible, Rule: RuleOrLaterRelicense, Path: target})
				continue
			}

			for _, idx := range g.QueryByLabel(target, p.y, schema.ConditionalCompatible) {
				origin := g.EdgeAt(idx)
				from, to := resolvePair(a.SPDXID, b.SPDXID, p.x, p.y, target)
				g.AddEdge(Edge{From: from, To: to, Compatibility: schema.ConditionalCompatible, Scope: origin.Scope, HasScope: origin.HasScope, Rule: RuleOrLaterRelicense, Path: target})
			}
		}
	}
}

// resolvePair maps the (x, y) = (target-or-B, target-or-B) probe pair
// back onto (license_a if x==target else license_b, license_a if
// y==target else license_b), per OrLaterRelicenseRule.callback.
func resolvePair(aID, bID, x, y, target string) (from, to string) {
	if x == target {
		from = aID
	} else {
		from = bID
	}
	if y == target {
		to = aID
	} else {
		to = bID
	}
	return
}

func versionOf(spdxID string) string {
	_, version, ok := extractVersion(spdxID)
	if !ok {
		return ""
	}
	return version
}

// ruleComplianceRequirement checks that neither license's compliance
// clauses are violated by the other's action tables.
func ruleComplianceRequirement(ctx *ruleContext, graph *Graph, a, b schema.LicenseFeature, edge *Edge) (string, *Edge) {
	if !checkCompliance(ctx.schemas, a, b) {
		graph.AddEdge(Edge{From: a.SPDXID, To: b.SPDXID, Compatibility: schema.Incompatible, Rule: RuleComplianceRequirement})
		return RuleEnd, nil
	}
	if !checkCompliance(ctx.schemas, b, a) {
		graph.AddEdge(Edge{From: a.SPDXID, To: b.SPDXID, Compatibility: schema.Incompatible, Rule: RuleComplianceRequirement})
		return RuleEnd, nil
	}
	return RuleClauseConflict, nil
}

// cloneFeature makes a shallow copy of l's four modal tables so a
// triggering substitution doesn't mutate the caller's LicenseFeature.
func cloneFeature(l schema.LicenseFeature) schema.LicenseFeature {
	clone := func(m map[string]schema.ActionFeature) map[string]schema.ActionFeature {
		out := make(map[string]schema.ActionFeature, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out
	}
	return schema.LicenseFeature{
		SPDXID:  l.SPDXID,
		Can:     clone(l.Can),
		Cannot:  clone(l.Cannot),
		Must:    clone(l.Must),
		Special: clone(l.Special),
	}
}

// checkCompliance reports whether a's compliance clauses are satisfiable
// given b's action tables, mirroring ComplianceRequirementRule.check_compliance.
func checkCompliance(schemas schema.Schemas, a, b schema.LicenseFeature) bool {
	workingA := a
	if triggering, ok := a.Special["triggering"]; ok {
		workingA = cloneFeature(a)
		for _, target := range triggering.Target {
			modal, action, ok := splitTrigger(target)
			if !ok {
				continue
			}
			table := workingA.ModalTable(schema.Modal(modal))
			if table != nil {
				table[action] = schema.NewActionFeature(action, schema.Modal(modal), nil, nil, nil)
			}
		}
	}

	for _, featA := range workingA.Features() {
		if !schemas.HasProperty(featA, schema.PropertyCompliance) {
			continue
		}
		for _, modal := range schemas.ComplianceModals(featA.Name) {
			aActions := workingA.ModalTable(modal)
			bActions := b.ModalTable(modal)

			isSubset := true
			for k := range bActions {
				if _, ok := aActions[k]; !ok {
					isSubset = false
					break
				}
			}
			if !isSubset {
				for k, bAction := range bActions {
					if _, ok := aActions[k]; ok {
						continue
					}
					conflictScope := bAction.Scope.Intersect(featA.Scope)
					if conflictScope.Bool() {
						return false
					}
				}
			}

			for k, aAction := range aActions {
				bAction, ok := bActions[k]
				if !ok {
					continue
				}
				if !aAction.Scope.Contains(bAction.Scope) {
					return false
				}
			}
		}
	}
	return true
}

func splitTrigger(s string) (modal, action string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

type modalPair struct{ a, b schema.Modal }

// ruleClauseConflict looks for can/must-vs-cannot clause collisions
// between A and B, producing either an unconditional incompatibility, a
// scoped conditional compatibility (recorded only for A's favorable
// scope, per the Python docstring's "directed graph" note), or falling
// through to DefaultCompatibleRule when nothing conflicts.
func ruleClauseConflict(ctx *ruleContext, graph *Graph, a, b schema.LicenseFeature, edge *Edge) (string, *Edge) {
	if graph.HasEdge(b.SPDXID, a.SPDXID, schema.UnconditionalCompatible) {
		return RuleDefaultCompatible, nil
	}

	conditionScope := schema.Universe()
	licenseAScope := schema.Universe()
	conflictFlag := false

	pairs := []modalPair{
		{schema.ModalCan, schema.ModalCannot},
		{schema.ModalCannot, schema.ModalCan},
		{schema.ModalMust, schema.ModalCannot},
		{schema.ModalCannot, schema.ModalMust},
	}

	for _, mp := range pairs {
		tableA := a.ModalTable(mp.a)
		tableB := b.ModalTable(mp.b)
		for name, actionA := range tableA {
			actionB, ok := tableB[name]
			if !ok {
				continue
			}

			if declaredPairs, explicit := ctx.schemas.ConflictModalPairs(name); explicit {
				matches := false
				for _, dp := range declaredPairs {
					if (dp.A == mp.a && dp.B == mp.b) || (dp.A == mp.b && dp.B == mp.a) {
						matches = true
						break
					}
				}
				if !matches {
					continue
				}
			}

			conflictScope := actionA.Scope.Intersect(actionB.Scope)
			if !conflictScope.Bool() {
				continue
			}
			if conflictScope.IsUniversal() {
				graph.AddEdge(Edge{From: a.SPDXID, To: b.SPDXID, Compatibility: schema.Incompatible, Rule: RuleClauseConflict})
				return RuleEnd, nil
			}

			compatibleScope := conflictScope.Negate()
			compatibleScope = compatibleScope.Intersect(actionA.Scope)
			if !compatibleScope.Bool() {
				graph.AddEdge(Edge{From: a.SPDXID, To: b.SPDXID, Compatibility: schema.Incompatible, Rule: RuleClauseConflict})
				return RuleEnd, nil
			}

			conflictFlag = true
			conditionScope = conditionScope.Intersect(compatibleScope)
			licenseAScope = licenseAScope.Intersect(compatibleScope)
		}
	}

	if !conflictFlag {
		return RuleDefaultCompatible, nil
	}
	if !conditionScope.Bool() {
		graph.AddEdge(Edge{From: a.SPDXID, To: b.SPDXID, Compatibility: schema.Incompatible, Rule: RuleClauseConflict})
		return RuleEnd, nil
	}

	var result *Edge
	if licenseAScope.Bool() {
		e := Edge{From: a.SPDXID, To: b.SPDXID, Compatibility: schema.ConditionalCompatible, Scope: licenseAScope, HasScope: true, Rule: RuleClauseConflict}
		graph.AddEdge(e)
		result = &e
	}
	return RuleEnd, result
}

// ruleDefaultCompatible is the fallthrough when no rule found a conflict:
// the licenses are unconditionally compatible.
func ruleDefaultCompatible(ctx *ruleContext, graph *Graph, a, b schema.LicenseFeature, edge *Edge) (string, *Edge) {
	e := Edge{From: a.SPDXID, To: b.SPDXID, Compatibility: schema.UnconditionalCompatible, Rule: RuleDefaultCompatible}
	graph.AddEdge(e)
	return RuleEnd, &e
}
