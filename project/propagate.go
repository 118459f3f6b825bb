// SPDX-License-Identifier: Apache-2.0
package project

import (
	"github.com/liscope/liscope/checker"
	"github.com/liscope/liscope/config"
	"github.com/liscope/liscope/internal/logger"
	"github.com/liscope/liscope/schema"
)

// Propagate runs the reverse-topological propagation pass (§7's Pass A):
// each node's outbound obligations are the AND of its dependencies'
// outbound obligations, narrowed by its own usage condition and whatever
// it declares directly, mirroring BasePropagateParser.parse.
func Propagate(g *Graph, cfg config.Config, c *checker.Checker) error {
	order, err := g.ReverseTopologicalOrder()
	if err != nil {
		return err
	}

	for _, id := range order {
		node := g.Node(id)

		var currentOutbound schema.DualLicense
		hasCurrent := false
		if node.HasDeclaredLicenses {
			currentOutbound = node.DeclaredLicenses
			hasCurrent = true
		}

		condition := cfg.Literal2Enum(node.Condition)
		if cfg.IsIsolationBoundary(condition) {
			node.LicenseIsolation = true
		}

		for _, childID := range g.Dependencies(id) {
			child := g.Node(childID)
			if child == nil || !child.HasOutbound || !child.Outbound.Bool() {
				continue
			}
			if !hasCurrent {
				currentOutbound = child.Outbound
				hasCurrent = true
			} else {
				currentOutbound = currentOutbound.And(child.Outbound)
			}
		}

		if !hasCurrent || !currentOutbound.Bool() {
			continue
		}

		node.BeforeCheck = currentOutbound
		node.HasBeforeCheck = true

		conditioned := currentOutbound.AddCondition(condition)
		node.Outbound = getOutbound(cfg, c, conditioned, condition)
		node.HasOutbound = true
	}

	return nil
}

// getOutbound narrows a dual license down to the units that actually carry
// forward to the consumer under condition: units referring to unknown
// licenses drop out, units attached under an isolation boundary drop out,
// units that relicense to the public domain drop out, copyleft units
// always spread, and permissive units spread only when the condition is a
// configured (or DEFAULT) spread condition. Mirrors
// BasePropagateParser.get_outbound.
func getOutbound(cfg config.Config, c *checker.Checker, dual schema.DualLicense, condition string) schema.DualLicense {
	if !dual.Bool() {
		return dual
	}

	var groups [][]schema.DualUnit
	for _, group := range dual.Groups() {
		var newGroup []schema.DualUnit
		for _, unit := range group {
			if !c.IsLicenseExist(unit.SPDXID) {
				continue
			}
			if cfg.IsIsolationBoundary(unit.Condition) {
				continue
			}

			unitScope := schema.NewScope(map[schema.ScopeToken][]schema.ScopeToken{schema.ScopeToken(unit.Condition): nil})
			if relicenseID, ok := c.GetRelicense(unit.SPDXID, unitScope); ok && relicenseID == "public-domain" {
				continue
			}

			if c.IsCopyleftSPDX(unit.SPDXID) {
				newGroup = append(newGroup, schema.DualUnit{SPDXID: unit.SPDXID, Condition: condition, Exceptions: unit.Exceptions})
			} else if cfg.Spreads(condition) {
				newGroup = append(newGroup, schema.DualUnit{SPDXID: unit.SPDXID, Condition: condition, Exceptions: unit.Exceptions})
			}
		}
		if len(newGroup) > 0 {
			groups = append(groups, newGroup)
		}
	}

	if len(groups) == 0 {
		logger.Log().Debugf("node propagates no outbound obligations under condition %q", condition)
	}
	return schema.NewDualLicense(groups...)
}
