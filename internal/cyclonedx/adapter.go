// SPDX-License-Identifier: Apache-2.0

// Package cyclonedx translates a CycloneDX BOM's component/dependency graph
// into a project.Graph, so the compatibility engine can run against real
// SBOM input instead of a hand-built graph. It does no license detection of
// its own: a component's licenses come straight from its declared
// LicenseChoice entries.
package cyclonedx

import (
	"github.com/CycloneDX/cyclonedx-go"

	"github.com/liscope/liscope/internal/logger"
	"github.com/liscope/liscope/project"
	"github.com/liscope/liscope/schema"
)

// BuildGraph walks bom.Components and bom.Dependencies into a project.Graph:
// one Node per component (keyed by BOM-ref, falling back to the package URL
// when a component carries no ref), with its declared SPDX license
// expression parsed to a DualLicense, and one dependency edge per
// Dependencies[].Ref -> Dependencies[].Dependencies[] pair.
func BuildGraph(bom *cyclonedx.BOM) (*project.Graph, error) {
	g := project.NewGraph()

	if bom.Metadata != nil && bom.Metadata.Component != nil {
		if err := addComponent(g, *bom.Metadata.Component); err != nil {
			return nil, err
		}
	}

	if bom.Components != nil {
		for _, c := range *bom.Components {
			if err := addComponent(g, c); err != nil {
				return nil, err
			}
			if c.Components != nil {
				for _, nested := range *c.Components {
					if err := addComponent(g, nested); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	if bom.Dependencies != nil {
		for _, dep := range *bom.Dependencies {
			if dep.Dependencies == nil || g.Node(dep.Ref) == nil {
				continue
			}
			for _, ref := range *dep.Dependencies {
				if g.Node(ref) == nil {
					logger.Log().Warningf("dependency edge %s -> %s references an unknown component, skipping", dep.Ref, ref)
					continue
				}
				g.AddDependency(dep.Ref, ref)
			}
		}
	}

	return g, nil
}

func componentRef(c cyclonedx.Component) string {
	if c.BOMRef != "" {
		return c.BOMRef
	}
	return c.PackageURL
}

func addComponent(g *project.Graph, c cyclonedx.Component) error {
	ref := componentRef(c)
	if ref == "" {
		logger.Log().Warningf("component %q has no bom-ref or package URL, skipping", c.Name)
		return nil
	}

	node := &project.Node{ID: ref}

	dual, ok, err := componentLicenses(c)
	if err != nil {
		return err
	}
	if ok {
		node.DeclaredLicenses = dual
		node.HasDeclaredLicenses = true
	}

	g.AddNode(node)
	return nil
}

// componentLicenses folds every LicenseChoice a component declares into one
// DualLicense: an "expression" choice is parsed as SPDX and ANDed in, a
// plain "license" choice contributes its id as a single-unit group ANDed in
// (mirroring SPDX's documented interpretation for multiple LicenseChoice
// entries: callers must satisfy all of them, each of which may itself offer
// a choice).
func componentLicenses(c cyclonedx.Component) (schema.DualLicense, bool, error) {
	if c.Licenses == nil || len(*c.Licenses) == 0 {
		return schema.DualLicense{}, false, nil
	}

	result := schema.NewDualLicense([]schema.DualUnit{})
	found := false

	for _, choice := range *c.Licenses {
		if choice.Expression != "" {
			dual, err := schema.ParseSPDXExpression(choice.Expression, nil)
			if err != nil {
				return schema.DualLicense{}, false, err
			}
			if !found {
				result = dual
			} else {
				result = result.And(dual)
			}
			found = true
			continue
		}
		if choice.License == nil || choice.License.ID == "" {
			continue
		}
		unit := schema.NewDualLicense([]schema.DualUnit{{SPDXID: choice.License.ID}})
		if !found {
			result = unit
		} else {
			result = result.And(unit)
		}
		found = true
	}

	return result, found, nil
}
