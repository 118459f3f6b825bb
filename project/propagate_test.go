// SPDX-License-Identifier: Apache-2.0
package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liscope/liscope/checker"
	"github.com/liscope/liscope/config"
	"github.com/liscope/liscope/infer"
	"github.com/liscope/liscope/schema"
)

func permissive(id string) schema.LicenseFeature {
	return schema.LicenseFeature{
		SPDXID: id,
		Can: map[string]schema.ActionFeature{
			"distribute": schema.NewActionFeature("distribute", schema.ModalCan, nil, nil, nil),
		},
	}
}

func copyleft(id string) schema.LicenseFeature {
	return schema.LicenseFeature{
		SPDXID: id,
		Must: map[string]schema.ActionFeature{
			"disclose-source": schema.NewActionFeature("disclose-source", schema.ModalMust, nil, nil, nil),
		},
	}
}

func newTestChecker(t *testing.T, licenses map[string]schema.LicenseFeature) *checker.Checker {
	t.Helper()
	schemas := schema.NewSchemas(map[string]schema.ActionSchema{
		"disclose-source": {Name: "disclose-source", Compliance: []schema.Modal{schema.ModalMust}},
	})
	kg, err := infer.Generate(schemas, licenses)
	require.NoError(t, err)
	return checker.New(kg, licenses)
}

func TestPropagateCopyleftAlwaysSpreads(t *testing.T) {
	licenses := map[string]schema.LicenseFeature{
		"GPL-2.0-only": copyleft("GPL-2.0-only"),
	}
	c := newTestChecker(t, licenses)
	cfg := config.Config{LiteralMapping: map[string]string{"static-link": "STATIC_LINK"}}

	g := NewGraph()
	g.AddNode(&Node{ID: "app", Condition: "static-link"})
	g.AddNode(&Node{ID: "dep", Condition: "", DeclaredLicenses: schema.NewDualLicense([]schema.DualUnit{{SPDXID: "GPL-2.0-only"}}), HasDeclaredLicenses: true})
	g.AddDependency("app", "dep")

	require.NoError(t, Propagate(g, cfg, c))

	dep := g.Node("dep")
	require.True(t, dep.HasOutbound)
	assert.True(t, dep.Outbound.Bool())

	app := g.Node("app")
	require.True(t, app.HasOutbound)
	assert.True(t, app.Outbound.Bool())
}

func TestPropagatePermissiveOnlySpreadsWhenConfigured(t *testing.T) {
	licenses := map[string]schema.LicenseFeature{
		"MIT": permissive("MIT"),
	}
	c := newTestChecker(t, licenses)

	buildGraph := func() *Graph {
		g := NewGraph()
		g.AddNode(&Node{ID: "app"})
		g.AddNode(&Node{ID: "dep", Condition: "static-link", DeclaredLicenses: schema.NewDualLicense([]schema.DualUnit{{SPDXID: "MIT"}}), HasDeclaredLicenses: true})
		g.AddDependency("app", "dep")
		return g
	}

	noSpreadCfg := config.Config{LiteralMapping: map[string]string{"static-link": "STATIC_LINK"}}
	g1 := buildGraph()
	require.NoError(t, Propagate(g1, noSpreadCfg, c))
	assert.False(t, g1.Node("dep").Outbound.Bool())

	spreadCfg := config.Config{
		LiteralMapping: map[string]string{"static-link": "STATIC_LINK"},
		LicenseSpread:  config.LicenseSpread{SpreadConditions: []string{"STATIC_LINK"}},
	}
	g2 := buildGraph()
	require.NoError(t, Propagate(g2, spreadCfg, c))
	assert.True(t, g2.Node("dep").Outbound.Bool())
}

func TestPropagateIsolationBoundaryFlagsNode(t *testing.T) {
	licenses := map[string]schema.LicenseFeature{"MIT": permissive("MIT")}
	c := newTestChecker(t, licenses)
	cfg := config.Config{
		LiteralMapping:    map[string]string{"subprocess": "SUBPROCESS"},
		LicenseIsolations: []string{"SUBPROCESS"},
	}

	g := NewGraph()
	g.AddNode(&Node{ID: "app", Condition: "subprocess"})
	g.AddNode(&Node{ID: "dep", DeclaredLicenses: schema.NewDualLicense([]schema.DualUnit{{SPDXID: "MIT"}}), HasDeclaredLicenses: true})
	g.AddDependency("app", "dep")

	require.NoError(t, Propagate(g, cfg, c))
	assert.True(t, g.Node("app").LicenseIsolation)
}
