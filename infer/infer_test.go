// SPDX-License-Identifier: Apache-2.0
package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liscope/liscope/schema"
)

func permissiveFeature(id string) schema.LicenseFeature {
	return schema.LicenseFeature{
		SPDXID: id,
		Can: map[string]schema.ActionFeature{
			"distribute": schema.NewActionFeature("distribute", schema.ModalCan, nil, nil, nil),
		},
	}
}

func copyleftFeature(id string) schema.LicenseFeature {
	return schema.LicenseFeature{
		SPDXID: id,
		Must: map[string]schema.ActionFeature{
			"disclose-source": schema.NewActionFeature("disclose-source", schema.ModalMust, nil, nil, nil),
		},
	}
}

func testSchemas() schema.Schemas {
	return schema.NewSchemas(map[string]schema.ActionSchema{
		"disclose-source": {Name: "disclose-source", Compliance: []schema.Modal{schema.ModalMust}},
	})
}

func TestGenerateDefaultsToUnconditionalCompatible(t *testing.T) {
	licenses := map[string]schema.LicenseFeature{
		"MIT":        permissiveFeature("MIT"),
		"Apache-2.0": permissiveFeature("Apache-2.0"),
	}

	kg, err := Generate(testSchemas(), licenses)
	require.NoError(t, err)

	edge, ok := findFirst(kg.CompatibleGraph, "MIT", "Apache-2.0")
	require.True(t, ok)
	assert.Equal(t, schema.UnconditionalCompatible, edge.Compatibility)
}

func TestGenerateIsDeterministicAcrossRuns(t *testing.T) {
	licenses := map[string]schema.LicenseFeature{
		"MIT":           permissiveFeature("MIT"),
		"Apache-2.0":    permissiveFeature("Apache-2.0"),
		"GPL-2.0-only":  copyleftFeature("GPL-2.0-only"),
		"public-domain": permissiveFeature("public-domain"),
	}

	first, err := Generate(testSchemas(), licenses)
	require.NoError(t, err)
	second, err := Generate(testSchemas(), licenses)
	require.NoError(t, err)

	assert.Equal(t, first.CompatibleGraph.Edges(), second.CompatibleGraph.Edges())
}

func TestGeneratePublicDomainIsAlwaysCompatible(t *testing.T) {
	licenses := map[string]schema.LicenseFeature{
		"public-domain": permissiveFeature("public-domain"),
		"GPL-2.0-only":  copyleftFeature("GPL-2.0-only"),
	}

	kg, err := Generate(testSchemas(), licenses)
	require.NoError(t, err)

	edge, ok := findFirst(kg.CompatibleGraph, "public-domain", "GPL-2.0-only")
	require.True(t, ok)
	assert.Equal(t, schema.UnconditionalCompatible, edge.Compatibility)
}

func TestGenerateImmutableClauseIsIncompatible(t *testing.T) {
	schemas := schema.NewSchemas(map[string]schema.ActionSchema{
		"no-relicense": {Name: "no-relicense", Immutability: true},
	})
	licenses := map[string]schema.LicenseFeature{
		"CC-BY-NC-4.0": {
			SPDXID: "CC-BY-NC-4.0",
			Cannot: map[string]schema.ActionFeature{
				"no-relicense": schema.NewActionFeature("no-relicense", schema.ModalCannot, nil, nil, nil),
			},
		},
		"MIT": permissiveFeature("MIT"),
	}

	kg, err := Generate(schemas, licenses)
	require.NoError(t, err)

	edge, ok := findFirst(kg.CompatibleGraph, "CC-BY-NC-4.0", "MIT")
	require.True(t, ok)
	assert.Equal(t, schema.Incompatible, edge.Compatibility)
}

func TestGenerateRecordsPropertiesForEveryLicense(t *testing.T) {
	licenses := map[string]schema.LicenseFeature{
		"MIT":          permissiveFeature("MIT"),
		"GPL-2.0-only": copyleftFeature("GPL-2.0-only"),
	}

	kg, err := Generate(testSchemas(), licenses)
	require.NoError(t, err)

	var sawDistribute, sawDisclose bool
	for _, tr := range kg.PropertyGraph.Triples() {
		if tr.License == "MIT" && tr.Feature == "distribute" {
			sawDistribute = true
		}
		if tr.License == "GPL-2.0-only" && tr.Feature == "disclose-source" {
			sawDisclose = true
		}
	}
	assert.True(t, sawDistribute)
	assert.True(t, sawDisclose)
}

func TestPropertyGraphByLicenseIndexesPerLicense(t *testing.T) {
	licenses := map[string]schema.LicenseFeature{
		"MIT":          permissiveFeature("MIT"),
		"GPL-2.0-only": copyleftFeature("GPL-2.0-only"),
	}

	kg, err := Generate(testSchemas(), licenses)
	require.NoError(t, err)

	mit := kg.PropertyGraph.ByLicense("MIT")
	require.Len(t, mit, 1)
	assert.Equal(t, "distribute", mit[0].Feature)

	assert.Empty(t, kg.PropertyGraph.ByLicense("unknown-license"))
}

func findFirst(g *Graph, from, to string) (Edge, bool) {
	for _, e := range g.Edges() {
		if e.From == from && e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}
