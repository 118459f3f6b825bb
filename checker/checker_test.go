// SPDX-License-Identifier: Apache-2.0
package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liscope/liscope/infer"
	"github.com/liscope/liscope/schema"
)

func buildLicenses() map[string]schema.LicenseFeature {
	mit := schema.LicenseFeature{
		SPDXID: "MIT",
		Can: map[string]schema.ActionFeature{
			"distribute": schema.NewActionFeature("distribute", schema.ModalCan, nil, nil, nil),
		},
	}
	gpl := schema.LicenseFeature{
		SPDXID: "GPL-2.0-only",
		Must: map[string]schema.ActionFeature{
			"disclose-source": schema.NewActionFeature("disclose-source", schema.ModalMust, nil, nil, nil),
		},
		Special: map[string]schema.ActionFeature{
			"relicense": schema.NewActionFeature("relicense", schema.ModalSpecial, nil, nil, []string{"GPL-3.0-only"}),
		},
	}
	gpl3 := schema.LicenseFeature{
		SPDXID: "GPL-3.0-only",
		Must: map[string]schema.ActionFeature{
			"disclose-source": schema.NewActionFeature("disclose-source", schema.ModalMust, nil, nil, nil),
		},
	}
	return map[string]schema.LicenseFeature{"MIT": mit, "GPL-2.0-only": gpl, "GPL-3.0-only": gpl3}
}

func buildSchemas() schema.Schemas {
	return schema.NewSchemas(map[string]schema.ActionSchema{
		"disclose-source": {Name: "disclose-source", Compliance: []schema.Modal{schema.ModalMust}},
	})
}

func TestCheckerCheckCompatibilityUnconditional(t *testing.T) {
	licenses := buildLicenses()
	kg, err := infer.Generate(buildSchemas(), licenses)
	require.NoError(t, err)

	c := New(kg, licenses)
	got := c.CheckCompatibility("MIT", "GPL-2.0-only", nil)
	assert.Equal(t, schema.UnconditionalCompatible, got)
}

func TestCheckerIsLicenseExist(t *testing.T) {
	licenses := buildLicenses()
	kg, err := infer.Generate(buildSchemas(), licenses)
	require.NoError(t, err)

	c := New(kg, licenses)
	assert.True(t, c.IsLicenseExist("MIT"))
	assert.False(t, c.IsLicenseExist("Unlicense"))
}

func TestCheckerIsCopyleftSPDX(t *testing.T) {
	licenses := buildLicenses()
	kg, err := infer.Generate(buildSchemas(), licenses)
	require.NoError(t, err)

	c := New(kg, licenses)
	assert.True(t, c.IsCopyleftSPDX("GPL-2.0-only"))
	assert.False(t, c.IsCopyleftSPDX("MIT"))
	assert.False(t, c.IsCopyleftSPDX("unknown-license"))
}

func TestCheckerGetRelicense(t *testing.T) {
	licenses := buildLicenses()
	kg, err := infer.Generate(buildSchemas(), licenses)
	require.NoError(t, err)

	c := New(kg, licenses)
	target, ok := c.GetRelicense("GPL-2.0-only", schema.Universe())
	require.True(t, ok)
	assert.Equal(t, "GPL-3.0-only", target)

	_, ok = c.GetRelicense("MIT", schema.Universe())
	assert.False(t, ok)
}

func TestCheckerCheckCompatibilityUnknownEdgeReturnsUnknown(t *testing.T) {
	licenses := buildLicenses()
	kg, err := infer.Generate(buildSchemas(), licenses)
	require.NoError(t, err)

	c := New(kg, licenses)
	got := c.CheckCompatibility("MIT", "not-a-license", nil)
	assert.Equal(t, schema.Unknown, got)
}
