// SPDX-License-Identifier: Apache-2.0
package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func unit(id string) DualUnit { return DualUnit{SPDXID: id} }

func TestDualLicenseBoolFalsyCases(t *testing.T) {
	assert.False(t, EmptyDualLicense().Bool())
	assert.False(t, NewDualLicense([]DualUnit{}).Bool())
	assert.True(t, NewDualLicense([]DualUnit{unit("MIT")}).Bool())
}

func TestDualLicenseAndDistributes(t *testing.T) {
	a := NewDualLicense([]DualUnit{unit("MIT")}, []DualUnit{unit("Apache-2.0")})
	b := NewDualLicense([]DualUnit{unit("GPL-2.0-only")})

	got := a.And(b)
	groups := got.Groups()
	assert.Len(t, groups, 2)
	for _, g := range groups {
		assert.Len(t, g, 2)
	}
}

func TestDualLicenseOrUnionsGroups(t *testing.T) {
	a := NewDualLicense([]DualUnit{unit("MIT")})
	b := NewDualLicense([]DualUnit{unit("Apache-2.0")})

	got := a.Or(b)
	assert.Len(t, got.Groups(), 2)
}

func TestDualLicenseAddConditionKeepsOriginalVariant(t *testing.T) {
	dl := NewDualLicense([]DualUnit{{SPDXID: "MIT", Condition: "static-link"}})
	got := dl.AddCondition("dynamic-link")

	var sawOriginal, sawNew bool
	for _, group := range got.Groups() {
		for _, u := range group {
			if u.Condition == "static-link" {
				sawOriginal = true
			}
			if u.Condition == "dynamic-link" {
				sawNew = true
			}
		}
	}
	assert.True(t, sawOriginal)
	assert.True(t, sawNew)
}

func TestDualLicenseMarshalRoundTrip(t *testing.T) {
	dl := NewDualLicense([]DualUnit{unit("MIT")}, []DualUnit{{SPDXID: "GPL-2.0-only", Exceptions: []string{"Classpath-exception-2.0"}}})

	raw, err := dl.MarshalJSON()
	assert.NoError(t, err)

	got, err := DualLicenseFromString(string(raw))
	assert.NoError(t, err)
	assert.Equal(t, dl.Groups(), got.Groups())
}

func TestDualUnitSPDXWithExceptions(t *testing.T) {
	u := DualUnit{SPDXID: "GPL-2.0-only", Exceptions: []string{"Classpath-exception-2.0"}}
	assert.Equal(t, "GPL-2.0-only-with-Classpath-exception-2.0", u.UnitSPDX())
}
