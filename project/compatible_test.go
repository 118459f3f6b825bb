// SPDX-License-Identifier: Apache-2.0
package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liscope/liscope/checker"
	"github.com/liscope/liscope/infer"
	"github.com/liscope/liscope/schema"
)

func incompatiblePair(t *testing.T) (map[string]schema.LicenseFeature, schema.Schemas) {
	t.Helper()
	licenses := map[string]schema.LicenseFeature{
		"GPL-2.0-only": {
			SPDXID: "GPL-2.0-only",
			Must: map[string]schema.ActionFeature{
				"disclose-source": schema.NewActionFeature("disclose-source", schema.ModalMust, nil, nil, nil),
			},
		},
		"CC-BY-NC-4.0": {
			SPDXID: "CC-BY-NC-4.0",
			Cannot: map[string]schema.ActionFeature{
				"disclose-source": schema.NewActionFeature("disclose-source", schema.ModalCannot, nil, nil, nil),
			},
		},
	}
	schemas := schema.NewSchemas(map[string]schema.ActionSchema{
		"disclose-source": {
			Name:               "disclose-source",
			Compliance:         []schema.Modal{schema.ModalMust},
			ConflictModalPairs: []schema.ModalPair{{A: schema.ModalMust, B: schema.ModalCannot}},
		},
	})
	return licenses, schemas
}

func TestCheckConflictsFlagsNodeWithNoCompatibleAlternative(t *testing.T) {
	licenses, schemas := incompatiblePair(t)
	kg, err := infer.Generate(schemas, licenses)
	require.NoError(t, err)
	c := checker.New(kg, licenses)

	g := NewGraph()
	node := &Node{
		ID: "app",
		BeforeCheck: schema.NewDualLicense([]schema.DualUnit{
			{SPDXID: "GPL-2.0-only"},
			{SPDXID: "CC-BY-NC-4.0"},
		}),
		HasBeforeCheck: true,
	}
	g.AddNode(node)

	_, err = CheckConflicts(g, c, CheckOptions{})
	require.NoError(t, err)

	assert.NotNil(t, g.Node("app").Conflict)
}

func TestCheckConflictsBlacklistRemovesGroup(t *testing.T) {
	licenses, schemas := incompatiblePair(t)
	kg, err := infer.Generate(schemas, licenses)
	require.NoError(t, err)
	c := checker.New(kg, licenses)

	g := NewGraph()
	node := &Node{
		ID: "app",
		BeforeCheck: schema.NewDualLicense([]schema.DualUnit{
			{SPDXID: "GPL-2.0-only"},
		}),
		HasBeforeCheck: true,
	}
	g.AddNode(node)

	_, err = CheckConflicts(g, c, CheckOptions{Blacklist: []string{"GPL-2.0-only"}})
	require.NoError(t, err)
	assert.NotNil(t, g.Node("app").Conflict)
}

func TestCheckConflictsNoConflictLeavesNodeClean(t *testing.T) {
	licenses := map[string]schema.LicenseFeature{
		"MIT":        permissive("MIT"),
		"Apache-2.0": permissive("Apache-2.0"),
	}
	c := newTestChecker(t, licenses)

	g := NewGraph()
	node := &Node{
		ID: "app",
		BeforeCheck: schema.NewDualLicense([]schema.DualUnit{
			{SPDXID: "MIT"}, {SPDXID: "Apache-2.0"},
		}),
		HasBeforeCheck: true,
	}
	g.AddNode(node)

	_, err := CheckConflicts(g, c, CheckOptions{})
	require.NoError(t, err)
	assert.Nil(t, g.Node("app").Conflict)
}

func TestCheckConflictsDedupsEquivalentPatternsAcrossNodes(t *testing.T) {
	licenses, schemas := incompatiblePair(t)
	kg, err := infer.Generate(schemas, licenses)
	require.NoError(t, err)
	c := checker.New(kg, licenses)

	g := NewGraph()
	pattern := schema.NewDualLicense([]schema.DualUnit{
		{SPDXID: "GPL-2.0-only"},
		{SPDXID: "CC-BY-NC-4.0"},
	})
	one := &Node{ID: "one", BeforeCheck: pattern, HasBeforeCheck: true, HasDeclaredLicenses: true, DeclaredLicenses: pattern}
	two := &Node{ID: "two", BeforeCheck: pattern, HasBeforeCheck: true, HasDeclaredLicenses: true, DeclaredLicenses: pattern}
	g.AddNode(one)
	g.AddNode(two)

	table, err := CheckConflicts(g, c, CheckOptions{})
	require.NoError(t, err)

	require.Len(t, table.Records(), 1, "two nodes with the identical conflict pattern must share one record")
	record := table.Records()[0]

	require.Len(t, one.ConflictGroup, 1)
	require.Len(t, two.ConflictGroup, 1)
	assert.Equal(t, record.ID, one.ConflictGroup[0])
	assert.Equal(t, record.ID, two.ConflictGroup[0])

	assert.ElementsMatch(t, []string{"one", "two"}, record.NodeLabels("GPL-2.0-only"))
	assert.ElementsMatch(t, []string{"one", "two"}, record.NodeLabels("CC-BY-NC-4.0"))
}

func TestConflictKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, conflictKey([]string{"a", "b"}), conflictKey([]string{"b", "a"}))
}

func TestPatternKeyIsOrderIndependent(t *testing.T) {
	a := [][]string{{"GPL-2.0-only", "CC-BY-NC-4.0"}, {"Foo"}}
	b := [][]string{{"Foo"}, {"CC-BY-NC-4.0", "GPL-2.0-only"}}
	assert.Equal(t, patternKey(a), patternKey(b))
}
