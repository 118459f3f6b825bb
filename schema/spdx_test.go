// SPDX-License-Identifier: Apache-2.0
package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSPDXExpressionBareIdentifier(t *testing.T) {
	dl, err := ParseSPDXExpression("MIT", nil)
	require.NoError(t, err)
	groups := dl.Groups()
	require.Len(t, groups, 1)
	require.Len(t, groups[0], 1)
	assert.Equal(t, "MIT", groups[0][0].SPDXID)
}

func TestParseSPDXExpressionOrProducesTwoGroups(t *testing.T) {
	dl, err := ParseSPDXExpression("MIT OR Apache-2.0", nil)
	require.NoError(t, err)
	assert.Len(t, dl.Groups(), 2)
}

func TestParseSPDXExpressionAndProducesOneGroupOfTwo(t *testing.T) {
	dl, err := ParseSPDXExpression("MIT AND Apache-2.0", nil)
	require.NoError(t, err)
	groups := dl.Groups()
	require.Len(t, groups, 1)
	assert.Len(t, groups[0], 2)
}

func TestParseSPDXExpressionWithException(t *testing.T) {
	dl, err := ParseSPDXExpression("GPL-2.0-only WITH Classpath-exception-2.0", nil)
	require.NoError(t, err)
	groups := dl.Groups()
	require.Len(t, groups, 1)
	require.Len(t, groups[0], 1)
	assert.Equal(t, []string{"Classpath-exception-2.0"}, groups[0][0].Exceptions)
}

func TestParseSPDXExpressionParenthesizedPrecedence(t *testing.T) {
	dl, err := ParseSPDXExpression("(MIT OR Apache-2.0) AND GPL-2.0-only", nil)
	require.NoError(t, err)
	assert.Len(t, dl.Groups(), 2)
	for _, g := range dl.Groups() {
		assert.Len(t, g, 2)
	}
}

func TestParseSPDXExpressionWithAfterParenthesisIsUnresolvable(t *testing.T) {
	_, err := ParseSPDXExpression("(MIT) WITH Classpath-exception-2.0", nil)
	require.Error(t, err)
	var target *UnresolvableWithError
	assert.ErrorAs(t, err, &target)
}

func TestParseSPDXExpressionTrailingTokenIsFormatError(t *testing.T) {
	_, err := ParseSPDXExpression("MIT Apache-2.0", nil)
	require.Error(t, err)
	var target *FormatError
	assert.ErrorAs(t, err, &target)
}

func TestParseSPDXExpressionAppliesPreprocessor(t *testing.T) {
	dl, err := ParseSPDXExpression("mit", func(id string) string {
		if id == "mit" {
			return "MIT"
		}
		return id
	})
	require.NoError(t, err)
	assert.Equal(t, "MIT", dl.Groups()[0][0].SPDXID)
}

func TestHasLogicalConjunctionOrPreposition(t *testing.T) {
	assert.True(t, HasLogicalConjunctionOrPreposition("MIT AND Apache-2.0"))
	assert.True(t, HasLogicalConjunctionOrPreposition("GPL-2.0-only WITH Classpath-exception-2.0"))
	assert.False(t, HasLogicalConjunctionOrPreposition("MIT"))
}
