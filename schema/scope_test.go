// SPDX-License-Identifier: Apache-2.0
package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeIntersectWithUniverse(t *testing.T) {
	universe := Universe()
	static := NewScope(map[ScopeToken][]ScopeToken{ScopeStaticLink: nil})

	got := universe.Intersect(static)
	assert.True(t, got.Contains(static))
}

func TestScopeContainsEscapedKeyIsExcluded(t *testing.T) {
	s := NewScope(map[ScopeToken][]ScopeToken{ScopeUniverse: {ScopeStaticLink}})
	other := NewScope(map[ScopeToken][]ScopeToken{ScopeStaticLink: nil})

	assert.False(t, s.Contains(other))
}

func TestScopeNegateUniverseEscapeBecomesKey(t *testing.T) {
	s := NewScope(map[ScopeToken][]ScopeToken{ScopeUniverse: {ScopeStaticLink}})
	negated := s.Negate()

	assert.True(t, negated.Contains(NewScope(map[ScopeToken][]ScopeToken{ScopeStaticLink: nil})))
	assert.False(t, negated.IsUniversal())
}

func TestScopeEmptyIsNotUniversal(t *testing.T) {
	var empty Scope
	assert.False(t, empty.Bool())
	assert.False(t, empty.IsUniversal())
}

func TestScopeStringRoundTrip(t *testing.T) {
	s := NewScope(map[ScopeToken][]ScopeToken{ScopeStaticLink: {ScopeCompile}})
	raw := s.String()

	parsed, err := ScopeFromString(raw)
	assert.NoError(t, err)
	assert.True(t, s.Equal(parsed))
}

func TestScopeUnionNarrowsSharedKeyEscapes(t *testing.T) {
	a := NewScope(map[ScopeToken][]ScopeToken{ScopeStaticLink: {ScopeCompile, ScopeExecutable}})
	b := NewScope(map[ScopeToken][]ScopeToken{ScopeStaticLink: {ScopeCompile}})

	got := a.Union(b)
	escapes := got[ScopeStaticLink]
	_, hasCompile := escapes[ScopeCompile]
	_, hasExecutable := escapes[ScopeExecutable]

	assert.True(t, hasCompile)
	assert.False(t, hasExecutable)
}
