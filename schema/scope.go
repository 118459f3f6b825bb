// SPDX-License-Identifier: Apache-2.0
package schema

import (
	"sort"

	"github.com/iancoleman/orderedmap"
)

// ScopeToken is a protect-scope or escape-scope key: either the universal
// token or a specific usage condition (e.g. STATIC_LINK).
type ScopeToken string

// ScopeUniverse is the sentinel protect-scope token meaning "every usage
// condition", per §3.
const ScopeUniverse ScopeToken = "UNIVERSAL"

// Usage condition literals, per the GLOSSARY.
const (
	ScopeCompile        ScopeToken = "COMPILE"
	ScopeStaticLink     ScopeToken = "STATIC_LINK"
	ScopeDynamicLink    ScopeToken = "DYNAMIC_LINK"
	ScopeExecutable     ScopeToken = "EXECUTABLE"
)

// Scope is a mapping from protect-scope tokens to a set of escape-scope
// tokens: semantically the set of usage conditions covered by each
// protect-scope key, minus that key's escapes. An empty Scope is the
// empty set; Universe() with no escapes is the whole universe. See §3/§4.1.
type Scope map[ScopeToken]map[ScopeToken]struct{}

// NewScope builds a Scope from plain key -> []token pairs.
func NewScope(pairs map[ScopeToken][]ScopeToken) Scope {
	s := make(Scope, len(pairs))
	for k, escapes := range pairs {
		set := make(map[ScopeToken]struct{}, len(escapes))
		for _, e := range escapes {
			set[e] = struct{}{}
		}
		s[k] = set
	}
	return s
}

// Universe returns the scope that covers every usage condition.
func Universe() Scope {
	return Scope{ScopeUniverse: {}}
}

func emptySet() map[ScopeToken]struct{} { return map[ScopeToken]struct{}{} }

func unionSet(a, b map[ScopeToken]struct{}) map[ScopeToken]struct{} {
	out := make(map[ScopeToken]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

func intersectSet(a, b map[ScopeToken]struct{}) map[ScopeToken]struct{} {
	out := make(map[ScopeToken]struct{})
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func subtractSet(a, b map[ScopeToken]struct{}) map[ScopeToken]struct{} {
	out := make(map[ScopeToken]struct{})
	for k := range a {
		if _, ok := b[k]; !ok {
			out[k] = struct{}{}
		}
	}
	return out
}

// simplify runs the idempotent normalisation from §4.1: if UNIVERSE maps
// to the empty escape set, every other key is redundant; any key listing
// itself as an escape is dropped entirely.
func simplify(s Scope) Scope {
	if escapes, ok := s[ScopeUniverse]; ok && len(escapes) == 0 {
		return Scope{ScopeUniverse: emptySet()}
	}

	out := make(Scope, len(s))
	for k, escapes := range s {
		if _, selfEscape := escapes[k]; selfEscape {
			continue
		}
		out[k] = escapes
	}
	return out
}

// Intersect implements §4.1's intersection: for each key present in
// either operand, escapes accumulate (widening what's excluded), cross-
// joining UNIVERSE's escapes into every other key when UNIVERSE is present
// on either side. The result is the set-theoretic intersection.
func (s Scope) Intersect(other Scope) Scope {
	a := simplify(s)
	b := simplify(other)
	out := make(Scope)

	if uEscapes, ok := a[ScopeUniverse]; ok {
		for k, escapes := range b {
			out[k] = unionSet(escapes, uEscapes)
		}
	}
	if uEscapes, ok := b[ScopeUniverse]; ok {
		for k, escapes := range a {
			out[k] = unionSet(unionSet(escapes, uEscapes), out[k])
		}
	}
	for k, escapesA := range a {
		escapesB, ok := b[k]
		if !ok {
			continue
		}
		out[k] = unionSet(unionSet(escapesA, escapesB), out[k])
	}
	return simplify(out)
}

// Union implements §4.1's union: keys present in both operands keep only
// the escapes common to both (the covered region widens); keys present in
// only one operand carry through unchanged.
func (s Scope) Union(other Scope) Scope {
	a := simplify(s)
	b := simplify(other)
	out := make(Scope)
	visited := make(map[ScopeToken]struct{})

	for k, escapesA := range a {
		escapesB, ok := b[k]
		if !ok {
			out[k] = escapesA
			continue
		}
		visited[k] = struct{}{}
		inter := intersectSet(escapesA, escapesB)
		out[k] = inter
	}
	for k, escapesB := range b {
		if _, ok := visited[k]; ok {
			continue
		}
		out[k] = escapesB
	}
	return simplify(out)
}

// Contains implements §4.1's containment: Y ⊆ X iff every key of Y is
// either present in X with a subset escape set, or covered by X's
// UNIVERSE entry (the key is not one of UNIVERSE's escapes).
func (s Scope) Contains(other Scope) bool {
	a := simplify(s)
	b := simplify(other)

	uncovered := make(Scope)
	for k, escapesB := range b {
		escapesA, ok := a[k]
		if !ok {
			uncovered[k] = escapesB
			continue
		}
		remaining := subtractSet(escapesA, escapesB)
		if len(remaining) > 0 {
			uncovered[k] = remaining
		}
	}
	if len(uncovered) == 0 {
		return true
	}

	uEscapes, ok := a[ScopeUniverse]
	if !ok {
		return false
	}
	for k := range uncovered {
		if _, escaped := uEscapes[k]; escaped {
			return false
		}
	}
	return true
}

// Negate implements §4.1's negation: flips the role of keys and escapes.
// Each escape in self becomes a new key whose escape set is {k}, except
// when k is UNIVERSE, in which case the new key's escape set is empty.
func (s Scope) Negate() Scope {
	if !s.Bool() {
		return Universe()
	}

	out := make(Scope)
	for k, escapes := range s {
		for v := range escapes {
			if _, ok := out[v]; !ok {
				out[v] = emptySet()
			}
			if k == ScopeUniverse {
				out[v] = emptySet()
				continue
			}
			out[v][k] = struct{}{}
		}
	}
	return out
}

// Bool reports whether the scope is non-empty after simplification.
func (s Scope) Bool() bool {
	return len(simplify(s)) != 0
}

// IsUniversal reports whether the scope covers every usage condition.
func (s Scope) IsUniversal() bool {
	escapes, ok := s[ScopeUniverse]
	return ok && len(escapes) == 0
}

// ProtectScope lists the protect-scope keys in sorted order (for stable
// output; the underlying map has no intrinsic order).
func (s Scope) ProtectScope() []ScopeToken {
	keys := make([]ScopeToken, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// String serialises the scope as a JSON object {k: [escapes...]}, using
// an ordered map so insertion order (here: sorted key order, since Go maps
// carry no order of their own) round-trips predictably.
func (s Scope) String() string {
	om := orderedmap.New()
	for _, k := range s.ProtectScope() {
		escapes := make([]string, 0, len(s[k]))
		for e := range s[k] {
			escapes = append(escapes, string(e))
		}
		sort.Strings(escapes)
		om.Set(string(k), escapes)
	}
	b, err := om.MarshalJSON()
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ScopeFromString parses the JSON object form produced by String().
func ScopeFromString(raw string) (Scope, error) {
	om := orderedmap.New()
	if err := om.UnmarshalJSON([]byte(raw)); err != nil {
		return nil, err
	}
	s := make(Scope)
	for _, k := range om.Keys() {
		v, _ := om.Get(k)
		escapes, ok := v.([]interface{})
		if !ok {
			continue
		}
		set := make(map[ScopeToken]struct{}, len(escapes))
		for _, e := range escapes {
			if str, ok := e.(string); ok {
				set[ScopeToken(str)] = struct{}{}
			}
		}
		s[ScopeToken(k)] = set
	}
	return s, nil
}

// Equal compares two scopes after simplification.
func (s Scope) Equal(other Scope) bool {
	return simplify(s).String() == simplify(other).String()
}
