// SPDX-License-Identifier: Apache-2.0
package schema

// CompatibilityType is the verdict attached to a compatibility-graph edge
// or returned by a compatibility query, per the GLOSSARY and constants.py's
// CompatibleType enum. The numeric values mirror the Python enum's
// ordering so severity comparisons ("is this verdict worse than that one")
// stay meaningful across the port.
type CompatibilityType int

const (
	UnconditionalCompatible CompatibilityType = iota
	ConditionalCompatible
	// PartialIncompatible is retained for wire compatibility with the
	// original enum (§9 open question 1) but is never produced by the
	// rule chain in infer: no rule in this engine emits it.
	PartialIncompatible
	Incompatible
	Unknown
)

func (c CompatibilityType) String() string {
	switch c {
	case UnconditionalCompatible:
		return "UNCONDITIONAL_COMPATIBLE"
	case ConditionalCompatible:
		return "CONDITIONAL_COMPATIBLE"
	case PartialIncompatible:
		return "PARTIAL_INCOMPATIBLE"
	case Incompatible:
		return "INCOMPATIBLE"
	default:
		return "UNKNOWN"
	}
}
