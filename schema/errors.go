// SPDX-License-Identifier: Apache-2.0
package schema

import "fmt"

// baseError is the common shell behind every error kind in this package:
// a short message that can be appended to as more context becomes
// available, matching the teacher's NewXXXError().AppendMessage(...) idiom.
type baseError struct {
	kind    string
	message string
}

func (e *baseError) Error() string {
	if e.message == "" {
		return e.kind
	}
	return fmt.Sprintf("%s%s", e.kind, e.message)
}

// AppendMessage appends additional context to the error message.
func (e *baseError) AppendMessage(s string) {
	e.message += s
}

// FormatError represents §7 error kind 1: a feature/config/project-graph
// file failed to parse in its expected format. Fatal.
type FormatError struct{ baseError }

func NewFormatError(path string, cause error) *FormatError {
	return &FormatError{baseError{kind: fmt.Sprintf("input format error: %s: %v", path, cause)}}
}

// SchemaViolationError represents §7 error kind 2: an action referenced by
// a license is absent from the schema. Fatal.
type SchemaViolationError struct{ baseError }

func NewSchemaViolationError(spdxID, action string) *SchemaViolationError {
	return &SchemaViolationError{baseError{
		kind: fmt.Sprintf("schema violation: license %q references unknown action %q", spdxID, action),
	}}
}

// CycleError represents §7 error kind 3: the project graph contains a cycle.
// Fatal.
type CycleError struct{ baseError }

func NewCycleError(participant string) *CycleError {
	return &CycleError{baseError{kind: fmt.Sprintf("project graph contains a cycle at node %q", participant)}}
}

// InferenceLoopError represents §7 error kind 4: a rule would be revisited
// for the same pair during knowledge-graph inference. Fatal (bug).
type InferenceLoopError struct{ baseError }

func NewInferenceLoopError(rule, licenseA, licenseB string) *InferenceLoopError {
	return &InferenceLoopError{baseError{
		kind: fmt.Sprintf("inference-loop violation: rule %q revisited for (%s, %s)", rule, licenseA, licenseB),
	}}
}

// UnknownLicenseError represents §7 error kind 5: an SPDX id is absent
// from the feature table and exception synthesis failed. Non-fatal unless
// ignore_unk=false and the id participates in a pair under test.
type UnknownLicenseError struct{ baseError }

func NewUnknownLicenseError(spdxID string) *UnknownLicenseError {
	return &UnknownLicenseError{baseError{kind: fmt.Sprintf("unknown license reference: %q", spdxID)}}
}

// UnresolvableWithError represents §7 error kind 6: the SPDX parser
// encountered WITH applied to a parenthesised expression.
type UnresolvableWithError struct {
	baseError
	Position int
}

func NewUnresolvableWithError(position int) *UnresolvableWithError {
	return &UnresolvableWithError{
		baseError: baseError{kind: fmt.Sprintf("unresolvable WITH at token %d: WITH cannot follow a parenthesised expression", position)},
		Position:  position,
	}
}
