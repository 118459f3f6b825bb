// SPDX-License-Identifier: Apache-2.0
package schema

import (
	"encoding/json"
	"sort"
	"strings"
)

// DualUnit is one license atom within a DualLicense group: an SPDX id, an
// optional usage condition, and an ordered list of WITH exceptions. Per
// §3, equality and hashing use all three fields.
type DualUnit struct {
	SPDXID     string
	Condition  string
	Exceptions []string
}

// UnitSPDX returns spdx_id, or spdx_id + "-with-" + join(exceptions, "-with-")
// when exceptions are present, per §3.
func (u DualUnit) UnitSPDX() string {
	if len(u.Exceptions) == 0 {
		return u.SPDXID
	}
	return u.SPDXID + "-with-" + strings.Join(u.Exceptions, "-with-")
}

// key is the canonical hashable representation of a unit, used as a map
// key since Go slices (Exceptions) aren't comparable.
func (u DualUnit) key() string {
	return u.SPDXID + "\x00" + u.Condition + "\x00" + strings.Join(u.Exceptions, "\x00")
}

// dualGroup is an AND-group of DualUnits, keyed by DualUnit.key() so set
// semantics (no duplicate units) hold.
type dualGroup map[string]DualUnit

func newGroup(units ...DualUnit) dualGroup {
	g := make(dualGroup, len(units))
	for _, u := range units {
		g[u.key()] = u
	}
	return g
}

func (g dualGroup) clone() dualGroup {
	out := make(dualGroup, len(g))
	for k, v := range g {
		out[k] = v
	}
	return out
}

// groupKey is a canonical, order-independent identity for a group, used to
// dedupe groups within a DualLicense (set-of-groups semantics).
func (g dualGroup) groupKey() string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, "\x01")
}

// DualLicense is a disjunctive-normal-form set of AND-groups: OR across
// groups, AND within a group, per §3.
type DualLicense struct {
	groups map[string]dualGroup
}

// NewDualLicense builds a DualLicense from literal groups of units.
func NewDualLicense(groups ...[]DualUnit) DualLicense {
	dl := DualLicense{groups: make(map[string]dualGroup)}
	for _, g := range groups {
		group := newGroup(g...)
		dl.groups[group.groupKey()] = group
	}
	return dl
}

// EmptyDualLicense is the falsy DualLicense with no groups at all.
func EmptyDualLicense() DualLicense {
	return DualLicense{groups: map[string]dualGroup{}}
}

// Bool reports whether the license is non-empty in the falsy sense of §3:
// neither ∅ (no groups) nor {∅} (one empty group).
func (d DualLicense) Bool() bool {
	if len(d.groups) == 0 {
		return false
	}
	if len(d.groups) == 1 {
		for _, g := range d.groups {
			if len(g) == 0 {
				return false
			}
		}
	}
	return true
}

// Groups returns the AND-groups as plain slices, in a stable (sorted by
// group key) order for deterministic iteration/serialisation.
func (d DualLicense) Groups() [][]DualUnit {
	keys := make([]string, 0, len(d.groups))
	for k := range d.groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([][]DualUnit, 0, len(keys))
	for _, k := range keys {
		group := d.groups[k]
		units := make([]DualUnit, 0, len(group))
		for _, u := range group {
			units = append(units, u)
		}
		sort.Slice(units, func(i, j int) bool { return units[i].key() < units[j].key() })
		out = append(out, units)
	}
	return out
}

// And implements §3's A ∧ B = { a ∪ b | a∈A, b∈B }.
func (d DualLicense) And(other DualLicense) DualLicense {
	out := DualLicense{groups: make(map[string]dualGroup)}
	for _, a := range d.groups {
		for _, b := range other.groups {
			merged := a.clone()
			for k, v := range b {
				merged[k] = v
			}
			out.groups[merged.groupKey()] = merged
		}
	}
	return out
}

// Or implements §3's A ∨ B = A ∪ B.
func (d DualLicense) Or(other DualLicense) DualLicense {
	out := DualLicense{groups: make(map[string]dualGroup)}
	for k, v := range d.groups {
		out.groups[k] = v
	}
	for k, v := range other.groups {
		out.groups[k] = v
	}
	return out
}

// AddCondition annotates every unit of every group with the given
// condition, per §3. It mirrors DualLicense.add_condition in
// lict/utils/structure.py: a unit that already carries this condition (or
// no condition at all) is simply overwritten; any unit carrying a
// different condition additionally keeps both variants so downstream
// consumers can still see the original condition.
func (d DualLicense) AddCondition(condition string) DualLicense {
	out := DualLicense{groups: make(map[string]dualGroup)}
	for _, group := range d.groups {
		newGroup := make(dualGroup)
		for _, unit := range group {
			conditioned := DualUnit{SPDXID: unit.SPDXID, Condition: condition, Exceptions: unit.Exceptions}
			newGroup[conditioned.key()] = conditioned
			if unit.Condition != "" && unit.Condition != condition {
				newGroup[unit.key()] = unit
			}
		}
		out.groups[dualGroup(newGroup).groupKey()] = newGroup
	}
	return out
}

// RemoveGroup returns a copy of d without the group identified by units.
func (d DualLicense) RemoveGroup(units []DualUnit) DualLicense {
	key := newGroup(units...).groupKey()
	out := DualLicense{groups: make(map[string]dualGroup, len(d.groups))}
	for k, v := range d.groups {
		if k == key {
			continue
		}
		out.groups[k] = v
	}
	return out
}

// MarshalJSON serialises the DualLicense as an array of groups of units,
// matching §3's "serialised as JSON of groups of units".
func (d DualLicense) MarshalJSON() ([]byte, error) {
	type wireUnit struct {
		SpdxID     string   `json:"spdx_id"`
		Condition  string   `json:"condition"`
		Exceptions []string `json:"exceptions"`
	}
	groups := d.Groups()
	wire := make([][]wireUnit, len(groups))
	for i, group := range groups {
		row := make([]wireUnit, len(group))
		for j, u := range group {
			row[j] = wireUnit{SpdxID: u.SPDXID, Condition: u.Condition, Exceptions: u.Exceptions}
		}
		wire[i] = row
	}
	return json.Marshal(wire)
}

// UnmarshalJSON parses the array-of-groups-of-units wire format.
func (d *DualLicense) UnmarshalJSON(data []byte) error {
	type wireUnit struct {
		SpdxID     string   `json:"spdx_id"`
		Condition  string   `json:"condition"`
		Exceptions []string `json:"exceptions"`
	}
	var wire [][]wireUnit
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	groups := make([][]DualUnit, len(wire))
	for i, row := range wire {
		units := make([]DualUnit, len(row))
		for j, u := range row {
			units[j] = DualUnit{SPDXID: u.SpdxID, Condition: u.Condition, Exceptions: u.Exceptions}
		}
		groups[i] = units
	}
	*d = NewDualLicense(groups...)
	return nil
}

// DualLicenseFromString parses the JSON wire format produced by MarshalJSON.
func DualLicenseFromString(raw string) (DualLicense, error) {
	var dl DualLicense
	if err := json.Unmarshal([]byte(raw), &dl); err != nil {
		return DualLicense{}, err
	}
	return dl, nil
}
