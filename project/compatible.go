// SPDX-License-Identifier: Apache-2.0
package project

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jwangsadinata/go-multimap/setmultimap"

	"github.com/liscope/liscope/checker"
	"github.com/liscope/liscope/internal/logger"
	"github.com/liscope/liscope/schema"
)

// ConflictRecord is the conflict raised wherever filterDualLicense finds
// no compatible alternative left after filtering, mirroring the
// "conflict" attribute BaseCompatiblityParser.parse writes. Every node
// whose conflict pattern is structurally identical (same blacklisted or
// pairwise-incompatible license ids, in any order) shares one record and
// therefore one id, instead of minting a fresh id per occurrence.
type ConflictRecord struct {
	ID        string
	Conflicts [][]string

	// Nodes maps each license id named in Conflicts to the ids of every
	// node whose own declared/outbound licenses touched it — the
	// spdx -> []node_label grouping the "graph check" report publishes
	// per conflict id.
	Nodes *setmultimap.MultiMap
}

// SPDXIDs returns every license id this record implicates, sorted.
func (r *ConflictRecord) SPDXIDs() []string {
	keys := r.Nodes.Keys()
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.(string))
	}
	sort.Strings(out)
	return out
}

// NodeLabels returns the ids of every node this record implicates via
// spdxID, sorted and deduplicated.
func (r *ConflictRecord) NodeLabels(spdxID string) []string {
	values, ok := r.Nodes.Get(spdxID)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, v.(string))
	}
	sort.Strings(out)
	return out
}

// ConflictTable is the global conflict registry CheckConflicts builds
// while walking the graph: it keys records by structural equality of
// their conflict pattern, so two independent nodes hitting the same
// {GPL-2.0-only, CC-BY-NC-4.0}-shaped conflict share one ConflictRecord
// rather than getting two unrelated ids.
type ConflictTable struct {
	seq     conflictIDSeq
	records map[string]*ConflictRecord
}

// NewConflictTable returns an empty conflict table.
func NewConflictTable() *ConflictTable {
	return &ConflictTable{records: make(map[string]*ConflictRecord)}
}

// recordFor returns the record for this conflict pattern, minting a new
// id the first time the pattern is seen and reusing it for every later
// node whose conflicts structurally match.
func (t *ConflictTable) recordFor(conflicts [][]string) *ConflictRecord {
	key := patternKey(conflicts)
	if rec, ok := t.records[key]; ok {
		return rec
	}
	rec := &ConflictRecord{ID: t.seq.next(), Conflicts: conflicts, Nodes: setmultimap.New()}
	t.records[key] = rec
	return rec
}

// Records returns every distinct conflict record, ordered by id for
// deterministic reporting (§8).
func (t *ConflictTable) Records() []*ConflictRecord {
	out := make([]*ConflictRecord, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CheckOptions configures the conflict-detection pass, mirroring the
// --ignore-unk CLI flag and the config blacklist BaseCompatiblityParser
// reads from self.config.blacklist.
type CheckOptions struct {
	IgnoreUnknown bool
	Blacklist     []string
}

// conflictIDSeq hands out deterministic conflict ids in place of Python's
// uuid4() (§9: reproducible runs need reproducible ids, not random ones).
type conflictIDSeq struct{ n int }

func (s *conflictIDSeq) next() string {
	s.n++
	return fmt.Sprintf("conflict-%d", s.n)
}

// CheckConflicts runs the topological conflict-detection pass (§7's Pass
// B): at each node, the license alternatives it received before its own
// condition was applied (BeforeCheck) are filtered for blacklisted or
// pairwise-incompatible licenses; an alternative-free result marks the
// node (and any child whose outbound is implicated) with the id of the
// ConflictRecord for that pattern, reusing the same record — and so the
// same id — for every other node that hits a structurally identical
// pattern. Mirrors BaseCompatiblityParser.parse, plus the global
// conflict-table dedup the spec's conflict_id contract requires.
func CheckConflicts(g *Graph, c *checker.Checker, opts CheckOptions) (*ConflictTable, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	table := NewConflictTable()

	for _, id := range order {
		node := g.Node(id)
		if !node.HasBeforeCheck {
			continue
		}

		filtered, conflicts := filterDualLicense(c, node.BeforeCheck, opts.Blacklist, opts.IgnoreUnknown)
		if filtered.Bool() {
			continue
		}

		record := table.recordFor(conflicts)
		node.Conflict = record
		touched := touchedLicenses(conflicts)

		if node.HasDeclaredLicenses && isConflictHappened(node.DeclaredLicenses, touched) {
			node.ConflictGroup = appendUniqueID(node.ConflictGroup, record.ID)
			recordNodeLicenses(record, id, node.DeclaredLicenses, touched)
		}

		for _, childID := range g.Dependencies(id) {
			child := g.Node(childID)
			if child == nil || !child.HasOutbound {
				continue
			}
			if isConflictHappened(child.Outbound, touched) {
				child.ConflictGroup = appendUniqueID(child.ConflictGroup, record.ID)
				recordNodeLicenses(record, childID, child.Outbound, touched)
			}
		}
	}

	return table, nil
}

// appendUniqueID appends id to ids unless it's already present, since a
// node can be implicated by the same record through more than one path
// (its own declared licenses and an incoming child match, say).
func appendUniqueID(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// recordNodeLicenses adds nodeID under every license id in dual that the
// conflict pattern touches, populating the record's spdx -> node_label
// grouping.
func recordNodeLicenses(record *ConflictRecord, nodeID string, dual schema.DualLicense, touched map[string]struct{}) {
	for _, group := range dual.Groups() {
		for _, u := range group {
			if _, ok := touched[u.SPDXID]; ok {
				record.Nodes.Put(u.SPDXID, nodeID)
			}
		}
	}
}

// filterDualLicense removes every AND-group that contains a blacklisted
// license, or a pair of licenses this checker reports as incompatible in
// both directions, mirroring BaseCompatiblityParser.filter_dual_license.
// It returns the surviving license together with every conflicting
// license id (or pair) it found along the way.
func filterDualLicense(c *checker.Checker, dual schema.DualLicense, blacklist []string, ignoreUnk bool) (schema.DualLicense, [][]string) {
	if !dual.Bool() {
		return schema.EmptyDualLicense(), nil
	}

	groups := dual.Groups()
	removed := make([]bool, len(groups))
	seen := make(map[string]struct{})
	var conflicts [][]string

	record := func(ids []string) {
		key := conflictKey(ids)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		conflicts = append(conflicts, ids)
	}
	has := func(ids []string) bool {
		_, ok := seen[conflictKey(ids)]
		return ok
	}

	for gi, group := range groups {
		if removed[gi] {
			continue
		}
		for _, lic := range group {
			if has([]string{lic.SPDXID}) {
				removed[gi] = true
				continue
			}
			if containsString(blacklist, lic.SPDXID) {
				record([]string{lic.SPDXID})
				removed[gi] = true
			}
		}
	}

	for gi, group := range groups {
		if removed[gi] {
			continue
		}

		units := group
		if ignoreUnk {
			var kept []schema.DualUnit
			for _, u := range group {
				if c.IsLicenseExist(u.SPDXID) {
					kept = append(kept, u)
				}
			}
			units = kept
		}

		groupRM := false
		for i := 0; i < len(units); i++ {
			for j := i + 1; j < len(units); j++ {
				a, b := units[i], units[j]
				if a.SPDXID == b.SPDXID {
					continue
				}
				if has([]string{a.SPDXID, b.SPDXID}) {
					groupRM = true
					continue
				}

				result := checkCompatiblity(c, a.SPDXID, b.SPDXID, unitScope(a.Condition), unitScope(b.Condition), ignoreUnk)
				if result == schema.Incompatible {
					record([]string{a.SPDXID, b.SPDXID})
					groupRM = true
				}
			}
		}
		if groupRM {
			removed[gi] = true
		}
	}

	var remaining [][]schema.DualUnit
	for gi, group := range groups {
		if !removed[gi] {
			remaining = append(remaining, group)
		}
	}
	return schema.NewDualLicense(remaining...), conflicts
}

// checkCompatiblity checks both directions of a license pair and prefers
// whichever direction reports a compatible verdict, warning on a
// unilateral UNCONDITIONAL_COMPATIBLE disagreement, mirroring
// BaseCompatiblityParser.check_compatiblity.
func checkCompatiblity(c *checker.Checker, licenseA, licenseB string, scopeA, scopeB schema.Scope, ignoreUnk bool) schema.CompatibilityType {
	compatible := func(t schema.CompatibilityType) bool {
		if t == schema.ConditionalCompatible || t == schema.UnconditionalCompatible {
			return true
		}
		return ignoreUnk && t == schema.Unknown
	}

	aToB := c.CheckCompatibility(licenseA, licenseB, scopeA)
	bToA := c.CheckCompatibility(licenseB, licenseA, scopeB)

	if compatible(aToB) || compatible(bToA) {
		if aToB != bToA && (aToB == schema.UnconditionalCompatible || bToA == schema.UnconditionalCompatible) {
			logger.Log().Warningf("%s -%s-> %s, %s -%s-> %s", licenseA, aToB, licenseB, licenseB, bToA, licenseA)
		}
		if compatible(aToB) {
			return aToB
		}
		return bToA
	}
	return schema.Incompatible
}

// touchedLicenses flattens a conflicts pattern into the set of license
// ids it names, for isConflictHappened and the spdx -> node_label
// grouping to test membership against.
func touchedLicenses(conflicts [][]string) map[string]struct{} {
	touched := make(map[string]struct{})
	for _, pair := range conflicts {
		for _, id := range pair {
			touched[id] = struct{}{}
		}
	}
	return touched
}

// isConflictHappened reports whether every alternative in dual touches at
// least one of the conflicting license ids, meaning there's no
// conflict-free reading of dual left, mirroring
// BaseCompatiblityParser.is_conflict_happened.
func isConflictHappened(dual schema.DualLicense, touched map[string]struct{}) bool {
	if !dual.Bool() {
		return false
	}

	for _, group := range dual.Groups() {
		hit := false
		for _, u := range group {
			if _, ok := touched[u.SPDXID]; ok {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func unitScope(condition string) schema.Scope {
	if condition == "" {
		return nil
	}
	return schema.NewScope(map[schema.ScopeToken][]schema.ScopeToken{schema.ScopeToken(condition): nil})
}

// patternKey canonicalizes a whole conflicts pattern (an unordered set of
// pairs, each itself unordered) so that two structurally equal patterns
// produce the same key regardless of the order filterDualLicense found
// them in, letting ConflictTable dedup on it.
func patternKey(conflicts [][]string) string {
	keys := make([]string, len(conflicts))
	for i, pair := range conflicts {
		keys[i] = conflictKey(pair)
	}
	sort.Strings(keys)
	return strings.Join(keys, "\x01")
}

func conflictKey(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
