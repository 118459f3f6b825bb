// SPDX-License-Identifier: Apache-2.0
package infer

import (
	"regexp"
	"strconv"
	"strings"
)

var versionedSPDXPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9]*)-(\d+(?:\.\d+)*)(.*)$`)

// extractVersion splits an SPDX id like "GPL-2.0-or-later" into its family
// ("GPL") and version string ("2.0"), mirroring the family/version split
// implied by infer.py's extract_version + find_all_versions usage: ids
// are only compared for "later" purposes within the same license family.
func extractVersion(spdxID string) (family, version string, ok bool) {
	m := versionedSPDXPattern.FindStringSubmatch(spdxID)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// normalizeVersion turns "2.0" into [2, 0] for ordered comparison.
func normalizeVersion(version string) []int {
	parts := strings.Split(version, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			n = 0
		}
		out[i] = n
	}
	return out
}

// compareVersions returns -1, 0, or 1 comparing a to b lexicographically,
// padding the shorter with zeros.
func compareVersions(a, b []int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var av, bv int
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// findAllVersions returns every id in allIDs sharing spdxID's license
// family (same prefix before the version number), spdxID itself included.
func findAllVersions(spdxID string, allIDs []string) []string {
	family, _, ok := extractVersion(spdxID)
	if !ok {
		return nil
	}
	var out []string
	for _, id := range allIDs {
		otherFamily, _, ok := extractVersion(id)
		if ok && otherFamily == family {
			out = append(out, id)
		}
	}
	return out
}
