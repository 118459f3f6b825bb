// SPDX-License-Identifier: Apache-2.0
package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/liscope/liscope/internal/logger"
)

// LicenseSpread declares which usage conditions cause an otherwise
// non-varying license to spread to its consumer, per §4.1's discussion of
// scope-driven propagation (grounded on lict.utils.structure.LicenseSpread).
type LicenseSpread struct {
	SpreadConditions    []string `toml:"spread_conditions"`
	NonSpreadConditions []string `toml:"non_spread_conditions"`
}

// Config is the run's policy knobs: which usage conditions are treated as
// process isolation boundaries, which cause propagation, and the mapping
// between human-readable usage literals and ScopeToken values, per §5
// (propagation pass) and the GLOSSARY's usage-condition literals.
type Config struct {
	LicenseIsolations []string          `toml:"license_isolations"`
	LicenseSpread     LicenseSpread     `toml:"license_spread"`
	LiteralMapping    map[string]string `toml:"literal_mapping"`
	Blacklist         []string          `toml:"blacklist"`
}

// Literal2Enum converts a usage-condition literal (as it would appear in a
// project graph's edge metadata) to its canonical ScopeToken name, or ""
// if the literal isn't mapped.
func (c Config) Literal2Enum(literal string) string {
	return c.LiteralMapping[literal]
}

// Enum2Literal returns every literal that maps to the given canonical
// ScopeToken name.
func (c Config) Enum2Literal(enum string) []string {
	var out []string
	for literal, mapped := range c.LiteralMapping {
		if mapped == enum {
			out = append(out, literal)
		}
	}
	return out
}

// IsIsolationBoundary reports whether a usage condition severs license
// propagation between a dependency and its consumer (process isolation:
// separate OS processes, RPC boundaries, and similar).
func (c Config) IsIsolationBoundary(condition string) bool {
	for _, iso := range c.LicenseIsolations {
		if iso == condition {
			return true
		}
	}
	return false
}

// Spreads reports whether a usage condition causes a license to propagate
// to its consumer, applying the DEFAULT fallback documented in
// lict.utils.structure.DualLicense.get_outbound: when "DEFAULT" is present
// in SpreadConditions, any condition absent from both lists spreads too.
func (c Config) Spreads(condition string) bool {
	for _, s := range c.LicenseSpread.SpreadConditions {
		if s == condition {
			return true
		}
	}
	defaultSpread := false
	for _, s := range c.LicenseSpread.SpreadConditions {
		if s == "DEFAULT" {
			defaultSpread = true
			break
		}
	}
	if !defaultSpread {
		return false
	}
	for _, s := range c.LicenseSpread.NonSpreadConditions {
		if s == condition {
			return false
		}
	}
	return true
}

// FromTOML loads a Config from a TOML file, mirroring Config.from_toml in
// lict/utils/structure.py.
func FromTOML(path string) (Config, error) {
	logger.Log().Enter(path)
	defer logger.Log().Exit()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, logger.Log().Error(err)
	}
	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return Config{}, logger.Log().Errorf("config: failed to parse %q: %v", path, err)
	}
	return c, nil
}
