// SPDX-License-Identifier: Apache-2.0

// Package license loads license and exception feature definitions and the
// action schema from TOML resource files, the Go equivalent of
// lict.utils.structure's load_licenses/load_exceptions/load_schemas.
package license

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/saintfish/chardet"

	"github.com/liscope/liscope/internal/logger"
	"github.com/liscope/liscope/schema"
)

// warnIfNotUTF8 flags a feature file whose detected encoding isn't UTF-8,
// the same posture the teacher takes toward external input of unknown
// provenance: never assume UTF-8 silently. Detection failures are not
// fatal — TOML decoding will surface a real error if the bytes are
// actually unreadable.
func warnIfNotUTF8(path string, data []byte) {
	detection, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || detection == nil {
		return
	}
	if detection.Charset != "UTF-8" && detection.Charset != "ASCII" {
		logger.Log().Warningf("%s: detected encoding %q, expected UTF-8", path, detection.Charset)
	}
}

// actionTOML is the wire shape of one action entry under can/cannot/must/special.
type actionTOML struct {
	ProtectScope []string `toml:"protect_scope" json:"protect_scope,omitempty"`
	EscapeScope  []string `toml:"escape_scope" json:"escape_scope,omitempty"`
	Target       []string `toml:"target" json:"target,omitempty"`
}

// featureTOML is the wire shape of one license or exception feature file.
type featureTOML struct {
	Can         map[string]actionTOML `toml:"can" json:"can,omitempty"`
	Cannot      map[string]actionTOML `toml:"cannot" json:"cannot,omitempty"`
	Must        map[string]actionTOML `toml:"must" json:"must,omitempty"`
	Special     map[string]actionTOML `toml:"special" json:"special,omitempty"`
	HumanReview bool                  `toml:"human_review" json:"human_review"`
}

func toScopeTokens(in []string) []schema.ScopeToken {
	out := make([]schema.ScopeToken, len(in))
	for i, v := range in {
		out[i] = schema.ScopeToken(v)
	}
	return out
}

func buildActionTable(modal schema.Modal, entries map[string]actionTOML) map[string]schema.ActionFeature {
	out := make(map[string]schema.ActionFeature, len(entries))
	for name, a := range entries {
		out[name] = schema.NewActionFeature(name, modal, toScopeTokens(a.ProtectScope), toScopeTokens(a.EscapeScope), a.Target)
	}
	return out
}

func decodeFeature(spdxID string, data []byte) (schema.LicenseFeature, error) {
	var wire featureTOML
	if err := toml.Unmarshal(data, &wire); err != nil {
		return schema.LicenseFeature{}, schema.NewFormatError(spdxID, err)
	}
	if err := validateFeatureDocument(spdxID, wire); err != nil {
		return schema.LicenseFeature{}, err
	}
	return schema.LicenseFeature{
		SPDXID:  spdxID,
		Can:     buildActionTable(schema.ModalCan, wire.Can),
		Cannot:  buildActionTable(schema.ModalCannot, wire.Cannot),
		Must:    buildActionTable(schema.ModalMust, wire.Must),
		Special: buildActionTable(schema.ModalSpecial, wire.Special),
	}, nil
}

// loadFeatureDir loads every *.toml file in dir (other than schemas.toml)
// as a LicenseFeature keyed by the SPDX id derived from its filename,
// mirroring load_licenses/load_exceptions.
func loadFeatureDir(dir string) (map[string]schema.LicenseFeature, error) {
	logger.Log().Enter(dir)
	defer logger.Log().Exit()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, logger.Log().Error(err)
	}

	out := make(map[string]schema.LicenseFeature)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".toml") || strings.HasPrefix(name, "schemas") {
			continue
		}
		spdxID := strings.TrimSuffix(name, ".toml")
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, logger.Log().Error(err)
		}
		warnIfNotUTF8(path, data)
		feature, err := decodeFeature(spdxID, data)
		if err != nil {
			return nil, err
		}
		out[spdxID] = feature
	}
	return out, nil
}

// LoadLicenses loads the license feature table from a directory of TOML files.
func LoadLicenses(dir string) (map[string]schema.LicenseFeature, error) {
	return loadFeatureDir(dir)
}

// LoadExceptions loads the exception feature table from a directory of TOML files.
func LoadExceptions(dir string) (map[string]schema.LicenseFeature, error) {
	return loadFeatureDir(dir)
}

type schemaTOML struct {
	Actions map[string]struct {
		Immutability bool     `toml:"immutability"`
		Compliance   []string `toml:"compliance"`
		Conflicts    [][]string `toml:"conflicts"`
	} `toml:"actions"`
}

// LoadSchemas loads the action-property schema from schemas.toml in dir,
// mirroring Schemas.from_toml.
func LoadSchemas(dir string) (schema.Schemas, error) {
	path := filepath.Join(dir, "schemas.toml")
	logger.Log().Enter(path)
	defer logger.Log().Exit()

	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Schemas{}, logger.Log().Error(err)
	}

	var wire schemaTOML
	if err := toml.Unmarshal(data, &wire); err != nil {
		return schema.Schemas{}, schema.NewFormatError(path, err)
	}

	actions := make(map[string]schema.ActionSchema, len(wire.Actions))
	for name, a := range wire.Actions {
		compliance := make([]schema.Modal, len(a.Compliance))
		for i, m := range a.Compliance {
			compliance[i] = schema.Modal(m)
		}
		pairs := make([]schema.ModalPair, len(a.Conflicts))
		for i, pair := range a.Conflicts {
			if len(pair) != 2 {
				return schema.Schemas{}, schema.NewFormatError(path, &conflictArityError{action: name})
			}
			pairs[i] = schema.ModalPair{A: schema.Modal(pair[0]), B: schema.Modal(pair[1])}
		}
		actions[name] = schema.ActionSchema{
			Name:               name,
			Immutability:       a.Immutability,
			Compliance:         compliance,
			ConflictModalPairs: pairs,
		}
	}
	return schema.NewSchemas(actions), nil
}

type conflictArityError struct{ action string }

func (e *conflictArityError) Error() string {
	return "conflicts entry for action " + e.action + " must list exactly two modals"
}

// ValidateAgainstSchema checks that every action referenced by a license
// feature is declared in schemas, raising schema.SchemaViolationError for
// the first mismatch found (§7 error kind 2).
func ValidateAgainstSchema(feature schema.LicenseFeature, schemas schema.Schemas) error {
	for _, action := range feature.Features() {
		if _, ok := schemas.Actions[action.Name]; !ok {
			return schema.NewSchemaViolationError(feature.SPDXID, action.Name)
		}
	}
	return nil
}
