// SPDX-License-Identifier: Apache-2.0
package license

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/liscope/liscope/internal/logger"
	"github.com/liscope/liscope/schema"
)

// featureJSONSchema is the structural schema a decoded license/exception
// feature document must satisfy before it is trusted by the rest of the
// engine, enforcing §6's "schema-validated at load" for C2's feature files.
const featureJSONSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "human_review": {"type": "boolean"},
    "can": {"type": "object", "additionalProperties": {"$ref": "#/definitions/action"}},
    "cannot": {"type": "object", "additionalProperties": {"$ref": "#/definitions/action"}},
    "must": {"type": "object", "additionalProperties": {"$ref": "#/definitions/action"}},
    "special": {"type": "object", "additionalProperties": {"$ref": "#/definitions/action"}}
  },
  "definitions": {
    "action": {
      "type": "object",
      "properties": {
        "protect_scope": {"type": "array", "items": {"type": "string"}},
        "escape_scope": {"type": "array", "items": {"type": "string"}},
        "target": {"type": "array", "items": {"type": "string"}}
      },
      "additionalProperties": false
    }
  }
}`

var featureSchema *gojsonschema.Schema

func loadedFeatureSchema() (*gojsonschema.Schema, error) {
	if featureSchema != nil {
		return featureSchema, nil
	}
	loader := gojsonschema.NewStringLoader(featureJSONSchema)
	compiled, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, err
	}
	featureSchema = compiled
	return featureSchema, nil
}

// validateFeatureDocument checks a raw TOML-decoded feature document
// against featureJSONSchema by round-tripping it through JSON, the same
// approach the teacher uses to validate CycloneDX documents against their
// JSON schema before trusting their shape.
func validateFeatureDocument(spdxID string, wire featureTOML) error {
	compiled, err := loadedFeatureSchema()
	if err != nil {
		return logger.Log().Error(err)
	}

	asJSON, err := json.Marshal(wire)
	if err != nil {
		return logger.Log().Error(err)
	}

	result, err := compiled.Validate(gojsonschema.NewBytesLoader(asJSON))
	if err != nil {
		return logger.Log().Error(err)
	}
	if !result.Valid() {
		cause := fmt.Errorf("%v", result.Errors())
		return schema.NewFormatError(spdxID, cause)
	}
	return nil
}
