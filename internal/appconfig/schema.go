// internal/appconfig/schema.go
package appconfig

import (
	"github.com/xeipuuv/gojsonschema"
)

// configSchema constrains the config file shape before it is decoded.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["apiBaseUrl"],
  "properties": {
    "apiBaseUrl": {"type": "string", "minLength": 1},
    "debug": {"type": "boolean"},
    "timeout": {"type": "integer", "minimum": 0},
    "pollInterval": {"type": "integer", "minimum": 0},
    "sessionFile": {"type": "string"},
    "export": {"type": "string"},
    "exportMarkdown": {"type": "string"},
    "exportYaml": {"type": "string"},
    "logFile": {"type": "string"}
  },
  "additionalProperties": false
}`

// validateSchema checks raw config JSON against the embedded schema and
// returns human-readable violations.
func validateSchema(raw []byte) ([]string, error) {
	schemaLoader := gojsonschema.NewStringLoader(configSchema)
	docLoader := gojsonschema.NewBytesLoader(raw)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}
	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs, nil
}
