// Package utils holds small helpers shared by the command line tools.
package utils

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GetSchemaFromConfig reflects value into a JSON schema document with definitions under $defs.
func GetSchemaFromConfig(value any) (string, error) {
	schema := jsonschema.Reflect(value)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}
