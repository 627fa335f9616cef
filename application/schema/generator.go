// Package schema publishes JSON schemas for the proof and validator records.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/reglet-dev/rule-verifier/domain/entities"
)

// Record names accepted by ForRecord.
const (
	RecordProof     = "proof"
	RecordValidator = "validator"
)

// GenerateSchema creates a JSON schema from a Go struct.
// It uses the `invopop/jsonschema` library to reflect on the struct
// and generate a standard JSON Schema (Draft 2020-12).
func GenerateSchema(v interface{}) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}
	schema := reflector.Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}

// ProofSchema returns the schema of the proof record.
func ProofSchema() ([]byte, error) {
	return GenerateSchema(entities.ProofRecord{})
}

// ValidatorSchema returns the schema of the validator record.
func ValidatorSchema() ([]byte, error) {
	return GenerateSchema(entities.ValidatorRecord{})
}

// ForRecord returns the schema for a record by name.
func ForRecord(name string) ([]byte, error) {
	switch name {
	case RecordProof:
		return ProofSchema()
	case RecordValidator:
		return ValidatorSchema()
	default:
		return nil, fmt.Errorf("unknown record %q (want %q or %q)", name, RecordProof, RecordValidator)
	}
}
