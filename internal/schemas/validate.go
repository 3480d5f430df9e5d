// Package schemas validates structured generation payloads against the JSON
// Schemas of the five phase results. Schemas are embedded at compile time.
package schemas

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFiles embed.FS

// Phase schema names
const (
	Alignment  = "alignment"
	Evaluation = "evaluation"
	Shortlist  = "shortlist"
	Decision   = "decision"
	References = "references"
)

// ValidationError aggregates per-field schema violations.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single violation at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("schema validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ValidatePhase validates a JSON payload against the named phase schema.
func ValidatePhase(phase, jsonContent string) error {
	schemaContent, err := schemaFiles.ReadFile(phase + ".schema.json")
	if err != nil {
		return fmt.Errorf("unknown phase schema %q: %w", phase, err)
	}
	return ValidateJSONString(string(schemaContent), jsonContent)
}

// ValidateJSONString validates JSON content against a JSON Schema given as a
// string.
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed during load: %w", err)
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
