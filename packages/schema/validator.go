// Package schema validates response bodies against JSON Schema documents.
package schema

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError lists every schema violation found in a document.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %s", strings.Join(e.Violations, "; "))
}

// IsValidationError reports whether err is a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validator holds a compiled schema and can be reused across documents.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles a JSON Schema document.
func NewValidator(schemaData []byte) (*Validator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaData))
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// LoadValidator reads and compiles a schema file.
func LoadValidator(path string) (*Validator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return NewValidator(data)
}

// Validate checks a raw JSON document. An empty document is treated as null.
func (v *Validator) Validate(document []byte) error {
	if len(document) == 0 {
		document = []byte("null")
	}

	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return &ValidationError{Violations: violations}
}

// ValidateFile validates document against the schema at path.
func ValidateFile(path string, document []byte) error {
	v, err := LoadValidator(path)
	if err != nil {
		return err
	}
	return v.Validate(document)
}
