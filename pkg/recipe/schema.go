package recipe

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:generate go run ../../tools/schemagen -o recipe-schema.json

// SchemaJSON is the JSON schema recipe files are validated against.
//
//go:embed recipe-schema.json
var SchemaJSON []byte

// ErrInvalidDocument is returned for recipe files that fail schema validation.
var ErrInvalidDocument = errors.New("invalid recipe document")

var schemaLoader = gojsonschema.NewBytesLoader(SchemaJSON)

// ValidationError lists every schema violation of a recipe document.
type ValidationError struct {
	Problems []string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidDocument, strings.Join(e.Problems, "; "))
}

// Unwrap returns ErrInvalidDocument.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidDocument
}

// Validate checks a YAML (or JSON) recipe document against the schema.
func Validate(data []byte) error {
	var doc any

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("recipe schema validation: %w", err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return &ValidationError{Problems: problems}
}
