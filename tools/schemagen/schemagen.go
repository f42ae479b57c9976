// Package main generates the JSON schema of recipe files from recipe.Document.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/annorewrite/pkg/recipe"
)

// Schema represents a JSON Schema.
type Schema struct {
	Schema               string             `json:"$schema,omitempty"`
	Title                string             `json:"title,omitempty"`
	Description          string             `json:"description,omitempty"`
	Type                 string             `json:"type,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	MinItems             int                `json:"minItems,omitempty"`
	MinLength            int                `json:"minLength,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Ref                  string             `json:"$ref,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
	MinProperties        int                `json:"minProperties,omitempty"`
	MaxProperties        int                `json:"maxProperties,omitempty"`
	Definitions          map[string]*Schema `json:"definitions,omitempty"`
}

func main() {
	var output string

	flag.StringVar(&output, "o", "pkg/recipe/recipe-schema.json", "Output file")
	flag.Parse()

	if err := writeSchema(output, generateSchema(&recipe.Document{})); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing schema: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", output)
}

func generateSchema(v any) *Schema {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	defs := make(map[string]*Schema)
	obj := objectSchema(t, defs)

	obj.Schema = "https://json-schema.org/draft-07/schema#"
	obj.Title = "Recipe File"
	obj.Description = "JSON schema for annorewrite recipe files"

	if len(defs) > 0 {
		obj.Definitions = defs
	}

	return obj
}

// objectSchema describes a struct. Fields without omitempty are required and
// must be non-empty. A struct made only of optional struct pointers is a
// union: exactly one of them must be set.
func objectSchema(t reflect.Type, defs map[string]*Schema) *Schema {
	props := make(map[string]*Schema)

	var required []string

	union := t.NumField() > 0

	for i := range t.NumField() {
		field := t.Field(i)
		jsonTag := field.Tag.Get("json")

		if jsonTag == "-" || jsonTag == "" {
			continue
		}

		parts := strings.Split(jsonTag, ",")
		jsonName := parts[0]
		isOmitempty := len(parts) > 1 && parts[1] == "omitempty"

		fieldSchema := typeToSchema(field.Type, defs)

		if !isOmitempty {
			required = append(required, jsonName)

			switch fieldSchema.Type {
			case "string":
				fieldSchema.MinLength = 1
			case "array":
				fieldSchema.MinItems = 1
			}
		}

		if !isOmitempty || field.Type.Kind() != reflect.Ptr || field.Type.Elem().Kind() != reflect.Struct {
			union = false
		}

		props[jsonName] = fieldSchema
	}

	closed := false
	obj := &Schema{Type: "object", Properties: props, Required: required, AdditionalProperties: &closed}

	if union {
		obj.MinProperties = 1
		obj.MaxProperties = 1
	}

	return obj
}

func typeToSchema(t reflect.Type, defs map[string]*Schema) *Schema {
	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if t == reflect.TypeOf(time.Duration(0)) {
			return &Schema{Type: "string", Description: "Duration such as 300ms"}
		}

		return &Schema{Type: "integer"}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}

	case reflect.Bool:
		return &Schema{Type: "boolean"}

	case reflect.Slice:
		return &Schema{
			Type:  "array",
			Items: typeToSchema(t.Elem(), defs),
		}

	case reflect.Map:
		return &Schema{
			Type: "object",
			Description: fmt.Sprintf("Map with %s keys and %s values",
				t.Key().Kind().String(), t.Elem().Kind().String()),
		}

	case reflect.Struct:
		defName := t.Name()
		if defName == "" {
			return objectSchema(t, defs)
		}

		if _, exists := defs[defName]; !exists {
			defs[defName] = nil
			defs[defName] = objectSchema(t, defs)
		}

		return &Schema{Ref: "#/definitions/" + defName}

	case reflect.Ptr:
		return typeToSchema(t.Elem(), defs)

	default:
		return &Schema{Type: "object"}
	}
}

func writeSchema(path string, schema *Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	return os.WriteFile(path, append(data, '\n'), 0o644)
}
