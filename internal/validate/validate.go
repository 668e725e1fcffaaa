// Package validate checks generated FHIR resources against JSON Schemas of
// the supported resource types.
package validate

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// SchemaBaseURL is the base of the $id of every embedded schema.
const SchemaBaseURL = "https://schemas.biotreebridge.dev/fhir/"

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var (
	// ErrUnknownResourceType is returned for resource types without a schema.
	ErrUnknownResourceType = errors.New("unknown resource type")
	// ErrInvalidResource wraps schema validation failures.
	ErrInvalidResource = errors.New("invalid resource")
)

// ResourceTypes are the resource types that have an embedded schema.
var ResourceTypes = []string{
	"Condition",
	"DocumentReference",
	"Group",
	"Observation",
	"Patient",
	"ResearchStudy",
	"ResearchSubject",
	"ServiceRequest",
	"Specimen",
}

// IsValidResourceType reports whether name is a supported resource type.
func IsValidResourceType(name string) bool {
	return slices.Contains(ResourceTypes, name)
}

// Validator accepts or rejects a resource of the given type.
type Validator interface {
	Validate(resourceType string, resource map[string]any) error
}

// SchemaValidator validates resources with compiled JSON Schemas.
type SchemaValidator struct {
	schemas map[string]*jsonschema.Schema
}

var _ Validator = (*SchemaValidator)(nil)

func schemaURL(resourceType string) string {
	return SchemaBaseURL + strings.ToLower(resourceType) + ".schema.json"
}

// NewSchemaValidator compiles the embedded schemas.
func NewSchemaValidator() (*SchemaValidator, error) {
	compiler := jsonschema.NewCompiler()

	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}

	for _, entry := range entries {
		data, err := schemaFS.ReadFile(path.Join("schemas", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", entry.Name(), err)
		}

		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse schema %s: %w", entry.Name(), err)
		}

		if err := compiler.AddResource(SchemaBaseURL+entry.Name(), doc); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", entry.Name(), err)
		}
	}

	v := &SchemaValidator{schemas: make(map[string]*jsonschema.Schema, len(ResourceTypes))}

	for _, rt := range ResourceTypes {
		sch, err := compiler.Compile(schemaURL(rt))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema for %s: %w", rt, err)
		}

		v.schemas[rt] = sch
	}

	return v, nil
}

// Validate checks resource against the schema of resourceType.
func (v *SchemaValidator) Validate(resourceType string, resource map[string]any) error {
	sch, ok := v.schemas[resourceType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownResourceType, resourceType)
	}

	// the validator expects values as produced by its own JSON decoder
	data, err := json.Marshal(resource)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", resourceType, err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", resourceType, err)
	}

	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidResource, resourceType, err)
	}

	return nil
}
