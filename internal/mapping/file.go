package mapping

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// MappingFile is the YAML form of a registry's class, field and system tables.
type MappingFile struct {
	// Version is the schema version of the file format.
	Version string `yaml:"version"`

	// Classes maps source class ids to FHIR resource types.
	Classes map[string]string `yaml:"classes,omitempty"`

	// Fields lists field mappings in registration order.
	Fields []FieldEntry `yaml:"fields,omitempty"`

	// Systems maps short names to controlled-vocabulary URIs.
	Systems map[string]string `yaml:"systems,omitempty"`
}

// FieldEntry is one field mapping of a MappingFile.
type FieldEntry struct {
	Class string `yaml:"class"`
	Field string `yaml:"field"`
	Path  string `yaml:"path"`
	// Kind overrides the kind derived from Path when set.
	Kind     *PathKind      `yaml:"kind,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

// LoadFile loads and parses a YAML mapping file from the given path.
func LoadFile(path string) (*MappingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a MappingFile.
func Parse(data []byte) (*MappingFile, error) {
	var mf MappingFile

	err := yaml.Unmarshal(data, &mf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}

	applyDefaults(&mf)

	if err := validateFile(&mf); err != nil {
		return nil, err
	}

	return &mf, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(mf *MappingFile) {
	if mf.Version == "" {
		mf.Version = "1"
	}

	for i := range mf.Fields {
		f := &mf.Fields[i]
		if f.Kind == nil {
			kind := ClassifyPath(f.Path)
			f.Kind = &kind
		}
	}
}

func validateFile(mf *MappingFile) error {
	for i, f := range mf.Fields {
		if f.Class == "" || f.Field == "" || f.Path == "" {
			return fmt.Errorf("fields[%d]: class, field and path are required", i)
		}
	}

	return nil
}

// Marshal serializes a MappingFile to YAML.
func Marshal(mf *MappingFile) ([]byte, error) {
	return yaml.Marshal(mf)
}

// WriteFile writes a MappingFile to the given path.
func WriteFile(mf *MappingFile, path string) error {
	data, err := Marshal(mf)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write mapping file %s: %w", path, err)
	}

	return nil
}

// ApplyFile registers every class, field and system of mf. Classes are
// registered in sorted order, fields in file order.
func (r *Registry) ApplyFile(mf *MappingFile) {
	for _, class := range slices.Sorted(maps.Keys(mf.Classes)) {
		r.RegisterClass(class, mf.Classes[class])
	}

	for _, f := range mf.Fields {
		kind := ClassifyPath(f.Path)
		if f.Kind != nil {
			kind = *f.Kind
		}

		r.RegisterFieldKind(f.Class, f.Field, f.Path, kind, f.Metadata)
	}

	for _, name := range slices.Sorted(maps.Keys(mf.Systems)) {
		r.SetSystem(name, mf.Systems[name])
	}

	r.logger.Info("mapping file applied",
		"classes", len(mf.Classes), "fields", len(mf.Fields), "systems", len(mf.Systems))
}

// File returns the registry contents as a MappingFile.
func (r *Registry) File() *MappingFile {
	mf := &MappingFile{
		Version: "1",
		Classes: make(map[string]string, len(r.classes)),
		Systems: r.Systems(),
	}

	for _, cm := range r.Classes() {
		mf.Classes[cm.Class] = cm.ResourceType
	}

	for _, class := range r.fieldOrder {
		for _, fm := range r.Fields(class) {
			kind := fm.Kind
			mf.Fields = append(mf.Fields, FieldEntry{
				Class:    fm.Class,
				Field:    fm.Field,
				Path:     fm.Path,
				Kind:     &kind,
				Metadata: fm.Metadata,
			})
		}
	}

	return mf
}
