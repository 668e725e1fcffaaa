package mapping

import (
	"log/slog"
	"maps"
	"slices"
	"strings"

	"biotreebridge/internal/match"
	"biotreebridge/internal/schema"
)

// Metadata is free-form data attached to a field mapping (system, use, url).
type Metadata map[string]any

// FieldMapping maps one source field of a class to a target path.
type FieldMapping struct {
	Class    string
	Field    string
	Path     string
	Kind     PathKind
	Metadata Metadata
}

// ClassMapping maps a source class to a FHIR resource type.
type ClassMapping struct {
	Class        string
	ResourceType string
}

// DefaultClassMappings are registered by New unless WithoutDefaults is given.
var DefaultClassMappings = []ClassMapping{
	{Class: "Assay", ResourceType: "ServiceRequest"},
	{Class: "Biospecimen", ResourceType: "Specimen"},
	{Class: "Patient", ResourceType: "Patient"},
	{Class: "Diagnosis", ResourceType: "Condition"},
	{Class: "File", ResourceType: "DocumentReference"},
}

// DefaultSystems are the controlled-vocabulary systems known to every registry.
var DefaultSystems = map[string]string{
	"htan":   "https://data.humantumoratlas.org",
	"loinc":  "http://loinc.org",
	"snomed": "http://snomed.info/sct",
}

// classFields is the field table of one class.
type classFields struct {
	pathsByExactName          map[string]FieldMapping
	exactNameByNormalizedName map[string]string
	// order is the registration order of exact names.
	order []string
}

func newClassFields() *classFields {
	return &classFields{
		pathsByExactName:          make(map[string]FieldMapping),
		exactNameByNormalizedName: make(map[string]string),
	}
}

// lookup resolves field by exact name, then through the normalized alias.
func (cf *classFields) lookup(field string) (FieldMapping, bool) {
	if fm, ok := cf.pathsByExactName[field]; ok {
		return fm, true
	}

	exact, ok := cf.exactNameByNormalizedName[match.NormalizeFieldName(field)]
	if !ok {
		return FieldMapping{}, false
	}

	fm, ok := cf.pathsByExactName[exact]

	return fm, ok
}

// Registry maps source classes and fields to FHIR resource types and paths.
type Registry struct {
	graph  *schema.Graph
	logger *slog.Logger

	classes    map[string]string
	classOrder []string

	fields     map[string]*classFields
	fieldOrder []string

	systems map[string]string

	doc   *schema.Graph
	state State

	noDefaults bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithGraph attaches the schema graph used for ancestor fallback in ResourceType.
func WithGraph(g *schema.Graph) Option {
	return func(r *Registry) {
		r.graph = g
	}
}

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithoutDefaults starts the registry with no class mappings.
func WithoutDefaults() Option {
	return func(r *Registry) {
		r.noDefaults = true
	}
}

// New creates a registry seeded with DefaultClassMappings and DefaultSystems.
func New(opts ...Option) *Registry {
	r := &Registry{
		logger:  slog.New(slog.DiscardHandler),
		classes: make(map[string]string),
		fields:  make(map[string]*classFields),
		systems: maps.Clone(DefaultSystems),
	}
	for _, opt := range opts {
		opt(r)
	}

	if !r.noDefaults {
		for _, cm := range DefaultClassMappings {
			r.RegisterClass(cm.Class, cm.ResourceType)
		}
	}

	return r
}

// Graph returns the graph used for ancestor fallback, or nil.
func (r *Registry) Graph() *schema.Graph {
	return r.graph
}

// SetGraph attaches g for ancestor fallback.
func (r *Registry) SetGraph(g *schema.Graph) {
	r.graph = g
}

// RegisterClass maps a source class to a resource type, replacing any
// previous mapping. The class id is prefix-stripped.
func (r *Registry) RegisterClass(class, resourceType string) {
	clean := match.StripPrefix(class)
	if _, ok := r.classes[clean]; !ok {
		r.classOrder = append(r.classOrder, clean)
	}

	r.classes[clean] = resourceType
	r.touch()
}

// RemoveClass drops the class mapping of class, if any.
func (r *Registry) RemoveClass(class string) {
	clean := match.StripPrefix(class)
	if _, ok := r.classes[clean]; !ok {
		return
	}

	delete(r.classes, clean)
	r.classOrder = slices.DeleteFunc(r.classOrder, func(c string) bool { return c == clean })
	r.touch()
}

// ResourceType returns the resource type registered for class. Without a
// direct mapping, the recursive ancestors of class are tried in
// breadth-first order when a graph is attached.
func (r *Registry) ResourceType(class string) (string, bool) {
	clean := match.StripPrefix(class)
	if rt, ok := r.classes[clean]; ok {
		return rt, true
	}

	if r.graph == nil {
		return "", false
	}

	for _, parent := range r.graph.Parents(clean, true) {
		if rt, ok := r.classes[parent]; ok {
			r.logger.Debug("resource type inherited", "class", clean, "ancestor", parent, "resourceType", rt)
			return rt, true
		}
	}

	return "", false
}

// Classes returns all class mappings in registration order.
func (r *Registry) Classes() []ClassMapping {
	out := make([]ClassMapping, 0, len(r.classOrder))
	for _, c := range r.classOrder {
		out = append(out, ClassMapping{Class: c, ResourceType: r.classes[c]})
	}

	return out
}

// RegisterField maps field of class to path. The kind is derived from the
// path text (see ClassifyPath).
func (r *Registry) RegisterField(class, field, path string, metadata Metadata) {
	r.RegisterFieldKind(class, field, path, ClassifyPath(path), metadata)
}

// RegisterFieldKind maps field of class to path with an explicit kind.
// Registering an existing exact name replaces its path, kind and metadata.
// Metadata keys lose their fhir: prefix and a "path" key is not kept.
// The normalized alias always points at the latest registration.
func (r *Registry) RegisterFieldKind(class, field, path string, kind PathKind, metadata Metadata) {
	clean := match.StripPrefix(class)

	cf, ok := r.fields[clean]
	if !ok {
		cf = newClassFields()
		r.fields[clean] = cf
		r.fieldOrder = append(r.fieldOrder, clean)
	}

	if _, exists := cf.pathsByExactName[field]; !exists {
		cf.order = append(cf.order, field)
	}

	fm := FieldMapping{Class: clean, Field: field, Path: path, Kind: kind}
	if md := r.cleanMetadata(clean, field, metadata); len(md) > 0 {
		fm.Metadata = md
	}

	cf.pathsByExactName[field] = fm
	cf.exactNameByNormalizedName[match.NormalizeFieldName(field)] = field
	r.touch()
}

// cleanMetadata copies metadata with the fhir: prefix removed from its keys.
// A "path" key is dropped: exported, it would collide with the mapped path.
func (r *Registry) cleanMetadata(class, field string, metadata Metadata) Metadata {
	if len(metadata) == 0 {
		return nil
	}

	out := make(Metadata, len(metadata))

	for k, v := range metadata {
		name := strings.TrimPrefix(k, FHIRPrefix)
		if name == PropPath {
			r.logger.Warn("dropping reserved metadata key", "class", class, "field", field, "key", k)
			continue
		}

		out[name] = v
	}

	return out
}

// RemoveField drops the exact field mapping of class. An alias that pointed
// at it moves to the latest remaining field with the same normalized name.
func (r *Registry) RemoveField(class, field string) {
	clean := match.StripPrefix(class)

	cf, ok := r.fields[clean]
	if !ok {
		return
	}

	if _, ok := cf.pathsByExactName[field]; !ok {
		return
	}

	delete(cf.pathsByExactName, field)
	cf.order = slices.DeleteFunc(cf.order, func(f string) bool { return f == field })

	norm := match.NormalizeFieldName(field)
	if cf.exactNameByNormalizedName[norm] == field {
		delete(cf.exactNameByNormalizedName, norm)

		for i := len(cf.order) - 1; i >= 0; i-- {
			if match.NormalizeFieldName(cf.order[i]) == norm {
				cf.exactNameByNormalizedName[norm] = cf.order[i]
				break
			}
		}
	}

	r.touch()
}

// Field returns the field mapping for field of class, matching the exact
// name first and the normalized name second.
func (r *Registry) Field(class, field string) (FieldMapping, bool) {
	cf, ok := r.fields[match.StripPrefix(class)]
	if !ok {
		return FieldMapping{}, false
	}

	return cf.lookup(field)
}

// FieldPath returns the target path mapped for field of class.
func (r *Registry) FieldPath(class, field string) (string, bool) {
	fm, ok := r.Field(class, field)
	if !ok {
		return "", false
	}

	return fm.Path, true
}

// FieldMetadata returns the metadata registered with field of class. It
// reports false when the field is unknown or was registered without metadata.
func (r *Registry) FieldMetadata(class, field string) (Metadata, bool) {
	fm, ok := r.Field(class, field)
	if !ok || fm.Metadata == nil {
		return nil, false
	}

	return fm.Metadata, true
}

// Fields returns the field mappings of class in registration order.
func (r *Registry) Fields(class string) []FieldMapping {
	cf, ok := r.fields[match.StripPrefix(class)]
	if !ok {
		return nil
	}

	out := make([]FieldMapping, 0, len(cf.order))
	for _, f := range cf.order {
		out = append(out, cf.pathsByExactName[f])
	}

	return out
}

// FieldNames returns the exact field names registered for class.
func (r *Registry) FieldNames(class string) []string {
	cf, ok := r.fields[match.StripPrefix(class)]
	if !ok {
		return nil
	}

	return slices.Clone(cf.order)
}

// FieldClasses returns the classes that have field mappings, in the order
// their first field was registered.
func (r *Registry) FieldClasses() []string {
	return slices.Clone(r.fieldOrder)
}

// System returns the URI registered under a short system name.
func (r *Registry) System(name string) (string, bool) {
	uri, ok := r.systems[name]
	return uri, ok
}

// SetSystem registers or replaces a controlled-vocabulary system.
func (r *Registry) SetSystem(name, uri string) {
	r.systems[name] = uri
}

// Systems returns a copy of the system table.
func (r *Registry) Systems() map[string]string {
	return maps.Clone(r.systems)
}
