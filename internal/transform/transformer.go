package transform

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/google/uuid"

	"biotreebridge/internal/diagnostic"
	"biotreebridge/internal/mapping"
	"biotreebridge/internal/match"
	"biotreebridge/internal/validate"
)

var (
	// ErrUnmappedClass is returned when a class resolves to no resource type.
	ErrUnmappedClass = errors.New("class has no resource type")
	// ErrNoIdentifier is returned when a record yields no identifier to mint an id from.
	ErrNoIdentifier = errors.New("record has no identifier")
)

// Diagnostic codes reported by the transformer.
const (
	CodeUnmappedField   = "unmapped_field"
	CodeTransformFailed = "transform_failed"
	CodeInvalidResource = "invalid_resource"
)

// maxSuggestions bounds the "did you mean" list of an unmapped field.
const maxSuggestions = 3

// Transformer turns source table records into FHIR resources using the
// field mappings of a registry.
type Transformer struct {
	registry     *mapping.Registry
	projectID    string
	namespace    uuid.UUID
	subjectField string
	validator    validate.Validator
	threshold    float64
	logger       *slog.Logger
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithProjectID sets the project that scopes minted ids.
func WithProjectID(projectID string) Option {
	return func(t *Transformer) {
		if projectID != "" {
			t.projectID = projectID
		}
	}
}

// WithNamespace sets the namespace of minted ids.
func WithNamespace(ns uuid.UUID) Option {
	return func(t *Transformer) {
		t.namespace = ns
	}
}

// WithSubjectField links every resource to the patient whose identifier is
// held in field.
func WithSubjectField(field string) Option {
	return func(t *Transformer) {
		t.subjectField = field
	}
}

// WithValidator validates every produced resource.
func WithValidator(v validate.Validator) Option {
	return func(t *Transformer) {
		t.validator = v
	}
}

// WithSuggestionThreshold sets the minimum similarity of field suggestions.
func WithSuggestionThreshold(threshold float64) Option {
	return func(t *Transformer) {
		t.threshold = threshold
	}
}

// WithLogger sets the transformer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transformer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New creates a transformer over r.
func New(r *mapping.Registry, opts ...Option) *Transformer {
	t := &Transformer{
		registry:  r,
		projectID: DefaultProjectID,
		namespace: NamespaceHTAN,
		threshold: match.DefaultSuggestionThreshold,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Transform builds one resource of the type mapped for class from record.
// Fields without a mapping are reported as warnings with suggestions;
// a validation failure is reported as an error and the resource is still
// returned.
func (t *Transformer) Transform(class string, record Record) (Resource, diagnostic.Diagnostics, error) {
	var diags diagnostic.Diagnostics

	resourceType, ok := t.registry.ResourceType(class)
	if !ok {
		return nil, diags, fmt.Errorf("%w: %s", ErrUnmappedClass, class)
	}

	res := Resource{"resourceType": resourceType}
	known := t.registry.FieldNames(class)

	for _, field := range slices.Sorted(maps.Keys(record)) {
		value := record[field]
		if value == "" {
			continue
		}

		if t.registry.MapField(class, field, res, value) {
			continue
		}

		if field == t.subjectField {
			continue
		}

		suggestions := match.Suggest(field, known, t.threshold, maxSuggestions)
		diags.AddWarningWithSuggestions(CodeUnmappedField, "no field mapping", class, field, suggestions)
	}

	system, value, ok := firstIdentifier(res)
	if !ok {
		return nil, diags, fmt.Errorf("%w: %s", ErrNoIdentifier, class)
	}

	res["id"] = MintID(t.namespace, t.projectID, IdentifierString(resourceType, system, value))

	if t.subjectField != "" && record[t.subjectField] != "" && resourceType != "Patient" {
		res["subject"] = map[string]any{
			"reference": "Patient/" + t.SubjectID(record[t.subjectField]),
		}
	}

	res, _ = RemoveEmpty(res).(map[string]any)

	if t.validator != nil {
		if err := t.validator.Validate(resourceType, res); err != nil {
			diags.AddError(CodeInvalidResource, err.Error(), class, "")
		}
	}

	return res, diags, nil
}

// TransformAll transforms every record. Records that fail or do not
// validate are left out and reported.
func (t *Transformer) TransformAll(class string, records []Record) ([]Resource, diagnostic.Diagnostics) {
	var (
		out   []Resource
		diags diagnostic.Diagnostics
	)

	for i, rec := range records {
		res, recDiags, err := t.Transform(class, rec)
		if err != nil {
			diags.AddError(CodeTransformFailed, fmt.Sprintf("row %d: %v", i+1, err), class, "")
			continue
		}

		diags.Merge(recDiags)

		if recDiags.HasErrors() {
			continue
		}

		out = append(out, res)
	}

	t.logger.Info("records transformed", "class", class, "records", len(records), "resources", len(out))

	return out, diags
}

// SubjectID mints the id of the patient identified by value. The identifier
// system is taken from the Patient mapping of the subject field, falling back
// to the htan system.
func (t *Transformer) SubjectID(value string) string {
	system, _ := t.registry.System("htan")

	if md, ok := t.registry.FieldMetadata("Patient", t.subjectField); ok {
		if s, ok := md["system"].(string); ok && s != "" {
			system = s
		}
	}

	return MintID(t.namespace, t.projectID, IdentifierString("Patient", system, value))
}

// firstIdentifier returns the system and value of the first identifier of res.
func firstIdentifier(res Resource) (string, string, bool) {
	ids, _ := res[mapping.IdentifierKey].([]any)

	for _, item := range ids {
		id, ok := item.(map[string]any)
		if !ok {
			continue
		}

		value := fmt.Sprint(id["value"])
		if id["value"] == nil || value == "" {
			continue
		}

		system, _ := id["system"].(string)

		return system, value, true
	}

	return "", "", false
}
