package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPath(t *testing.T) {
	tests := []struct {
		path string
		want PathKind
	}{
		{"identifier", PathKindIdentifier},
		{"Patient.identifier.value", PathKindIdentifier},
		{"extension", PathKindExtension},
		{"extension.identifier", PathKindIdentifier},
		{"gender", PathKindSimple},
		{"collection.bodySite", PathKindSimple},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyPath(tt.path))
		})
	}
}

func TestPathKindText(t *testing.T) {
	assert.Equal(t, "simple", PathKindSimple.String())
	assert.Equal(t, "identifier", PathKindIdentifier.String())
	assert.Equal(t, "extension", PathKindExtension.String())
	assert.Equal(t, "PathKind(7)", PathKind(7).String())

	k, err := ParsePathKind("Extension")
	require.NoError(t, err)
	assert.Equal(t, PathKindExtension, k)

	_, err = ParsePathKind("nested")
	require.Error(t, err)
}

func TestMapFieldIdentifier(t *testing.T) {
	r := New()
	r.RegisterField("Patient", "HTAN Participant ID", "identifier", Metadata{
		"system": "https://data.humantumoratlas.org",
		"use":    "official",
	})

	resource := map[string]any{}
	require.True(t, r.MapField("Patient", "htan participant id", resource, "HTA1_1"))
	require.True(t, r.MapField("Patient", "HTAN Participant ID", resource, "HTA1_2"))

	ids, ok := resource[IdentifierKey].([]any)
	require.True(t, ok)
	require.Len(t, ids, 2)
	assert.Equal(t, map[string]any{
		"value":  "HTA1_1",
		"system": "https://data.humantumoratlas.org",
		"use":    "official",
	}, ids[0])
	assert.Equal(t, "HTA1_2", ids[1].(map[string]any)["value"])
}

func TestMapFieldIdentifierWithoutMetadata(t *testing.T) {
	r := New()
	r.RegisterField("Specimen", "Biospecimen ID", "identifier", nil)

	resource := map[string]any{}
	r.MapField("Specimen", "Biospecimen ID", resource, "B1")

	assert.Equal(t, []any{map[string]any{"value": "B1"}}, resource[IdentifierKey])
}

func TestMapFieldExtension(t *testing.T) {
	r := New()
	r.RegisterField("Patient", "Ethnicity", "extension", Metadata{"url": "http://hl7.org/ethnicity", "use": "ignored"})
	r.RegisterField("Patient", "Race", "extension.race", nil)

	resource := map[string]any{}
	r.MapField("Patient", "Ethnicity", resource, "hispanic")
	r.MapField("Patient", "Race", resource, "white")

	assert.Equal(t, []any{
		map[string]any{"valueString": "hispanic", "url": "http://hl7.org/ethnicity"},
		map[string]any{"valueString": "white"},
	}, resource[ExtensionKey])
}

func TestMapFieldSimple(t *testing.T) {
	r := New()
	r.RegisterField("Patient", "Gender", "gender", nil)
	r.RegisterField("Specimen", "Site", "collection.bodySite.text", nil)

	patient := map[string]any{}
	r.MapField("Patient", "Gender", patient, "female")
	assert.Equal(t, map[string]any{"gender": "female"}, patient)

	specimen := map[string]any{"collection": map[string]any{"method": "biopsy"}}
	r.MapField("Specimen", "Site", specimen, "lung")
	assert.Equal(t, map[string]any{
		"collection": map[string]any{
			"method":   "biopsy",
			"bodySite": map[string]any{"text": "lung"},
		},
	}, specimen)
}

func TestMapFieldReplacesScalarInPath(t *testing.T) {
	r := New()
	r.RegisterField("Specimen", "Site", "collection.text", nil)

	specimen := map[string]any{"collection": "x"}
	r.MapField("Specimen", "Site", specimen, "lung")

	assert.Equal(t, map[string]any{"collection": map[string]any{"text": "lung"}}, specimen)
}

func TestMapFieldExplicitKind(t *testing.T) {
	r := New()
	// the path text mentions identifier but the field is a plain value
	r.RegisterFieldKind("Specimen", "Identifier Type", "type.identifierType", PathKindSimple, nil)

	resource := map[string]any{}
	r.MapField("Specimen", "Identifier Type", resource, "accession")

	assert.Equal(t, map[string]any{"type": map[string]any{"identifierType": "accession"}}, resource)
}

func TestMapFieldUnmapped(t *testing.T) {
	r := New()

	resource := map[string]any{"resourceType": "Patient"}
	assert.False(t, r.MapField("Patient", "Unknown", resource, "v"))
	assert.Equal(t, map[string]any{"resourceType": "Patient"}, resource)
}
