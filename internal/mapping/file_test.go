package mapping

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	yaml := `
classes:
  bts:Molecular: Observation
fields:
  - class: Patient
    field: HTAN Participant ID
    path: identifier
    metadata:
      system: https://data.humantumoratlas.org
      use: official
  - class: Patient
    field: Gender
    path: gender
  - class: Specimen
    field: Identifier Type
    path: type.identifierType
    kind: simple
systems:
  ncit: http://purl.obolibrary.org/obo/ncit.owl
`

	mf, err := Parse([]byte(yaml))
	require.NoError(t, err)
	require.NotNil(t, mf)

	assert.Equal(t, "1", mf.Version)
	assert.Equal(t, "Observation", mf.Classes["bts:Molecular"])
	require.Len(t, mf.Fields, 3)

	// kind derived from the path
	require.NotNil(t, mf.Fields[0].Kind)
	assert.Equal(t, PathKindIdentifier, *mf.Fields[0].Kind)
	assert.Equal(t, "official", mf.Fields[0].Metadata["use"])

	require.NotNil(t, mf.Fields[1].Kind)
	assert.Equal(t, PathKindSimple, *mf.Fields[1].Kind)

	// explicit kind wins over the path text
	require.NotNil(t, mf.Fields[2].Kind)
	assert.Equal(t, PathKindSimple, *mf.Fields[2].Kind)

	assert.Equal(t, "http://purl.obolibrary.org/obo/ncit.owl", mf.Systems["ncit"])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed", "fields: [\n"},
		{"unknown kind", "fields:\n  - class: A\n    field: f\n    path: p\n    kind: nested\n"},
		{"missing path", "fields:\n  - class: A\n    field: f\n"},
		{"missing class", "fields:\n  - field: f\n    path: p\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestApplyFile(t *testing.T) {
	mf, err := Parse([]byte(`
classes:
  Molecular: Observation
fields:
  - class: Specimen
    field: Identifier Type
    path: type.identifierType
    kind: simple
  - class: Patient
    field: Ethnicity
    path: ethnicity
    kind: extension
    metadata:
      url: http://example.org/ethnicity
systems:
  ncit: http://purl.obolibrary.org/obo/ncit.owl
`))
	require.NoError(t, err)

	r := New()
	r.ApplyFile(mf)

	rt, ok := r.ResourceType("Molecular")
	require.True(t, ok)
	assert.Equal(t, "Observation", rt)

	fm, ok := r.Field("Specimen", "identifier type")
	require.True(t, ok)
	assert.Equal(t, PathKindSimple, fm.Kind)

	resource := map[string]any{}
	r.MapField("Patient", "Ethnicity", resource, "hispanic")
	assert.Equal(t, []any{map[string]any{"valueString": "hispanic", "url": "http://example.org/ethnicity"}}, resource["extension"])

	_, ok = r.System("ncit")
	assert.True(t, ok)
}

func TestApplyFileClassOrder(t *testing.T) {
	mf, err := Parse([]byte("classes:\n  Zeta: Observation\n  Alpha: Patient\n  Mid: Specimen\n  Beta: Condition\n"))
	require.NoError(t, err)

	want := []ClassMapping{
		{Class: "Alpha", ResourceType: "Patient"},
		{Class: "Beta", ResourceType: "Condition"},
		{Class: "Mid", ResourceType: "Specimen"},
		{Class: "Zeta", ResourceType: "Observation"},
	}

	for range 10 {
		r := New(WithoutDefaults())
		r.ApplyFile(mf)

		require.Equal(t, want, r.Classes())
	}
}

func TestFileRoundTrip(t *testing.T) {
	r := sampleRegistry()

	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, WriteFile(r.File(), path))

	mf, err := LoadFile(path)
	require.NoError(t, err)

	loaded := New()
	loaded.ApplyFile(mf)

	assert.Equal(t, fieldPairs(r), fieldPairs(loaded))

	fm, ok := loaded.Field("Specimen", "Identifier Type")
	require.True(t, ok)
	assert.Equal(t, PathKindSimple, fm.Kind)

	got, _ := loaded.FieldPath("Patient", "GENDER")
	assert.Equal(t, "extension", got)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
