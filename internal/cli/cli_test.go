package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biotreebridge/internal/mapping"
	"biotreebridge/internal/template"
	"biotreebridge/internal/transform"
)

const rppaSchema = `{
  "@graph": [
    {"@id": "RPPALevel2", "rdfs:label": "RPPALevel2", "rdf:subClassOf": "Base"},
    {"@id": "Base", "rdfs:label": "Base", "rdf:subClassOf": []},
    {"@id": "NormalizationMethod", "rdfs:label": "NormalizationMethod", "rdf:subClassOf": "RPPALevel2"},
    {"@id": "HTANRPPAAntibodyTable", "rdfs:label": "HTANRPPAAntibodyTable", "rdf:subClassOf": "RPPALevel2"}
  ]
}`

const depsSchema = `{
  "@graph": [
    {"@id": "bts:Patient", "rdfs:label": "Patient", "sms:requiresDependency": [{"@id": "bts:HTANParticipantID"}]},
    {"@id": "bts:HTANParticipantID", "rdfs:label": "HTAN Participant ID"},
    {"@id": "bts:Biospecimen", "rdfs:label": "Biospecimen", "sms:requiresComponent": [{"@id": "bts:Patient"}]}
  ]
}`

const patientMappings = `version: "1"
fields:
  - class: Patient
    field: HTAN Participant ID
    path: identifier
    metadata:
      system: https://data.humantumoratlas.org/participant
  - class: Patient
    field: Gender
    path: gender
`

// run executes the CLI in a fresh temporary working directory.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := New()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return stdout.String(), err
}

func inTempDir(t *testing.T, files map[string]string) {
	t.Helper()

	t.Chdir(t.TempDir())

	for name, content := range files {
		require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
	}
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestSchemaTree(t *testing.T) {
	tests := []struct {
		name          string
		maxDepth      string
		childrenOfKid bool
	}{
		{name: "depth 1 cuts the children", maxDepth: "1", childrenOfKid: false},
		{name: "depth 2 expands the children", maxDepth: "2", childrenOfKid: true},
		{name: "no limit", maxDepth: "-1", childrenOfKid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inTempDir(t, map[string]string{"schema.json": rppaSchema})

			out, err := run(t, "schema", "tree", "--source", "schema.json", "--parent", "RPPALevel2",
				"--max-depth", tt.maxDepth, "--output", "output.json")
			require.NoError(t, err)
			assert.Contains(t, out, "➜ output.json written")

			var tree map[string]any
			readJSON(t, "output.json", &tree)

			assert.Equal(t, "RPPALevel2", tree["id"])

			children, ok := tree["children"].([]any)
			require.True(t, ok)
			require.Len(t, children, 2)

			for _, child := range children {
				_, has := child.(map[string]any)["children"]
				assert.Equal(t, tt.childrenOfKid, has)
			}
		})
	}
}

func TestSchemaTreeForest(t *testing.T) {
	inTempDir(t, map[string]string{"schema.json": rppaSchema})

	_, err := run(t, "schema", "tree")
	require.NoError(t, err)

	var forest []map[string]any
	readJSON(t, "hierarchy.json", &forest)

	require.Len(t, forest, 1)
	assert.Equal(t, "Base", forest[0]["id"])
}

func TestSchemaTreeInvalidMaxDepth(t *testing.T) {
	inTempDir(t, map[string]string{"schema.json": rppaSchema})

	_, err := run(t, "schema", "tree", "--parent", "RPPALevel2", "--max-depth", "-10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_depth must be either -1 (no limit) or a positive integer.")

	_, statErr := os.Stat("hierarchy.json")
	assert.True(t, os.IsNotExist(statErr))
}

func TestSchemaRoots(t *testing.T) {
	inTempDir(t, map[string]string{"schema.json": rppaSchema})

	out, err := run(t, "schema", "roots")
	require.NoError(t, err)
	assert.Contains(t, out, "found 1 root nodes:")
	assert.Contains(t, out, "  Base\n")

	out, err = run(t, "schema", "roots", "--table")
	require.NoError(t, err)
	assert.Contains(t, out, "Base")
	assert.Contains(t, out, "CHILDREN")
}

func TestSchemaSearch(t *testing.T) {
	inTempDir(t, map[string]string{"schema.json": rppaSchema})

	out, err := run(t, "schema", "search", "--term", "RPPALevel2", "--output", "search_results.json")
	require.NoError(t, err)
	assert.Contains(t, out, "found 1 nodes matching 'RPPALevel2':")
	assert.Contains(t, out, "➜ search_results.json written")

	var results []searchResult
	readJSON(t, "search_results.json", &results)
	require.NotEmpty(t, results)
	assert.Equal(t, searchResult{ID: "RPPALevel2", Name: "RPPALevel2"}, results[0])

	out, err = run(t, "schema", "search", "-t", "nothing-like-this")
	require.NoError(t, err)
	assert.Contains(t, out, "no nodes found matching 'nothing-like-this'")

	_, err = run(t, "schema", "search")
	require.Error(t, err, "--term is required")
}

func TestSchemaDeps(t *testing.T) {
	inTempDir(t, map[string]string{"schema.json": depsSchema})

	out, err := run(t, "schema", "deps")
	require.NoError(t, err)
	assert.Contains(t, out, "dependency order of 3 nodes:")

	var order []string
	for _, line := range strings.Split(out, "\n")[1:] {
		if fields := strings.Fields(line); len(fields) == 2 {
			order = append(order, fields[1])
		}
	}

	require.Len(t, order, 3)
	assert.Less(t, slices.Index(order, "HTANParticipantID"), slices.Index(order, "Patient"))
	assert.Less(t, slices.Index(order, "Patient"), slices.Index(order, "Biospecimen"))

	out, err = run(t, "schema", "deps", "--node", "bts:Patient")
	require.NoError(t, err)
	assert.Contains(t, out, "Biospecimen")
	assert.Contains(t, out, "component")
}

func TestMappingTemplateApplyList(t *testing.T) {
	inTempDir(t, map[string]string{"schema.json": rppaSchema})

	out, err := run(t, "mapping", "template")
	require.NoError(t, err)
	assert.Contains(t, out, "➜ mapping_template.json written")

	entries, err := template.LoadFile("mapping_template.json")
	require.NoError(t, err)
	require.Len(t, entries, 4)

	for i := range entries {
		if entries[i].Node == "RPPALevel2" {
			entries[i].ResourceType = "Observation"
			entries[i].FieldMapping = []map[string]any{{"fhir:path": "code.text"}}
		}
	}

	require.NoError(t, template.WriteFile(entries, "mapping_template.json"))

	out, err = run(t, "mapping", "apply")
	require.NoError(t, err)
	assert.Contains(t, out, "➜ mapped_schema.json written")

	out, err = run(t, "mapping", "list", "--source", "mapped_schema.json")
	require.NoError(t, err)
	assert.Contains(t, out, "fhir:resourceType")
	assert.Contains(t, out, "fhir:fieldMapping")
	assert.Contains(t, out, "RPPALevel2")
	assert.Contains(t, out, "Observation")
	assert.NotContains(t, out, "NormalizationMethod")
}

func TestMappingExport(t *testing.T) {
	inTempDir(t, map[string]string{"mappings.yaml": patientMappings})

	out, err := run(t, "mapping", "export", "--mappings", "mappings.yaml", "--output", "mappings.jsonld")
	require.NoError(t, err)
	assert.Contains(t, out, "➜ mappings.jsonld written")

	_, err = run(t, "mapping", "export", "-m", "mappings.jsonld", "-o", "back.yaml")
	require.NoError(t, err)

	mf, err := mapping.LoadFile("back.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Patient", mf.Classes["Patient"])
	paths := make(map[string]string)
	for _, f := range mf.Fields {
		paths[f.Class+"."+f.Field] = f.Path
	}

	assert.Equal(t, map[string]string{
		"Patient.HTAN Participant ID": "identifier",
		"Patient.Gender":              "gender",
	}, paths)

	_, err = run(t, "mapping", "export")
	require.Error(t, err)
}

func TestTransform(t *testing.T) {
	inTempDir(t, map[string]string{
		"mappings.yaml": patientMappings,
		"demographics.tsv": "HTAN Participant ID\tGender\tRace\n" +
			"HTA1_1\tfemale\twhite\n" +
			"HTA1_2\tmale\t\n" +
			"\tmale\t\n",
	})

	out, err := run(t, "transform", "-m", "mappings.yaml", "-c", "Patient", "-i", "demographics.tsv",
		"-o", "META", "--validate")
	require.NoError(t, err)
	assert.Contains(t, out, "2 of 3 records transformed to Patient")
	assert.Contains(t, out, "➜ "+filepath.Join("META", "Patient.ndjson")+" written")

	f, err := os.Open(filepath.Join("META", "Patient.ndjson"))
	require.NoError(t, err)
	defer f.Close()

	resources, err := transform.ReadNDJSON(f)
	require.NoError(t, err)
	require.Len(t, resources, 2)
	assert.Equal(t, "female", resources[0]["gender"])
	assert.Equal(t, "Patient", resources[1]["resourceType"])
}

func TestTransformUnmappedClass(t *testing.T) {
	inTempDir(t, map[string]string{"mappings.yaml": patientMappings, "in.csv": "a\nb\n"})

	_, err := run(t, "transform", "-m", "mappings.yaml", "-c", "Spaceship", "-i", "in.csv")
	require.ErrorIs(t, err, transform.ErrUnmappedClass)
}

func TestConfigFile(t *testing.T) {
	inTempDir(t, map[string]string{
		"model.jsonld":       rppaSchema,
		"biotreebridge.yaml": "schema: model.jsonld\n",
		"broken.yaml":        "schema: model.jsonld\nlog:\n  level: loud\n",
	})

	out, err := run(t, "schema", "roots")
	require.NoError(t, err, "schema taken from the default config file")
	assert.Contains(t, out, "Base")

	_, err = run(t, "--config", "broken.yaml", "schema", "roots")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level: loud")

	out, err = run(t, "--config", "broken.yaml", "--loglevel", "debug", "schema", "roots")
	require.NoError(t, err, "flags win over the config file")
	assert.Contains(t, out, "found 1 root nodes:")
}

func TestLogFlags(t *testing.T) {
	inTempDir(t, nil)

	_, err := run(t, "--loglevel", "loud", "version")
	require.Error(t, err)

	_, err = run(t, "--logformat", "json", "version")
	require.NoError(t, err)
}

func TestVersion(t *testing.T) {
	inTempDir(t, nil)

	out, err := run(t, "version", "--format", "json")
	require.NoError(t, err)

	var info versionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info.Version)

	out, err = run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "biotreebridge "))
}
