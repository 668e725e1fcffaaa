package template

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-json"

	"biotreebridge/internal/common"
	"biotreebridge/internal/match"
	"biotreebridge/internal/schema"
)

// ErrMissingNode marks a template entry without a node id.
var ErrMissingNode = errors.New("template entry has no node id")

// Entry is one node of a mapping template.
type Entry struct {
	Node             string           `json:"node"`
	ResourceType     string           `json:"fhir:resourceType"`
	Reference        []map[string]any `json:"fhir:reference"`
	Validation       []map[string]any `json:"fhir:validation"`
	FieldMapping     []map[string]any `json:"fhir:fieldMapping"`
	SubClassOf       string           `json:"rdfs:subClassOf"`
	SchemaSubClassOf string           `json:"fhir:schema_subClassOf"`
	RangeValues      []string         `json:"range_values"`
}

// Placeholder elements written into new entries.
func referencePlaceholder() map[string]any {
	return map[string]any{"fhir:resourceType": "", "fhir:path": ""}
}

func validationPlaceholder() map[string]any {
	return map[string]any{}
}

func fieldMappingPlaceholder() map[string]any {
	return map[string]any{"fhir:path": ""}
}

// isRangeIncludesKey reports whether key declares the value range of a property.
func isRangeIncludesKey(key string) bool {
	return strings.HasSuffix(strings.ToLower(key), "rangeincludes")
}

func rangeIncludes(n schema.Node) []string {
	var ids []string

	for _, k := range slices.Sorted(maps.Keys(n)) {
		if isRangeIncludesKey(k) {
			ids = append(ids, schema.ParseReferences(n[k]).Stripped()...)
		}
	}

	return ids
}

// Create builds a blank template for every node of g that is not referenced
// as a range value. It also returns the excluded ids, prefix-stripped, in
// the order they were first referenced.
func Create(g *schema.Graph) ([]Entry, []string) {
	excluded := make(map[string]bool)

	var excludedIDs []string

	for _, n := range g.Nodes() {
		for _, id := range rangeIncludes(n) {
			if !excluded[id] {
				excluded[id] = true
				excludedIDs = append(excludedIDs, id)
			}
		}
	}

	entries := make([]Entry, 0, g.Len())

	for _, n := range g.Nodes() {
		id := n.ID()
		if id == "" || excluded[match.StripPrefix(id)] {
			continue
		}

		entries = append(entries, newEntry(n))
	}

	return entries, excludedIDs
}

func newEntry(n schema.Node) Entry {
	e := Entry{
		Node:         n.ID(),
		Reference:    []map[string]any{referencePlaceholder()},
		Validation:   []map[string]any{validationPlaceholder()},
		FieldMapping: []map[string]any{fieldMappingPlaceholder()},
		RangeValues:  rangeIncludes(n),
	}

	if parent, ok := common.First(n.Parents()); ok {
		e.SubClassOf = parent
	}

	if e.RangeValues == nil {
		e.RangeValues = []string{}
	}

	return e
}

// field is one key of an entry in output order.
type field struct {
	key     string
	value   any
	compact bool
}

func (e Entry) fields() []field {
	return []field{
		{key: "node", value: e.Node},
		{key: "fhir:resourceType", value: e.ResourceType},
		{key: "fhir:reference", value: nonNil(e.Reference), compact: true},
		{key: "fhir:validation", value: nonNil(e.Validation), compact: true},
		{key: "fhir:fieldMapping", value: nonNil(e.FieldMapping), compact: true},
		{key: "rdfs:subClassOf", value: e.SubClassOf},
		{key: "fhir:schema_subClassOf", value: e.SchemaSubClassOf},
		{key: "range_values", value: nonNilStrings(e.RangeValues)},
	}
}

func nonNil(list []map[string]any) []map[string]any {
	if list == nil {
		return []map[string]any{}
	}

	return list
}

func nonNilStrings(list []string) []string {
	if list == nil {
		return []string{}
	}

	return list
}

// Marshal encodes entries with two-space indentation, writing the
// reference, validation and fieldMapping arrays on one line each.
func Marshal(entries []Entry) ([]byte, error) {
	if len(entries) == 0 {
		return []byte("[]\n"), nil
	}

	var buf bytes.Buffer

	buf.WriteString("[\n")

	for i, e := range entries {
		buf.WriteString("  {\n")

		fields := e.fields()
		for j, f := range fields {
			key, err := json.Marshal(f.key)
			if err != nil {
				return nil, err
			}

			var value []byte
			if f.compact {
				value, err = json.Marshal(f.value)
			} else {
				value, err = json.MarshalIndent(f.value, "    ", "  ")
			}

			if err != nil {
				return nil, fmt.Errorf("entry %s: %s: %w", e.Node, f.key, err)
			}

			buf.WriteString("    ")
			buf.Write(key)
			buf.WriteString(": ")
			buf.Write(value)

			if j < len(fields)-1 {
				buf.WriteByte(',')
			}

			buf.WriteByte('\n')
		}

		buf.WriteString("  }")

		if i < len(entries)-1 {
			buf.WriteByte(',')
		}

		buf.WriteByte('\n')
	}

	buf.WriteString("]\n")

	return buf.Bytes(), nil
}

// WriteFile writes entries to path.
func WriteFile(entries []Entry, path string) error {
	data, err := Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal template: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write template %s: %w", path, err)
	}

	return nil
}

// Parse decodes a template document.
func Parse(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	return entries, nil
}

// Read decodes a template document from r.
func Read(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}

	return Parse(data)
}

// LoadFile reads a template from path.
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}

	return Parse(data)
}
