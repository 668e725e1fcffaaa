package template

import (
	"fmt"

	"biotreebridge/internal/diagnostic"
	"biotreebridge/internal/mapping"
)

// Diagnostic codes reported by Apply.
const (
	CodeMissingNode = "missing_node"
	CodeUnknownNode = "unknown_node"
	CodeApplyFailed = "apply_failed"
	CodeApplied     = "applied"
)

// PropSchemaSubClassOf is the node property holding a subclass override.
const PropSchemaSubClassOf = "schema_subClassOf"

// Apply writes the filled-in parts of entries onto the document loaded in r.
// Blank slots and untouched placeholder elements are ignored. Entries that
// cannot be applied are reported in the returned diagnostics and skipped.
func Apply(r *mapping.Registry, entries []Entry) (diagnostic.Diagnostics, error) {
	var diags diagnostic.Diagnostics

	doc := r.Document()
	if doc == nil {
		return diags, mapping.ErrNoDocument
	}

	applied := 0

	for i, e := range entries {
		if e.Node == "" {
			diags.AddWarning(CodeMissingNode, fmt.Sprintf("entry %d: %s", i, ErrMissingNode), "", "")
			continue
		}

		if doc.Resolve(e.Node) == nil {
			if e.ResourceType != "" {
				r.RegisterClass(e.Node, e.ResourceType)
			}

			diags.AddWarning(CodeUnknownNode, fmt.Sprintf("entry %d: node not in document", i), e.Node, "")

			continue
		}

		if err := applyEntry(r, e); err != nil {
			diags.AddError(CodeApplyFailed, err.Error(), e.Node, "")
			continue
		}

		applied++
	}

	diags.AddInfo(CodeApplied, fmt.Sprintf("%d of %d entries applied", applied, len(entries)), "", "")

	return diags, nil
}

func applyEntry(r *mapping.Registry, e Entry) error {
	if e.ResourceType != "" {
		if err := r.AddProperty(e.Node, mapping.PropResourceType, e.ResourceType); err != nil {
			return err
		}
	}

	if hasReferenceTarget(e.Reference) {
		for _, ref := range e.Reference {
			if !hasValue(ref) {
				continue
			}

			if err := r.AddReference(e.Node, ref); err != nil {
				return err
			}
		}
	}

	for _, v := range e.Validation {
		if !hasValue(v) {
			continue
		}

		if err := r.AddValidation(e.Node, v); err != nil {
			return err
		}
	}

	for _, fm := range e.FieldMapping {
		if !hasValue(fm) {
			continue
		}

		if err := r.AddFieldMapping(e.Node, fm); err != nil {
			return err
		}
	}

	if e.SchemaSubClassOf != "" {
		if err := r.AddProperty(e.Node, PropSchemaSubClassOf, e.SchemaSubClassOf); err != nil {
			return err
		}
	}

	return nil
}

// hasReferenceTarget reports whether any reference names a resource type.
func hasReferenceTarget(refs []map[string]any) bool {
	for _, ref := range refs {
		for _, key := range []string{mapping.FHIRKey(mapping.PropResourceType), mapping.PropResourceType} {
			if s, ok := ref[key].(string); ok && s != "" {
				return true
			}
		}
	}

	return false
}

// hasValue reports whether m holds at least one non-blank value.
func hasValue(m map[string]any) bool {
	for _, v := range m {
		switch val := v.(type) {
		case nil:
		case string:
			if val != "" {
				return true
			}
		case []any:
			if len(val) > 0 {
				return true
			}
		case map[string]any:
			if len(val) > 0 {
				return true
			}
		default:
			return true
		}
	}

	return false
}
