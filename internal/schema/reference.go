package schema

import (
	"biotreebridge/internal/common"
	"biotreebridge/internal/match"
)

// ReferenceShape is the serialized form a reference value was found in.
type ReferenceShape int

const (
	// ShapeNone means the value is absent or not reference-shaped.
	ShapeNone ReferenceShape = iota
	// ShapeObject is a single {"@id": "..."} object.
	ShapeObject
	// ShapeList is a list of {"@id": "..."} objects and/or strings.
	ShapeList
	// ShapeString is a bare string id.
	ShapeString
)

// String returns a human-readable shape name.
func (s ReferenceShape) String() string {
	switch s {
	case ShapeNone:
		return "none"
	case ShapeObject:
		return "object"
	case ShapeList:
		return "list"
	case ShapeString:
		return "string"
	default:
		return common.UnknownStr
	}
}

// References is a parsed reference value.
type References struct {
	Shape ReferenceShape
	// IDs are the referenced ids as stored (possibly prefixed), in order.
	IDs []string
}

// ParseReferences normalizes a reference-shaped value into its ids.
// All three shapes carrying the same logical reference yield the same IDs.
// List elements that are neither strings nor objects with a string "@id"
// are ignored, as are empty ids.
func ParseReferences(raw any) References {
	switch v := raw.(type) {
	case map[string]any:
		if id, ok := refID(v); ok {
			return References{Shape: ShapeObject, IDs: []string{id}}
		}
	case Node:
		if id, ok := refID(v); ok {
			return References{Shape: ShapeObject, IDs: []string{id}}
		}
	case []any:
		refs := References{Shape: ShapeList}

		for _, item := range v {
			switch it := item.(type) {
			case map[string]any:
				if id, ok := refID(it); ok {
					refs.IDs = append(refs.IDs, id)
				}
			case string:
				if it != "" {
					refs.IDs = append(refs.IDs, it)
				}
			}
		}

		return refs
	case []string:
		refs := References{Shape: ShapeList}

		for _, it := range v {
			if it != "" {
				refs.IDs = append(refs.IDs, it)
			}
		}

		return refs
	case string:
		if v != "" {
			return References{Shape: ShapeString, IDs: []string{v}}
		}
	}

	return References{Shape: ShapeNone}
}

// Stripped returns the referenced ids with namespace prefixes removed.
func (r References) Stripped() []string {
	if len(r.IDs) == 0 {
		return nil
	}

	out := make([]string, len(r.IDs))
	for i, id := range r.IDs {
		out[i] = match.StripPrefix(id)
	}

	return out
}

// referenceIDs returns the prefix-stripped ids referenced by node[key].
func referenceIDs(n Node, key string) []string {
	if n == nil {
		return nil
	}

	return ParseReferences(n[key]).Stripped()
}

func refID(obj map[string]any) (string, bool) {
	id, ok := obj[KeyID].(string)
	return id, ok && id != ""
}
