package mapping

import (
	"maps"
	"strings"
)

// Target list keys for identifier and extension paths.
const (
	IdentifierKey = "identifier"
	ExtensionKey  = "extension"
)

// MapField writes value into resource according to the field mapping of
// field in class. It reports whether a mapping was found; an unmapped field
// leaves resource untouched.
func (r *Registry) MapField(class, field string, resource map[string]any, value any) bool {
	fm, ok := r.Field(class, field)
	if !ok || fm.Path == "" {
		return false
	}

	Apply(fm, resource, value)

	return true
}

// Apply writes value into resource following fm.
func Apply(fm FieldMapping, resource map[string]any, value any) {
	switch fm.Kind {
	case PathKindIdentifier:
		appendIdentifier(resource, value, fm.Metadata)
	case PathKindExtension:
		appendExtension(resource, value, fm.Metadata)
	default:
		setPath(resource, fm.Path, value)
	}
}

func appendIdentifier(resource map[string]any, value any, metadata Metadata) {
	identifier := make(map[string]any, len(metadata)+1)
	identifier["value"] = value
	maps.Copy(identifier, metadata)

	resource[IdentifierKey] = appendList(resource[IdentifierKey], identifier)
}

func appendExtension(resource map[string]any, value any, metadata Metadata) {
	extension := map[string]any{"valueString": value}
	if url, ok := metadata["url"]; ok {
		extension["url"] = url
	}

	resource[ExtensionKey] = appendList(resource[ExtensionKey], extension)
}

// appendList appends item to an existing list value, starting a new list
// when the current value is missing or not a list.
func appendList(current any, item map[string]any) []any {
	list, _ := current.([]any)
	return append(list, item)
}

// setPath assigns value at a dotted path, creating intermediate objects.
// A non-object value in the way is replaced by an object.
func setPath(resource map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := resource

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}

		current = next
	}

	current[parts[len(parts)-1]] = value
}
