package mapping

import (
	"strings"

	"biotreebridge/internal/schema"
)

// Unprefixed keys of an exported field mapping. Metadata is written under
// fhir: keys, so these never collide with it.
const (
	fieldKey = "field"
	kindKey  = "kind"
)

// Export builds an annotated JSON-LD document holding every class mapping
// and field mapping of the registry. Classes that only have field mappings
// are exported without fhir:resourceType. The @context of the loaded
// document, if any, is carried over.
func (r *Registry) Export() *schema.Graph {
	nodes := make([]schema.Node, 0, len(r.classOrder)+len(r.fieldOrder))
	exported := make(map[string]bool, len(r.classOrder))

	for _, class := range r.classOrder {
		node := schema.Node{
			schema.KeyID:              class,
			schema.KeyType:            "rdfs:Class",
			FHIRKey(PropResourceType): r.classes[class],
		}
		r.exportFields(node, class)
		nodes = append(nodes, node)
		exported[class] = true
	}

	for _, class := range r.fieldOrder {
		if exported[class] {
			continue
		}

		node := schema.Node{
			schema.KeyID:   class,
			schema.KeyType: "rdfs:Class",
		}
		r.exportFields(node, class)
		nodes = append(nodes, node)
	}

	var jsonldContext any = map[string]any{}
	if r.doc != nil && r.doc.Context() != nil {
		jsonldContext = r.doc.Context()
	}

	return schema.New(nodes, schema.WithContext(jsonldContext), schema.WithLogger(r.logger))
}

func (r *Registry) exportFields(node schema.Node, class string) {
	fields := r.Fields(class)
	if len(fields) == 0 {
		return
	}

	list := make([]any, 0, len(fields))

	for _, fm := range fields {
		entry := map[string]any{fieldKey: fm.Field}
		for k, v := range fm.Metadata {
			entry[FHIRKey(k)] = v
		}

		entry[FHIRKey(PropPath)] = fm.Path
		if fm.Kind != ClassifyPath(fm.Path) {
			entry[kindKey] = fm.Kind.String()
		}

		list = append(list, entry)
	}

	node[FHIRKey(PropFieldMappings)] = list
}

// ExportFile writes the annotated document to path.
func (r *Registry) ExportFile(path string) error {
	return r.Export().WriteFile(path)
}

// LoadMappingSchema registers the mappings of an annotated document read
// from path and returns how many class and field mappings were loaded.
func (r *Registry) LoadMappingSchema(path string) (int, error) {
	g, err := schema.LoadFile(path, schema.WithLogger(r.logger))
	if err != nil {
		return 0, err
	}

	return r.ApplyMappingSchema(g)
}

// ApplyMappingSchema registers the mappings annotated on the nodes of g.
// Nodes without @id are skipped, as are field entries without a field name
// or path or with an unknown kind. Every other entry is still loaded.
func (r *Registry) ApplyMappingSchema(g *schema.Graph) (int, error) {
	if g == nil || !g.HasGraph() {
		return 0, schema.ErrNoGraph
	}

	loaded := 0

	for _, n := range g.Nodes() {
		class := n.ID()
		if class == "" {
			continue
		}

		if rt := n.String(FHIRKey(PropResourceType)); rt != "" {
			r.RegisterClass(class, rt)
			loaded++
		}

		entries, _ := n[FHIRKey(PropFieldMappings)].([]any)
		for _, item := range entries {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}

			if r.applyFieldEntry(class, entry) {
				loaded++
			}
		}
	}

	r.logger.Info("mapping schema loaded", "mappings", loaded)

	return loaded, nil
}

func (r *Registry) applyFieldEntry(class string, entry map[string]any) bool {
	field, _ := entry[fieldKey].(string)
	path, _ := entry[FHIRKey(PropPath)].(string)

	if field == "" || path == "" {
		r.logger.Warn("skipping incomplete field mapping", "class", class, "field", field)
		return false
	}

	kind := ClassifyPath(path)
	if raw, ok := entry[kindKey].(string); ok {
		parsed, err := ParsePathKind(raw)
		if err != nil {
			r.logger.Warn("skipping field mapping", "class", class, "field", field, "error", err)
			return false
		}

		kind = parsed
	}

	var metadata Metadata

	for k, v := range entry {
		if !strings.HasPrefix(k, FHIRPrefix) {
			continue
		}

		name := strings.TrimPrefix(k, FHIRPrefix)
		if name == PropPath {
			continue
		}

		if metadata == nil {
			metadata = make(Metadata)
		}

		metadata[name] = v
	}

	r.RegisterFieldKind(class, field, path, kind, metadata)

	return true
}
