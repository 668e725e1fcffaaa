package mapping

import (
	"errors"
	"fmt"
	"strings"

	"biotreebridge/internal/schema"
)

// Annotation keys written onto schema nodes.
const (
	FHIRPrefix = "fhir:"

	PropResourceType  = "resourceType"
	PropFieldMapping  = "fieldMapping"
	PropFieldMappings = "fieldMappings"
	PropReference     = "reference"
	PropValidation    = "validation"
	PropPath          = "path"
)

var (
	// ErrNoDocument is returned by document operations before a document is loaded.
	ErrNoDocument = errors.New("no schema document loaded")
	// ErrNodeNotFound is returned when a document operation names an unknown node.
	ErrNodeNotFound = errors.New("node not found")
)

// State is the document lifecycle state of a registry.
type State int

const (
	StateUnloaded State = iota
	StateLoaded
	StateMutated
	StateSaved
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateMutated:
		return "mutated"
	case StateSaved:
		return "saved"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// FHIRKey returns the annotation key for prop ("resourceType" -> "fhir:resourceType").
// Keys already carrying the prefix are returned unchanged.
func FHIRKey(prop string) string {
	if strings.HasPrefix(prop, FHIRPrefix) {
		return prop
	}

	return FHIRPrefix + prop
}

// State returns the document lifecycle state.
func (r *Registry) State() State {
	return r.state
}

// touch records a mutation once a document is loaded.
func (r *Registry) touch() {
	if r.state == StateLoaded || r.state == StateSaved {
		r.state = StateMutated
	}
}

// LoadDocument loads the schema document at path. The document also serves
// as the ancestor graph when none is attached.
func (r *Registry) LoadDocument(path string) error {
	g, err := schema.LoadFile(path, schema.WithLogger(r.logger))
	if err != nil {
		return err
	}

	return r.SetDocument(g)
}

// SetDocument uses g as the loaded document. g must carry a node list.
func (r *Registry) SetDocument(g *schema.Graph) error {
	if g == nil || !g.HasGraph() {
		return schema.ErrNoGraph
	}

	r.doc = g
	r.state = StateLoaded

	if r.graph == nil {
		r.graph = g
	}

	r.logger.Info("schema document loaded", "nodes", g.Len())

	return nil
}

// Document returns the loaded document, or nil.
func (r *Registry) Document() *schema.Graph {
	return r.doc
}

// SaveDocument writes the loaded document, annotations included.
func (r *Registry) SaveDocument(path string) error {
	if r.doc == nil {
		return ErrNoDocument
	}

	if err := r.doc.WriteFile(path); err != nil {
		return err
	}

	r.state = StateSaved

	return nil
}

// docNode resolves id against the loaded document.
func (r *Registry) docNode(id string) (schema.Node, error) {
	if r.doc == nil {
		return nil, ErrNoDocument
	}

	n := r.doc.Resolve(id)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	return n, nil
}

// AddProperty sets fhir:<prop> on node. Setting resourceType also registers
// the class mapping.
func (r *Registry) AddProperty(node, prop string, value any) error {
	n, err := r.docNode(node)
	if err != nil {
		return err
	}

	key := FHIRKey(prop)
	n[key] = value

	if rt, ok := value.(string); ok && key == FHIRKey(PropResourceType) && rt != "" {
		r.RegisterClass(n.ID(), rt)
	}

	r.touch()

	return nil
}

// Property returns fhir:<prop> of node.
func (r *Registry) Property(node, prop string) (any, bool) {
	n, err := r.docNode(node)
	if err != nil {
		return nil, false
	}

	v, ok := n[FHIRKey(prop)]

	return v, ok
}

// RemoveProperty deletes fhir:<prop> from node. Removing resourceType also
// drops the class mapping.
func (r *Registry) RemoveProperty(node, prop string) error {
	n, err := r.docNode(node)
	if err != nil {
		return err
	}

	key := FHIRKey(prop)
	if _, ok := n[key]; !ok {
		return nil
	}

	delete(n, key)

	if key == FHIRKey(PropResourceType) {
		r.RemoveClass(n.ID())
	}

	r.touch()

	return nil
}

// Properties returns every fhir: annotation of node.
func (r *Registry) Properties(node string) (map[string]any, error) {
	n, err := r.docNode(node)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any)

	for k, v := range n {
		if strings.HasPrefix(k, FHIRPrefix) {
			out[k] = v
		}
	}

	return out, nil
}

// AllMappings returns every fhir: annotation of the document keyed by
// annotation key, then by node id.
func (r *Registry) AllMappings() (map[string]map[string]any, error) {
	if r.doc == nil {
		return nil, ErrNoDocument
	}

	out := make(map[string]map[string]any)

	for _, n := range r.doc.Nodes() {
		id := n.ID()
		if id == "" {
			continue
		}

		for k, v := range n {
			if !strings.HasPrefix(k, FHIRPrefix) {
				continue
			}

			if out[k] == nil {
				out[k] = make(map[string]any)
			}

			out[k][id] = v
		}
	}

	return out, nil
}

// AddFieldMapping appends a field mapping to fhir:fieldMapping of node. Keys
// of mapping are stored with the fhir: prefix.
func (r *Registry) AddFieldMapping(node string, mapping map[string]any) error {
	return r.appendAnnotation(node, PropFieldMapping, mapping)
}

// AddReference appends a reference definition to fhir:reference of node.
func (r *Registry) AddReference(node string, reference map[string]any) error {
	return r.appendAnnotation(node, PropReference, reference)
}

// AddValidation appends a validation rule to fhir:validation of node.
func (r *Registry) AddValidation(node string, validation map[string]any) error {
	return r.appendAnnotation(node, PropValidation, validation)
}

func (r *Registry) appendAnnotation(node, prop string, entry map[string]any) error {
	n, err := r.docNode(node)
	if err != nil {
		return err
	}

	prefixed := make(map[string]any, len(entry))
	for k, v := range entry {
		prefixed[FHIRKey(k)] = v
	}

	key := FHIRKey(prop)
	list, _ := n[key].([]any)
	n[key] = append(list, prefixed)

	r.touch()

	return nil
}

// FieldMappings returns the fhir:fieldMapping entries of node.
func (r *Registry) FieldMappings(node string) ([]map[string]any, error) {
	n, err := r.docNode(node)
	if err != nil {
		return nil, err
	}

	return annotationList(n, FHIRKey(PropFieldMapping)), nil
}

// RemoveFieldMapping deletes every fhir:fieldMapping entry of node whose
// fhir:path equals path.
func (r *Registry) RemoveFieldMapping(node, path string) error {
	n, err := r.docNode(node)
	if err != nil {
		return err
	}

	key := FHIRKey(PropFieldMapping)
	list, _ := n[key].([]any)
	kept := make([]any, 0, len(list))

	for _, item := range list {
		if m, ok := item.(map[string]any); ok && m[FHIRKey(PropPath)] == path {
			continue
		}

		kept = append(kept, item)
	}

	n[key] = kept
	r.touch()

	return nil
}

func annotationList(n schema.Node, key string) []map[string]any {
	list, _ := n[key].([]any)
	out := make([]map[string]any, 0, len(list))

	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}

	return out
}
