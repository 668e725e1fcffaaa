package schema

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-json"

	"biotreebridge/internal/common"
)

// JSON-LD keys understood by the graph.
const (
	KeyID          = "@id"
	KeyType        = "@type"
	KeyContext     = "@context"
	KeyGraph       = "@graph"
	KeyGraphAlt    = "graph"
	KeyLabel       = "rdfs:label"
	KeyDisplayName = "schema:name"

	KeyRequired           = "sms:required"
	KeyRequiresComponent  = "sms:requiresComponent"
	KeyRequiresDependency = "sms:requiresDependency"
	KeyRangeIncludes      = "schema:rangeIncludes"

	// MetadataPrefix marks node-metadata attributes returned by Attributes.
	MetadataPrefix = "sms:"
)

// ErrNoGraph is returned when a document carries no node list.
var ErrNoGraph = errors.New("schema document has no @graph")

// Node is one class or property definition of the source graph, kept as the
// raw JSON-LD object so that unknown attributes survive a load/save cycle.
type Node map[string]any

// ID returns the node id as stored (possibly prefixed), or "" if absent.
func (n Node) ID() string {
	id, _ := n[KeyID].(string)
	return id
}

// Label returns the human-readable name: rdfs:label, then schema:name, then "".
func (n Node) Label() string {
	label, _ := n[KeyLabel].(string)
	name, _ := n[KeyDisplayName].(string)

	return common.FirstNonEmpty(label, name)
}

// String returns the string value stored under key, or "".
func (n Node) String(key string) string {
	s, _ := n[key].(string)
	return s
}

// Graph is an in-memory source schema graph.
type Graph struct {
	// doc is the containing document; nil when the source was a bare array.
	doc      map[string]any
	nodes    []Node
	hasGraph bool
	logger   *slog.Logger
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithContext sets the @context of a graph built by New.
func WithContext(jsonldContext any) Option {
	return func(g *Graph) {
		if g.doc == nil || jsonldContext == nil {
			return
		}

		g.doc[KeyContext] = jsonldContext
	}
}

// New creates a graph over the given nodes.
func New(nodes []Node, opts ...Option) *Graph {
	g := &Graph{
		doc:      map[string]any{KeyGraph: nodesToAny(nodes)},
		nodes:    nodes,
		hasGraph: true,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// LoadFile reads and parses a schema document from the given path.
func LoadFile(path string, opts ...Option) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	g, err := Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return g, nil
}

// Read parses a schema document from r.
func Read(r io.Reader, opts ...Option) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	return Parse(data, opts...)
}

// Parse parses JSON data into a Graph. Malformed JSON is an error; a document
// without a node list yields an empty graph (see HasGraph).
func Parse(data []byte, opts ...Option) (*Graph, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}

	return FromDocument(raw, opts...)
}

// FromDocument builds a Graph from an already decoded JSON value.
func FromDocument(raw any, opts ...Option) (*Graph, error) {
	g := &Graph{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(g)
	}

	switch doc := raw.(type) {
	case []any:
		g.nodes = toNodes(doc)
		g.hasGraph = true
	case map[string]any:
		g.doc = doc

		for _, key := range []string{KeyGraph, KeyGraphAlt} {
			if list, ok := doc[key].([]any); ok && len(list) > 0 {
				g.nodes = toNodes(list)
				g.hasGraph = true

				break
			}

			if _, ok := doc[key].([]any); ok {
				g.hasGraph = true
			}
		}
	default:
		return nil, fmt.Errorf("schema document must be an object or an array, got %T", raw)
	}

	g.logger.Debug("schema graph loaded", slog.Int("nodes", len(g.nodes)), slog.Bool("graph", g.hasGraph))

	return g, nil
}

// HasGraph reports whether the document carried a node list at all.
func (g *Graph) HasGraph() bool {
	return g.hasGraph
}

// Nodes returns the nodes in graph order. The slice is shared with the graph.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Context returns the document's @context, or nil.
func (g *Graph) Context() any {
	if g.doc == nil {
		return nil
	}

	return g.doc[KeyContext]
}

// Document returns the document as a JSON-ready value. Nodes are shared, so
// in-place node edits are reflected in the output.
func (g *Graph) Document() map[string]any {
	out := make(map[string]any, len(g.doc)+1)
	for k, v := range g.doc {
		if k == KeyGraphAlt {
			continue
		}

		out[k] = v
	}

	out[KeyGraph] = nodesToAny(g.nodes)

	return out
}

// Append adds a node at the end of the graph.
func (g *Graph) Append(n Node) {
	g.nodes = append(g.nodes, n)
	g.hasGraph = true
}

// MarshalIndent encodes the document with two-space indentation.
func (g *Graph) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(g.Document(), "", "  ")
}

// WriteFile writes the document to path.
func (g *Graph) WriteFile(path string) error {
	data, err := g.MarshalIndent()
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write schema file %s: %w", path, err)
	}

	return nil
}

func toNodes(list []any) []Node {
	nodes := make([]Node, 0, len(list))

	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			nodes = append(nodes, Node(obj))
		}
	}

	return nodes
}

func nodesToAny(nodes []Node) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = map[string]any(n)
	}

	return out
}
