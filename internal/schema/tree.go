package schema

import (
	"slices"

	"github.com/goccy/go-json"

	"biotreebridge/internal/match"
)

// NoDepthLimit disables the depth cut in BuildTree.
const NoDepthLimit = -1

// TreeOptions controls BuildTree.
type TreeOptions struct {
	// MaxDepth is the depth at which nodes are cut (the root is depth 0).
	// NoDepthLimit (-1) builds the full tree.
	MaxDepth int
	// IncludeAttributes attaches requirement metadata to every node that is
	// not depth-cut.
	IncludeAttributes bool
}

// Tree is a nested view of the hierarchy below one node. It is built fresh
// on every BuildTree call and never mutated afterwards.
type Tree struct {
	ID   string
	Name string
	// Requirements holds at most three entries (required flag, components,
	// dependencies), each present only if it carries data.
	Requirements []Requirement
	// Children is nil on a depth-cut node and empty on a leaf.
	Children []*Tree
	// Truncated marks a depth-cut node: it has no "children" key at all.
	Truncated bool
	// Cycle marks a node that already appears on the path from the root;
	// its subtree is not expanded again.
	Cycle bool
}

// RequirementKind identifies one requirement entry of a tree node.
type RequirementKind string

const (
	RequirementRequired   RequirementKind = "required"
	RequirementComponents RequirementKind = "requiresComponent"
	RequirementDependency RequirementKind = "requiresDependency"
)

// Requirement is one requirement entry. It serializes as a single-key object:
// {"required": true}, {"requiresComponent": [...]} or {"requiresDependency": [...]}.
type Requirement struct {
	Kind RequirementKind
	IDs  []string
}

// MarshalJSON implements json.Marshaler.
func (r Requirement) MarshalJSON() ([]byte, error) {
	if r.Kind == RequirementRequired {
		return json.Marshal(map[string]bool{string(r.Kind): true})
	}

	return json.Marshal(map[string][]string{string(r.Kind): r.IDs})
}

type treeJSON struct {
	ID           string        `json:"id"`
	Name         string        `json:"name,omitempty"`
	Requirements []Requirement `json:"requirements,omitempty"`
	Cycle        bool          `json:"cycle,omitempty"`
	Children     *[]*Tree      `json:"children,omitempty"`
}

// MarshalJSON implements json.Marshaler. A depth-cut node has no "children"
// key; a leaf has "children": [].
func (t *Tree) MarshalJSON() ([]byte, error) {
	out := treeJSON{
		ID:           t.ID,
		Name:         t.Name,
		Requirements: t.Requirements,
		Cycle:        t.Cycle,
	}

	if !t.Truncated && !t.Cycle {
		children := t.Children
		if children == nil {
			children = []*Tree{}
		}

		out.Children = &children
	}

	return json.Marshal(out)
}

// Walk calls fn for every node of the tree in depth-first pre-order.
func (t *Tree) Walk(fn func(node *Tree, depth int)) {
	t.walk(fn, 0)
}

func (t *Tree) walk(fn func(node *Tree, depth int), depth int) {
	fn(t, depth)

	for _, c := range t.Children {
		c.walk(fn, depth+1)
	}
}

// BuildTree materializes the hierarchy below rootID. Children appear in
// discovery order. When opts.MaxDepth is reached a node carries only its
// id and name; requirement metadata is never attached to such a node.
func (g *Graph) BuildTree(rootID string, opts TreeOptions) *Tree {
	b := treeBuilder{
		graph:    g,
		children: g.Edges().ChildrenByParent,
		opts:     opts,
	}

	return b.build(rootID, 0, nil)
}

type treeBuilder struct {
	graph    *Graph
	children map[string][]string
	opts     TreeOptions
}

func (b *treeBuilder) build(id string, depth int, path []string) *Tree {
	node := b.graph.Resolve(id)

	t := &Tree{ID: id}
	if node != nil {
		t.Name = b.graph.Name(node.ID())
	}

	if b.opts.MaxDepth != NoDepthLimit && depth >= b.opts.MaxDepth {
		t.Truncated = true
		return t
	}

	key := match.StripPrefix(id)
	if slices.Contains(path, key) {
		t.Cycle = true
		return t
	}

	if b.opts.IncludeAttributes && node != nil {
		t.Requirements = requirements(node)
	}

	path = append(path, key)

	t.Children = make([]*Tree, 0, len(b.children[key]))
	for _, child := range b.children[key] {
		t.Children = append(t.Children, b.build(child, depth+1, path))
	}

	return t
}

func requirements(n Node) []Requirement {
	var reqs []Requirement

	if isRequired(n) {
		reqs = append(reqs, Requirement{Kind: RequirementRequired})
	}

	if ids := referenceIDs(n, KeyRequiresComponent); len(ids) > 0 {
		reqs = append(reqs, Requirement{Kind: RequirementComponents, IDs: ids})
	}

	if ids := referenceIDs(n, KeyRequiresDependency); len(ids) > 0 {
		reqs = append(reqs, Requirement{Kind: RequirementDependency, IDs: ids})
	}

	return reqs
}
