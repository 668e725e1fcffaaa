package schema

import (
	"slices"
	"strings"

	"biotreebridge/internal/match"
)

const subClassOfSuffix = "subclassof"

// Edges holds the parent/child adjacency derived from every "*subClassOf"
// relation of the graph. Ids are prefix-stripped; list order is discovery
// order (graph order, then relation order within a node).
type Edges struct {
	ChildrenByParent map[string][]string
	ParentsByChild   map[string][]string
}

// IsSubClassOfKey reports whether key expresses the subclass relation under
// any namespace prefix ("rdfs:subClassOf", "rdf:subClassOf", "bts:SubClassOf").
func IsSubClassOfKey(key string) bool {
	return strings.HasSuffix(strings.ToLower(key), subClassOfSuffix)
}

// SubClassKeys returns the subclass-relation keys of a node in sorted order.
func SubClassKeys(n Node) []string {
	var keys []string

	for k := range n {
		if IsSubClassOfKey(k) {
			keys = append(keys, k)
		}
	}

	slices.Sort(keys)

	return keys
}

// Parents returns the prefix-stripped direct parents a node declares.
func (n Node) Parents() []string {
	var parents []string
	for _, key := range SubClassKeys(n) {
		parents = append(parents, referenceIDs(n, key)...)
	}

	return parents
}

// Edges scans every node and records each subclass link in both directions.
// Nodes without an id contribute nothing. The maps are rebuilt on every call.
func (g *Graph) Edges() Edges {
	e := Edges{
		ChildrenByParent: make(map[string][]string),
		ParentsByChild:   make(map[string][]string),
	}

	for _, n := range g.nodes {
		rawID := n.ID()
		if rawID == "" {
			continue
		}

		child := match.StripPrefix(rawID)

		for _, parent := range n.Parents() {
			e.ChildrenByParent[parent] = append(e.ChildrenByParent[parent], child)
			e.ParentsByChild[child] = append(e.ParentsByChild[child], parent)
		}
	}

	return e
}

// Children returns the direct children of parentID, or every descendant in
// breadth-first discovery order when recursive is set. parentID itself is
// never part of the result, even on cyclic graphs.
func (g *Graph) Children(parentID string, recursive bool) []string {
	edges := g.Edges()
	if !recursive {
		return slices.Clone(edges.ChildrenByParent[parentID])
	}

	return bfs(parentID, edges.ChildrenByParent)
}

// Parents returns the direct parents of childID, or every ancestor in
// breadth-first discovery order when recursive is set.
func (g *Graph) Parents(childID string, recursive bool) []string {
	edges := g.Edges()
	if !recursive {
		return slices.Clone(edges.ParentsByChild[childID])
	}

	return bfs(childID, edges.ParentsByChild)
}

func bfs(start string, adjacency map[string][]string) []string {
	seen := map[string]struct{}{start: {}}
	queue := []string{start}

	var out []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range adjacency[current] {
			if _, ok := seen[next]; ok {
				continue
			}

			seen[next] = struct{}{}
			out = append(out, next)
			queue = append(queue, next)
		}
	}

	return out
}

// Roots returns the prefix-stripped ids of nodes with no recorded parents,
// in graph order.
func (g *Graph) Roots() []string {
	parents := g.Edges().ParentsByChild
	seen := make(map[string]struct{})

	var roots []string

	for _, n := range g.nodes {
		rawID := n.ID()
		if rawID == "" {
			continue
		}

		id := match.StripPrefix(rawID)
		if _, ok := parents[id]; ok {
			continue
		}

		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		roots = append(roots, id)
	}

	return roots
}

// Node returns the first node whose id equals id exactly, or nil.
func (g *Graph) Node(id string) Node {
	for _, n := range g.nodes {
		if n.ID() == id {
			return n
		}
	}

	return nil
}

// Resolve returns the node stored under id exactly or, failing that, the
// first node whose prefix-stripped id equals the prefix-stripped id.
// Hierarchy queries hand out stripped ids; Resolve maps them back to nodes.
func (g *Graph) Resolve(id string) Node {
	if n := g.Node(id); n != nil {
		return n
	}

	want := match.StripPrefix(id)
	for _, n := range g.nodes {
		if rawID := n.ID(); rawID != "" && match.StripPrefix(rawID) == want {
			return n
		}
	}

	return nil
}

// Name returns the node's label, display name or id, in that order, looking
// the node up by exact id. An unknown id is returned unchanged.
func (g *Graph) Name(id string) string {
	if n := g.Node(id); n != nil {
		if label := n.Label(); label != "" {
			return label
		}
	}

	return id
}

// Search returns the ids of nodes whose name or id contains term,
// case-insensitively, in graph order.
func (g *Graph) Search(term string) []string {
	term = strings.ToLower(term)

	var results []string

	for _, n := range g.nodes {
		id := n.ID()
		if id == "" {
			continue
		}

		if strings.Contains(strings.ToLower(n.Label()), term) || strings.Contains(strings.ToLower(id), term) {
			results = append(results, id)
		}
	}

	return results
}
