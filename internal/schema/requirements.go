package schema

import (
	"errors"
	"fmt"
	"slices"

	"ocm.software/open-component-model/bindings/go/dag"

	"biotreebridge/internal/common"
	"biotreebridge/internal/match"
)

// RequiredSentinel is the prefix-stripped value of sms:required meaning "true".
// The HTAN model stores it as "sms:true"; a bare "true" is accepted as well.
const RequiredSentinel = "true"

// IsRequired reports whether the node's sms:required attribute carries the
// truthy sentinel. Absence means false.
func (g *Graph) IsRequired(id string) bool {
	return isRequired(g.Resolve(id))
}

func isRequired(n Node) bool {
	if n == nil {
		return false
	}

	switch v := n[KeyRequired].(type) {
	case string:
		return match.StripPrefix(v) == RequiredSentinel
	case bool:
		return v
	default:
		return false
	}
}

// RequiredComponents returns the prefix-stripped ids listed in the node's
// sms:requiresComponent attribute.
func (g *Graph) RequiredComponents(id string) []string {
	return referenceIDs(g.Resolve(id), KeyRequiresComponent)
}

// RequiredDependencies returns the prefix-stripped ids listed in the node's
// sms:requiresDependency attribute.
func (g *Graph) RequiredDependencies(id string) []string {
	return referenceIDs(g.Resolve(id), KeyRequiresDependency)
}

// Attributes returns every sms:-prefixed attribute of the node with the
// prefix removed from the key. Reference-list attributes are resolved to
// prefix-stripped ids. Returns nil for an unknown node.
func (g *Graph) Attributes(id string) map[string]any {
	n := g.Resolve(id)
	if n == nil {
		return nil
	}

	attrs := make(map[string]any)

	for key, value := range n {
		if match.Prefix(key)+":" != MetadataPrefix {
			continue
		}

		name := match.StripPrefix(key)

		switch key {
		case KeyRequiresComponent, KeyRequiresDependency:
			attrs[name] = referenceIDs(n, key)
		default:
			attrs[name] = value
		}
	}

	return attrs
}

// NodesRequiring returns the prefix-stripped ids of nodes whose
// sms:requiresComponent list contains componentID.
func (g *Graph) NodesRequiring(componentID string) []string {
	return g.nodesReferencing(KeyRequiresComponent, componentID)
}

// NodesRequiringDependency returns the prefix-stripped ids of nodes whose
// sms:requiresDependency list contains dependencyID.
func (g *Graph) NodesRequiringDependency(dependencyID string) []string {
	return g.nodesReferencing(KeyRequiresDependency, dependencyID)
}

func (g *Graph) nodesReferencing(key, target string) []string {
	target = match.StripPrefix(target)

	var out []string

	for _, n := range g.nodes {
		rawID := n.ID()
		if rawID == "" {
			continue
		}

		if slices.Contains(referenceIDs(n, key), target) {
			out = append(out, match.StripPrefix(rawID))
		}
	}

	return out
}

// DependencyGraph maps every node id to the set of ids it requires, the union
// of its required components and required dependencies. Each set is a
// duplicate-free list in declaration order, components first.
func (g *Graph) DependencyGraph() map[string][]string {
	out := make(map[string][]string, len(g.nodes))

	for _, n := range g.nodes {
		rawID := n.ID()
		if rawID == "" {
			continue
		}

		id := match.StripPrefix(rawID)

		deps := append(out[id], referenceIDs(n, KeyRequiresComponent)...)
		deps = append(deps, referenceIDs(n, KeyRequiresDependency)...)

		out[id] = common.Dedup(deps)
	}

	return out
}

// DependencyOrder returns every id of the dependency graph ordered so that
// each node comes after everything it requires. Self references are ignored.
// Members of a longer cycle are still all returned, in an order that cannot
// satisfy every edge.
func (g *Graph) DependencyOrder() ([]string, error) {
	deps := g.DependencyGraph()

	var ids []string
	for id, required := range deps {
		ids = append(ids, id)
		ids = append(ids, required...)
	}

	slices.Sort(ids)
	ids = slices.Compact(ids)

	d := dag.NewDirectedAcyclicGraph[string]()
	for _, id := range ids {
		if err := d.AddVertex(id); err != nil {
			return nil, fmt.Errorf("dependency graph: %w", err)
		}
	}

	for _, id := range ids {
		for _, dep := range deps[id] {
			err := d.AddEdge(id, dep)
			if errors.Is(err, dag.ErrSelfReference) {
				g.logger.Debug("ignoring self dependency", "node", id)
				continue
			}

			if err != nil {
				return nil, fmt.Errorf("dependency graph: %w", err)
			}
		}
	}

	order, err := d.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("dependency graph: %w", err)
	}

	return order, nil
}
