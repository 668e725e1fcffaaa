package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"biotreebridge/internal/common"
	"biotreebridge/internal/schema"
)

const (
	flagSource            = "source"
	flagOutput            = "output"
	flagParent            = "parent"
	flagMaxDepth          = "max-depth"
	flagIncludeAttributes = "include-attributes"
	flagTable             = "table"
	flagTerm              = "term"
	flagNode              = "node"

	defaultSource = "schema.json"
)

var errInvalidMaxDepth = errors.New("max_depth must be either -1 (no limit) or a positive integer.")

func newSchemaCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Schema parsing commands",
	}

	cmd.AddCommand(
		newSchemaTreeCommand(a),
		newSchemaRootsCommand(a),
		newSchemaSearchCommand(a),
		newSchemaDepsCommand(a),
	)

	return cmd
}

func addSourceFlag(cmd *cobra.Command) {
	cmd.Flags().StringP(flagSource, "s", defaultSource, "schema source file")
}

// loadSchema loads the schema named by --source or the configured schema.
func (a *app) loadSchema(cmd *cobra.Command) (*schema.Graph, error) {
	source, err := stringSetting(cmd, flagSource, a.cfg.Schema)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("loading schema", "source", source)

	return schema.LoadFile(source, schema.WithLogger(a.logger))
}

func newSchemaTreeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Generate the tree hierarchy below a node",
		Args:  cobra.NoArgs,
		Example: `  # Write the hierarchy below Biospecimen, two levels deep, with requirements.
  biotreebridge schema tree -s HTAN.model.jsonld -p Biospecimen -d 2 -a -o biospecimen.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()

			maxDepth, err := flags.GetInt(flagMaxDepth)
			if err != nil {
				return err
			}

			if maxDepth != schema.NoDepthLimit && maxDepth < 0 {
				return errInvalidMaxDepth
			}

			parent, err := flags.GetString(flagParent)
			if err != nil {
				return err
			}

			include, err := flags.GetBool(flagIncludeAttributes)
			if err != nil {
				return err
			}

			output, err := flags.GetString(flagOutput)
			if err != nil {
				return err
			}

			g, err := a.loadSchema(cmd)
			if err != nil {
				return err
			}

			opts := schema.TreeOptions{MaxDepth: maxDepth, IncludeAttributes: include}

			var tree any

			if parent != "" {
				tree = g.BuildTree(parent, opts)
			} else {
				forest := make([]*schema.Tree, 0)
				for _, root := range g.Roots() {
					forest = append(forest, g.BuildTree(root, opts))
				}

				tree = forest
			}

			if err := writeJSON(output, tree); err != nil {
				return err
			}

			printWritten(cmd.OutOrStdout(), output)

			return nil
		},
	}

	addSourceFlag(cmd)
	cmd.Flags().StringP(flagOutput, "o", "hierarchy.json", "output JSON file")
	cmd.Flags().StringP(flagParent, "p", "", "parent node to start from (default: every root)")
	cmd.Flags().IntP(flagMaxDepth, "d", schema.NoDepthLimit, "max depth to traverse (use -1 for no limit)")
	cmd.Flags().BoolP(flagIncludeAttributes, "a", false, "include required and dependency attributes in the output")

	return cmd
}

// displayName is "name (id)" when the node has a label and the id otherwise.
func displayName(g *schema.Graph, id string) string {
	name := id
	if n := g.Resolve(id); n != nil {
		name = g.Name(n.ID())
	}

	if name != id {
		return fmt.Sprintf("%s (%s)", name, id)
	}

	return id
}

func nodeName(g *schema.Graph, id string) string {
	if n := g.Resolve(id); n != nil {
		return g.Name(n.ID())
	}

	return id
}

func newSchemaRootsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roots",
		Short: "List nodes without parents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asTable, err := cmd.Flags().GetBool(flagTable)
			if err != nil {
				return err
			}

			g, err := a.loadSchema(cmd)
			if err != nil {
				return err
			}

			roots := slices.Sorted(slices.Values(g.Roots()))
			out := cmd.OutOrStdout()

			if asTable {
				t := newTable(out, []any{"ID", "Name", "Children"})
				for _, root := range roots {
					t.AppendRow([]any{root, nodeName(g, root), len(g.Children(root, false))})
				}

				t.Render()

				return nil
			}

			fmt.Fprintf(out, "found %d root nodes:\n", len(roots))

			for _, root := range roots {
				fmt.Fprintf(out, "  %s\n", displayName(g, root))
			}

			return nil
		},
	}

	addSourceFlag(cmd)
	cmd.Flags().Bool(flagTable, false, "render the roots as a table")

	return cmd
}

type searchResult struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newSchemaSearchCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search nodes by name or id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			term, err := cmd.Flags().GetString(flagTerm)
			if err != nil {
				return err
			}

			output, err := cmd.Flags().GetString(flagOutput)
			if err != nil {
				return err
			}

			g, err := a.loadSchema(cmd)
			if err != nil {
				return err
			}

			results := make([]searchResult, 0)
			for _, id := range g.Search(term) {
				results = append(results, searchResult{ID: id, Name: g.Name(id)})
			}

			out := cmd.OutOrStdout()

			if common.IsEmpty(results) {
				fmt.Fprintf(out, "no nodes found matching '%s'\n", term)
			} else {
				fmt.Fprintf(out, "found %d nodes matching '%s':\n", len(results), term)

				for _, r := range results {
					if r.Name != r.ID {
						fmt.Fprintf(out, "  %s (%s)\n", r.Name, r.ID)
					} else {
						fmt.Fprintf(out, "  %s\n", r.ID)
					}
				}
			}

			if output == "" {
				return nil
			}

			if err := writeJSON(output, results); err != nil {
				return err
			}

			printWritten(out, output)

			return nil
		},
	}

	addSourceFlag(cmd)
	cmd.Flags().StringP(flagTerm, "t", "", "search term")
	cmd.Flags().StringP(flagOutput, "o", "", "save results to a JSON file")
	_ = cmd.MarkFlagRequired(flagTerm)

	return cmd
}

func newSchemaDepsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Show requirement dependencies",
		Long: `Without --node, prints every node ordered so that each one follows the
components and dependencies it requires. With --node, prints the nodes that
require the given node.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			node, err := cmd.Flags().GetString(flagNode)
			if err != nil {
				return err
			}

			g, err := a.loadSchema(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if node != "" {
				t := newTable(out, []any{"Node", "Requires"})
				for _, id := range g.NodesRequiring(node) {
					t.AppendRow([]any{id, "component"})
				}

				for _, id := range g.NodesRequiringDependency(node) {
					t.AppendRow([]any{id, "dependency"})
				}

				t.Render()

				return nil
			}

			order, err := g.DependencyOrder()
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "dependency order of %d nodes:\n", len(order))

			for i, id := range order {
				fmt.Fprintf(out, "%4d  %s\n", i+1, id)
			}

			return nil
		},
	}

	addSourceFlag(cmd)
	cmd.Flags().StringP(flagNode, "n", "", "list the nodes requiring this node")

	return cmd
}
