package cli

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"biotreebridge/internal/mapping"
	"biotreebridge/internal/template"
)

const (
	flagTemplate = "template"
	flagMappings = "mappings"
)

func newMappingCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Schema to FHIR mapping commands",
	}

	cmd.AddCommand(
		newMappingTemplateCommand(a),
		newMappingApplyCommand(a),
		newMappingExportCommand(a),
		newMappingListCommand(a),
	)

	return cmd
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// loadRegistry builds a registry from a YAML mapping file or an annotated
// JSON-LD export, chosen by extension. Configured systems are applied last.
func (a *app) loadRegistry(path string) (*mapping.Registry, error) {
	r := mapping.New(mapping.WithLogger(a.logger))

	if isYAML(path) {
		mf, err := mapping.LoadFile(path)
		if err != nil {
			return nil, err
		}

		r.ApplyFile(mf)
	} else {
		n, err := r.LoadMappingSchema(path)
		if err != nil {
			return nil, err
		}

		a.logger.Debug("field mappings loaded", "path", path, "fields", n)
	}

	for name, uri := range a.cfg.Systems {
		r.SetSystem(name, uri)
	}

	return r, nil
}

func newMappingTemplateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Create an editable mapping template from a schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, err := cmd.Flags().GetString(flagOutput)
			if err != nil {
				return err
			}

			g, err := a.loadSchema(cmd)
			if err != nil {
				return err
			}

			entries, excluded := template.Create(g)
			a.logger.Info("template created", "entries", len(entries), "excluded", len(excluded))

			if err := template.WriteFile(entries, output); err != nil {
				return err
			}

			printWritten(cmd.OutOrStdout(), output)

			return nil
		},
	}

	addSourceFlag(cmd)
	cmd.Flags().StringP(flagOutput, "o", "mapping_template.json", "output template file")

	return cmd
}

func newMappingApplyCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Annotate a schema with a filled-in mapping template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			templatePath, err := cmd.Flags().GetString(flagTemplate)
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

			entries, err := template.LoadFile(templatePath)
			if err != nil {
				return err
			}

			r := mapping.New(mapping.WithLogger(a.logger))
			if err := r.SetDocument(g); err != nil {
				return err
			}

			diags, err := template.Apply(r, entries)
			if err != nil {
				return err
			}

			diags.Log(cmd.Context(), a.logger)

			if err := r.SaveDocument(output); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), diags.Summary())
			printWritten(cmd.OutOrStdout(), output)

			return nil
		},
	}

	addSourceFlag(cmd)
	cmd.Flags().StringP(flagTemplate, "t", "mapping_template.json", "filled-in mapping template")
	cmd.Flags().StringP(flagOutput, "o", "mapped_schema.json", "output annotated schema")

	return cmd
}

func newMappingExportCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export field mappings as annotated JSON-LD or YAML",
		Long: `Reads a YAML mapping file or an annotated JSON-LD schema and writes the
registry in the format selected by the output extension: .yaml/.yml writes a
mapping file, anything else an annotated JSON-LD document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mappings, err := stringSetting(cmd, flagMappings, a.cfg.Mappings)
			if err != nil {
				return err
			}

			if mappings == "" {
				return fmt.Errorf("--%s is required", flagMappings)
			}

			output, err := cmd.Flags().GetString(flagOutput)
			if err != nil {
				return err
			}

			r, err := a.loadRegistry(mappings)
			if err != nil {
				return err
			}

			if isYAML(output) {
				err = mapping.WriteFile(r.File(), output)
			} else {
				err = r.ExportFile(output)
			}

			if err != nil {
				return err
			}

			printWritten(cmd.OutOrStdout(), output)

			return nil
		},
	}

	cmd.Flags().StringP(flagMappings, "m", "", "YAML mapping file or annotated JSON-LD schema")
	cmd.Flags().StringP(flagOutput, "o", "mappings.jsonld", "output file")

	return cmd
}

func newMappingListCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the fhir: annotations of an annotated schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := a.loadSchema(cmd)
			if err != nil {
				return err
			}

			r := mapping.New(mapping.WithLogger(a.logger))
			if err := r.SetDocument(g); err != nil {
				return err
			}

			all, err := r.AllMappings()
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout(), []any{"Property", "Node", "Value"})

			for _, prop := range slices.Sorted(maps.Keys(all)) {
				nodes := all[prop]
				for _, node := range slices.Sorted(maps.Keys(nodes)) {
					t.AppendRow([]any{prop, node, displayValue(nodes[node])})
				}
			}

			t.Render()

			return nil
		},
	}

	addSourceFlag(cmd)

	return cmd
}
