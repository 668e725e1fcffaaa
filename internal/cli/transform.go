package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"biotreebridge/internal/schema"
	"biotreebridge/internal/transform"
	"biotreebridge/internal/validate"
)

const (
	flagClass        = "class"
	flagInput        = "input"
	flagValidate     = "validate"
	flagSubjectField = "subject-field"
	flagProjectID    = "project-id"
	flagUpdate       = "update"
)

func newTransformCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Transform CSV/TSV records into FHIR NDJSON",
		Long: `Maps every row of the input table to a resource of the type registered for
--class and appends the resources to <output>/<ResourceType>.ndjson. Resources
already present in the file are kept unless --update is given.`,
		Example: `  # Transform HTAN demographics into Patient resources.
  biotreebridge transform -m mappings.yaml -c Patient -i demographics.tsv -o META --validate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()

			mappings, err := stringSetting(cmd, flagMappings, a.cfg.Mappings)
			if err != nil {
				return err
			}

			if mappings == "" {
				return fmt.Errorf("--%s is required", flagMappings)
			}

			source, err := stringSetting(cmd, flagSource, a.cfg.Schema)
			if err != nil {
				return err
			}

			output, err := stringSetting(cmd, flagOutput, a.cfg.OutputDir)
			if err != nil {
				return err
			}

			subjectField, err := stringSetting(cmd, flagSubjectField, a.cfg.SubjectField)
			if err != nil {
				return err
			}

			projectID, err := stringSetting(cmd, flagProjectID, a.cfg.ProjectID)
			if err != nil {
				return err
			}

			class, err := flags.GetString(flagClass)
			if err != nil {
				return err
			}

			input, err := flags.GetString(flagInput)
			if err != nil {
				return err
			}

			update, err := flags.GetBool(flagUpdate)
			if err != nil {
				return err
			}

			validateResources, err := flags.GetBool(flagValidate)
			if err != nil {
				return err
			}

			validateResources = validateResources || a.cfg.Validate

			r, err := a.loadRegistry(mappings)
			if err != nil {
				return err
			}

			if source != "" {
				g, err := schema.LoadFile(source, schema.WithLogger(a.logger))
				if err != nil {
					return err
				}

				r.SetGraph(g)
			}

			resourceType, ok := r.ResourceType(class)
			if !ok {
				return fmt.Errorf("%w: %s", transform.ErrUnmappedClass, class)
			}

			opts := []transform.Option{
				transform.WithLogger(a.logger),
				transform.WithProjectID(projectID),
				transform.WithSubjectField(subjectField),
			}

			if validateResources {
				v, err := validate.NewSchemaValidator()
				if err != nil {
					return err
				}

				opts = append(opts, transform.WithValidator(v))
			}

			records, err := transform.ReadTableFile(input)
			if err != nil {
				return err
			}

			resources, diags := transform.New(r, opts...).TransformAll(class, records)
			diags.Log(cmd.Context(), a.logger)

			path, err := transform.CreateOrExtend(output, resourceType, resources, update)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d of %d records transformed to %s (%s)\n", len(resources), len(records), resourceType, diags.Summary())
			printWritten(out, path)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringP(flagSource, "s", "", "schema source used for class inheritance")
	flags.StringP(flagMappings, "m", "", "YAML mapping file or annotated JSON-LD schema")
	flags.StringP(flagClass, "c", "", "source class of the input records")
	flags.StringP(flagInput, "i", "", "input CSV or TSV table")
	flags.StringP(flagOutput, "o", ".", "output directory for NDJSON files")
	flags.Bool(flagValidate, false, "validate every resource before writing")
	flags.String(flagSubjectField, "", "column holding the patient identifier")
	flags.String(flagProjectID, transform.DefaultProjectID, "project scoping minted resource ids")
	flags.Bool(flagUpdate, false, "replace resources already present in the output")

	_ = cmd.MarkFlagRequired(flagClass)
	_ = cmd.MarkFlagRequired(flagInput)

	return cmd
}
