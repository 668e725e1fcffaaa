// Package cli implements the biotreebridge command line.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"biotreebridge/internal/config"
)

const flagConfig = "config"

// app holds what the persistent pre-run resolved for the running command.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New builds the root command with every sub-command attached.
func New() *cobra.Command {
	a := &app{
		cfg:    config.Default(),
		logger: slog.New(slog.DiscardHandler),
	}

	root := &cobra.Command{
		Use:   "biotreebridge [sub-command]",
		Short: "Map JSON-LD biomedical schemas to FHIR",
		Long: `biotreebridge parses JSON-LD schema graphs such as the HTAN data model,
  maps their classes and fields to FHIR resources and transforms
  tabular records into FHIR NDJSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path, err := cmd.Flags().GetString(flagConfig)
			if err != nil {
				return err
			}

			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("could not load configuration: %w", err)
			}

			logger, err := baseLogger(cmd, cfg)
			if err != nil {
				return fmt.Errorf("could not retrieve logger: %w", err)
			}

			a.cfg = cfg
			a.logger = logger

			return nil
		},
		SilenceUsage:      true,
		DisableAutoGenTag: true,
	}

	root.PersistentFlags().String(flagConfig, "", "configuration file (default "+config.DefaultFile+" if present)")
	registerLoggingFlags(root)

	root.AddCommand(
		newSchemaCommand(a),
		newMappingCommand(a),
		newTransformCommand(a),
		newVersionCommand(),
	)

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := New().Execute(); err != nil {
		os.Exit(1)
	}
}

// stringSetting returns the flag value when given on the command line, the
// configured value when set, and the flag default otherwise.
func stringSetting(cmd *cobra.Command, name, configured string) (string, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", err
	}

	if !cmd.Flags().Changed(name) && configured != "" {
		return configured, nil
	}

	return value, nil
}
