package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"biotreebridge/internal/config"
)

const (
	flagLogLevel  = "loglevel"
	flagLogFormat = "logformat"
)

func registerLoggingFlags(cmd *cobra.Command) {
	enumVarP(cmd.PersistentFlags(), flagLogLevel, "", []string{"info", "debug", "warn", "error"}, "set the log level")
	enumVarP(cmd.PersistentFlags(), flagLogFormat, "", []string{"text", "json"}, "set the log format")
}

// baseLogger builds the logger for a command. Flags given on the command
// line win over the log section of cfg. Logs go to stderr so that command
// output on stdout stays clean.
func baseLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	levelName, err := logSetting(cmd, flagLogLevel, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	level, err := parseLevel(levelName)
	if err != nil {
		return nil, err
	}

	format, err := logSetting(cmd, flagLogFormat, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler

	switch format {
	case "json":
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	case "text":
		handler = slog.NewTextHandler(cmd.ErrOrStderr(), opts)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	return slog.New(handler), nil
}

func logSetting(cmd *cobra.Command, name, configured string) (string, error) {
	value, err := enumGet(cmd.Flags(), name)
	if err != nil {
		return "", err
	}

	if !cmd.Flags().Changed(name) && configured != "" {
		return configured, nil
	}

	return value, nil
}

func parseLevel(name string) (slog.Level, error) {
	switch name {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("invalid log level: %s", name)
	}
}
