package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

const flagFormat = "format"

// BuildVersion is set at link time with -ldflags "-X ...cli.BuildVersion=v1.2.3".
var BuildVersion = "n/a"

type versionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
}

func currentVersion() versionInfo {
	info := versionInfo{Version: BuildVersion}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		if info.Version == "n/a" && bi.Main.Version != "" {
			info.Version = bi.Main.Version
		}
	}

	return info
}

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the biotreebridge version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := enumGet(cmd.Flags(), flagFormat)
			if err != nil {
				return err
			}

			info := currentVersion()

			if format == "json" {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(info)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "biotreebridge %s (%s)\n", info.Version, info.GoVersion)

			return nil
		},
		DisableAutoGenTag: true,
	}

	enumVarP(cmd.Flags(), flagFormat, "f", []string{"text", "json"}, "output format")

	return cmd
}
