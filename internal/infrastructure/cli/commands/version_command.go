package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/doeshing/sky-health/internal/infrastructure/config"
	"github.com/doeshing/sky-health/internal/version"
)

type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Config    string `json:"config"`
}

func currentBuildInfo() buildInfo {
	return buildInfo{
		Version:   version.Version,
		Commit:    version.Commit,
		BuildDate: version.BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Config:    config.NewFileLoader("").Path(),
	}
}

// NewVersionCommand reports build metadata and the config file a plain run
// would read.
func NewVersionCommand() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := currentBuildInfo()
			if jsonOut {
				return writeBuildInfoJSON(cmd.OutOrStdout(), info)
			}
			writeBuildInfo(cmd.OutOrStdout(), info)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print build information as JSON")
	return cmd
}

func writeBuildInfo(out io.Writer, info buildInfo) {
	fmt.Fprintln(out, version.Short())
	if info.Commit != "" {
		fmt.Fprintf(out, "  commit    %s\n", info.Commit)
	}
	if info.BuildDate != "" {
		fmt.Fprintf(out, "  built     %s\n", info.BuildDate)
	}
	fmt.Fprintf(out, "  go        %s\n", info.GoVersion)
	fmt.Fprintf(out, "  platform  %s\n", info.Platform)
	fmt.Fprintf(out, "  config    %s\n", info.Config)
}

func writeBuildInfoJSON(out io.Writer, info buildInfo) error {
	raw, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("encode build info: %w", err)
	}
	_, err = fmt.Fprintln(out, string(raw))
	return err
}
