package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return PrintResult(cmd, CurrentBuildInfo())
		},
	}
}

// CurrentBuildInfo returns the ldflags-injected build information.
func CurrentBuildInfo() BuildInfo {
	return BuildInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate}
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("ifg %s (commit: %s, built: %s)", b.Version, b.Commit, b.BuildDate)
}
