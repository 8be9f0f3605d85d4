package cli

import (
	"fmt"

	"github.com/ariel-frischer/relver/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show relver version and build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "relver %s\n", version.Version)
		if verboseFlag || version.IsDevBuild() {
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", version.Commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", version.BuildDate)
		}
	},
}

func init() {
	versionCmd.GroupID = GroupConfiguration
	rootCmd.AddCommand(versionCmd)
}
