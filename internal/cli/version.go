package cli

import "github.com/spf13/cobra"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printf(cmd.OutOrStdout(), "thetask %s (commit %s, built %s)\n", version, commit, date)
	},
}
