package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moasq/nusconsole/internal/terminal"
	"github.com/moasq/nusconsole/internal/update"
)

// releases is replaced in tests.
var releases = &update.Checker{Owner: "moasq", Repo: "nusconsole"}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version, optionally checking for a newer release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		terminal.Info(fmt.Sprintf("nusconsole %s", Version))

		check, _ := cmd.Flags().GetBool("check")
		if !check {
			return nil
		}
		rel, err := releases.Latest(cmd.Context(), Version)
		if err != nil {
			return err
		}
		if rel.Newer() {
			terminal.Warning(fmt.Sprintf("nusconsole %s is available: %s", rel.Latest, rel.URL))
		} else {
			terminal.Success("nusconsole is up to date")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("check", false, "check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
}
