package commands

import (
	"github.com/spf13/cobra"

	"github.com/moasq/nusconsole/internal/config"
	"github.com/moasq/nusconsole/internal/i18n"
	"github.com/moasq/nusconsole/internal/terminal"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a configuration file holding the defaults",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")

		written, err := config.WriteDefault(path, force)
		if err != nil {
			return err
		}
		terminal.Success(i18n.TData("config_written", map[string]any{"Path": written}))
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolP("force", "f", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
}
