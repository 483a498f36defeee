package commands

import (
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "nusconsole",
	Short:   "Console for Bluetooth LE devices speaking the Nordic UART Service",
	Long:    "nusconsole scans for Nordic UART Service peripherals, lets you pick one, and relays its output to the terminal while sending what you type.",
	Version: Version,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsole(cmd)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// configFlag holds the --config flag value.
var configFlag string

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFlag, "config", "", "config file (default: search the user config dir, /etc/nusconsole and .)")
	flags.Duration("timeout", 0, "how long to scan for consoles (default 5s)")
	flags.String("lang", "", "language for messages (en, de)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-file", "", "log file (default <data-dir>/logs/nusconsole.log)")
	flags.String("data-dir", "", "directory for logs and recent devices")

	rootCmd.Flags().StringP("device", "d", "", "connect to the console with this address or name")
	rootCmd.Flags().String("input-device", "", "read menu keys from this evdev device instead of stdin")
	rootCmd.Flags().String("line-ending", "", "appended to sent lines: crlf, lf, cr or none")
	rootCmd.Flags().Bool("read-only", false, "only show the console output")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(configCmd)
}
