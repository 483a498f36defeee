package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/moasq/nusconsole/internal/i18n"
	"github.com/moasq/nusconsole/internal/terminal"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List nearby Nordic UART Service consoles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		consoles, err := a.scan(ctx)
		if isCancelled(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if len(consoles) == 0 {
			terminal.Warning(i18n.T("no_consoles"))
			return nil
		}

		terminal.Header(i18n.T("scan_header"))
		for _, c := range consoles {
			terminal.Detail(c.Address, fmt.Sprintf("%-24s %4d dBm", c.String(), c.RSSI))
		}
		terminal.Info(i18n.TPlural("found_count", len(consoles)))
		return nil
	},
}
