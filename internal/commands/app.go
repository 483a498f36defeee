package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moasq/nusconsole/internal/config"
	"github.com/moasq/nusconsole/internal/i18n"
	"github.com/moasq/nusconsole/internal/logging"
	"github.com/moasq/nusconsole/internal/menu"
	"github.com/moasq/nusconsole/internal/nus"
	"github.com/moasq/nusconsole/internal/storage"
	"github.com/moasq/nusconsole/internal/terminal"
)

// app bundles what every command needs.
type app struct {
	cfg     *config.Config
	log     *logging.Logger
	devices *storage.DeviceStore
	adapter nus.Adapter
}

// newAdapter is replaced in tests.
var newAdapter = nus.NewAdapter

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cmd, configFlag)
	if err != nil {
		return nil, err
	}

	log, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if err := i18n.SetLanguage(cfg.Language); err != nil {
		log.Close()
		return nil, err
	}

	log.Debug("config loaded",
		"scan_timeout", cfg.ScanTimeout.String(),
		"language", cfg.Language,
		"data_dir", cfg.DataDir,
		"line_ending", cfg.LineEnding,
		"read_only", cfg.ReadOnly,
	)

	return &app{
		cfg:     cfg,
		log:     log,
		devices: storage.NewDeviceStore(cfg.DataDir),
		adapter: newAdapter(),
	}, nil
}

func (a *app) Close() {
	a.log.Close()
}

// scan looks for consoles while showing a spinner.
func (a *app) scan(ctx context.Context) ([]nus.Console, error) {
	spinner := terminal.NewSpinner(i18n.T("scanning"))
	spinner.Start()
	consoles, err := nus.FindConsoles(ctx, a.adapter, a.cfg.ScanTimeout)
	spinner.Stop()
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	a.log.Info("scan finished", "consoles", len(consoles))
	for _, c := range consoles {
		a.log.Debug("console found", "address", c.Address, "name", c.Name, "rssi", c.RSSI)
	}
	return consoles, nil
}

// isCancelled reports whether err only means the user quit.
func isCancelled(err error) bool {
	return errors.Is(err, menu.ErrCancelled) || errors.Is(err, context.Canceled)
}
