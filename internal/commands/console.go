package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/moasq/nusconsole/internal/i18n"
	"github.com/moasq/nusconsole/internal/menu"
	"github.com/moasq/nusconsole/internal/nus"
	"github.com/moasq/nusconsole/internal/storage"
	"github.com/moasq/nusconsole/internal/terminal"
)

// runConsole scans, lets the user pick a console and relays it until the
// user quits.
func runConsole(cmd *cobra.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = a.console(ctx)
	if isCancelled(err) {
		a.log.Info("console cancelled", "reason", err)
		return nil
	}
	if err != nil {
		a.log.Error("console failed", "error", err)
	}
	return err
}

func (a *app) console(ctx context.Context) error {
	consoles, err := a.scan(ctx)
	if err != nil {
		return err
	}
	if len(consoles) == 0 {
		terminal.Warning(i18n.T("no_consoles"))
		return nil
	}

	console, err := a.choose(ctx, consoles)
	if err != nil {
		return err
	}

	ending, err := nus.ParseLineEnding(a.cfg.LineEnding)
	if err != nil {
		return err
	}

	spinner := terminal.NewSpinner(i18n.TData("connecting", map[string]any{"Name": console.String()}))
	spinner.Start()
	session, err := nus.Open(ctx, a.adapter, console, ending)
	spinner.Stop()
	if err != nil {
		return err
	}
	defer session.Close()

	terminal.Success(i18n.TData("connected", map[string]any{"Name": console.String()}))
	a.log.Info("connected", "address", console.Address, "name", console.Name)

	if err := a.devices.Record(console.Address, console.Name); err != nil {
		a.log.Warn("failed to record device", "error", err)
	}

	return a.relay(ctx, session)
}

// choose picks the console to connect to: the one named by --device, the
// only one found, or the user's choice from a menu.
func (a *app) choose(ctx context.Context, consoles []nus.Console) (nus.Console, error) {
	if a.cfg.Device != "" {
		c, ok := nus.Match(consoles, a.cfg.Device)
		if !ok {
			return nus.Console{}, errors.New(i18n.TData("device_not_found", map[string]any{"Device": a.cfg.Device}))
		}
		return c, nil
	}
	if len(consoles) == 1 {
		return consoles[0], nil
	}

	terminal.Info(i18n.TPlural("found_count", len(consoles)))

	focus, normal, err := a.cfg.Colors()
	if err != nil {
		return nus.Console{}, err
	}
	m := menu.New(i18n.T("menu_title"), consoles, nus.Console.Label)
	m.FocusColor, m.DefaultColor = focus, normal
	m.Logger = a.log.Logger
	if last, ok, err := a.devices.Last(); err != nil {
		a.log.Warn("failed to read recent devices", "error", err)
	} else if ok {
		m.SetFocus(lastUsedIndex(consoles, last))
	}

	keys, closeKeys, err := a.keySource()
	if err != nil {
		return nus.Console{}, err
	}
	defer closeKeys()

	return m.Show(ctx, terminal.Stdio(), keys)
}

// lastUsedIndex returns the position of last in consoles, or 0.
func lastUsedIndex(consoles []nus.Console, last storage.Device) int {
	for i, c := range consoles {
		if strings.EqualFold(c.Address, last.Address) {
			return i
		}
	}
	return 0
}

// keySource returns where menu keys come from: an evdev device when one is
// configured, otherwise stdin. After a cancelled menu a read may still be
// pending on it; the process exits on that path, so nothing reads stdin after it.
func (a *app) keySource() (menu.KeySource, func(), error) {
	if a.cfg.InputDevice == "" {
		return terminal.NewKeyReader(os.Stdin), func() {}, nil
	}
	src, err := terminal.OpenEvdevKeySource(a.cfg.InputDevice)
	if err != nil {
		return nil, nil, err
	}
	a.log.Info("reading keys from input device", "path", a.cfg.InputDevice)
	return src, func() { src.Close() }, nil
}

// relay prints what the console sends and sends what the user types until
// the input ends or ctx is done.
func (a *app) relay(ctx context.Context, session *nus.Session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var in lineInput
	switch {
	case a.cfg.ReadOnly:
		in = newPlainInput(strings.NewReader(""), terminal.Output)
		terminal.Hint(i18n.T("session_hint_read_only"))
	case terminal.Stdio().IsTerminal():
		in = newShellInput("> ", filepath.Join(a.cfg.DataDir, "history"))
		terminal.Hint(i18n.T("session_hint"))
	default:
		in = newPlainInput(os.Stdin, terminal.Output)
	}

	inputErr := make(chan error, 1)
	if !a.cfg.ReadOnly {
		go func() {
			inputErr <- pump(ctx, in, session.Send)
			cancel()
		}()
	}

	err := session.Run(ctx, in.Print)

	stats := session.Stats()
	a.log.Info("session ended",
		"lines_received", stats.LinesReceived,
		"bytes_received", stats.BytesReceived,
		"lines_sent", stats.LinesSent,
		"bytes_sent", stats.BytesSent,
	)
	terminal.Info(i18n.TData("disconnected", map[string]any{"Name": session.Console.String()}))
	terminal.Hint(i18n.TData("session_stats", map[string]any{
		"Received": stats.LinesReceived,
		"Sent":     stats.LinesSent,
	}))

	// The end of input is how the user quits.
	select {
	case perr := <-inputErr:
		return perr
	default:
	}
	return err
}

// pump sends every line read from in until the input ends.
func pump(ctx context.Context, in lineInput, send func(string) error) error {
	for {
		line, err := in.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if ctx.Err() != nil {
			return nil
		}
		if err := send(line); err != nil {
			return err
		}
	}
}
