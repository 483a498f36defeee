package nus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"
)

// bleAdapter implements Adapter on top of tinygo.org/x/bluetooth.
type bleAdapter struct {
	adapter *bluetooth.Adapter

	mu      sync.Mutex
	enabled bool
	seen    map[string]bluetooth.Address
}

// NewAdapter returns the system's default Bluetooth adapter.
func NewAdapter() Adapter {
	return &bleAdapter{
		adapter: bluetooth.DefaultAdapter,
		seen:    make(map[string]bluetooth.Address),
	}
}

func (a *bleAdapter) Enable() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enabled {
		return nil
	}
	if err := a.adapter.Enable(); err != nil {
		return fmt.Errorf("failed to enable bluetooth adapter: %w", err)
	}
	a.enabled = true
	return nil
}

func (a *bleAdapter) Scan(parent context.Context, timeout time.Duration, found func(Advertisement)) error {
	if err := parent.Err(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	// Scan blocks until StopScan.
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		a.adapter.StopScan()
	}()

	err := a.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		if !result.HasServiceUUID(ServiceUUID) {
			return
		}
		address := result.Address.String()

		a.mu.Lock()
		a.seen[address] = result.Address
		a.mu.Unlock()

		found(Advertisement{
			Address: address,
			Name:    result.LocalName(),
			RSSI:    int(result.RSSI),
		})
	})

	cancel()
	<-stopped

	if err != nil {
		return fmt.Errorf("bluetooth scan failed: %w", err)
	}
	// Running out of time is the normal end of a scan.
	return parent.Err()
}

func (a *bleAdapter) Connect(ctx context.Context, address string) (Peripheral, error) {
	a.mu.Lock()
	addr, ok := a.seen[address]
	a.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown peripheral %s, scan first", address)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	device, err := a.adapter.Connect(addr, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	p, err := resolveUART(device)
	if err != nil {
		device.Disconnect()
		return nil, err
	}
	return p, nil
}

func resolveUART(device bluetooth.Device) (*blePeripheral, error) {
	services, err := device.DiscoverServices([]bluetooth.UUID{ServiceUUID})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoService, err)
	}
	if len(services) == 0 {
		return nil, ErrNoService
	}

	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{RXUUID, TXUUID})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoService, err)
	}

	p := &blePeripheral{device: device}
	for i := range chars {
		switch chars[i].UUID() {
		case RXUUID:
			p.rx = chars[i]
			p.hasRX = true
		case TXUUID:
			p.tx = chars[i]
			p.hasTX = true
		}
	}
	if !p.hasRX || !p.hasTX {
		return nil, ErrNoService
	}
	return p, nil
}

type blePeripheral struct {
	device       bluetooth.Device
	rx, tx       bluetooth.DeviceCharacteristic
	hasRX, hasTX bool
}

func (p *blePeripheral) Subscribe(fn func([]byte)) error {
	if err := p.tx.EnableNotifications(fn); err != nil {
		return fmt.Errorf("failed to enable TX notifications: %w", err)
	}
	return nil
}

func (p *blePeripheral) Write(b []byte) (int, error) {
	return p.rx.WriteWithoutResponse(b)
}

func (p *blePeripheral) Disconnect() error {
	return p.device.Disconnect()
}
