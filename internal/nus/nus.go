// Package nus talks to peripherals exposing the Nordic UART Service.
//
// Peripherals receive on the RX characteristic (we write) and transmit on
// the TX characteristic (we subscribe to notifications).
package nus

import (
	"context"
	"errors"
	"time"

	"tinygo.org/x/bluetooth"
)

var (
	ServiceUUID = bluetooth.ServiceUUIDNordicUART
	RXUUID      = bluetooth.CharacteristicUUIDUARTRX
	TXUUID      = bluetooth.CharacteristicUUIDUARTTX
)

// ErrNoService is returned when a peripheral does not expose the UART service
// or its characteristics.
var ErrNoService = errors.New("peripheral does not expose the Nordic UART service")

// Advertisement describes a peripheral seen while scanning.
type Advertisement struct {
	Address string
	Name    string
	RSSI    int
}

// Adapter is the local Bluetooth controller.
type Adapter interface {
	Enable() error
	// Scan reports advertisements of UART peripherals until ctx is done or
	// timeout elapses.
	Scan(ctx context.Context, timeout time.Duration, found func(Advertisement)) error
	// Connect connects to address and resolves the UART characteristics.
	Connect(ctx context.Context, address string) (Peripheral, error)
}

// Peripheral is a connected UART peripheral.
type Peripheral interface {
	// Subscribe delivers every TX notification to fn.
	Subscribe(fn func([]byte)) error
	// Write sends p to RX. Callers keep p within the ATT payload size.
	Write(p []byte) (int, error)
	Disconnect() error
}
