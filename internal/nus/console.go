package nus

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Console is a peripheral offering the UART service.
type Console struct {
	Address string
	Name    string
	RSSI    int
}

// String returns the name shown to the user, falling back to the address.
func (c Console) String() string {
	if c.Name == "" {
		return c.Address
	}
	return c.Name
}

// Label returns the name with the address and signal strength, for listings.
func (c Console) Label() string {
	return fmt.Sprintf("%s (%s, %d dBm)", c.String(), c.Address, c.RSSI)
}

// FindConsoles scans for timeout and returns every UART peripheral seen, in
// the order they were first discovered.
func FindConsoles(ctx context.Context, adapter Adapter, timeout time.Duration) ([]Console, error) {
	if err := adapter.Enable(); err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		order    []string
		consoles = make(map[string]*Console)
	)

	err := adapter.Scan(ctx, timeout, func(adv Advertisement) {
		mu.Lock()
		defer mu.Unlock()

		c, ok := consoles[adv.Address]
		if !ok {
			consoles[adv.Address] = &Console{Address: adv.Address, Name: adv.Name, RSSI: adv.RSSI}
			order = append(order, adv.Address)
			return
		}
		// Scan responses often carry the name the first advertisement lacked.
		if c.Name == "" {
			c.Name = adv.Name
		}
		if adv.RSSI > c.RSSI {
			c.RSSI = adv.RSSI
		}
	})
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	result := make([]Console, 0, len(order))
	for _, address := range order {
		result = append(result, *consoles[address])
	}
	return result, nil
}

// Match returns the console whose address or name equals query, ignoring
// case for addresses.
func Match(consoles []Console, query string) (Console, bool) {
	for _, c := range consoles {
		if strings.EqualFold(c.Address, query) {
			return c, true
		}
	}
	for _, c := range consoles {
		if c.Name != "" && c.Name == query {
			return c, true
		}
	}
	return Console{}, false
}
