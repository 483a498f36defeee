//go:build !linux

package terminal

import "errors"

// ErrEvdevUnsupported is returned on platforms without evdev.
var ErrEvdevUnsupported = errors.New("input devices are only supported on linux")

// EvdevKeySource is unavailable on this platform.
type EvdevKeySource struct{}

// OpenEvdevKeySource always fails on this platform.
func OpenEvdevKeySource(path string) (*EvdevKeySource, error) {
	return nil, ErrEvdevUnsupported
}

func (s *EvdevKeySource) ReadKey() (Key, error) {
	return KeyOther, ErrEvdevUnsupported
}

func (s *EvdevKeySource) Close() error {
	return nil
}
