//go:build linux

package terminal

import (
	"fmt"

	"github.com/holoplot/go-evdev"
)

// Values of EV_KEY events.
const (
	evRelease = 0
	evPress   = 1
	evRepeat  = 2
)

var evdevKeys = map[evdev.EvCode]Key{
	evdev.KEY_ENTER:    KeyEnter,
	evdev.KEY_KPENTER:  KeyEnter,
	evdev.KEY_ESC:      KeyEscape,
	evdev.KEY_UP:       KeyUp,
	evdev.KEY_DOWN:     KeyDown,
	evdev.KEY_LEFT:     KeyLeft,
	evdev.KEY_RIGHT:    KeyRight,
	evdev.KEY_PAGEUP:   KeyPageUp,
	evdev.KEY_PAGEDOWN: KeyPageDown,
	evdev.KEY_HOME:     KeyHome,
	evdev.KEY_END:      KeyEnd,
}

// EvdevKeySource reads key presses from a Linux input device such as
// /dev/input/event0. Used where keys do not reach the process on stdin.
type EvdevKeySource struct {
	dev *evdev.InputDevice
}

// OpenEvdevKeySource opens the input device at path.
func OpenEvdevKeySource(path string) (*EvdevKeySource, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input device %s: %w", path, err)
	}
	return &EvdevKeySource{dev: dev}, nil
}

// ReadKey blocks until a key is pressed or auto-repeats.
func (s *EvdevKeySource) ReadKey() (Key, error) {
	for {
		ev, err := s.dev.ReadOne()
		if err != nil {
			return KeyOther, err
		}
		if ev.Type != evdev.EV_KEY {
			continue
		}
		if ev.Value != evPress && ev.Value != evRepeat {
			continue
		}
		return evdevKey(ev.Code), nil
	}
}

// Close releases the device.
func (s *EvdevKeySource) Close() error {
	return s.dev.Close()
}

func evdevKey(code evdev.EvCode) Key {
	if k, ok := evdevKeys[code]; ok {
		return k
	}
	return KeyOther
}
