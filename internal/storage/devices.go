package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// maxDevices bounds the number of remembered consoles.
const maxDevices = 20

// Device is a console the user connected to before.
type Device struct {
	Address  string    `json:"address"`
	Name     string    `json:"name,omitempty"`
	LastUsed time.Time `json:"last_used"`
}

// DeviceStore remembers recently used consoles in a local JSON file.
type DeviceStore struct {
	mu  sync.Mutex
	dir string

	now func() time.Time
}

// NewDeviceStore creates a device store at the given directory.
func NewDeviceStore(dir string) *DeviceStore {
	return &DeviceStore{dir: dir, now: time.Now}
}

func (s *DeviceStore) filePath() string {
	return filepath.Join(s.dir, "devices.json")
}

// Record marks the console at address as used now.
func (s *DeviceStore) Record(address, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	devices, err := s.readUnsafe()
	if err != nil {
		devices = nil // Start fresh if file is corrupted
	}

	updated := Device{Address: address, Name: name, LastUsed: s.now()}
	for i, d := range devices {
		if strings.EqualFold(d.Address, address) {
			devices = append(devices[:i], devices[i+1:]...)
			break
		}
	}
	devices = append([]Device{updated}, devices...)
	if len(devices) > maxDevices {
		devices = devices[:maxDevices]
	}

	return s.writeUnsafe(devices)
}

// List returns the remembered consoles, most recently used first.
func (s *DeviceStore) List() ([]Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	devices, err := s.readUnsafe()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(devices, func(i, j int) bool {
		return devices[i].LastUsed.After(devices[j].LastUsed)
	})
	return devices, nil
}

// Last returns the most recently used console, or false when there is none.
func (s *DeviceStore) Last() (Device, bool, error) {
	devices, err := s.List()
	if err != nil || len(devices) == 0 {
		return Device{}, false, err
	}
	return devices[0], true, nil
}

// Clear forgets every console.
func (s *DeviceStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeUnsafe(nil)
}

func (s *DeviceStore) readUnsafe() ([]Device, error) {
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read devices: %w", err)
	}

	var devices []Device
	if err := json.Unmarshal(data, &devices); err != nil {
		return nil, fmt.Errorf("failed to parse devices: %w", err)
	}
	return devices, nil
}

func (s *DeviceStore) writeUnsafe(devices []Device) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(devices, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal devices: %w", err)
	}

	return os.WriteFile(s.filePath(), data, 0o644)
}
