package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*DeviceStore, *time.Time) {
	t.Helper()
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewDeviceStore(filepath.Join(t.TempDir(), "data"))
	s.now = func() time.Time { return clock }
	return s, &clock
}

func TestDeviceStoreEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	devices, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, devices)

	_, ok, err := s.Last()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeviceStoreRecordUpserts(t *testing.T) {
	s, clock := newTestStore(t)

	require.NoError(t, s.Record("AA:01", "Logger"))
	*clock = clock.Add(time.Minute)
	require.NoError(t, s.Record("BB:02", "Sensor"))
	*clock = clock.Add(time.Minute)
	require.NoError(t, s.Record("aa:01", "Logger v2"))

	devices, err := s.List()
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "aa:01", devices[0].Address)
	assert.Equal(t, "Logger v2", devices[0].Name)
	assert.Equal(t, "BB:02", devices[1].Address)

	last, ok, err := s.Last()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "aa:01", last.Address)
	assert.True(t, last.LastUsed.Equal(*clock))
}

func TestDeviceStoreBounded(t *testing.T) {
	s, clock := newTestStore(t)
	for i := 0; i < maxDevices+5; i++ {
		*clock = clock.Add(time.Second)
		require.NoError(t, s.Record(string(rune('A'+i)), ""))
	}

	devices, err := s.List()
	require.NoError(t, err)
	assert.Len(t, devices, maxDevices)
	assert.Equal(t, string(rune('A'+maxDevices+4)), devices[0].Address)
}

func TestDeviceStoreCorruptFile(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, os.MkdirAll(s.dir, 0o755))
	require.NoError(t, os.WriteFile(s.filePath(), []byte("{not json"), 0o644))

	_, err := s.List()
	require.Error(t, err)

	// Recording starts over.
	require.NoError(t, s.Record("AA:01", "Logger"))
	devices, err := s.List()
	require.NoError(t, err)
	require.Len(t, devices, 1)
}

func TestDeviceStoreClear(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Record("AA:01", "Logger"))
	require.NoError(t, s.Clear())

	devices, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, devices)
}
