package nus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	ads        []Advertisement
	enableErr  error
	scanErr    error
	connectErr error
	peripheral *fakePeripheral

	enabled   int
	connected string
}

func (a *fakeAdapter) Enable() error {
	a.enabled++
	return a.enableErr
}

func (a *fakeAdapter) Scan(ctx context.Context, _ time.Duration, found func(Advertisement)) error {
	for _, ad := range a.ads {
		found(ad)
	}
	return a.scanErr
}

func (a *fakeAdapter) Connect(_ context.Context, address string) (Peripheral, error) {
	if a.connectErr != nil {
		return nil, a.connectErr
	}
	a.connected = address
	return a.peripheral, nil
}

type fakePeripheral struct {
	mu          sync.Mutex
	notify      func([]byte)
	writes      [][]byte
	writeErr    error
	disconnects int
	subscribed  chan struct{}
}

func newFakePeripheral() *fakePeripheral {
	return &fakePeripheral{subscribed: make(chan struct{})}
}

func (p *fakePeripheral) Subscribe(fn func([]byte)) error {
	p.mu.Lock()
	p.notify = fn
	p.mu.Unlock()
	close(p.subscribed)
	return nil
}

func (p *fakePeripheral) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.writes = append(p.writes, append([]byte(nil), b...))
	return len(b), nil
}

func (p *fakePeripheral) Disconnect() error {
	p.disconnects++
	return nil
}

func (p *fakePeripheral) send(s string) {
	p.mu.Lock()
	fn := p.notify
	p.mu.Unlock()
	fn([]byte(s))
}

func TestFindConsolesDeduplicates(t *testing.T) {
	adapter := &fakeAdapter{ads: []Advertisement{
		{Address: "AA:01", RSSI: -80},
		{Address: "BB:02", Name: "Sensor", RSSI: -60},
		{Address: "AA:01", Name: "Logger", RSSI: -70},
		{Address: "AA:01", RSSI: -90},
	}}

	consoles, err := FindConsoles(context.Background(), adapter, time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, adapter.enabled)

	require.Equal(t, []Console{
		{Address: "AA:01", Name: "Logger", RSSI: -70},
		{Address: "BB:02", Name: "Sensor", RSSI: -60},
	}, consoles)
}

func TestFindConsolesErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := FindConsoles(context.Background(), &fakeAdapter{enableErr: boom}, time.Second)
	require.ErrorIs(t, err, boom)

	_, err = FindConsoles(context.Background(), &fakeAdapter{scanErr: boom}, time.Second)
	require.ErrorIs(t, err, boom)
}

func TestConsoleString(t *testing.T) {
	assert.Equal(t, "Logger", Console{Address: "AA:01", Name: "Logger"}.String())
	assert.Equal(t, "AA:01", Console{Address: "AA:01"}.String())
	assert.Equal(t, "Logger (AA:01, -70 dBm)", Console{Address: "AA:01", Name: "Logger", RSSI: -70}.Label())
}

func TestMatch(t *testing.T) {
	consoles := []Console{
		{Address: "AA:01", Name: "Logger"},
		{Address: "BB:02", Name: "aa:01"},
	}

	c, ok := Match(consoles, "aa:01")
	require.True(t, ok)
	assert.Equal(t, "AA:01", c.Address)

	c, ok = Match(consoles, "Logger")
	require.True(t, ok)
	assert.Equal(t, "AA:01", c.Address)

	_, ok = Match(consoles, "logger")
	assert.False(t, ok)
}

func TestParseLineEnding(t *testing.T) {
	for name, want := range map[string]string{"crlf": "\r\n", "LF": "\n", " cr ": "\r", "none": ""} {
		got, err := ParseLineEnding(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseLineEnding("nul")
	require.Error(t, err)
}

func TestNotificationLine(t *testing.T) {
	assert.Equal(t, "hello", notificationLine([]byte("hello\r\nworld\r\n")))
	assert.Equal(t, "no terminator", notificationLine([]byte("no terminator")))
	assert.Equal(t, "a\nb", notificationLine([]byte("a\nb")))
	assert.Equal(t, "", notificationLine([]byte("\r\n")))
	assert.Equal(t, "x�y", notificationLine([]byte{'x', 0xff, 'y'}))
}

func openSession(t *testing.T, ending string) (*Session, *fakePeripheral, *fakeAdapter) {
	t.Helper()
	p := newFakePeripheral()
	adapter := &fakeAdapter{peripheral: p}
	s, err := Open(context.Background(), adapter, Console{Address: "AA:01", Name: "Logger"}, ending)
	require.NoError(t, err)
	return s, p, adapter
}

func TestOpenConnectError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Open(context.Background(), &fakeAdapter{connectErr: boom}, Console{Address: "AA:01"}, "\r\n")
	require.ErrorIs(t, err, boom)
}

func TestSendChunks(t *testing.T) {
	s, p, adapter := openSession(t, "\r\n")
	require.Equal(t, "AA:01", adapter.connected)

	line := "0123456789abcdefghijklmnopqrstuvwxyz" // 36 bytes, 38 with CRLF
	require.NoError(t, s.Send(line))

	require.Len(t, p.writes, 2)
	assert.Equal(t, "0123456789abcdefghij", string(p.writes[0]))
	assert.Equal(t, "klmnopqrstuvwxyz\r\n", string(p.writes[1]))

	require.NoError(t, s.Send(""))
	require.Len(t, p.writes, 3)
	assert.Equal(t, "\r\n", string(p.writes[2]))

	stats := s.Stats()
	assert.Equal(t, int64(2), stats.LinesSent)
	assert.Equal(t, int64(40), stats.BytesSent)
}

func TestSendWithoutEnding(t *testing.T) {
	s, p, _ := openSession(t, "")

	require.NoError(t, s.Send(""))
	assert.Empty(t, p.writes)

	require.NoError(t, s.Send("ping"))
	require.Len(t, p.writes, 1)
	assert.Equal(t, "ping", string(p.writes[0]))
}

func TestSendWriteError(t *testing.T) {
	s, p, _ := openSession(t, "\n")
	p.writeErr = errors.New("gatt failure")

	err := s.Send("ping")
	require.ErrorIs(t, err, p.writeErr)
	assert.Equal(t, int64(0), s.Stats().LinesSent)
}

func TestRunEmitsUntilCancelled(t *testing.T) {
	s, p, _ := openSession(t, "\r\n")

	ctx, cancel := context.WithCancel(context.Background())
	var lines []string
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(line string) { lines = append(lines, line) })
	}()

	<-p.subscribed
	p.send("boot ok\r\n")
	p.send("temp=21\r\nignored")

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	// Notifications after Run returned are dropped.
	p.send("late\r\n")

	assert.Equal(t, []string{"boot ok", "temp=21"}, lines)
	stats := s.Stats()
	assert.Equal(t, int64(2), stats.LinesReceived)
	assert.Equal(t, int64(len("boot ok\r\n")+len("temp=21\r\nignored")), stats.BytesReceived)
}

func TestCloseOnce(t *testing.T) {
	s, p, _ := openSession(t, "\r\n")
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, p.disconnects)
}
