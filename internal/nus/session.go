package nus

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/atomic"
)

// maxChunk is the ATT payload size for the default MTU of 23 bytes.
const maxChunk = 20

// Line endings appended to every line sent to the peripheral.
var lineEndings = map[string]string{
	"crlf": "\r\n",
	"lf":   "\n",
	"cr":   "\r",
	"none": "",
}

// ParseLineEnding resolves "crlf", "lf", "cr" or "none".
func ParseLineEnding(name string) (string, error) {
	ending, ok := lineEndings[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("unknown line ending %q (want crlf, lf, cr or none)", name)
	}
	return ending, nil
}

// Stats counts the traffic of a session.
type Stats struct {
	LinesReceived int64
	BytesReceived int64
	LinesSent     int64
	BytesSent     int64
}

// Session is an open connection to a UART console.
type Session struct {
	Console Console

	p      Peripheral
	ending string

	emitMu  sync.Mutex
	writeMu sync.Mutex

	running   *atomic.Bool
	closeOnce sync.Once
	closeErr  error

	linesIn  *atomic.Int64
	bytesIn  *atomic.Int64
	linesOut *atomic.Int64
	bytesOut *atomic.Int64
}

// Open connects to console. ending is appended to every line passed to Send.
func Open(ctx context.Context, adapter Adapter, console Console, ending string) (*Session, error) {
	p, err := adapter.Connect(ctx, console.Address)
	if err != nil {
		return nil, err
	}
	return &Session{
		Console:  console,
		p:        p,
		ending:   ending,
		running:  atomic.NewBool(false),
		linesIn:  atomic.NewInt64(0),
		bytesIn:  atomic.NewInt64(0),
		linesOut: atomic.NewInt64(0),
		bytesOut: atomic.NewInt64(0),
	}, nil
}

// Run passes every line the console transmits to emit until ctx is done, and
// then returns ctx's error. emit is never called concurrently or after Run
// returns.
func (s *Session) Run(ctx context.Context, emit func(string)) error {
	s.running.Store(true)
	defer func() {
		s.emitMu.Lock()
		s.running.Store(false)
		s.emitMu.Unlock()
	}()

	err := s.p.Subscribe(func(b []byte) {
		s.emitMu.Lock()
		defer s.emitMu.Unlock()
		if !s.running.Load() {
			return
		}
		s.bytesIn.Add(int64(len(b)))
		s.linesIn.Inc()
		emit(notificationLine(b))
	})
	if err != nil {
		return err
	}

	<-ctx.Done()
	return ctx.Err()
}

// Send writes line plus the line ending to the console's RX characteristic.
func (s *Session) Send(line string) error {
	data := []byte(line + s.ending)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	for len(data) > 0 {
		n := min(len(data), maxChunk)
		if _, err := s.p.Write(data[:n]); err != nil {
			return fmt.Errorf("failed to write to %s: %w", s.Console, err)
		}
		s.bytesOut.Add(int64(n))
		data = data[n:]
	}
	s.linesOut.Inc()
	return nil
}

// Stats returns the traffic counters so far.
func (s *Session) Stats() Stats {
	return Stats{
		LinesReceived: s.linesIn.Load(),
		BytesReceived: s.bytesIn.Load(),
		LinesSent:     s.linesOut.Load(),
		BytesSent:     s.bytesOut.Load(),
	}
}

// Close disconnects from the console. Later calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.p.Disconnect()
	})
	return s.closeErr
}

// notificationLine decodes a notification as text, keeping everything before
// the first CRLF.
func notificationLine(b []byte) string {
	text := strings.ToValidUTF8(string(b), "�")
	line, _, _ := strings.Cut(text, "\r\n")
	return line
}
