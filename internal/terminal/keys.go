package terminal

import (
	"io"
	"sync"
	"time"
)

// Key is a decoded keyboard event.
type Key int

const (
	KeyOther Key = iota
	KeyEnter
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
)

func (k Key) String() string {
	switch k {
	case KeyEnter:
		return "Enter"
	case KeyEscape:
		return "Escape"
	case KeyUp:
		return "Up"
	case KeyDown:
		return "Down"
	case KeyLeft:
		return "Left"
	case KeyRight:
		return "Right"
	case KeyPageUp:
		return "PageUp"
	case KeyPageDown:
		return "PageDown"
	case KeyHome:
		return "Home"
	case KeyEnd:
		return "End"
	default:
		return "Other"
	}
}

// escapeTimeout is how long a lone ESC or an unfinished escape sequence
// waits for the rest of its bytes before it is decoded as is.
const escapeTimeout = 50 * time.Millisecond

// KeyReader decodes keys from a raw-mode terminal input stream.
// One Read may carry several keys (fast typing, key repeat); the
// leftovers are queued and returned by the following calls. A sequence
// split across reads (slow ptys, SSH) is joined before decoding.
type KeyReader struct {
	r io.Reader

	mu            sync.Mutex
	pending       []byte
	err           error
	inflight      chan chunk
	escapeTimeout time.Duration
}

type chunk struct {
	data []byte
	err  error
}

// NewKeyReader creates a KeyReader reading from r.
func NewKeyReader(r io.Reader) *KeyReader {
	return &KeyReader{r: r, escapeTimeout: escapeTimeout}
}

// ReadKey blocks until the next key is available.
func (kr *KeyReader) ReadKey() (Key, error) {
	kr.mu.Lock()
	defer kr.mu.Unlock()

	for len(kr.pending) == 0 {
		if kr.err != nil {
			return KeyOther, kr.err
		}
		kr.receive(<-kr.read())
	}

	// Wait briefly for the rest of an escape sequence. A read still
	// running when the wait ends is picked up by the next call.
	var timeout <-chan time.Time
	for kr.err == nil && incompleteEscape(kr.pending) {
		if timeout == nil {
			timeout = time.After(kr.escapeTimeout)
		}
		select {
		case c := <-kr.read():
			kr.receive(c)
			continue
		case <-timeout:
		}
		break
	}

	key, size := decodeKey(kr.pending)
	kr.pending = kr.pending[size:]
	if len(kr.pending) == 0 {
		kr.pending = nil
	}
	return key, nil
}

// read returns the result channel of the outstanding read, starting one if
// none is running. At most one Read is in progress at any time.
func (kr *KeyReader) read() <-chan chunk {
	if kr.inflight == nil {
		ch := make(chan chunk, 1)
		go func() {
			buf := make([]byte, 64)
			n, err := kr.r.Read(buf)
			ch <- chunk{data: buf[:n], err: err}
		}()
		kr.inflight = ch
	}
	return kr.inflight
}

func (kr *KeyReader) receive(c chunk) {
	kr.inflight = nil
	kr.pending = append(kr.pending, c.data...)
	if c.err != nil {
		kr.err = c.err
	}
}

// incompleteEscape reports whether b starts with an escape sequence whose
// remaining bytes may still be on their way.
func incompleteEscape(b []byte) bool {
	if len(b) == 0 || b[0] != 0x1b {
		return false
	}
	if len(b) == 1 {
		return true
	}
	switch b[1] {
	case 'O':
		return len(b) < 3
	case '[':
		for _, c := range b[2:] {
			if !csiParam(c) {
				return false
			}
		}
		return true
	}
	return false
}

// csiParam reports whether c is a CSI parameter or intermediate byte.
func csiParam(c byte) bool {
	return c >= 0x20 && c <= 0x3f
}

// decodeKey decodes the first key in b and returns it with the number of
// bytes it consumed. b must not be empty.
func decodeKey(b []byte) (Key, int) {
	switch b[0] {
	case '\r', '\n':
		// Some terminals send CR LF for Enter.
		if b[0] == '\r' && len(b) > 1 && b[1] == '\n' {
			return KeyEnter, 2
		}
		return KeyEnter, 1
	case 3: // Ctrl+C, raw mode does not raise SIGINT
		return KeyEscape, 1
	case 0x1b:
		return decodeEscape(b)
	}
	return KeyOther, 1
}

func decodeEscape(b []byte) (Key, int) {
	if len(b) == 1 {
		return KeyEscape, 1
	}

	switch b[1] {
	case '[':
		return decodeCSI(b)
	case 'O':
		// SS3: application cursor mode
		if len(b) < 3 {
			return KeyOther, len(b)
		}
		return finalKey(b[2]), 3
	case 0x1b:
		// Esc followed by another sequence: report the lone Esc first.
		return KeyEscape, 1
	}
	// Alt+<char>
	return KeyOther, 2
}

// decodeCSI decodes ESC [ params final.
func decodeCSI(b []byte) (Key, int) {
	i := 2
	for i < len(b) && csiParam(b[i]) {
		i++
	}
	if i >= len(b) {
		// Truncated sequence, drop it.
		return KeyOther, len(b)
	}

	params := string(b[2:i])
	final := b[i]
	if final < 0x40 || final > 0x7e {
		// Malformed: drop the prefix and decode the byte that ended it.
		return KeyOther, i
	}
	size := i + 1

	if final == '~' {
		switch params {
		case "1", "7":
			return KeyHome, size
		case "4", "8":
			return KeyEnd, size
		case "5":
			return KeyPageUp, size
		case "6":
			return KeyPageDown, size
		}
		return KeyOther, size
	}

	// Modified arrows (ESC [1;5A) still move focus.
	return finalKey(final), size
}

func finalKey(c byte) Key {
	switch c {
	case 'A':
		return KeyUp
	case 'B':
		return KeyDown
	case 'C':
		return KeyRight
	case 'D':
		return KeyLeft
	case 'H':
		return KeyHome
	case 'F':
		return KeyEnd
	}
	return KeyOther
}
