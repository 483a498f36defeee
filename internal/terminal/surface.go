package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	fallbackWidth  = 80
	fallbackHeight = 24

	hideCursorSeq = "\033[?25l"
	showCursorSeq = "\033[?25h"
)

// Release undoes a scoped terminal change. It is safe to call more than once.
type Release func()

// Surface writes line-oriented output to a terminal and manages the
// terminal state a redraw-in-place UI needs.
type Surface struct {
	in  *os.File
	out io.Writer

	mu            sync.Mutex
	color         Color
	cursorVisible bool
}

// NewSurface creates a surface reading terminal state from in and writing to out.
func NewSurface(in *os.File, out io.Writer) *Surface {
	return &Surface{
		in:            in,
		out:           out,
		color:         Default,
		cursorVisible: true,
	}
}

// Stdio returns a surface bound to the process stdin and stdout.
func Stdio() *Surface {
	return NewSurface(os.Stdin, os.Stdout)
}

// IsTerminal reports whether the input side is a terminal.
func (s *Surface) IsTerminal() bool {
	return s.in != nil && term.IsTerminal(int(s.in.Fd()))
}

// Size returns the current viewport width and height.
func (s *Surface) Size() (int, int, error) {
	if f, ok := s.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		w, h, err := term.GetSize(int(f.Fd()))
		if err != nil {
			return 0, 0, fmt.Errorf("failed to read terminal size: %w", err)
		}
		return w, h, nil
	}
	return fallbackWidth, fallbackHeight, nil
}

// WriteLine writes text and moves to the start of the next row.
func (s *Surface) WriteLine(text string) error {
	// Raw mode does not translate LF, so return the carriage explicitly.
	_, err := io.WriteString(s.out, text+"\r\n")
	return err
}

// MoveCursorUp moves the cursor up by rows. The terminal stops at the top row.
func (s *Surface) MoveCursorUp(rows int) error {
	if rows <= 0 {
		return nil
	}
	_, err := fmt.Fprintf(s.out, "\033[%dA\r", rows)
	return err
}

// Colorize sets the foreground color until the returned Release is called,
// which restores the color that was active before.
func (s *Surface) Colorize(c Color) (Release, error) {
	s.mu.Lock()
	prev := s.color
	s.color = c
	s.mu.Unlock()

	if _, err := io.WriteString(s.out, c.sequence()); err != nil {
		s.setColor(prev)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.setColor(prev)
			io.WriteString(s.out, prev.sequence())
		})
	}, nil
}

func (s *Surface) setColor(c Color) {
	s.mu.Lock()
	s.color = c
	s.mu.Unlock()
}

// HideCursor hides the cursor until the returned Release is called.
func (s *Surface) HideCursor() (Release, error) {
	s.mu.Lock()
	prev := s.cursorVisible
	s.cursorVisible = false
	s.mu.Unlock()

	if _, err := io.WriteString(s.out, hideCursorSeq); err != nil {
		s.mu.Lock()
		s.cursorVisible = prev
		s.mu.Unlock()
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.cursorVisible = prev
			s.mu.Unlock()
			if prev {
				io.WriteString(s.out, showCursorSeq)
			}
		})
	}, nil
}

// MakeRaw puts the input terminal into raw mode until the returned Release
// is called. When the input is not a terminal nothing changes.
func (s *Surface) MakeRaw() (Release, error) {
	if !s.IsTerminal() {
		return func() {}, nil
	}

	fd := int(s.in.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			term.Restore(fd, oldState)
		})
	}, nil
}

// Pad truncates or right-pads text to exactly width terminal cells.
func Pad(text string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(text, width, ""), width)
}
