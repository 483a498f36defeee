// Package menu implements an interactive, scrollable selection menu that
// redraws in place on a line-oriented terminal.
package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/moasq/nusconsole/internal/terminal"
)

var (
	// ErrCancelled is returned when the user presses Escape or the context is done.
	ErrCancelled = errors.New("operation cancelled by user")

	// ErrEmptyMenu is returned by Show when there is nothing to select.
	ErrEmptyMenu = errors.New("menu has no items")
)

const (
	// Rows reserved for the title and the trailing blank line.
	reservedRows = 2

	focusPrefix   = "> "
	defaultPrefix = "  "
	moreMarker    = "..."
)

// Surface is the terminal the menu draws on.
type Surface interface {
	Size() (width, height int, err error)
	WriteLine(text string) error
	MoveCursorUp(rows int) error
	Colorize(c terminal.Color) (terminal.Release, error)
	HideCursor() (terminal.Release, error)
	MakeRaw() (terminal.Release, error)
}

// KeySource delivers key presses. ReadKey may block indefinitely.
type KeySource interface {
	ReadKey() (terminal.Key, error)
}

// Menu lets the user pick one of its items.
type Menu[T any] struct {
	Title        string
	DefaultColor terminal.Color
	FocusColor   terminal.Color
	Logger       *slog.Logger

	items  []T
	format func(T) string

	focus  int
	scroll int
}

// New creates a menu over items. A nil format renders items with fmt.Sprint.
func New[T any](title string, items []T, format func(T) string) *Menu[T] {
	if format == nil {
		format = func(item T) string { return fmt.Sprint(item) }
	}
	return &Menu[T]{
		Title:        title,
		DefaultColor: terminal.Default,
		FocusColor:   terminal.Green,
		items:        append([]T(nil), items...),
		format:       format,
	}
}

// SetFocus moves the initial focus, clamped to the item range.
func (m *Menu[T]) SetFocus(index int) {
	m.focus = index
	m.clampFocus()
}

// Focus returns the focused index.
func (m *Menu[T]) Focus() int {
	return m.focus
}

// Show runs the menu until the user confirms or cancels, or ctx is done.
// The terminal is left with the menu lines printed plus one blank line.
func (m *Menu[T]) Show(ctx context.Context, s Surface, keys KeySource) (T, error) {
	var zero T
	if len(m.items) == 0 {
		return zero, ErrEmptyMenu
	}

	logger := m.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	restoreMode, err := s.MakeRaw()
	if err != nil {
		return zero, err
	}
	defer restoreMode()

	showCursor, err := s.HideCursor()
	if err != nil {
		return zero, err
	}
	defer showCursor()

	// Separate whatever is printed next from the menu.
	defer s.WriteLine("")

	for {
		width, height, err := s.Size()
		if err != nil {
			return zero, err
		}
		count := m.displayCount(height - reservedRows)
		m.scroll = m.scrollIndex(count)

		if err := m.draw(s, width, count); err != nil {
			return zero, err
		}

		key, err := readKey(ctx, keys)
		if err != nil {
			if errors.Is(err, ErrCancelled) {
				logger.Info("menu cancelled", "title", m.Title, "reason", err)
			}
			return zero, err
		}
		logger.Debug("menu key", "key", key.String(), "focus", m.focus, "scroll", m.scroll)

		switch key {
		case terminal.KeyEnter:
			return m.items[m.focus], nil
		case terminal.KeyEscape:
			logger.Info("menu cancelled", "title", m.Title, "reason", "escape")
			return zero, ErrCancelled
		}
		m.handleKey(key, count)

		if err := s.MoveCursorUp(count + 1); err != nil {
			return zero, err
		}
	}
}

type keyResult struct {
	key terminal.Key
	err error
}

// readKey waits for the next key or for ctx, whichever comes first. A read
// that loses the race keeps running in the background and its result is
// dropped into the buffered channel nobody reads. Callers that keep using
// the key source after a cancelled Show lose the first key to that read.
func readKey(ctx context.Context, keys KeySource) (terminal.Key, error) {
	if err := ctx.Err(); err != nil {
		return terminal.KeyOther, fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	ch := make(chan keyResult, 1)
	go func() {
		key, err := keys.ReadKey()
		ch <- keyResult{key: key, err: err}
	}()

	select {
	case <-ctx.Done():
		return terminal.KeyOther, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	case r := <-ch:
		// Both may be ready at once; cancellation wins.
		if err := ctx.Err(); err != nil {
			return terminal.KeyOther, fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		return r.key, r.err
	}
}

// handleKey applies a navigation key. Enter and Escape are handled by Show.
func (m *Menu[T]) handleKey(key terminal.Key, count int) {
	switch key {
	case terminal.KeyUp:
		m.focus--
	case terminal.KeyDown:
		m.focus++
	case terminal.KeyPageUp:
		m.focus -= count
	case terminal.KeyPageDown:
		m.focus += count
	case terminal.KeyHome:
		m.focus = 0
	case terminal.KeyEnd:
		m.focus = len(m.items) - 1
	}
	m.clampFocus()
}

func (m *Menu[T]) clampFocus() {
	m.focus = min(max(m.focus, 0), max(len(m.items)-1, 0))
}

func (m *Menu[T]) draw(s Surface, width, count int) error {
	if err := s.WriteLine(terminal.Pad(m.Title, width)); err != nil {
		return err
	}

	atStart := m.scroll == 0
	atEnd := m.scroll+count >= len(m.items)

	for i := 0; i < count; i++ {
		index := m.scroll + i
		// The focused row is never hidden behind the marker, which only
		// matters for viewports of one or two rows.
		more := index != m.focus && ((!atStart && i == 0) || (!atEnd && i == count-1))
		if err := m.drawItem(s, index, width, more); err != nil {
			return err
		}
	}
	return nil
}

func (m *Menu[T]) drawItem(s Surface, index, width int, more bool) error {
	color, prefix := m.DefaultColor, defaultPrefix
	if index == m.focus {
		color, prefix = m.FocusColor, focusPrefix
	}

	text := moreMarker
	if !more {
		text = m.format(m.items[index])
	}

	// Every row is exactly width cells: shorter text would leave the previous
	// frame visible and longer text would wrap and break the cursor math.
	line := terminal.Pad(prefix+text, width)

	restore, err := s.Colorize(color)
	if err != nil {
		return err
	}
	defer restore()

	return s.WriteLine(line)
}
