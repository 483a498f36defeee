package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	boldStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	infoStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// Output is where the UI helpers print. Tests swap it out.
var Output io.Writer = os.Stdout

// Spinner provides a terminal spinner for long-running operations.
type Spinner struct {
	mu      sync.Mutex
	out     io.Writer
	message string
	running bool
	done    chan struct{}
	stopped chan struct{}
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a new spinner.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		out:     Output,
		message: message,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()

			frame := spinnerFrames[i%len(spinnerFrames)]
			fmt.Fprintf(s.out, "\r%s", spinnerStyle.Render(frame+" "+msg))

			select {
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Update changes the spinner message.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// Stop stops the spinner and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	width := len([]rune(s.message)) + 2
	s.mu.Unlock()

	close(s.done)
	<-s.stopped
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", width))
}

// Success prints a green success message.
func Success(msg string) {
	fmt.Fprintf(Output, "%s %s\n", successStyle.Render("✓"), msg)
}

// Error prints a red error message.
func Error(msg string) {
	fmt.Fprintf(Output, "%s %s\n", errorStyle.Render("✗"), msg)
}

// Info prints a blue info message.
func Info(msg string) {
	fmt.Fprintf(Output, "%s %s\n", infoStyle.Render("i"), msg)
}

// Warning prints a yellow warning message.
func Warning(msg string) {
	fmt.Fprintf(Output, "%s %s\n", warningStyle.Render("!"), msg)
}

// Header prints a bold header.
func Header(msg string) {
	fmt.Fprintf(Output, "\n%s\n", boldStyle.Render(msg))
}

// Detail prints an indented detail line.
func Detail(label, value string) {
	fmt.Fprintf(Output, "  %s %s\n", dimStyle.Render(label+":"), value)
}

// Hint prints a dimmed line.
func Hint(msg string) {
	fmt.Fprintf(Output, "  %s\n", dimStyle.Render(msg))
}
