package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/reeflective/readline"
)

// lineInput reads the lines the user sends and prints console output
// without corrupting what is being typed.
type lineInput interface {
	ReadLine() (string, error)
	Print(line string)
}

// shellInput edits lines with readline on an interactive terminal.
type shellInput struct {
	shell *readline.Shell
}

func newShellInput(prompt, historyPath string) *shellInput {
	shell := readline.NewShell()
	shell.Prompt.Primary(func() string { return prompt })
	if historyPath != "" {
		shell.History.AddFromFile("sent lines", historyPath)
	}
	return &shellInput{shell: shell}
}

func (in *shellInput) ReadLine() (string, error) {
	line, err := in.shell.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	return line, err
}

func (in *shellInput) Print(line string) {
	in.shell.Printf("%s\n", line)
}

// plainInput reads piped input line by line.
type plainInput struct {
	scanner *bufio.Scanner

	mu  sync.Mutex
	out io.Writer
}

func newPlainInput(r io.Reader, out io.Writer) *plainInput {
	return &plainInput{scanner: bufio.NewScanner(r), out: out}
}

func (in *plainInput) ReadLine() (string, error) {
	if in.scanner.Scan() {
		return in.scanner.Text(), nil
	}
	if err := in.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (in *plainInput) Print(line string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	fmt.Fprintln(in.out, line)
}
