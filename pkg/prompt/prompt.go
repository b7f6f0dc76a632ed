// Package prompt abstracts the interactive surface of an import run.
// The engine never talks to the console directly; it is handed a Chooser,
// which makes every disambiguation decision injectable and testable. A
// non-interactive run uses a Chooser that declines every choice, so each
// decision point fails closed.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// None is returned by Select when the user (or policy) declines to choose.
const None = -1

// Chooser presents single-choice selections and free-text prompts.
type Chooser interface {
	// Select presents labeled options and returns the chosen index, or None
	// when the user skips or the run is non-interactive.
	Select(label string, options []string) (int, error)
	// Input prompts for a free-text value.
	Input(label string) (string, error)
}

// Console reads selections from an interactive terminal.
type Console struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// NewConsole creates a Console chooser on stdin/stdout.
func NewConsole() *Console {
	return &Console{In: os.Stdin, Out: os.Stdout}
}

// Select implements Chooser. Options are shown as a numbered menu with a
// final "Skip" entry; an empty line or the skip index returns None.
func (c *Console) Select(label string, options []string) (int, error) {
	fmt.Fprintf(c.out(), "%s:\n", label)
	for i, option := range options {
		fmt.Fprintf(c.out(), "  %2d) %s\n", i+1, option)
	}
	fmt.Fprintf(c.out(), "  %2d) Skip ...\n", len(options)+1)

	for {
		fmt.Fprint(c.out(), "> ")
		line, err := c.readLine()
		if err != nil {
			return None, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return None, nil
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(options)+1 {
			fmt.Fprintf(c.out(), "enter a number between 1 and %d\n", len(options)+1)
			continue
		}
		if n == len(options)+1 {
			return None, nil
		}
		return n - 1, nil
	}
}

// Input implements Chooser.
func (c *Console) Input(label string) (string, error) {
	fmt.Fprintf(c.out(), "%s: ", label)
	line, err := c.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) readLine() (string, error) {
	if c.reader == nil {
		in := c.In
		if in == nil {
			in = os.Stdin
		}
		c.reader = bufio.NewReader(in)
	}
	return c.reader.ReadString('\n')
}

func (c *Console) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// NonInteractive declines every selection and input. It is the Chooser for
// unattended runs: multi-candidate decisions are skipped, never guessed.
type NonInteractive struct{}

// Select implements Chooser and always returns None.
func (NonInteractive) Select(string, []string) (int, error) { return None, nil }

// Input implements Chooser and always returns an empty string.
func (NonInteractive) Input(string) (string, error) { return "", nil }

// Script replays a queued sequence of answers. It exists for tests and for
// scripted imports.
type Script struct {
	Selections []int
	Inputs     []string
}

// Select implements Chooser by dequeuing the next scripted selection.
func (s *Script) Select(string, []string) (int, error) {
	if len(s.Selections) == 0 {
		return None, nil
	}
	next := s.Selections[0]
	s.Selections = s.Selections[1:]
	return next, nil
}

// Input implements Chooser by dequeuing the next scripted input.
func (s *Script) Input(string) (string, error) {
	if len(s.Inputs) == 0 {
		return "", nil
	}
	next := s.Inputs[0]
	s.Inputs = s.Inputs[1:]
	return next, nil
}
