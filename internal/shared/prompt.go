package shared

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNotTerminal is returned when a prompt would read from a non-interactive stdin.
var ErrNotTerminal = errors.New("input is not a terminal")

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// ReadLine prints prompt to w and reads one line from r.
// The line is trimmed; a partial line before EOF is returned as input.
func ReadLine(r *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// UsernamePrompt asks for a username on the terminal.
//
// When In is an *os.File that is not a terminal the prompt fails with [ErrNotTerminal]
// instead of blocking on piped input.
type UsernamePrompt struct {
	In  io.Reader
	Out io.Writer
}

// NewUsernamePrompt prompts on stdin/stderr.
func NewUsernamePrompt() *UsernamePrompt {
	return &UsernamePrompt{In: os.Stdin, Out: os.Stderr}
}

// ConfirmUsername reads a username. An empty answer is returned as "" with no error.
func (p *UsernamePrompt) ConfirmUsername(ctx context.Context) (string, error) {
	if f, ok := p.In.(*os.File); ok && !isTerminal(int(f.Fd())) {
		return "", ErrNotTerminal
	}

	type result struct {
		line string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		line, err := ReadLine(bufio.NewReader(p.In), "Enter a username to continue", p.Out)
		done <- result{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.line, res.err
	}
}
