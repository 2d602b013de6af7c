package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed)
)

// terminal is the CLI's view of stdin, stdout and stderr.
type terminal struct {
	in  *bufio.Reader
	out io.Writer
	err io.Writer
	// fd is the descriptor secrets are read from without echo, or -1.
	fd int
}

func newTerminal(in *os.File, out, errOut io.Writer) *terminal {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		fd = -1
	}
	return &terminal{in: bufio.NewReader(in), out: out, err: errOut, fd: fd}
}

// readSecret prompts for a value on stderr. On a terminal the input is not
// echoed; otherwise one line is read from stdin.
func (t *terminal) readSecret(label string) (string, error) {
	if t.fd < 0 {
		return t.readLine(label)
	}
	fmt.Fprintf(t.err, "%s: ", label)
	b, err := term.ReadPassword(t.fd)
	fmt.Fprintln(t.err)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return string(b), nil
}

// readLine prompts for a value on stderr and reads one line from stdin.
func (t *terminal) readLine(label string) (string, error) {
	fmt.Fprintf(t.err, "%s: ", label)
	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *terminal) ok(msg string) {
	success.Fprintln(t.out, msg) //nolint: errcheck
}

func (t *terminal) fail(msg string) {
	failure.Fprintln(t.err, msg) //nolint: errcheck
}
