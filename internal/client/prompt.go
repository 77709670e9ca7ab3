package client

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads answers from the shell's input. Passwords are read without
// echo when the input is a terminal.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
	fd      int
	isTTY   bool
}

// NewPrompter wraps in and out. in is checked for a terminal only when it is an *os.File.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{scanner: bufio.NewScanner(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd, p.isTTY = int(f.Fd()), true
	}
	return p
}

// ReadLine returns the next input line, trimmed. It returns io.EOF when input ends.
func (p *Prompter) ReadLine() (string, error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// Ask prints label and reads one line.
func (p *Prompter) Ask(label string) (string, error) {
	fmt.Fprint(p.out, label)
	return p.ReadLine()
}

// Password prints label and reads a password, untrimmed.
func (p *Prompter) Password(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if p.isTTY {
		b, err := term.ReadPassword(p.fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.scanner.Text(), nil
}
