package shell

import (
	"bufio"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// LineInput supplies input lines. ReadLine returns io.EOF at end of input,
// including Ctrl+C and Ctrl+D on an interactive terminal.
type LineInput interface {
	ReadLine() (string, error)
	Close() error
}

// TerminalInput is an interactive line editor on a raw-mode terminal with
// history and command-word completion. It is also the output writer: writes
// are serialized and the prompt is redrawn beneath them.
type TerminalInput struct {
	term  *term.Terminal
	fd    int
	state *term.State
}

// NewTerminalInput puts in into raw mode and returns an editor writing to out.
// Close restores the terminal.
func NewTerminalInput(in *os.File, out io.Writer, prompt string) (*TerminalInput, error) {
	fd := int(in.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, out}, prompt)
	if w, h, err := term.GetSize(fd); err == nil {
		_ = t.SetSize(w, h)
	}
	t.AutoCompleteCallback = completeCommand

	return &TerminalInput{term: t, fd: fd, state: state}, nil
}

func (t *TerminalInput) ReadLine() (string, error) {
	return t.term.ReadLine()
}

func (t *TerminalInput) Write(p []byte) (int, error) {
	return t.term.Write(p)
}

func (t *TerminalInput) Close() error {
	return term.Restore(t.fd, t.state)
}

// completeCommand completes the command word on Tab when exactly one command
// starts with what has been typed.
func completeCommand(line string, pos int, key rune) (string, int, bool) {
	if key != '\t' || pos != len(line) || strings.ContainsAny(line, " \t") {
		return "", 0, false
	}
	match := ""
	for _, name := range CommandNames {
		if strings.HasPrefix(name, line) {
			if match != "" {
				return "", 0, false
			}
			match = name
		}
	}
	if match == "" {
		return "", 0, false
	}
	completed := match + " "
	return completed, len(completed), true
}

// ScannerInput reads newline-terminated lines from a non-interactive source.
type ScannerInput struct {
	scanner *bufio.Scanner
}

func NewScannerInput(r io.Reader) *ScannerInput {
	return &ScannerInput{scanner: bufio.NewScanner(r)}
}

func (s *ScannerInput) ReadLine() (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (s *ScannerInput) Close() error {
	return nil
}

// OpenInput returns an interactive editor when in is a terminal, otherwise a
// plain line reader without a prompt. The returned writer is where all shell
// output, log output included, must go.
func OpenInput(in *os.File, out *os.File, prompt string) (LineInput, io.Writer, error) {
	if term.IsTerminal(int(in.Fd())) {
		t, err := NewTerminalInput(in, out, prompt)
		if err != nil {
			return nil, nil, err
		}
		return t, t, nil
	}
	return NewScannerInput(in), out, nil
}
