package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stdio reads lines from in and writes to out
type Stdio struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewStdio создает IO поверх произвольных потоков
func NewStdio(in io.Reader, out io.Writer) *Stdio {
	return &Stdio{reader: bufio.NewReader(in), out: out}
}

// IsTerminal reports whether f is an interactive terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func (s *Stdio) Println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

// ReadInput prints prompt and returns the next line without surrounding
// whitespace. A last line without newline is returned before io.EOF.
func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)

	input, err := s.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && input != "" {
			return strings.TrimSpace(input), nil
		}
		return "", err
	}

	return strings.TrimSpace(input), nil
}
