// Package shell implements the numbered text menu in front of the registry.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/repriest/quicklink/internal/registry"
)

// Registry is the part of the link registry the shell drives.
type Registry interface {
	Shorten(originalURL string) (string, error)
	Resolve(shortURL string) (string, bool)
}

const (
	optionShorten = 1
	optionResolve = 2
	optionExit    = 3
)

const menu = "1. Shorten URL\n2. Retrieve Original URL\n3. Exit\n"

// maxLineSize bounds a single input line; URLs can exceed bufio's 64 KiB default.
const maxLineSize = 16 << 20

type Shell struct {
	reg Registry
	in  *bufio.Scanner
	out io.Writer
}

func New(reg Registry, in io.Reader, out io.Writer) *Shell {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Shell{
		reg: reg,
		in:  sc,
		out: out,
	}
}

// Run loops over the menu until the user exits or input ends.
func (s *Shell) Run() error {
	for {
		fmt.Fprint(s.out, menu)
		choice, err := s.prompt("Choose an option: ")
		if err != nil {
			return endOfInput(err)
		}

		n, err := strconv.Atoi(strings.TrimSpace(choice))
		if err != nil {
			n = 0
		}

		switch n {
		case optionShorten:
			if err := s.shorten(); err != nil {
				return endOfInput(err)
			}
		case optionResolve:
			if err := s.resolve(); err != nil {
				return endOfInput(err)
			}
		case optionExit:
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid choice. Try again.")
		}
	}
}

// prompt prints label and reads one line. It returns io.EOF once input ends.
func (s *Shell) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		fmt.Fprintln(s.out)
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", io.EOF
	}
	return s.in.Text(), nil
}

// endOfInput treats running out of input like choosing Exit.
func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Shell) shorten() error {
	longURL, err := s.prompt("Enter long URL: ")
	if err != nil {
		return err
	}
	shortURL, err := s.reg.Shorten(strings.TrimSpace(longURL))
	if err != nil {
		if invalid, ok := registry.IsInvalidURL(err); ok {
			fmt.Fprintf(s.out, "Invalid URL: %v\n", invalid.Err)
			return nil
		}
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return nil
	}
	fmt.Fprintf(s.out, "Shortened URL: %s\n", shortURL)
	return nil
}

func (s *Shell) resolve() error {
	shortURL, err := s.prompt("Enter shortened URL: ")
	if err != nil {
		return err
	}
	originalURL, found := s.reg.Resolve(strings.TrimSpace(shortURL))
	if !found {
		fmt.Fprintln(s.out, "Shortened URL not found.")
		return nil
	}
	fmt.Fprintf(s.out, "Original URL: %s\n", originalURL)
	return nil
}
