package cmd

import (
	"errors"
	"io"
	"testing"

	"github.com/chzyer/readline"
)

type answer struct {
	line string
	err  error
}

func (a answer) Readline() (string, error) {
	return a.line, a.err
}

func TestReadConfirmation(t *testing.T) {
	broken := errors.New("bad file descriptor")

	tests := []struct {
		name     string
		answer   answer
		expected bool
		err      error
	}{
		{"yes", answer{line: "yes"}, true, nil},
		{"y with spaces", answer{line: "  Y "}, true, nil},
		{"no", answer{line: "no"}, false, nil},
		{"empty", answer{line: ""}, false, nil},
		{"interrupt", answer{err: readline.ErrInterrupt}, false, nil},
		{"eof", answer{err: io.EOF}, false, nil},
		{"terminal failure", answer{err: broken}, false, broken},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ok, err := readConfirmation(test.answer)
			if ok != test.expected {
				t.Errorf("expected %v, got %v", test.expected, ok)
			}
			if test.err == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if test.err != nil && !errors.Is(err, test.err) {
				t.Errorf("expected %v, got %v", test.err, err)
			}
		})
	}
}
