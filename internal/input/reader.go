package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abusectl/abusectl/internal/validate"
)

// ErrNoInput is returned when stdin is a terminal and no file was given
var ErrNoInput = errors.New("no input provided: supply --file or pipe IPs to stdin")

// List is the result of reading an IP list
type List struct {
	// IPs are the valid addresses in first-seen order, without duplicates
	IPs []string
	// Invalid are tokens that are not IP addresses
	Invalid []string
	// Duplicates counts repeated addresses that were dropped
	Duplicates int
}

// ReadFileOrStdin reads an IP list from filename, or from stdin when
// filename is empty or "-"
func ReadFileOrStdin(filename string) (*List, error) {
	if filename == "" || filename == "-" {
		stat, err := os.Stdin.Stat()
		if err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			return nil, ErrNoInput
		}
		return Read(os.Stdin)
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses r line by line. Lines may hold several addresses separated by
// commas, semicolons, tabs or spaces; anything after '#' is ignored.
func Read(r io.Reader) (*List, error) {
	list := &List{}
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, token := range Split(line) {
			if !validate.IP(token) {
				list.Invalid = append(list.Invalid, token)
				continue
			}
			if _, dup := seen[token]; dup {
				list.Duplicates++
				continue
			}
			seen[token] = struct{}{}
			list.IPs = append(list.IPs, token)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read IP list: %w", err)
	}
	return list, nil
}

// Split breaks s on the separators accepted in IP lists
func Split(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '\t' || r == ' ' || r == '\r'
	})
}
