package validate

import (
	"errors"
	"strings"
	"testing"
)

func TestIP(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
	}{
		{"192.0.2.1", true},
		{"2001:db8::1", true},
		{"::1", true},
		{"10.0.0.255", true},
		{"::ffff:192.0.2.1", true},
		{"999.1.1.1", false},
		{"not-an-ip", false},
		{"", false},
		{"192.0.2", false},
		{"192.0.2.1/24", false},
		{"fe80::1%eth0", false},
		{" 192.0.2.1", false},
	}

	for _, test := range tests {
		if got := IP(test.ip); got != test.expected {
			t.Errorf("IP(%q): expected %v, got %v", test.ip, test.expected, got)
		}
	}

	if err := CheckIP("999.1.1.1"); !errors.Is(err, ErrInvalidIP) {
		t.Errorf("CheckIP: expected ErrInvalidIP, got %v", err)
	}
}

func TestConfidence(t *testing.T) {
	for c := -50; c <= 150; c++ {
		err := Confidence(c)
		valid := c >= 0 && c <= 100
		if valid && err != nil {
			t.Errorf("Confidence(%d): unexpected error %v", c, err)
		}
		if !valid && !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Confidence(%d): expected out of range, got %v", c, err)
		}
	}
}

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		err      error
	}{
		{"75", 75, nil},
		{" 0 ", 0, nil},
		{"100", 100, nil},
		{"101", 0, ErrOutOfRange},
		{"-1", 0, ErrOutOfRange},
		{"75.5", 0, ErrNotInteger},
		{"high", 0, ErrNotInteger},
		{"", 0, ErrNotInteger},
	}

	for _, test := range tests {
		got, err := ParseConfidence(test.input)
		if test.err == nil {
			if err != nil || got != test.expected {
				t.Errorf("ParseConfidence(%q): expected %d, got %d (%v)", test.input, test.expected, got, err)
			}
			continue
		}
		if !errors.Is(err, test.err) {
			t.Errorf("ParseConfidence(%q): expected %v, got %v", test.input, test.err, err)
		}
	}
}

func TestComment(t *testing.T) {
	if err := Comment(""); !errors.Is(err, ErrCommentRequired) {
		t.Errorf("empty comment: expected required error, got %v", err)
	}

	for _, n := range []int{1, 2, 500, 999, 1000} {
		if err := Comment(strings.Repeat("a", n)); err != nil {
			t.Errorf("comment of %d chars: unexpected error %v", n, err)
		}
	}
	for _, n := range []int{1001, 2000} {
		if err := Comment(strings.Repeat("a", n)); !errors.Is(err, ErrCommentTooLong) {
			t.Errorf("comment of %d chars: expected too long, got %v", n, err)
		}
	}

	// Characters, not bytes.
	if err := Comment(strings.Repeat("é", 1000)); err != nil {
		t.Errorf("1000 multi-byte characters should be accepted, got %v", err)
	}
}

func TestAPIKey(t *testing.T) {
	valid := strings.Repeat("ab12", 8)
	tests := []struct {
		key string
		err error
	}{
		{valid, nil},
		{"  " + valid + "\n", nil},
		{strings.Repeat("0", 80), nil},
		{"", ErrMissingKey},
		{"   ", ErrMissingKey},
		{valid[:31], ErrBadKeyFormat},
		{strings.ToUpper(valid), ErrBadKeyFormat},
		{strings.Repeat("g", 40), ErrBadKeyFormat},
		{valid + " extra", ErrBadKeyFormat},
	}

	for _, test := range tests {
		err := APIKey(test.key)
		if test.err == nil && err != nil {
			t.Errorf("APIKey(%q): unexpected error %v", test.key, err)
		}
		if test.err != nil && !errors.Is(err, test.err) {
			t.Errorf("APIKey(%q): expected %v, got %v", test.key, test.err, err)
		}
	}

	if ErrMissingKey.Reason == ErrBadKeyFormat.Reason {
		t.Error("missing and malformed keys must carry distinct reasons")
	}
}

func TestBatchSize(t *testing.T) {
	for _, n := range []int{1, 50, 100} {
		if err := BatchSize(n); err != nil {
			t.Errorf("BatchSize(%d): unexpected error %v", n, err)
		}
	}
	for _, n := range []int{0, -1, 101} {
		if err := BatchSize(n); !errors.Is(err, ErrBatchSize) {
			t.Errorf("BatchSize(%d): expected error, got %v", n, err)
		}
	}
}

func TestCategories(t *testing.T) {
	err := Categories([]string{"bogus", "nope"}, 1)
	if !errors.Is(err, ErrInvalidCategories) {
		t.Fatalf("expected invalid categories, got %v", err)
	}
	if !strings.Contains(err.Error(), "bogus, nope") {
		t.Errorf("error should list unresolved names, got %q", err.Error())
	}
	if err := Categories(nil, 0); !errors.Is(err, ErrCategoriesMissing) {
		t.Errorf("expected missing categories, got %v", err)
	}
	if err := Categories(nil, 2); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}
