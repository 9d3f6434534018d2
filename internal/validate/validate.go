// Package validate holds the input checks applied before a report is built.
// Every check is pure and returns nil or an *Error with a stable reason.
package validate

import (
	"errors"
	"net/netip"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	MinConfidence    = 0
	MaxConfidence    = 100
	MaxCommentLength = 1000
	MinAPIKeyLength  = 32
	MinBatchSize     = 1
	MaxBatchSize     = 100
)

// Stable failure reasons, suitable for display.
const (
	ReasonIPRequired        = "IP address is required"
	ReasonInvalidIP         = "Invalid IP address"
	ReasonNotInteger        = "Confidence must be an integer"
	ReasonOutOfRange        = "Confidence must be between 0 and 100"
	ReasonCommentRequired   = "Comment cannot be empty"
	ReasonCommentTooLong    = "Comment cannot exceed 1000 characters"
	ReasonMissingKey        = "ABUSEIPDB_API_KEY environment variable not set"
	ReasonBadKeyFormat      = "Invalid API key format (must be hexadecimal)"
	ReasonCategoriesMissing = "At least one valid category is required"
	ReasonInvalidCategories = "Invalid categories"
	ReasonBatchSize         = "Please enter a number between 1 and 100"
)

// Error describes why a single field failed validation.
type Error struct {
	Field  string
	Reason string
	Value  string
}

func (e *Error) Error() string {
	if e.Value != "" {
		return e.Reason + ": " + e.Value
	}
	return e.Reason
}

// Is matches another *Error with the same field and reason, so callers can
// compare against the exported sentinels with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Field == e.Field && t.Reason == e.Reason
}

var (
	ErrIPRequired        = &Error{Field: "ip", Reason: ReasonIPRequired}
	ErrInvalidIP         = &Error{Field: "ip", Reason: ReasonInvalidIP}
	ErrNotInteger        = &Error{Field: "confidence", Reason: ReasonNotInteger}
	ErrOutOfRange        = &Error{Field: "confidence", Reason: ReasonOutOfRange}
	ErrCommentRequired   = &Error{Field: "comment", Reason: ReasonCommentRequired}
	ErrCommentTooLong    = &Error{Field: "comment", Reason: ReasonCommentTooLong}
	ErrMissingKey        = &Error{Field: "api_key", Reason: ReasonMissingKey}
	ErrBadKeyFormat      = &Error{Field: "api_key", Reason: ReasonBadKeyFormat}
	ErrCategoriesMissing = &Error{Field: "categories", Reason: ReasonCategoriesMissing}
	ErrInvalidCategories = &Error{Field: "categories", Reason: ReasonInvalidCategories}
	ErrBatchSize         = &Error{Field: "count", Reason: ReasonBatchSize}
)

var apiKeyPattern = regexp.MustCompile(`^[a-f0-9]{32,}$`)

// IP reports whether s is a literal IPv4 or IPv6 address.
func IP(s string) bool {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return false
	}
	return addr.Zone() == ""
}

// CheckIP is IP in error form.
func CheckIP(s string) error {
	if !IP(s) {
		return &Error{Field: "ip", Reason: ReasonInvalidIP, Value: s}
	}
	return nil
}

// Confidence checks that c is within 0..100 inclusive.
func Confidence(c int) error {
	if c < MinConfidence || c > MaxConfidence {
		return ErrOutOfRange
	}
	return nil
}

// ParseConfidence parses a confidence score typed by a user. Only plain
// integers are accepted; "75.5" or "high" are rejected rather than coerced.
func ParseConfidence(s string) (int, error) {
	c, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrNotInteger
	}
	if err := Confidence(c); err != nil {
		return 0, err
	}
	return c, nil
}

// Comment checks that s holds between 1 and 1000 characters.
func Comment(s string) error {
	if s == "" {
		return ErrCommentRequired
	}
	if utf8.RuneCountInString(s) > MaxCommentLength {
		return ErrCommentTooLong
	}
	return nil
}

// APIKey checks the shape of an AbuseIPDB key: 32 or more lowercase hex
// characters after trimming. A missing key is reported separately.
func APIKey(key string) error {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return ErrMissingKey
	}
	if !apiKeyPattern.MatchString(trimmed) {
		return ErrBadKeyFormat
	}
	return nil
}

// BatchSize checks the number of reports requested for one bulk run.
func BatchSize(n int) error {
	if n < MinBatchSize || n > MaxBatchSize {
		return ErrBatchSize
	}
	return nil
}

// Categories reports unresolved category names as a single error.
func Categories(unresolved []string, resolved int) error {
	if len(unresolved) > 0 {
		return &Error{Field: "categories", Reason: ReasonInvalidCategories, Value: strings.Join(unresolved, ", ")}
	}
	if resolved == 0 {
		return ErrCategoriesMissing
	}
	return nil
}
