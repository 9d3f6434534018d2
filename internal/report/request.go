package report

import (
	"strings"

	"github.com/abusectl/abusectl/internal/categories"
	"github.com/abusectl/abusectl/internal/validate"
)

// Input is a report as collected from a user, before validation
type Input struct {
	IP         string   `json:"ip"`
	Categories []string `json:"categories"`
	Comment    string   `json:"comment"`
	Confidence int      `json:"confidence"`
}

// Request is a validated report. It can only be built by NewRequest and is
// not modified afterwards.
type Request struct {
	ip          string
	categoryIDs []int
	comment     string
	confidence  int
}

// NewRequest validates in field by field and stops at the first failure.
// The order is IP, categories, comment, confidence.
func NewRequest(in Input) (Request, error) {
	ip := strings.TrimSpace(in.IP)
	if ip == "" {
		return Request{}, validate.ErrIPRequired
	}
	if err := validate.CheckIP(ip); err != nil {
		return Request{}, err
	}

	_, ids, unresolved := categories.ValidateBatch(in.Categories)
	if err := validate.Categories(unresolved, len(ids)); err != nil {
		return Request{}, err
	}

	if err := validate.Comment(in.Comment); err != nil {
		return Request{}, err
	}

	if err := validate.Confidence(in.Confidence); err != nil {
		return Request{}, err
	}

	return Request{
		ip:          ip,
		categoryIDs: ids,
		comment:     in.Comment,
		confidence:  in.Confidence,
	}, nil
}

// IP returns the reported address
func (r Request) IP() string { return r.ip }

// CategoryIDs returns a copy of the resolved category IDs
func (r Request) CategoryIDs() []int {
	out := make([]int, len(r.categoryIDs))
	copy(out, r.categoryIDs)
	return out
}

// CategoryNames returns the canonical names of the categories
func (r Request) CategoryNames() []string { return categories.Names(r.categoryIDs) }

// Comment returns the report comment
func (r Request) Comment() string { return r.comment }

// Confidence returns the confidence score
func (r Request) Confidence() int { return r.confidence }

// InputsForIPs builds one Input per IP sharing the same categories, comment
// and confidence.
func InputsForIPs(ips []string, categoryNames []string, comment string, confidence int) []Input {
	inputs := make([]Input, 0, len(ips))
	for _, ip := range ips {
		names := make([]string, len(categoryNames))
		copy(names, categoryNames)
		inputs = append(inputs, Input{
			IP:         ip,
			Categories: names,
			Comment:    comment,
			Confidence: confidence,
		})
	}
	return inputs
}
