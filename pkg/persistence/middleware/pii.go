package middleware

import (
	"regexp"

	"github.com/aretw0/tablebot/pkg/domain"
)

// Mask replaces redacted slot values.
const Mask = "***"

// DefaultPIIPatterns match the customer slots collected by the booking flow.
var DefaultPIIPatterns = []string{`^first_name$`, `^surname$`, `^email$`, `^mobile$`}

// Redactor masks the values of slots whose names match its patterns.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor compiles patterns. It panics on an invalid expression.
func NewRedactor(patterns ...string) *Redactor {
	r := &Redactor{patterns: make([]*regexp.Regexp, len(patterns))}
	for i, p := range patterns {
		r.patterns[i] = regexp.MustCompile(p)
	}
	return r
}

// Redact returns a copy of s with matching slots masked. s is not modified.
func (r *Redactor) Redact(s *domain.Session) *domain.Session {
	out := s.Snapshot()
	if out == nil {
		return nil
	}
	for k := range out.Slots {
		if r.matches(k) {
			out.Slots[k] = Mask
		}
	}
	return out
}

func (r *Redactor) matches(name string) bool {
	for _, p := range r.patterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}
