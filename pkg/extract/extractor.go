package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/tablebot/pkg/domain"
)

var (
	datePattern    = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	timePattern    = regexp.MustCompile(`\b\d{2}:\d{2}:\d{2}\b`)
	partyPhrase    = regexp.MustCompile(`(?i)\b(?:for a party of|party of|for|party|guests|people|persons)\s+(\d{1,2})\b`)
	partySuffix    = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(?:people|persons?|guests)\b`)
	bareNumber     = regexp.MustCompile(`^\d{1,2}$`)
	emailPattern   = regexp.MustCompile(`[\w.+\-]+@[\w\-]+(?:\.[\w\-]+)+`)
	mobilePattern  = regexp.MustCompile(`(?i)\bmobile(?:\s+no\.?)?\s*[:\-]\s*(\+?\d[\d \-]{5,}\d)`)
	requestPattern = regexp.MustCompile(`(?i)\bspecial requests?\s*[:\-]\s*(.+)$`)
	namePattern    = regexp.MustCompile(`(?i)\b(?:full name is|my name is|name is)\s+([\p{L}][\p{L}'\-]*)\s+([\p{L}][\p{L}'\-]*)`)
)

const (
	minBareParty = 1
	maxBareParty = 20
)

// Extractor pulls booking slots out of free text with regular expressions.
// It implements ports.SlotExtractor.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the slots found in utterance, keyed by domain slot name.
func (x *Extractor) Extract(utterance string) map[string]string {
	text := strings.TrimSpace(utterance)
	slots := make(map[string]string)

	if m := datePattern.FindString(text); m != "" {
		slots[domain.SlotVisitDate] = m
	}
	if m := timePattern.FindString(text); m != "" {
		slots[domain.SlotVisitTime] = m
	}

	// Dates, times, contact details and free-text requests contain digit
	// runs that would read as party sizes.
	rest := text
	for _, p := range []*regexp.Regexp{requestPattern, datePattern, timePattern, emailPattern, mobilePattern, namePattern} {
		rest = p.ReplaceAllString(rest, " ")
	}
	if m := partyPhrase.FindStringSubmatch(rest); m != nil {
		slots[domain.SlotPartySize] = m[1]
	} else if m := partySuffix.FindStringSubmatch(rest); m != nil {
		slots[domain.SlotPartySize] = m[1]
	} else if bareNumber.MatchString(text) {
		if n, _ := strconv.Atoi(text); n >= minBareParty && n <= maxBareParty {
			slots[domain.SlotPartySize] = text
		}
	}

	if m := emailPattern.FindString(text); m != "" {
		slots[domain.SlotEmail] = m
	}
	if m := mobilePattern.FindStringSubmatch(text); m != nil {
		slots[domain.SlotMobile] = strings.TrimSpace(m[1])
	}
	if m := requestPattern.FindStringSubmatch(text); m != nil {
		slots[domain.SlotSpecialRequests] = strings.TrimSpace(m[1])
	}
	if m := namePattern.FindStringSubmatch(text); m != nil {
		slots[domain.SlotFirstName] = m[1]
		slots[domain.SlotSurname] = m[2]
	}
	return slots
}
