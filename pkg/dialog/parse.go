package dialog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/tablebot/pkg/domain"
)

var (
	referencePattern = regexp.MustCompile(`\b[A-Z0-9]{6,8}\b`)
	updateDate       = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	updateTime       = regexp.MustCompile(`\b\d{2}:\d{2}:\d{2}\b`)
	updateParty      = regexp.MustCompile(`(?i)\b(\d{1,3})\b(?:\s*(?:people|persons?|guests))?`)
)

// ParseReference returns the first booking reference in text, if any.
// References are matched case-sensitively and must contain a digit, so
// shouted words such as "PLEASE" or "BOOKING" are not taken for one.
func ParseReference(text string) string {
	for _, m := range referencePattern.FindAllString(text, -1) {
		if strings.ContainsAny(m, "0123456789") {
			return m
		}
	}
	return ""
}

// ParseUpdate returns the booking fields mentioned in text. The party size is
// searched only after dates, times and the reference have been removed.
func ParseUpdate(text string) domain.BookingUpdate {
	var u domain.BookingUpdate
	u.VisitDate = updateDate.FindString(text)
	u.VisitTime = updateTime.FindString(text)

	rest := updateDate.ReplaceAllString(text, " ")
	rest = updateTime.ReplaceAllString(rest, " ")
	if ref := ParseReference(rest); ref != "" {
		rest = strings.ReplaceAll(rest, ref, " ")
	}
	if m := updateParty.FindStringSubmatch(rest); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			u.PartySize = n
		}
	}
	return u
}

// parsePartySize validates a stored party_size slot.
func parsePartySize(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
