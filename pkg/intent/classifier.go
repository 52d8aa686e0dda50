package intent

import (
	"regexp"
	"strings"

	"github.com/aretw0/tablebot/pkg/domain"
)

// Predicate reports whether a lower-cased utterance matches a rule.
type Predicate func(text string) bool

// Rule pairs a predicate with the intent it signals.
type Rule struct {
	Name   string
	Intent domain.Intent
	Match  Predicate
}

var rules = []Rule{
	{"availability", domain.IntentCheckAvailability, containsAny("availability", "available")},
	{"book", domain.IntentBook, matches(`\b(book|reserve|i'd like to book|i want to book)\b`)},
	{"lookup", domain.IntentGetBooking, matches(`\bwhat time is my\b`)},
	{"modify", domain.IntentModifyBooking, matches(`\b(change|modify|move)\b`)},
	{"cancel", domain.IntentCancelBooking, matches(`\bcancel\b`)},
	{"help", domain.IntentHelp, matches(`\b(help|what can you do)\b`)},
}

// Classify maps an utterance to an intent. Rules are evaluated in order on
// the lower-cased text and the first match wins; no match yields
// domain.IntentUnknown.
func Classify(utterance string) domain.Intent {
	text := strings.ToLower(utterance)
	for _, r := range rules {
		if r.Match(text) {
			return r.Intent
		}
	}
	return domain.IntentUnknown
}

// Rules returns the ordered rule list used by Classify.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

func containsAny(subs ...string) Predicate {
	return func(text string) bool {
		for _, s := range subs {
			if strings.Contains(text, s) {
				return true
			}
		}
		return false
	}
}

func matches(pattern string) Predicate {
	re := regexp.MustCompile(pattern)
	return re.MatchString
}
