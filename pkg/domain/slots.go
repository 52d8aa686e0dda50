package domain

// Slot names collected by the slot-filling flows.
const (
	SlotVisitDate       = "visit_date"
	SlotVisitTime       = "visit_time"
	SlotPartySize       = "party_size"
	SlotFirstName       = "first_name"
	SlotSurname         = "surname"
	SlotEmail           = "email"
	SlotMobile          = "mobile"
	SlotSpecialRequests = "special_requests"
)

var slotScopes = map[Intent][]string{
	IntentCheckAvailability: {SlotVisitDate, SlotPartySize},
	IntentBook: {
		SlotVisitDate, SlotVisitTime, SlotPartySize,
		SlotFirstName, SlotSurname, SlotEmail, SlotMobile, SlotSpecialRequests,
	},
}

// SlotScope returns the slots an intent may hold. Intents that do not fill
// slots have an empty scope.
func SlotScope(i Intent) []string {
	scope := slotScopes[i]
	out := make([]string, len(scope))
	copy(out, scope)
	return out
}

// InScope reports whether slot belongs to the scope of intent i.
func InScope(i Intent, slot string) bool {
	for _, name := range slotScopes[i] {
		if name == slot {
			return true
		}
	}
	return false
}
