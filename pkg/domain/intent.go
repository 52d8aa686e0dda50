package domain

// Intent is the symbolic goal recognised in a user utterance.
type Intent string

const (
	// IntentNone marks a session with no flow in progress.
	IntentNone              Intent = ""
	IntentCheckAvailability Intent = "check_availability"
	IntentBook              Intent = "book"
	IntentGetBooking        Intent = "get_booking"
	IntentModifyBooking     Intent = "modify_booking"
	IntentCancelBooking     Intent = "cancel_booking"
	IntentHelp              Intent = "help"
	IntentUnknown           Intent = "unknown"
)

// String returns the intent name, or "none" for IntentNone.
func (i Intent) String() string {
	if i == IntentNone {
		return "none"
	}
	return string(i)
}

// FillsSlots reports whether the intent collects slots across turns.
func (i Intent) FillsSlots() bool {
	return i == IntentCheckAvailability || i == IntentBook
}

// SingleShot reports whether the intent is resolved within a single turn
// without touching the active flow.
func (i Intent) SingleShot() bool {
	switch i {
	case IntentGetBooking, IntentModifyBooking, IntentCancelBooking:
		return true
	}
	return false
}
