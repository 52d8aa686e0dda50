package dialog

import "github.com/aretw0/tablebot/pkg/domain"

// Fixed replies.
const (
	MsgNotUnderstood = "Sorry, I didn't understand. You can ask to check availability, book, view, modify or cancel a booking."
	MsgHelp          = "I can check availability, book a table, look up a booking, change a booking or cancel a booking. " +
		"Try \"check availability\", \"book a table\" or \"what time is my booking ABC1234\"."
	MsgCannotHandle = "Sorry, I couldn't handle that request."

	MsgAskDate      = "Sure, what date would you like (YYYY-MM-DD)?"
	MsgAskPartySize = "How many people is the booking for?"

	MsgAskReference       = "Please provide your booking reference (e.g. ABC1234)."
	MsgAskModifyReference = "Please provide your booking reference to modify the booking."
	MsgAskCancelReference = "Please provide your booking reference to cancel."
	MsgAskChanges         = "What would you like to change? (date YYYY-MM-DD, time HH:MM:SS or party size)"
)

// Reply prefixes used when a booking service call fails.
const (
	PrefixAvailabilityError = "Availability error"
	PrefixBookingError      = "Booking error"
	PrefixLookupError       = "Error fetching booking"
	PrefixUpdateError       = "Update error"
	PrefixCancelError       = "Cancel error"
)

var slotLabels = map[string]string{
	domain.SlotVisitDate: "date (YYYY-MM-DD)",
	domain.SlotVisitTime: "time (HH:MM:SS)",
	domain.SlotPartySize: "party size (number)",
}

func askFor(slot string) string {
	return "Please provide " + slotLabels[slot] + "."
}
