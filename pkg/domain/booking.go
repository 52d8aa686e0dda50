package domain

import "strconv"

// DefaultChannel is the channel code sent with availability searches and bookings.
const DefaultChannel = "ONLINE"

// DefaultCancellationReason is the reason code sent when cancelling a booking.
const DefaultCancellationReason = 1

// Remote operation names, used in errors, logs and metrics.
const (
	OpSearchAvailability = "search_availability"
	OpCreateBooking      = "create_booking"
	OpGetBooking         = "get_booking"
	OpUpdateBooking      = "update_booking"
	OpCancelBooking      = "cancel_booking"
)

// AvailabilityQuery describes an availability search.
type AvailabilityQuery struct {
	VisitDate string
	PartySize int
	Channel   string
}

// AvailabilitySlot is one bookable time returned by an availability search.
type AvailabilitySlot struct {
	Time            string `json:"time"`
	Available       bool   `json:"available"`
	MaxPartySize    int    `json:"max_party_size"`
	CurrentBookings int    `json:"current_bookings"`
}

// Customer holds the optional contact details attached to a booking.
type Customer struct {
	FirstName string `json:"first_name,omitempty"`
	Surname   string `json:"surname,omitempty"`
	Email     string `json:"email,omitempty"`
	Mobile    string `json:"mobile,omitempty"`
}

// IsZero reports whether no customer field is set.
func (c Customer) IsZero() bool {
	return c == Customer{}
}

// BookingRequest is the input of a booking creation.
type BookingRequest struct {
	VisitDate       string
	VisitTime       string
	PartySize       int
	Channel         string
	SpecialRequests string
	Customer        Customer
}

// Booking is a booking as reported by the booking service.
type Booking struct {
	Reference       string   `json:"booking_reference"`
	VisitDate       string   `json:"visit_date"`
	VisitTime       string   `json:"visit_time"`
	PartySize       int      `json:"party_size"`
	Status          string   `json:"status"`
	SpecialRequests string   `json:"special_requests,omitempty"`
	Customer        Customer `json:"customer,omitempty"`
}

// Wire names of the fields a booking update may change.
const (
	FieldVisitDate = "VisitDate"
	FieldVisitTime = "VisitTime"
	FieldPartySize = "PartySize"
)

// BookingUpdate lists the fields to change on an existing booking.
// Zero values are left untouched.
type BookingUpdate struct {
	VisitDate string
	VisitTime string
	PartySize int
}

// IsEmpty reports whether the update changes nothing.
func (u BookingUpdate) IsEmpty() bool {
	return u == BookingUpdate{}
}

// Fields returns the update keyed by wire field name.
func (u BookingUpdate) Fields() map[string]string {
	fields := make(map[string]string, 3)
	if u.VisitDate != "" {
		fields[FieldVisitDate] = u.VisitDate
	}
	if u.VisitTime != "" {
		fields[FieldVisitTime] = u.VisitTime
	}
	if u.PartySize > 0 {
		fields[FieldPartySize] = strconv.Itoa(u.PartySize)
	}
	return fields
}

// UpdateResult is the outcome of a booking update.
type UpdateResult struct {
	Reference string `json:"booking_reference"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// Cancellation is the outcome of a booking cancellation.
type Cancellation struct {
	Reference string `json:"booking_reference"`
	Reason    string `json:"cancellation_reason"`
	Status    string `json:"status"`
}
