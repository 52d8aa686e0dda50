package bookingapi

import (
	"fmt"

	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Response records of the booking API. Numeric and boolean fields are decoded
// leniently since the API is not consistent about quoting them.

type availabilityResponse struct {
	Restaurant     string       `json:"restaurant" mapstructure:"restaurant"`
	VisitDate      string       `json:"visit_date" mapstructure:"visit_date"`
	PartySize      int          `json:"party_size" mapstructure:"party_size"`
	AvailableSlots []slotRecord `json:"available_slots" mapstructure:"available_slots"`
}

type slotRecord struct {
	Time            string `json:"time" mapstructure:"time"`
	Available       bool   `json:"available" mapstructure:"available"`
	MaxPartySize    int    `json:"max_party_size" mapstructure:"max_party_size"`
	CurrentBookings int    `json:"current_bookings" mapstructure:"current_bookings"`
}

func (s slotRecord) toDomain() domain.AvailabilitySlot {
	return domain.AvailabilitySlot{
		Time:            s.Time,
		Available:       s.Available,
		MaxPartySize:    s.MaxPartySize,
		CurrentBookings: s.CurrentBookings,
	}
}

type customerRecord struct {
	FirstName string `json:"first_name" mapstructure:"first_name"`
	Surname   string `json:"surname" mapstructure:"surname"`
	Email     string `json:"email" mapstructure:"email"`
	Mobile    string `json:"mobile" mapstructure:"mobile"`
}

type bookingRecord struct {
	BookingReference string          `json:"booking_reference" mapstructure:"booking_reference"`
	VisitDate        string          `json:"visit_date" mapstructure:"visit_date"`
	VisitTime        string          `json:"visit_time" mapstructure:"visit_time"`
	PartySize        int             `json:"party_size" mapstructure:"party_size"`
	Status           string          `json:"status" mapstructure:"status"`
	SpecialRequests  string          `json:"special_requests" mapstructure:"special_requests"`
	Customer         *customerRecord `json:"customer" mapstructure:"customer"`
}

func (b bookingRecord) toDomain() domain.Booking {
	out := domain.Booking{
		Reference:       b.BookingReference,
		VisitDate:       b.VisitDate,
		VisitTime:       b.VisitTime,
		PartySize:       b.PartySize,
		Status:          b.Status,
		SpecialRequests: b.SpecialRequests,
	}
	if b.Customer != nil {
		out.Customer = domain.Customer{
			FirstName: b.Customer.FirstName,
			Surname:   b.Customer.Surname,
			Email:     b.Customer.Email,
			Mobile:    b.Customer.Mobile,
		}
	}
	return out
}

type updateRecord struct {
	BookingReference string `json:"booking_reference" mapstructure:"booking_reference"`
	Status           string `json:"status" mapstructure:"status"`
	Message          string `json:"message" mapstructure:"message"`
}

type cancelRecord struct {
	BookingReference     string `json:"booking_reference" mapstructure:"booking_reference"`
	CancellationReasonID int    `json:"cancellation_reason_id" mapstructure:"cancellation_reason_id"`
	CancellationReason   string `json:"cancellation_reason" mapstructure:"cancellation_reason"`
	Status               string `json:"status" mapstructure:"status"`
}

// decode maps a generic JSON object onto out.
func decode(op string, body map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(body); err != nil {
		return &domain.RemoteError{Op: op, Detail: "malformed response", Err: err}
	}
	return nil
}
