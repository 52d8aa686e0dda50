package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/tablebot/pkg/domain"
)

func (e *Engine) checkAvailability(ctx context.Context, s *domain.Session) result {
	date, ok := s.Slot(domain.SlotVisitDate)
	if !ok {
		return prompt(MsgAskDate)
	}
	raw, ok := s.Slot(domain.SlotPartySize)
	if !ok {
		return prompt(MsgAskPartySize)
	}
	size, ok := parsePartySize(raw)
	if !ok {
		s.DeleteSlot(domain.SlotPartySize)
		return prompt(MsgAskPartySize)
	}

	var slots []domain.AvailabilitySlot
	err := e.call(ctx, s, domain.OpSearchAvailability, func(ctx context.Context) error {
		var err error
		slots, err = e.service.SearchAvailability(ctx, domain.AvailabilityQuery{
			VisitDate: date,
			PartySize: size,
			Channel:   e.channel,
		})
		return err
	})
	if err != nil {
		return failure(PrefixAvailabilityError, err)
	}

	var times []string
	for _, slot := range slots {
		if slot.Available {
			times = append(times, slot.Time)
		}
	}
	if len(times) == 0 {
		return completed(fmt.Sprintf("No slots available on %s for %d people.", date, size))
	}
	return completed(fmt.Sprintf("Available times on %s: %s", date, strings.Join(times, ", ")))
}

var (
	availabilityRequired = []string{domain.SlotVisitDate, domain.SlotPartySize}
	bookingRequired      = []string{domain.SlotVisitDate, domain.SlotVisitTime, domain.SlotPartySize}
)

// RequiredSlots returns the slots a flow prompts for, in prompt order.
func RequiredSlots(i domain.Intent) []string {
	var src []string
	switch i {
	case domain.IntentCheckAvailability:
		src = availabilityRequired
	case domain.IntentBook:
		src = bookingRequired
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func (e *Engine) book(ctx context.Context, s *domain.Session) result {
	for _, slot := range bookingRequired {
		if _, ok := s.Slot(slot); !ok {
			return prompt(askFor(slot))
		}
	}
	size, ok := parsePartySize(s.Slots[domain.SlotPartySize])
	if !ok {
		s.DeleteSlot(domain.SlotPartySize)
		return prompt(askFor(domain.SlotPartySize))
	}

	req := domain.BookingRequest{
		VisitDate:       s.Slots[domain.SlotVisitDate],
		VisitTime:       s.Slots[domain.SlotVisitTime],
		PartySize:       size,
		Channel:         e.channel,
		SpecialRequests: s.Slots[domain.SlotSpecialRequests],
		Customer: domain.Customer{
			FirstName: s.Slots[domain.SlotFirstName],
			Surname:   s.Slots[domain.SlotSurname],
			Email:     s.Slots[domain.SlotEmail],
			Mobile:    s.Slots[domain.SlotMobile],
		},
	}

	var booking domain.Booking
	err := e.call(ctx, s, domain.OpCreateBooking, func(ctx context.Context) error {
		var err error
		booking, err = e.service.CreateBooking(ctx, req)
		return err
	})
	if err != nil {
		return failure(PrefixBookingError, err)
	}

	date, at := booking.VisitDate, booking.VisitTime
	if date == "" {
		date = req.VisitDate
	}
	if at == "" {
		at = req.VisitTime
	}
	s.LastBookingReference = booking.Reference
	s.Reset()
	return completed(fmt.Sprintf("Booking confirmed: %s on %s at %s", booking.Reference, date, at))
}

func resolveReference(s *domain.Session, utterance string) string {
	if ref := ParseReference(utterance); ref != "" {
		return ref
	}
	return s.LastBookingReference
}

func (e *Engine) getBooking(ctx context.Context, s *domain.Session, utterance string) result {
	ref := resolveReference(s, utterance)
	if ref == "" {
		return prompt(MsgAskReference)
	}

	var booking domain.Booking
	err := e.call(ctx, s, domain.OpGetBooking, func(ctx context.Context) error {
		var err error
		booking, err = e.service.GetBooking(ctx, ref)
		return err
	})
	if err != nil {
		return failure(PrefixLookupError, err)
	}
	if booking.Reference == "" {
		booking.Reference = ref
	}
	return completed(fmt.Sprintf("Booking %s: %s at %s for %d people. Status: %s",
		booking.Reference, booking.VisitDate, booking.VisitTime, booking.PartySize, booking.Status))
}

func (e *Engine) modifyBooking(ctx context.Context, s *domain.Session, utterance string) result {
	ref := resolveReference(s, utterance)
	if ref == "" {
		return prompt(MsgAskModifyReference)
	}
	update := ParseUpdate(utterance)
	if update.IsEmpty() {
		return prompt(MsgAskChanges)
	}

	var res domain.UpdateResult
	err := e.call(ctx, s, domain.OpUpdateBooking, func(ctx context.Context) error {
		var err error
		res, err = e.service.UpdateBooking(ctx, ref, update)
		return err
	})
	if err != nil {
		return failure(PrefixUpdateError, err)
	}
	msg := res.Message
	if msg == "" {
		msg = "updated"
	}
	return completed("Update success: " + msg)
}

func (e *Engine) cancelBooking(ctx context.Context, s *domain.Session, utterance string) result {
	ref := resolveReference(s, utterance)
	if ref == "" {
		return prompt(MsgAskCancelReference)
	}

	var c domain.Cancellation
	err := e.call(ctx, s, domain.OpCancelBooking, func(ctx context.Context) error {
		var err error
		c, err = e.service.CancelBooking(ctx, ref, e.cancelReason)
		return err
	})
	if err != nil {
		return failure(PrefixCancelError, err)
	}
	if c.Reference == "" {
		c.Reference = ref
	}
	return completed(fmt.Sprintf("Cancelled booking %s. Reason: %s", c.Reference, c.Reason))
}

// failure renders a booking service error as a reply.
func failure(prefix string, err error) result {
	return result{reply: prefix + ": " + describe(err), outcome: domain.OutcomeFailed}
}

func describe(err error) string {
	var remote *domain.RemoteError
	switch {
	case errors.As(err, &remote):
		if remote.StatusCode == 0 && errors.Is(remote.Err, context.DeadlineExceeded) {
			return "request timed out"
		}
		return remote.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	default:
		return err.Error()
	}
}
