package testutils

import (
	"context"
	"sync"

	"github.com/aretw0/tablebot/pkg/domain"
)

// Call records one invocation of the stub service.
type Call struct {
	Op        string
	Reference string
	Query     domain.AvailabilityQuery
	Request   domain.BookingRequest
	Update    domain.BookingUpdate
	ReasonID  int
}

// StubBookingService is a scriptable ports.BookingService for tests.
// Each Func field overrides the canned response of its operation.
type StubBookingService struct {
	SearchFunc func(ctx context.Context, q domain.AvailabilityQuery) ([]domain.AvailabilitySlot, error)
	CreateFunc func(ctx context.Context, req domain.BookingRequest) (domain.Booking, error)
	GetFunc    func(ctx context.Context, ref string) (domain.Booking, error)
	UpdateFunc func(ctx context.Context, ref string, u domain.BookingUpdate) (domain.UpdateResult, error)
	CancelFunc func(ctx context.Context, ref string, reasonID int) (domain.Cancellation, error)

	mu    sync.Mutex
	calls []Call
}

// NewStubBookingService returns a stub answering with canned successes.
func NewStubBookingService() *StubBookingService {
	return &StubBookingService{}
}

// FailAll makes every operation return err.
func (s *StubBookingService) FailAll(err error) {
	s.SearchFunc = func(context.Context, domain.AvailabilityQuery) ([]domain.AvailabilitySlot, error) { return nil, err }
	s.CreateFunc = func(context.Context, domain.BookingRequest) (domain.Booking, error) { return domain.Booking{}, err }
	s.GetFunc = func(context.Context, string) (domain.Booking, error) { return domain.Booking{}, err }
	s.UpdateFunc = func(context.Context, string, domain.BookingUpdate) (domain.UpdateResult, error) {
		return domain.UpdateResult{}, err
	}
	s.CancelFunc = func(context.Context, string, int) (domain.Cancellation, error) { return domain.Cancellation{}, err }
}

// Calls returns the recorded invocations.
func (s *StubBookingService) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *StubBookingService) record(c Call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}

func (s *StubBookingService) SearchAvailability(ctx context.Context, q domain.AvailabilityQuery) ([]domain.AvailabilitySlot, error) {
	s.record(Call{Op: domain.OpSearchAvailability, Query: q})
	if s.SearchFunc != nil {
		return s.SearchFunc(ctx, q)
	}
	return []domain.AvailabilitySlot{
		{Time: "19:00:00", Available: true, MaxPartySize: 8},
		{Time: "20:00:00", Available: false, MaxPartySize: 8, CurrentBookings: 4},
	}, nil
}

func (s *StubBookingService) CreateBooking(ctx context.Context, req domain.BookingRequest) (domain.Booking, error) {
	s.record(Call{Op: domain.OpCreateBooking, Request: req})
	if s.CreateFunc != nil {
		return s.CreateFunc(ctx, req)
	}
	return domain.Booking{
		Reference: "ABC1234",
		VisitDate: req.VisitDate,
		VisitTime: req.VisitTime,
		PartySize: req.PartySize,
		Status:    "confirmed",
	}, nil
}

func (s *StubBookingService) GetBooking(ctx context.Context, ref string) (domain.Booking, error) {
	s.record(Call{Op: domain.OpGetBooking, Reference: ref})
	if s.GetFunc != nil {
		return s.GetFunc(ctx, ref)
	}
	return domain.Booking{
		Reference: ref,
		VisitDate: "2025-08-10",
		VisitTime: "19:00:00",
		PartySize: 2,
		Status:    "confirmed",
	}, nil
}

func (s *StubBookingService) UpdateBooking(ctx context.Context, ref string, u domain.BookingUpdate) (domain.UpdateResult, error) {
	s.record(Call{Op: domain.OpUpdateBooking, Reference: ref, Update: u})
	if s.UpdateFunc != nil {
		return s.UpdateFunc(ctx, ref, u)
	}
	return domain.UpdateResult{Reference: ref, Status: "updated", Message: "Booking " + ref + " has been successfully updated"}, nil
}

func (s *StubBookingService) CancelBooking(ctx context.Context, ref string, reasonID int) (domain.Cancellation, error) {
	s.record(Call{Op: domain.OpCancelBooking, Reference: ref, ReasonID: reasonID})
	if s.CancelFunc != nil {
		return s.CancelFunc(ctx, ref, reasonID)
	}
	return domain.Cancellation{Reference: ref, Reason: "Customer Request", Status: "cancelled"}, nil
}
