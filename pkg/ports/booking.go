package ports

import (
	"context"

	"github.com/aretw0/tablebot/pkg/domain"
)

// BookingService is the remote booking API the dialog engine drives.
// Failed calls return a *domain.RemoteError.
type BookingService interface {
	SearchAvailability(ctx context.Context, query domain.AvailabilityQuery) ([]domain.AvailabilitySlot, error)
	CreateBooking(ctx context.Context, req domain.BookingRequest) (domain.Booking, error)
	GetBooking(ctx context.Context, reference string) (domain.Booking, error)
	UpdateBooking(ctx context.Context, reference string, update domain.BookingUpdate) (domain.UpdateResult, error)
	CancelBooking(ctx context.Context, reference string, reasonID int) (domain.Cancellation, error)
}
