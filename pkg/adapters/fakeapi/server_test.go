package fakeapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/tablebot/pkg/adapters/bookingapi"
	"github.com/aretw0/tablebot/pkg/adapters/fakeapi"
	"github.com/aretw0/tablebot/pkg/dialog"
	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/aretw0/tablebot/pkg/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, opts ...fakeapi.Option) *bookingapi.Client {
	t.Helper()
	opts = append([]fakeapi.Option{fakeapi.WithToken("secret")}, opts...)
	srv := httptest.NewServer(fakeapi.New(opts...).Handler())
	t.Cleanup(srv.Close)
	return bookingapi.New(srv.URL, "secret", bookingapi.WithRetry(0, time.Millisecond))
}

func TestFakeAPI_BookingLifecycle(t *testing.T) {
	client := setup(t)
	ctx := context.Background()

	slots, err := client.SearchAvailability(ctx, domain.AvailabilityQuery{VisitDate: "2025-08-10", PartySize: 2})
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.True(t, slots[0].Available)

	booking, err := client.CreateBooking(ctx, domain.BookingRequest{
		VisitDate: "2025-08-10",
		VisitTime: "19:00:00",
		PartySize: 2,
		Customer:  domain.Customer{FirstName: "Alice", Surname: "Smith"},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^[A-Z0-9]{7}$`, booking.Reference)
	assert.Equal(t, booking.Reference, dialog.ParseReference("cancel "+booking.Reference))

	got, err := client.GetBooking(ctx, booking.Reference)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Customer.FirstName)
	assert.Equal(t, "confirmed", got.Status)

	res, err := client.UpdateBooking(ctx, booking.Reference, domain.BookingUpdate{VisitTime: "20:00:00"})
	require.NoError(t, err)
	assert.Equal(t, "updated", res.Status)

	got, err = client.GetBooking(ctx, booking.Reference)
	require.NoError(t, err)
	assert.Equal(t, "20:00:00", got.VisitTime)

	c, err := client.CancelBooking(ctx, booking.Reference, 1)
	require.NoError(t, err)
	assert.Equal(t, "Customer Request", c.Reason)
	assert.Equal(t, "cancelled", c.Status)
}

func TestFakeAPI_SlotCapacity(t *testing.T) {
	client := setup(t, fakeapi.WithSlotCapacity(1), fakeapi.WithOpeningTimes("19:00:00"))
	ctx := context.Background()
	req := domain.BookingRequest{VisitDate: "2025-08-10", VisitTime: "19:00:00", PartySize: 2}

	_, err := client.CreateBooking(ctx, req)
	require.NoError(t, err)

	slots, err := client.SearchAvailability(ctx, domain.AvailabilityQuery{VisitDate: "2025-08-10", PartySize: 2})
	require.NoError(t, err)
	assert.Equal(t, []domain.AvailabilitySlot{{Time: "19:00:00", Available: false, MaxPartySize: 8, CurrentBookings: 1}}, slots)

	_, err = client.CreateBooking(ctx, req)
	var remote *domain.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusConflict, remote.StatusCode)
}

func TestFakeAPI_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown booking", func(t *testing.T) {
		_, err := setup(t).GetBooking(ctx, "NOPE123")
		var remote *domain.RemoteError
		require.ErrorAs(t, err, &remote)
		assert.Equal(t, "404 Not Found: Booking not found", remote.Error())
	})

	t.Run("bad token", func(t *testing.T) {
		srv := httptest.NewServer(fakeapi.New(fakeapi.WithToken("secret")).Handler())
		defer srv.Close()
		_, err := bookingapi.New(srv.URL, "wrong").GetBooking(ctx, "ABC1234")
		var remote *domain.RemoteError
		require.ErrorAs(t, err, &remote)
		assert.Equal(t, http.StatusUnauthorized, remote.StatusCode)
	})

	t.Run("unknown restaurant", func(t *testing.T) {
		srv := httptest.NewServer(fakeapi.New().Handler())
		defer srv.Close()
		_, err := bookingapi.New(srv.URL, "", bookingapi.WithRestaurant("Elsewhere")).GetBooking(ctx, "ABC1234")
		var remote *domain.RemoteError
		require.ErrorAs(t, err, &remote)
		assert.Equal(t, http.StatusNotFound, remote.StatusCode)
	})

	t.Run("party too large", func(t *testing.T) {
		_, err := setup(t).SearchAvailability(ctx, domain.AvailabilityQuery{VisitDate: "2025-08-10", PartySize: 30})
		var remote *domain.RemoteError
		require.ErrorAs(t, err, &remote)
		assert.Equal(t, http.StatusUnprocessableEntity, remote.StatusCode)
	})
}

// TestConversation_EndToEnd drives the full assistant against the fake API.
func TestConversation_EndToEnd(t *testing.T) {
	client := setup(t)
	p := dialog.NewPipeline(dialog.NewEngine(client), extract.New())
	s := domain.NewSession("e2e")
	ctx := context.Background()

	assert.Equal(t, dialog.MsgAskDate, p.Turn(ctx, s, "Is there availability?"))
	assert.Equal(t, dialog.MsgAskPartySize, p.Turn(ctx, s, "2025-08-10"))
	assert.Contains(t, p.Turn(ctx, s, "4"), "19:00:00")

	reply := p.Turn(ctx, s, "Great, book it at 19:00:00. My name is Alice Smith")
	require.True(t, strings.HasPrefix(reply, "Booking confirmed: "), reply)
	ref := regexp.MustCompile(`[A-Z0-9]{7}`).FindString(strings.TrimPrefix(reply, "Booking confirmed: "))
	assert.Equal(t, ref, s.LastBookingReference)

	assert.Equal(t,
		"Booking "+ref+": 2025-08-10 at 19:00:00 for 4 people. Status: confirmed",
		p.Turn(ctx, s, "what time is my booking?"))
	assert.Equal(t,
		"Update success: Booking "+ref+" has been successfully updated",
		p.Turn(ctx, s, "please move it to 20:00:00"))
	assert.Equal(t,
		"Cancelled booking "+ref+". Reason: Customer Request",
		p.Turn(ctx, s, "cancel my booking"))
}
