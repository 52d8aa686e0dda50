package dialog_test

import (
	"testing"

	"github.com/aretw0/tablebot/pkg/dialog"
	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseReference(t *testing.T) {
	assert.Equal(t, "ABC1234", dialog.ParseReference("cancel ABC1234 please"))
	assert.Equal(t, "ZX12AB", dialog.ParseReference("ref ZX12AB"))
	assert.Empty(t, dialog.ParseReference("cancel abc1234"))
	assert.Empty(t, dialog.ParseReference("ABCDEFGHIJ"))
	assert.Empty(t, dialog.ParseReference("PLEASE CANCEL MY BOOKING"))
	assert.Equal(t, "ABC1234", dialog.ParseReference("PLEASE CANCEL ABC1234"))
}

func TestParseUpdate(t *testing.T) {
	tests := []struct {
		text string
		want domain.BookingUpdate
	}{
		{"Please change booking ABC1234 to 20:00:00", domain.BookingUpdate{VisitTime: "20:00:00"}},
		{"move ABC1234 to 2025-08-12", domain.BookingUpdate{VisitDate: "2025-08-12"}},
		{"change to 6 guests", domain.BookingUpdate{PartySize: 6}},
		{
			"change ABC1234 to 2025-08-12 at 19:30:00 for 3 people",
			domain.BookingUpdate{VisitDate: "2025-08-12", VisitTime: "19:30:00", PartySize: 3},
		},
		{"change it", domain.BookingUpdate{}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, dialog.ParseUpdate(tt.text))
		})
	}
}
