package middleware_test

import (
	"testing"

	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/aretw0/tablebot/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
)

func TestRedactor_MasksCustomerSlots(t *testing.T) {
	r := middleware.NewRedactor(middleware.DefaultPIIPatterns...)

	s := domain.NewSession("pii")
	s.SwitchIntent(domain.IntentBook)
	s.SetSlot(domain.SlotVisitDate, "2025-08-10")
	s.SetSlot(domain.SlotFirstName, "Ada")
	s.SetSlot(domain.SlotSurname, "Lovelace")
	s.SetSlot(domain.SlotEmail, "ada@example.com")

	out := r.Redact(s)

	assert.Equal(t, "2025-08-10", out.Slots[domain.SlotVisitDate])
	assert.Equal(t, middleware.Mask, out.Slots[domain.SlotFirstName])
	assert.Equal(t, middleware.Mask, out.Slots[domain.SlotSurname])
	assert.Equal(t, middleware.Mask, out.Slots[domain.SlotEmail])
	assert.Equal(t, "Ada", s.Slots[domain.SlotFirstName], "input must not be modified")
}

func TestRedactor_Nil(t *testing.T) {
	assert.Nil(t, middleware.NewRedactor().Redact(nil))
}
