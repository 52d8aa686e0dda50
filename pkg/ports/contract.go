package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession(sessionID)
		session.SwitchIntent(domain.IntentBook)
		session.SetSlot(domain.SlotVisitDate, "2025-08-10")
		session.SetSlot(domain.SlotPartySize, "4")
		session.LastBookingReference = "ABC1234"
		session.Turns = 3

		require.NoError(t, store.Save(ctx, sessionID, session), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.IntentBook, loaded.ActiveIntent)
		assert.Equal(t, session.Slots, loaded.Slots)
		assert.Equal(t, "ABC1234", loaded.LastBookingReference)
		assert.Equal(t, 3, loaded.Turns)
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		session := domain.NewSession(sessionID)
		session.SetSlot(domain.SlotVisitDate, "2025-08-10")
		require.NoError(t, store.Save(ctx, sessionID, session))

		session.Slots[domain.SlotVisitDate] = "2099-01-01"
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Slots[domain.SlotPartySize] = "9"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{domain.SlotVisitDate: "2025-08-10"}, again.Slots)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewSession(sessionID)))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSession(id1))
		_ = store.Save(ctx, id2, domain.NewSession(id2))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
