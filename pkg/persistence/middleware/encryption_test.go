package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/aretw0/tablebot/pkg/adapters/memory"
	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/aretw0/tablebot/pkg/persistence/middleware"
	"github.com/aretw0/tablebot/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.SessionStore, cfg middleware.EncryptionConfig) ports.SessionStore {
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunSessionStoreContract(t, store)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})

	ctx := context.Background()
	s := domain.NewSession("s1")
	s.SwitchIntent(domain.IntentBook)
	s.SetSlot(domain.SlotFirstName, "Ada")
	s.SetSlot(domain.SlotMobile, "07700900123")

	require.NoError(t, secure.Save(ctx, "s1", s))

	stored, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.IntentNone, stored.ActiveIntent)
	assert.NotContains(t, stored.Slots, domain.SlotFirstName)
	assert.Contains(t, stored.Slots, middleware.EnvelopeSlot)
	assert.Equal(t, "s1", stored.ID)

	loaded, err := secure.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.IntentBook, loaded.ActiveIntent)
	assert.Equal(t, "Ada", loaded.Slots[domain.SlotFirstName])
	assert.Equal(t, "07700900123", loaded.Slots[domain.SlotMobile])
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	oldStore := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	s := domain.NewSession("rot")
	s.SwitchIntent(domain.IntentCheckAvailability)
	s.SetSlot(domain.SlotVisitDate, "2025-08-10")
	require.NoError(t, oldStore.Save(ctx, "rot", s))

	newStore := encrypted(t, underlying, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	loaded, err := newStore.Load(ctx, "rot")
	require.NoError(t, err, "fallback key should open old envelopes")
	assert.Equal(t, "2025-08-10", loaded.Slots[domain.SlotVisitDate])

	loaded.SetSlot(domain.SlotPartySize, "2")
	require.NoError(t, newStore.Save(ctx, "rot", loaded))

	_, err = oldStore.Load(ctx, "rot")
	assert.Error(t, err, "old key alone must not open new envelopes")
}

func TestEncryptionMiddleware_RejectsPlainSession(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "plain", domain.NewSession("plain")))

	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := secure.Load(ctx, "plain")
	assert.Error(t, err)
}

func TestNewEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorIs(t, err, middleware.ErrKeySize)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    make([]byte, 32),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.ErrorIs(t, err, middleware.ErrKeySize)
}

func TestDecodeKeys(t *testing.T) {
	active := base64.StdEncoding.EncodeToString(generateKey(t))
	old := base64.StdEncoding.EncodeToString(generateKey(t))

	cfg, err := middleware.DecodeKeys(active, old)
	require.NoError(t, err)
	assert.Len(t, cfg.ActiveKey, 32)
	assert.Len(t, cfg.FallbackKeys, 1)

	_, err = middleware.DecodeKeys("not base64!")
	assert.Error(t, err)

	_, err = middleware.DecodeKeys(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, middleware.ErrKeySize)
}
