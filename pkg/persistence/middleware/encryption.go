package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/aretw0/tablebot/pkg/ports"
)

// EnvelopeSlot is the slot that carries the sealed session inside an envelope.
const EnvelopeSlot = "__encrypted__"

// ErrKeySize is returned for keys that are not 32 bytes long.
var ErrKeySize = errors.New("encryption key must be 32 bytes (AES-256)")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

// Validate checks the key sizes.
func (c EncryptionConfig) Validate() error {
	if len(c.ActiveKey) != 32 {
		return ErrKeySize
	}
	for i, k := range c.FallbackKeys {
		if len(k) != 32 {
			return fmt.Errorf("fallback key %d: %w", i, ErrKeySize)
		}
	}
	return nil
}

// DecodeKeys parses base64 keys into an EncryptionConfig. The first key is
// the active one.
func DecodeKeys(active string, fallbacks ...string) (EncryptionConfig, error) {
	var cfg EncryptionConfig
	key, err := base64.StdEncoding.DecodeString(active)
	if err != nil {
		return cfg, fmt.Errorf("decode active key: %w", err)
	}
	cfg.ActiveKey = key
	for i, f := range fallbacks {
		k, err := base64.StdEncoding.DecodeString(f)
		if err != nil {
			return cfg, fmt.Errorf("decode fallback key %d: %w", i, err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, k)
	}
	return cfg, cfg.Validate()
}

type encryptionMiddleware struct {
	next   ports.SessionStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals sessions with
// AES-GCM before they reach the wrapped store. Only the session ID and
// timestamps stay readable in the envelope.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, sessionID string, session *domain.Session) error {
	if session == nil {
		return domain.ErrInvalidSession
	}
	plainText, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt session: %w", err)
	}

	envelope := &domain.Session{
		ID:        session.ID,
		Turns:     session.Turns,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		Slots: map[string]string{
			EnvelopeSlot: base64.StdEncoding.EncodeToString(ciphertext),
		},
	}
	return m.next.Save(ctx, sessionID, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	envelope, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	encoded, ok := envelope.Slots[EnvelopeSlot]
	if !ok {
		// Fail secure: a plain session under an encrypting store is not trusted.
		return nil, errors.New("session is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(plainText, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted session: %w", err)
	}
	if session.Slots == nil {
		session.Slots = make(map[string]string)
	}
	return &session, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
