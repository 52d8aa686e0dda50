package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/tablebot/internal/logging"
	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/aretw0/tablebot/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed session lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes access to sessions so that turns of one conversation
// never interleave. It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a new session manager over store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Create starts a new session with a random ID and stores it.
func (m *Manager) Create(ctx context.Context) (*domain.Session, error) {
	s := domain.NewSession(uuid.NewString())
	if err := m.Save(ctx, s.ID, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	var s *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		s, err = m.store.Load(ctx, sessionID)
		return err
	})
	return s, err
}

// LoadOrStart loads a session, creating and storing an empty one if it does not exist.
func (m *Manager) LoadOrStart(ctx context.Context, sessionID string) (*domain.Session, error) {
	var s *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var created bool
		var err error
		s, created, err = m.loadOrNew(ctx, sessionID)
		if err != nil || !created {
			return err
		}
		if err := m.store.Save(ctx, sessionID, s); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	return s, err
}

func (m *Manager) loadOrNew(ctx context.Context, sessionID string) (*domain.Session, bool, error) {
	if sessionID == "" {
		return nil, false, domain.ErrInvalidSession
	}
	s, err := m.store.Load(ctx, sessionID)
	switch {
	case err == nil:
		return s, false, nil
	case errors.Is(err, domain.ErrSessionNotFound):
		return domain.NewSession(sessionID), true, nil
	default:
		return nil, false, fmt.Errorf("failed to check session existence: %w", err)
	}
}

// Turn runs fn on the session under its lock and stores the result.
// A missing session is started. The session is not stored when fn fails.
func (m *Manager) Turn(ctx context.Context, sessionID string, fn func(context.Context, *domain.Session) error) (*domain.Session, error) {
	var s *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		if s, _, err = m.loadOrNew(ctx, sessionID); err != nil {
			return err
		}
		if err := fn(ctx, s); err != nil {
			return err
		}
		if err := m.store.Save(ctx, sessionID, s); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Save stores the session.
func (m *Manager) Save(ctx context.Context, sessionID string, s *domain.Session) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, s)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// Released with a fresh context so a cancelled turn still frees the lock.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
