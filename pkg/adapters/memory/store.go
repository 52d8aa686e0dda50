package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/tablebot/pkg/domain"
)

// Store implements ports.SessionStore in process memory.
// Safe for concurrent use. Sessions are lost when the process exits.
type Store struct {
	data map[string]*domain.Session
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Session),
	}
}

// Save keeps a copy of the session.
func (s *Store) Save(ctx context.Context, sessionID string, session *domain.Session) error {
	if session == nil {
		return domain.ErrInvalidSession
	}
	snap := session.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = snap
	return nil
}

// Load returns a copy of the stored session so callers never alias store state.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns the stored session IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	return sessions, nil
}
