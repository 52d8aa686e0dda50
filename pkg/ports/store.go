package ports

import (
	"context"

	"github.com/aretw0/tablebot/pkg/domain"
)

// SessionStore defines the interface for keeping conversation sessions
// between turns. Implementations must return copies so that callers never
// share a *domain.Session across goroutines.
type SessionStore interface {
	// Save stores the session under sessionID.
	Save(ctx context.Context, sessionID string, session *domain.Session) error

	// Load retrieves the session for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
