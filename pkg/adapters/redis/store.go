package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/tablebot/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store and the locker.
const DefaultPrefix = "tablebot:session:"

// farFuture scores index entries of sessions that never expire (2100-01-01).
const farFuture = 4102444800

// Store implements ports.SessionStore on Redis so that several replicas can
// serve the same conversations. Sessions expire after the configured TTL.
type Store struct {
	client backend.UniversalClient
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the expiration for sessions. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New connects to the Redis server at rawURL (redis://[user:pass@]host:port/db).
func New(rawURL string, opts ...Option) (*Store, error) {
	o, err := backend.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewFromClient(backend.NewClient(o), opts...), nil
}

// NewFromClient creates a store on an existing client.
func NewFromClient(client backend.UniversalClient, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() backend.UniversalClient {
	return s.client
}

// Prefix returns the key prefix in use.
func (s *Store) Prefix() string {
	return s.prefix
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save writes the session as JSON and records it in the session index.
func (s *Store) Save(ctx context.Context, sessionID string, session *domain.Session) error {
	if session == nil {
		return domain.ErrInvalidSession
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// Index score is the expiry time so List can prune lazily.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = farFuture
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(sessionID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: sessionID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the session from Redis.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	val, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(val, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if session.Slots == nil {
		session.Slots = make(map[string]string)
	}
	return &session, nil
}

// Delete removes the session and its index entry.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(sessionID))
	pipe.ZRem(ctx, s.indexKey(), sessionID)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns the IDs of sessions that have not expired.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	sessions, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
