package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/tablebot/pkg/adapters/memory"
	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/aretw0/tablebot/pkg/ports"
	"github.com/aretw0/tablebot/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore adds latency to a memory store to provoke races if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) Save(ctx context.Context, id string, sess *domain.Session) error {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Save(ctx, id, sess)
}

func (s SlowStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Load(ctx, id)
}

func TestManager_TurnsAreSerialized(t *testing.T) {
	manager := session.NewManager(SlowStore{memory.NewStore()})
	ctx := context.Background()
	id := "race-test"

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Turn(ctx, id, func(_ context.Context, s *domain.Session) error {
				s.Turns++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 20, s.Turns, "read-modify-write must not lose updates")
}

func TestManager_TurnFailureIsNotSaved(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := manager.Turn(ctx, "s", func(_ context.Context, s *domain.Session) error {
		s.Turns = 99
		return boom
	})

	assert.ErrorIs(t, err, boom)
	_, err = manager.Load(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_LoadOrStart(t *testing.T) {
	manager := session.NewManager(SlowStore{memory.NewStore()})
	ctx := context.Background()
	id := "atomic-init"

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := manager.LoadOrStart(ctx, id)
			assert.NoError(t, err)
			assert.NotNil(t, s)
		}()
	}
	wg.Wait()

	s, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, s.ID)
	assert.Equal(t, domain.IntentNone, s.ActiveIntent)

	_, err = manager.LoadOrStart(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
}

func TestManager_CreateAndDelete(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	s, err := manager.Create(ctx)
	require.NoError(t, err)
	assert.Len(t, s.ID, 36)

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{s.ID}, ids)

	require.NoError(t, manager.Delete(ctx, s.ID))
	_, err = manager.Load(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

type recordingLocker struct {
	mu       sync.Mutex
	locked   []string
	unlocked int
	ttl      time.Duration
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked = append(l.locked, key)
	l.ttl = ttl
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocked++
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &recordingLocker{}
	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(5*time.Second))

	_, err := manager.Turn(context.Background(), "s1", func(context.Context, *domain.Session) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, []string{"s1"}, locker.locked)
	assert.Equal(t, 1, locker.unlocked)
	assert.Equal(t, 5*time.Second, locker.ttl)
}
