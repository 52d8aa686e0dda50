package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes turns of the same session across replicas.
type DistributedLocker interface {
	// Lock blocks until the lock for key is held or ctx is done.
	// The lock expires after ttl if never released.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
