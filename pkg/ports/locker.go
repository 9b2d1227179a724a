package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for distributed concurrency control.
// The session Manager uses it to serialize access to one session across replicas
// of the HTTP server.
type DistributedLocker interface {
	// Lock blocks until the lock for key is acquired or ctx is done.
	// The returned UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
