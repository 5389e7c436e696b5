package repositories

import (
	"context"
	"time"
)

// LockOptions control how long to wait for a lock and how long it is held
// before it is considered abandoned.
type LockOptions struct {
	Timeout time.Duration
	Lease   time.Duration
}

// Lock is a held (or releasable) distributed lock on one key.
type Lock interface {
	// Key is the logical key the lock protects.
	Key() string

	// Lock acquires the lock, or increments the hold count if already held.
	Lock(ctx context.Context) error

	// Unlock decrements the hold count, releasing the lock at zero.
	Unlock(ctx context.Context) error

	// IsLocked reports whether this handle currently holds the lock.
	IsLocked() bool

	// Remaining is the time left on the lease.
	Remaining() time.Duration
}

// Locker creates locks. Acquire returns a held lock or apperrors.ErrMutexTimeout.
type Locker interface {
	Acquire(ctx context.Context, key string, opts LockOptions) (Lock, error)
}
