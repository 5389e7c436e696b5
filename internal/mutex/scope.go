package mutex

import (
	"context"
	"log/slog"

	portsrepo "github.com/SscSPs/acquire_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/acquire_ledger/internal/middleware"
)

type heldLocksKey struct{}

// heldLocks maps lock keys to the locks held by the current flow.
type heldLocks map[string]portsrepo.Lock

func heldLock(ctx context.Context, key string) portsrepo.Lock {
	held, _ := ctx.Value(heldLocksKey{}).(heldLocks)
	return held[key]
}

func withHeldLock(ctx context.Context, lock portsrepo.Lock) context.Context {
	prev, _ := ctx.Value(heldLocksKey{}).(heldLocks)
	next := make(heldLocks, len(prev)+1)
	for k, v := range prev {
		next[k] = v
	}
	next[lock.Key()] = lock
	return context.WithValue(ctx, heldLocksKey{}, next)
}

// WithLock runs fn while holding the lock on key and releases it on every
// exit path, panics included. A nested WithLock on the same key inside fn
// re-enters the held lock instead of deadlocking.
func WithLock(ctx context.Context, locker portsrepo.Locker, key string, opts portsrepo.LockOptions, fn func(ctx context.Context) error) error {
	if lock := heldLock(ctx, key); lock != nil {
		if err := lock.Lock(ctx); err != nil {
			return err
		}
		defer release(ctx, lock)
		return fn(ctx)
	}

	lock, err := locker.Acquire(ctx, key, opts)
	if err != nil {
		return err
	}
	defer release(ctx, lock)
	return fn(withHeldLock(ctx, lock))
}

// release unlocks even if ctx has been cancelled. Work done under the lock
// has already been written, so a failed release is logged, not returned.
func release(ctx context.Context, lock portsrepo.Lock) {
	if err := lock.Unlock(context.WithoutCancel(ctx)); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to release mutex",
			slog.String("lock_key", lock.Key()),
			slog.String("error", err.Error()))
	}
}
