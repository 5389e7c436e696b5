// Package redislock implements the Locker port with redsync, for
// deployments that already run Redis and want locks off the object store.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/acquire_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/acquire_ledger/internal/middleware"
	"github.com/SscSPs/acquire_ledger/internal/mutex"
	"github.com/SscSPs/acquire_ledger/internal/utils"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lock/"

// Locker hands out redsync mutexes.
type Locker struct {
	rs        *redsync.Redsync
	baseDelay time.Duration
	maxDelay  time.Duration
}

var _ portsrepo.Locker = (*Locker)(nil)

// New creates a Locker over an existing client.
func New(client redis.UniversalClient) (*Locker, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	return &Locker{
		rs:        redsync.New(goredis.NewPool(client)),
		baseDelay: 20 * time.Millisecond,
		maxDelay:  time.Second,
	}, nil
}

// Acquire blocks until key is locked or opts.Timeout elapses.
func (l *Locker) Acquire(ctx context.Context, key string, opts portsrepo.LockOptions) (portsrepo.Lock, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%w: lock key cannot be empty", apperrors.ErrValidation)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = mutex.DefaultOptions.Timeout
	}
	if opts.Lease <= 0 {
		opts.Lease = mutex.DefaultOptions.Lease
	}

	lock := &Lock{
		locker: l,
		key:    key,
		opts:   opts,
		mutex: l.rs.NewMutex(keyPrefix+key,
			redsync.WithExpiry(opts.Lease),
			redsync.WithTries(1),
		),
	}
	if err := lock.Lock(ctx); err != nil {
		return nil, err
	}
	return lock, nil
}

// Lock is a re-entrant wrapper around one redsync mutex.
type Lock struct {
	locker *Locker
	key    string
	opts   portsrepo.LockOptions
	mutex  *redsync.Mutex

	mu    sync.Mutex
	count int
}

var _ portsrepo.Lock = (*Lock)(nil)

func (l *Lock) Key() string { return l.key }

func (l *Lock) IsLocked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count > 0
}

func (l *Lock) Remaining() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count == 0 {
		return 0
	}
	if left := time.Until(l.mutex.Until()); left > 0 {
		return left
	}
	return 0
}

// Lock takes the lock, or extends the lease when already held.
func (l *Lock) Lock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count > 0 {
		ok, err := l.mutex.ExtendContext(ctx)
		if err != nil || !ok {
			return fmt.Errorf("%w: %s", mutex.ErrLockNotHeld, l.key)
		}
		l.count++
		return nil
	}

	deadline := time.Now().Add(l.opts.Timeout)
	for attempt := 0; ; attempt++ {
		err := l.mutex.LockContext(ctx)
		if err == nil {
			l.count = 1
			return nil
		}
		if !isContention(err) {
			return fmt.Errorf("acquiring redis lock %s: %w", l.key, err)
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			middleware.GetLoggerFromCtx(ctx).Warn("Timed out waiting for redis lock",
				slog.String("lock_key", l.key), slog.Int("attempts", attempt+1))
			return fmt.Errorf("%w: %s after %s", apperrors.ErrMutexTimeout, l.key, l.opts.Timeout)
		}
		delay := utils.ExponentialWithJitter(l.locker.baseDelay, l.locker.maxDelay, attempt)
		if delay > remaining {
			delay = remaining
		}
		if err := utils.SleepWithContext(ctx, delay); err != nil {
			return err
		}
	}
}

// Unlock releases one level; the outermost call releases the redis key.
func (l *Lock) Unlock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count == 0 {
		return fmt.Errorf("%w: %s", mutex.ErrLockNotHeld, l.key)
	}
	l.count--
	if l.count > 0 {
		return nil
	}

	ok, err := l.mutex.UnlockContext(ctx)
	if errors.Is(err, redsync.ErrLockAlreadyExpired) || (err == nil && !ok) {
		return fmt.Errorf("%w: %s", mutex.ErrLockNotHeld, l.key)
	}
	if err != nil {
		return fmt.Errorf("releasing redis lock %s: %w", l.key, err)
	}
	return nil
}

// isContention separates "somebody else holds it" from transport failures.
func isContention(err error) bool {
	if errors.Is(err, redsync.ErrFailed) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "lock already taken") || strings.Contains(msg, "failed to acquire lock")
}
