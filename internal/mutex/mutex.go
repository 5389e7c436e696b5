package mutex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/acquire_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/acquire_ledger/internal/middleware"
	"github.com/SscSPs/acquire_ledger/internal/utils"
)

// ErrLockNotHeld is returned when releasing a lock that was lost or never held.
var ErrLockNotHeld = errors.New("lock was not held or already expired")

const (
	keyPrefix = "lock/"

	// confirmRounds is how many write-then-read round trips must agree.
	confirmRounds = 3
)

// DefaultOptions are used for per-account locks.
var DefaultOptions = portsrepo.LockOptions{Timeout: 10 * time.Second, Lease: 10 * time.Second}

// Locker creates Mutexes over an object store that has no compare-and-swap.
type Locker struct {
	store     portsrepo.ObjectStore
	now       func() time.Time
	sleep     func(context.Context, time.Duration) error
	baseDelay time.Duration
	maxDelay  time.Duration
}

// Option configures a Locker.
type Option func(*Locker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Locker) { l.now = now }
}

// WithSleep replaces the backoff sleep.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(l *Locker) { l.sleep = sleep }
}

// WithBackoff sets the retry delay bounds.
func WithBackoff(base, ceiling time.Duration) Option {
	return func(l *Locker) {
		l.baseDelay = base
		l.maxDelay = ceiling
	}
}

func NewLocker(store portsrepo.ObjectStore, options ...Option) *Locker {
	l := &Locker{
		store:     store,
		now:       time.Now,
		sleep:     utils.SleepWithContext,
		baseDelay: 20 * time.Millisecond,
		maxDelay:  time.Second,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

var _ portsrepo.Locker = (*Locker)(nil)

// Acquire returns a held lock on key.
func (l *Locker) Acquire(ctx context.Context, key string, opts portsrepo.LockOptions) (portsrepo.Lock, error) {
	m, err := l.NewMutex(key, opts)
	if err != nil {
		return nil, err
	}
	if err := m.Lock(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// NewMutex returns an unlocked Mutex on key.
func (l *Locker) NewMutex(key string, opts portsrepo.LockOptions) (*Mutex, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%w: lock key cannot be empty", apperrors.ErrValidation)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions.Timeout
	}
	if opts.Lease <= 0 {
		opts.Lease = DefaultOptions.Lease
	}
	secret, err := utils.GenerateSecureRandomString(16)
	if err != nil {
		return nil, err
	}
	return &Mutex{locker: l, key: key, opts: opts, secret: secret}, nil
}

// Mutex is a lease-based lock stored at lock/<key> as "<secret>@<unix nanos>".
// It is re-entrant: nested Lock calls on the same Mutex only bump a counter.
type Mutex struct {
	locker *Locker
	key    string
	opts   portsrepo.LockOptions
	secret string

	mu         sync.Mutex
	count      int
	lockString string
	acquiredAt time.Time
}

var _ portsrepo.Lock = (*Mutex)(nil)

func (m *Mutex) Key() string { return m.key }

func (m *Mutex) storeKey() string { return keyPrefix + m.key }

func (m *Mutex) IsLocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count > 0
}

// Remaining is the time left on the lease, zero if not held.
func (m *Mutex) Remaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.count == 0 {
		return 0
	}
	left := m.opts.Lease - m.locker.now().Sub(m.acquiredAt)
	if left < 0 {
		return 0
	}
	return left
}

// Lock blocks until the lock is held or the timeout elapses.
func (m *Mutex) Lock(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.count > 0 {
		if err := m.renewLocked(ctx); err != nil {
			return err
		}
		m.count++
		return nil
	}

	logger := middleware.GetLoggerFromCtx(ctx)
	deadline := m.locker.now().Add(m.opts.Timeout)
	for attempt := 0; ; attempt++ {
		held, err := m.tryAcquire(ctx)
		if err != nil {
			return err
		}
		if held {
			m.count = 1
			return nil
		}

		remaining := deadline.Sub(m.locker.now())
		if remaining <= 0 {
			logger.Warn("Timed out waiting for mutex", slog.String("lock_key", m.key), slog.Int("attempts", attempt+1))
			return fmt.Errorf("%w: %s after %s", apperrors.ErrMutexTimeout, m.key, m.opts.Timeout)
		}
		delay := utils.ExponentialWithJitter(m.locker.baseDelay, m.locker.maxDelay, attempt)
		if delay > remaining {
			delay = remaining
		}
		if err := m.locker.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// tryAcquire makes one attempt. It returns false, nil when somebody else
// holds a live lease or a concurrent writer won a round trip.
func (m *Mutex) tryAcquire(ctx context.Context) (bool, error) {
	store := m.locker.store
	current, err := store.Get(ctx, m.storeKey())
	switch {
	case err == nil:
		holderTime, perr := parseLockString(string(current))
		if perr == nil && m.locker.now().Sub(holderTime) < m.opts.Lease {
			return false, nil
		}
		middleware.GetLoggerFromCtx(ctx).Warn("Taking over abandoned mutex",
			slog.String("lock_key", m.key),
			slog.String("holder", string(current)))
	case !errors.Is(err, apperrors.ErrNotFound):
		return false, fmt.Errorf("reading mutex %s: %w", m.key, err)
	}

	var lockString string
	var acquiredAt time.Time
	for round := 0; round < confirmRounds; round++ {
		acquiredAt = m.locker.now()
		lockString = formatLockString(m.secret, acquiredAt)
		if err := store.Set(ctx, m.storeKey(), []byte(lockString)); err != nil {
			return false, fmt.Errorf("writing mutex %s: %w", m.key, err)
		}
		readBack, err := store.Get(ctx, m.storeKey())
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("reading back mutex %s: %w", m.key, err)
		}
		if string(readBack) != lockString {
			return false, nil
		}
	}

	m.lockString = lockString
	m.acquiredAt = acquiredAt
	return true, nil
}

// renewLocked refreshes the lease of a lock this Mutex already holds.
func (m *Mutex) renewLocked(ctx context.Context) error {
	store := m.locker.store
	current, err := store.Get(ctx, m.storeKey())
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("reading mutex %s: %w", m.key, err)
	}
	if err != nil || string(current) != m.lockString {
		return fmt.Errorf("%w: %s", ErrLockNotHeld, m.key)
	}
	now := m.locker.now()
	lockString := formatLockString(m.secret, now)
	if err := store.Set(ctx, m.storeKey(), []byte(lockString)); err != nil {
		return fmt.Errorf("renewing mutex %s: %w", m.key, err)
	}
	m.lockString = lockString
	m.acquiredAt = now
	return nil
}

// Unlock releases one level of the lock. The store key is deleted only by
// the outermost Unlock and only if it still holds our lock string.
func (m *Mutex) Unlock(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.count == 0 {
		return fmt.Errorf("%w: %s", ErrLockNotHeld, m.key)
	}
	m.count--
	if m.count > 0 {
		return nil
	}

	store := m.locker.store
	current, err := store.Get(ctx, m.storeKey())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrLockNotHeld, m.key)
		}
		return fmt.Errorf("reading mutex %s: %w", m.key, err)
	}
	if string(current) != m.lockString {
		return fmt.Errorf("%w: %s was taken over", ErrLockNotHeld, m.key)
	}
	if err := store.Delete(ctx, m.storeKey()); err != nil {
		return fmt.Errorf("deleting mutex %s: %w", m.key, err)
	}
	return nil
}

func formatLockString(secret string, at time.Time) string {
	return fmt.Sprintf("%s@%d", secret, at.UnixNano())
}

func parseLockString(s string) (time.Time, error) {
	i := strings.LastIndex(s, "@")
	if i < 0 {
		return time.Time{}, fmt.Errorf("%w: lock value %q", apperrors.ErrMalformed, s)
	}
	nanos, err := strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: lock value %q", apperrors.ErrMalformed, s)
	}
	return time.Unix(0, nanos), nil
}
