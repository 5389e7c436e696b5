package mutex_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/adapters/objstore/memory"
	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/acquire_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/acquire_ledger/internal/mutex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Sleep advances the fake clock instead of blocking.
func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.Advance(d)
	return nil
}

func newFakeLocker(store portsrepo.ObjectStore, clock *fakeClock) *mutex.Locker {
	return mutex.NewLocker(store, mutex.WithClock(clock.Now), mutex.WithSleep(clock.Sleep))
}

func TestMutex_AcquireAndRelease(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	locker := mutex.NewLocker(store)

	lock, err := locker.Acquire(ctx, "account/a", portsrepo.LockOptions{Timeout: time.Second, Lease: time.Minute})
	require.NoError(t, err)
	assert.True(t, lock.IsLocked())
	assert.Equal(t, "account/a", lock.Key())
	assert.Greater(t, lock.Remaining(), 59*time.Second)

	value, err := store.Get(ctx, "lock/account/a")
	require.NoError(t, err)
	assert.Contains(t, string(value), "@")

	require.NoError(t, lock.Unlock(ctx))
	assert.False(t, lock.IsLocked())
	assert.Zero(t, lock.Remaining())
	_, err = store.Get(ctx, "lock/account/a")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.ErrorIs(t, lock.Unlock(ctx), mutex.ErrLockNotHeld)
}

func TestMutex_Reentrant(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	locker := mutex.NewLocker(store)

	m, err := locker.NewMutex("tx/1", mutex.DefaultOptions)
	require.NoError(t, err)
	require.NoError(t, m.Lock(ctx))
	require.NoError(t, m.Lock(ctx), "nested lock must not deadlock")

	require.NoError(t, m.Unlock(ctx))
	assert.True(t, m.IsLocked())
	_, err = store.Get(ctx, "lock/tx/1")
	require.NoError(t, err, "inner unlock keeps the store key")

	require.NoError(t, m.Unlock(ctx))
	_, err = store.Get(ctx, "lock/tx/1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMutex_TimesOutWhileHeld(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	clock := newFakeClock()
	locker := newFakeLocker(store, clock)
	opts := portsrepo.LockOptions{Timeout: 5 * time.Second, Lease: time.Hour}

	first, err := locker.Acquire(ctx, "account/a", opts)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "account/a", opts)
	assert.ErrorIs(t, err, apperrors.ErrMutexTimeout)
	assert.True(t, first.IsLocked())

	// Different keys never contend.
	other, err := locker.Acquire(ctx, "account/b", opts)
	require.NoError(t, err)
	require.NoError(t, other.Unlock(ctx))
}

func TestMutex_SecondWaiterAcquiresAfterRelease(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	locker := mutex.NewLocker(store, mutex.WithBackoff(time.Millisecond, 10*time.Millisecond))
	opts := portsrepo.LockOptions{Timeout: 5 * time.Second, Lease: time.Minute}

	first, err := locker.Acquire(ctx, "account/a", opts)
	require.NoError(t, err)

	released := make(chan struct{})
	go func() {
		time.Sleep(50 * time.Millisecond)
		close(released)
		_ = first.Unlock(ctx)
	}()

	second, err := locker.Acquire(ctx, "account/a", opts)
	require.NoError(t, err)
	select {
	case <-released:
	default:
		t.Fatal("second acquire succeeded while the first lock was held")
	}
	require.NoError(t, second.Unlock(ctx))
}

func TestMutex_ExpiredLeaseIsTakenOver(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	clock := newFakeClock()
	locker := newFakeLocker(store, clock)
	opts := portsrepo.LockOptions{Timeout: time.Second, Lease: 10 * time.Second}

	crashed, err := locker.Acquire(ctx, "tx/1", opts)
	require.NoError(t, err)

	clock.Advance(11 * time.Second)
	successor, err := locker.Acquire(ctx, "tx/1", opts)
	require.NoError(t, err)

	// The old holder must not delete the successor's lock.
	assert.ErrorIs(t, crashed.Unlock(ctx), mutex.ErrLockNotHeld)
	_, err = store.Get(ctx, "lock/tx/1")
	require.NoError(t, err)

	require.NoError(t, successor.Unlock(ctx))
	_, err = store.Get(ctx, "lock/tx/1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMutex_UnparsableValueIsTakenOver(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Set(ctx, "lock/tx/1", []byte("garbage")))

	lock, err := mutex.NewLocker(store).Acquire(ctx, "tx/1", mutex.DefaultOptions)
	require.NoError(t, err)
	require.NoError(t, lock.Unlock(ctx))
}

// racingStore simulates a concurrent writer that overwrites every lock write.
type racingStore struct {
	*memory.Store
}

func (r racingStore) Set(ctx context.Context, key string, data []byte) error {
	return r.Store.Set(ctx, key, append([]byte("other-"), data...))
}

func TestMutex_LostReadBackRetriesUntilTimeout(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	locker := newFakeLocker(racingStore{memory.New()}, clock)

	_, err := locker.Acquire(ctx, "account/a", portsrepo.LockOptions{Timeout: 2 * time.Second, Lease: time.Minute})
	assert.ErrorIs(t, err, apperrors.ErrMutexTimeout)
}

func TestMutex_EmptyKey(t *testing.T) {
	_, err := mutex.NewLocker(memory.New()).Acquire(context.Background(), " ", mutex.DefaultOptions)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestWithLock(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	locker := mutex.NewLocker(store)
	opts := portsrepo.LockOptions{Timeout: time.Second, Lease: time.Minute}

	t.Run("releases after error", func(t *testing.T) {
		boom := errors.New("boom")
		err := mutex.WithLock(ctx, locker, "k", opts, func(ctx context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
		_, err = store.Get(ctx, "lock/k")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("releases after panic", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = mutex.WithLock(ctx, locker, "k", opts, func(ctx context.Context) error { panic("boom") })
		})
		_, err := store.Get(ctx, "lock/k")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("nested acquisition re-enters", func(t *testing.T) {
		calls := 0
		err := mutex.WithLock(ctx, locker, "k", opts, func(ctx context.Context) error {
			return mutex.WithLock(ctx, locker, "k", opts, func(ctx context.Context) error {
				calls++
				_, err := store.Get(ctx, "lock/k")
				return err
			})
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		_, err = store.Get(ctx, "lock/k")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("nested different keys", func(t *testing.T) {
		err := mutex.WithLock(ctx, locker, "a", opts, func(ctx context.Context) error {
			return mutex.WithLock(ctx, locker, "b", opts, func(ctx context.Context) error {
				keys, err := store.List(ctx, "lock/")
				require.NoError(t, err)
				assert.Equal(t, []string{"lock/a", "lock/b"}, keys)
				return nil
			})
		})
		require.NoError(t, err)
	})
}
