package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/adapters/identity/jwtauth"
	"github.com/SscSPs/acquire_ledger/internal/adapters/objstore/memory"
	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/acquire_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/acquire_ledger/internal/core/ports/services"
	"github.com/SscSPs/acquire_ledger/internal/core/services"
	"github.com/SscSPs/acquire_ledger/internal/dto"
	"github.com/SscSPs/acquire_ledger/internal/mutex"
	"github.com/SscSPs/acquire_ledger/internal/repositories/objstore"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store unavailable")

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	onSleep func()
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

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Sleep advances the clock, then runs the hook set by OnSleep once.
func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	c.now = c.now.Add(d)
	hook := c.onSleep
	c.onSleep = nil
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (c *fakeClock) OnSleep(hook func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSleep = hook
}

// flakyStore fails writes whose key matches failSet and deletes whose key
// matches failDelete.
type flakyStore struct {
	*memory.Store
	mu         sync.Mutex
	failSet    func(key string) bool
	failDelete func(key string) bool
	onSet      func(ctx context.Context, key string)
}

func (f *flakyStore) Set(ctx context.Context, key string, data []byte) error {
	f.mu.Lock()
	fail, hook := f.failSet, f.onSet
	f.mu.Unlock()
	if fail != nil && fail(key) {
		return errStoreDown
	}
	if err := f.Store.Set(ctx, key, data); err != nil {
		return err
	}
	if hook != nil {
		hook(ctx, key)
	}
	return nil
}

func (f *flakyStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	fail := f.failDelete
	f.mu.Unlock()
	if fail != nil && fail(key) {
		return errStoreDown
	}
	return f.Store.Delete(ctx, key)
}

func (f *flakyStore) FailDeleteWhen(pred func(key string) bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failDelete = pred
}

func (f *flakyStore) FailWhen(pred func(key string) bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSet = pred
}

func (f *flakyStore) AfterSet(hook func(ctx context.Context, key string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onSet = hook
}

func containsAll(parts ...string) func(string) bool {
	return func(key string) bool {
		for _, p := range parts {
			if !strings.Contains(key, p) {
				return false
			}
		}
		return true
	}
}

// recordingAlerts collects published alerts.
type recordingAlerts struct {
	mu     sync.Mutex
	alerts []domain.LedgerAlert
}

func (r *recordingAlerts) PublishAlert(_ context.Context, alert domain.LedgerAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert)
	return nil
}

func (r *recordingAlerts) All() []domain.LedgerAlert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.LedgerAlert(nil), r.alerts...)
}

// ledgerFixture wires the real services over an in-memory store.
type ledgerFixture struct {
	ctx      context.Context
	clock    *fakeClock
	store    *flakyStore
	locker   *mutex.Locker
	repos    portsrepo.RepositoryProvider
	auth     *jwtauth.Service
	accounts portssvc.AccountSvcFacade
	ledger   portssvc.LedgerSvc
	groups   portssvc.AccountGroupSvc
	alerts   *recordingAlerts
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	f := &ledgerFixture{
		ctx:    context.Background(),
		clock:  &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		store:  &flakyStore{Store: memory.New()},
		alerts: &recordingAlerts{},
	}
	locker := mutex.NewLocker(f.store, mutex.WithClock(f.clock.Now), mutex.WithSleep(f.clock.Sleep))
	f.locker = locker
	f.repos = objstore.NewRepositoryProvider(f.store, locker)

	auth, err := jwtauth.New("test-secret", "ledger-test", time.Hour)
	require.NoError(t, err)
	f.auth = auth.WithClock(f.clock.Now)

	f.accounts = services.NewAccountService(f.repos.AccountRepo, locker,
		services.WithAccountVerifier(f.auth),
		services.WithAccountClock(f.clock.Now, f.clock.Sleep))
	f.ledger = services.NewLedgerService(f.accounts, f.repos.TransactionRepo, locker,
		services.WithLedgerVerifier(f.auth),
		services.WithLedgerClock(f.clock.Now),
		services.WithAlertPublisher(f.alerts))
	f.groups = services.NewAccountGroupService(f.repos.GroupRepo, f.accounts, locker)
	return f
}

func (f *ledgerFixture) createAccount(t *testing.T, name, overdraft string) domain.Account {
	t.Helper()
	acc, err := f.accounts.CreateAccount(f.ctx, dto.CreateAccountRequest{Name: name, OverdraftLimit: overdraft}, "tester")
	require.NoError(t, err)
	return acc
}

func (f *ledgerFixture) authFor(t *testing.T, accountUID string) domain.Authorisation {
	t.Helper()
	auth, err := f.auth.Issue(f.ctx, "tester", domain.AccountResource(accountUID))
	require.NoError(t, err)
	return auth
}

func (f *ledgerFixture) status(t *testing.T, accountUID string) domain.BalanceStatus {
	t.Helper()
	status, err := f.accounts.BalanceStatus(f.ctx, accountUID)
	require.NoError(t, err)
	return status
}

func (f *ledgerFixture) keys(t *testing.T, prefix string) []string {
	t.Helper()
	keys, err := f.store.List(f.ctx, prefix)
	require.NoError(t, err)
	return keys
}

func tx(t *testing.T, value, description string) domain.Transaction {
	t.Helper()
	out, err := domain.NewTransaction(domain.MustBoundedDecimal(value), description)
	require.NoError(t, err)
	return out
}

func dec(v string) domain.BoundedDecimal { return domain.MustBoundedDecimal(v) }
