package breaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/acquire_ledger/internal/core/ports/repositories"
	"github.com/sony/gobreaker"
)

// ErrStoreUnavailable is returned while the breaker is open.
var ErrStoreUnavailable = errors.New("object store unavailable")

// Settings configure when the breaker trips.
type Settings struct {
	Name                string
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// DefaultSettings trips after five consecutive failures and probes again after 30s.
func DefaultSettings(name string) Settings {
	return Settings{Name: name, ConsecutiveFailures: 5, OpenTimeout: 30 * time.Second}
}

// Store wraps a remote object store in a circuit breaker so a failing
// backend fails fast instead of holding locks for the full timeout.
type Store struct {
	next portsrepo.ObjectStore
	cb   *gobreaker.CircuitBreaker
}

func New(next portsrepo.ObjectStore, s Settings, logger *slog.Logger) *Store {
	settings := gobreaker.Settings{
		Name:    s.Name,
		Timeout: s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		// A missing key is an answer, not a failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, apperrors.ErrNotFound)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Object store circuit breaker changed state",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}
	return &Store{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

var _ portsrepo.ObjectStore = (*Store)(nil)

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.execute(func() (any, error) { return s.next.Get(ctx, key) })
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *Store) Set(ctx context.Context, key string, data []byte) error {
	_, err := s.execute(func() (any, error) { return nil, s.next.Set(ctx, key, data) })
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.execute(func() (any, error) { return nil, s.next.Delete(ctx, key) })
	return err
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	v, err := s.execute(func() (any, error) { return s.next.List(ctx, prefix) })
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// State exposes the breaker state for health checks.
func (s *Store) State() gobreaker.State { return s.cb.State() }

func (s *Store) execute(fn func() (any, error)) (any, error) {
	v, err := s.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return v, err
}
