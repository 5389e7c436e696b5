package services

import (
	portsrepo "github.com/SscSPs/acquire_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/acquire_ledger/internal/core/ports/services"
	"github.com/SscSPs/acquire_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, auth portssvc.AuthorisationSvcFacade, alerts portssvc.AlertPublisher) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{Authorisation: auth}

	container.Account = NewAccountService(
		repos.AccountRepo,
		repos.Locker,
		WithAccountVerifier(auth),
		WithAccountLockOptions(portsrepo.LockOptions{Timeout: cfg.AccountLockTimeout, Lease: cfg.AccountLockLease}),
	)

	container.Ledger = NewLedgerService(
		container.Account,
		repos.TransactionRepo,
		repos.Locker,
		WithLedgerVerifier(auth),
		WithLedgerLockOptions(portsrepo.LockOptions{Timeout: cfg.LedgerLockTimeout, Lease: cfg.LedgerLockLease}),
		WithAlertPublisher(alerts),
	)

	container.AccountGroup = NewAccountGroupService(repos.GroupRepo, container.Account, repos.Locker)

	return container
}
