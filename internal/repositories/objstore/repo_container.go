package objstore

import (
	portsrepo "github.com/SscSPs/acquire_ledger/internal/core/ports/repositories"
)

// NewRepositoryProvider builds every repository over one object store.
func NewRepositoryProvider(store portsrepo.ObjectStore, locker portsrepo.Locker) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     newObjectAccountRepository(store),
		TransactionRepo: newObjectTransactionRecordRepository(store),
		GroupRepo:       newObjectAccountGroupRepository(store),
		Locker:          locker,
	}
}
