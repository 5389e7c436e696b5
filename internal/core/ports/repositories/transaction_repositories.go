package repositories

import (
	"context"

	"github.com/SscSPs/acquire_ledger/internal/core/domain"
)

// TransactionRecordReader defines read operations for transaction records.
type TransactionRecordReader interface {
	// FindTransactionRecord loads a record by UID, or apperrors.ErrNotFound.
	FindTransactionRecord(ctx context.Context, uid string) (domain.TransactionRecord, error)
}

// TransactionRecordWriter defines write operations for transaction records.
type TransactionRecordWriter interface {
	// SaveTransactionRecord creates or replaces a record.
	SaveTransactionRecord(ctx context.Context, record domain.TransactionRecord) error

	// DeleteTransactionRecord removes a record whose transfer was rolled back
	// before the perform call returned.
	DeleteTransactionRecord(ctx context.Context, uid string) error
}

// TransactionRecordRepositoryFacade combines all transaction record operations
type TransactionRecordRepositoryFacade interface {
	TransactionRecordReader
	TransactionRecordWriter
}
