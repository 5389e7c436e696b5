package services

import (
	"context"

	"github.com/SscSPs/acquire_ledger/internal/core/domain"
)

// LedgerSvc orchestrates double-entry transfers between accounts.
type LedgerSvc interface {
	// Perform debits debitAccountUID and credits creditAccountUID for every
	// non-zero transaction. One record is returned per transferred transaction.
	Perform(ctx context.Context, txs []domain.Transaction, debitAccountUID, creditAccountUID string, auth domain.Authorisation, isProvisional bool) ([]domain.TransactionRecord, error)

	// PerformOne is Perform for a single transaction.
	PerformOne(ctx context.Context, tx domain.Transaction, debitAccountUID, creditAccountUID string, auth domain.Authorisation, isProvisional bool) (domain.TransactionRecord, error)

	// Receipt settles a provisional transaction.
	Receipt(ctx context.Context, receipt domain.Receipt) (domain.TransactionRecord, error)

	// Refund reverses a direct transaction.
	Refund(ctx context.Context, refund domain.Refund) (domain.TransactionRecord, error)

	// LoadTransaction loads a transaction record by UID.
	LoadTransaction(ctx context.Context, uid string) (domain.TransactionRecord, error)
}
